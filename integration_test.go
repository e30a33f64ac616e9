package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/inkwell-labs/inkwell-api/config"
	"github.com/inkwell-labs/inkwell-api/models"
	"github.com/inkwell-labs/inkwell-api/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestServer wires the full application against an in-memory
// database, with seeded staff accounts and a mock attachment store.
func setupTestServer(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Order{},
		&models.StatusUpdate{},
		&models.Comment{},
		&models.Notification{},
	))
	require.NoError(t, seedUsers(db))

	cfg := &config.Config{
		Port:      "8080",
		GoEnv:     "test",
		JWTSecret: "integration-test-secret",
	}

	return setupRouter(db, cfg, services.NewMockAttachmentStore()), db
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var response map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	}
	return w, response
}

func login(t *testing.T, router *gin.Engine, email, password string) string {
	t.Helper()
	w, response := doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusOK, w.Code, "login failed for %s: %s", email, w.Body.String())
	data := response["data"].(map[string]interface{})
	return data["token"].(string)
}

func TestHealthEndpointIntegration(t *testing.T) {
	router, _ := setupTestServer(t)

	req, _ := http.NewRequest("GET", "/api/v1/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err, "Response should be valid JSON")
	assert.Equal(t, true, response["success"])
	assert.Equal(t, "Inkwell API is running", response["message"])
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	router, _ := setupTestServer(t)

	for _, path := range []string{"/api/v1/orders", "/api/v1/notifications", "/api/v1/earnings"} {
		w, response := doJSON(t, router, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "expected 401 for %s", path)
		errorData := response["error"].(map[string]interface{})
		assert.Equal(t, "UNAUTHORIZED", errorData["code"])
	}
}

// TestOrderLifecycleIntegration walks one order from submission to
// delivery through the HTTP surface, using the seeded staff accounts
// and a freshly registered student.
func TestOrderLifecycleIntegration(t *testing.T) {
	router, db := setupTestServer(t)

	// Register a student account
	w, response := doJSON(t, router, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"name":     "Sara Student",
		"email":    "sara@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	studentToken := response["data"].(map[string]interface{})["token"].(string)

	adminToken := login(t, router, "admin@example.com", "admin123")
	writerToken := login(t, router, "writer@example.com", "writer123")
	deliveryToken := login(t, router, "delivery@example.com", "delivery123")

	// Student submits a three page order
	body := &bytes.Buffer{}
	form := multipart.NewWriter(body)
	require.NoError(t, form.WriteField("title", "Essay"))
	require.NoError(t, form.WriteField("description", "An essay on Go"))
	require.NoError(t, form.WriteField("page_count", "3"))
	require.NoError(t, form.Close())

	req, _ := http.NewRequest(http.MethodPost, "/api/v1/orders", body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+studentToken)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	createdData := created["data"].(map[string]interface{})
	orderID := uint(createdData["id"].(float64))
	assert.Equal(t, float64(120), createdData["price"], "3 pages at the default rate")

	// The submission lands on the admin's notification feed
	w, response = doJSON(t, router, http.MethodGet, "/api/v1/notifications", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	notices := response["data"].([]interface{})
	require.NotEmpty(t, notices)
	first := notices[0].(map[string]interface{})
	assert.Equal(t, fmt.Sprintf("New order #%d received: Essay", orderID), first["message"])

	// Admin looks up the staff and assigns both at once
	var writerUser, deliveryUser models.User
	require.NoError(t, db.Where("email = ?", "writer@example.com").First(&writerUser).Error)
	require.NoError(t, db.Where("email = ?", "delivery@example.com").First(&deliveryUser).Error)

	w, _ = doJSON(t, router, http.MethodPost, "/api/v1/admin/assign", adminToken, gin.H{
		"order_id":    orderID,
		"writer_id":   writerUser.ID,
		"delivery_id": deliveryUser.ID,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Writer advances the order, then the delivery agent finishes it
	steps := []struct {
		token   string
		status  string
		message string
	}{
		{token: writerToken, status: "writing", message: "Started the draft"},
		{token: writerToken, status: "ready_for_delivery", message: "Draft complete"},
		{token: deliveryToken, status: "out_for_delivery", message: "Picked up"},
		{token: deliveryToken, status: "delivered", message: "Handed over"},
	}
	statusPath := fmt.Sprintf("/api/v1/orders/%d/status", orderID)
	for _, step := range steps {
		w, _ = doJSON(t, router, http.MethodPost, statusPath, step.token, gin.H{
			"status":  step.status,
			"message": step.message,
		})
		require.Equal(t, http.StatusOK, w.Code, "transition to %s: %s", step.status, w.Body.String())
	}

	// The student sees the finished order with its full timeline
	w, response = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/v1/orders/%d", orderID), studentToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := response["data"].(map[string]interface{})
	order := data["order"].(map[string]interface{})
	assert.Equal(t, "delivered", order["status"])

	updates := data["updates"].([]interface{})
	assert.Len(t, updates, 6, "placement, assignment and four transitions")
	newest := updates[0].(map[string]interface{})
	assert.Equal(t, "delivered", newest["status"])
	oldest := updates[len(updates)-1].(map[string]interface{})
	assert.Equal(t, "Order placed successfully", oldest["message"])

	// Each transition notified the student
	w, response = doJSON(t, router, http.MethodGet, "/api/v1/notifications", studentToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	studentNotices := response["data"].([]interface{})
	messages := make([]string, 0, len(studentNotices))
	for _, n := range studentNotices {
		messages = append(messages, n.(map[string]interface{})["message"].(string))
	}
	assert.Contains(t, messages, fmt.Sprintf(`Your order #%d "Essay" has been assigned to a writer.`, orderID))
	assert.Contains(t, messages, fmt.Sprintf("Update on order #%d: Handed over", orderID))

	// Writer and delivery earnings reflect the delivered order
	w, response = doJSON(t, router, http.MethodGet, "/api/v1/earnings", writerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(84), response["data"].(map[string]interface{})["total"], "70% of 120")

	w, response = doJSON(t, router, http.MethodGet, "/api/v1/earnings", deliveryToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(30), response["data"].(map[string]interface{})["total"])
}

// TestAdminSurfaceIntegration exercises the admin endpoints end to end
// with real tokens, including the forbidden path for a student.
func TestAdminSurfaceIntegration(t *testing.T) {
	router, _ := setupTestServer(t)

	w, response := doJSON(t, router, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"name":     "Sam Student",
		"email":    "sam@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	studentToken := response["data"].(map[string]interface{})["token"].(string)
	adminToken := login(t, router, "admin@example.com", "admin123")

	w, response = doJSON(t, router, http.MethodGet, "/api/v1/admin/stats", studentToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "FORBIDDEN", response["error"].(map[string]interface{})["code"])

	w, response = doJSON(t, router, http.MethodGet, "/api/v1/admin/stats", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats := response["data"].(map[string]interface{})
	assert.Equal(t, float64(0), stats["revenue"])
	assert.Equal(t, float64(1), stats["writers"])

	w, response = doJSON(t, router, http.MethodGet, "/api/v1/admin/users", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	users := response["data"].([]interface{})
	assert.Len(t, users, 4, "three seeded accounts plus the student")
}
