package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/inkwell-labs/inkwell-api/models"
	"github.com/stretchr/testify/assert"
)

const testSecret = "unit-test-secret"

func testUser() models.User {
	return models.User{
		ID:    42,
		Name:  "Test User",
		Email: "test@example.com",
		Role:  models.RoleWriter,
	}
}

func TestGenerateAndParseToken(t *testing.T) {
	token, err := GenerateToken(testSecret, testUser())
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := ParseToken(testSecret, token)
	assert.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "test@example.com", claims.Email)
	assert.Equal(t, models.RoleWriter, claims.Role)
	assert.Equal(t, "Test User", claims.Name)
	assert.WithinDuration(t, time.Now().Add(TokenTTL), claims.ExpiresAt.Time, time.Minute)
}

func TestParseToken_Failures(t *testing.T) {
	valid, _ := GenerateToken(testSecret, testUser())

	expired := func() string {
		claims := Claims{
			UserID: 42,
			RegisteredClaims: jwt.RegisteredClaims{
				IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * TokenTTL)),
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-TokenTTL)),
			},
		}
		token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		return token
	}()

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage token", token: "not.a.jwt"},
		{name: "wrong secret", token: valid + "tampered"},
		{name: "expired token", token: expired},
		{name: "empty token", token: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseToken(testSecret, tt.token)
			assert.Error(t, err)
		})
	}

	t.Run("different signing secret", func(t *testing.T) {
		other, _ := GenerateToken("another-secret", testUser())
		_, err := ParseToken(testSecret, other)
		assert.Error(t, err)
	})
}

func TestEnsureValidToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.GET("/protected", EnsureValidToken(testSecret), func(c *gin.Context) {
		identity, err := CurrentIdentity(c)
		assert.NoError(t, err)
		c.JSON(http.StatusOK, gin.H{"success": true, "id": identity.ID, "role": identity.Role})
	})

	token, _ := GenerateToken(testSecret, testUser())

	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "valid bearer token",
			authHeader:     "Bearer " + token,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "missing header",
			authHeader:     "",
			expectedStatus: http.StatusUnauthorized,
			expectedError:  "UNAUTHORIZED",
		},
		{
			name:           "wrong scheme",
			authHeader:     "Basic " + token,
			expectedStatus: http.StatusUnauthorized,
			expectedError:  "UNAUTHORIZED",
		},
		{
			name:           "tampered token",
			authHeader:     "Bearer " + token + "x",
			expectedStatus: http.StatusUnauthorized,
			expectedError:  "INVALID_TOKEN",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			var response map[string]interface{}
			assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			if tt.expectedError != "" {
				errorData := response["error"].(map[string]interface{})
				assert.Equal(t, tt.expectedError, errorData["code"])
			} else {
				assert.Equal(t, float64(42), response["id"])
				assert.Equal(t, "writer", response["role"])
			}
		})
	}
}

func TestRequirePermission(t *testing.T) {
	gin.SetMode(gin.TestMode)

	routerFor := func(role models.Role) *gin.Engine {
		router := gin.New()
		router.GET("/gated",
			func(c *gin.Context) {
				c.Set("identity", Identity{ID: 1, Role: role})
				c.Next()
			},
			RequirePermission(models.ActionManageOrders),
			func(c *gin.Context) {
				c.JSON(http.StatusOK, gin.H{"success": true})
			},
		)
		return router
	}

	t.Run("admin passes", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/gated", nil)
		routerFor(models.RoleAdmin).ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("non-admin is forbidden", func(t *testing.T) {
		for _, role := range []models.Role{models.RoleStudent, models.RoleWriter, models.RoleDelivery} {
			w := httptest.NewRecorder()
			req, _ := http.NewRequest(http.MethodGet, "/gated", nil)
			routerFor(role).ServeHTTP(w, req)
			assert.Equal(t, http.StatusForbidden, w.Code)
		}
	})

	t.Run("missing identity is unauthorized", func(t *testing.T) {
		router := gin.New()
		router.GET("/gated", RequirePermission(models.ActionManageOrders), func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"success": true})
		})
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/gated", nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestCurrentIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("extracts stored identity", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Set("identity", Identity{ID: 7, Role: models.RoleStudent})

		identity, err := CurrentIdentity(c)
		assert.NoError(t, err)
		assert.Equal(t, uint(7), identity.ID)
	})

	t.Run("missing identity", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		_, err := CurrentIdentity(c)
		assert.Error(t, err)
	})

	t.Run("wrong type", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Set("identity", "not-an-identity")

		_, err := CurrentIdentity(c)
		assert.Error(t, err)
	})
}
