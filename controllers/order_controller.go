package controllers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/inkwell-labs/inkwell-api/middleware"
	"github.com/inkwell-labs/inkwell-api/models"
	"github.com/inkwell-labs/inkwell-api/services"
	"github.com/inkwell-labs/inkwell-api/utils"
	"gorm.io/gorm"
)

// OrderController handles order submission, listing and lifecycle transitions
type OrderController struct {
	DB          *gorm.DB
	Notifier    *services.NotificationService
	Attachments services.AttachmentStore
}

// NewOrderController creates an OrderController
func NewOrderController(db *gorm.DB, notifier *services.NotificationService, attachments services.AttachmentStore) *OrderController {
	return &OrderController{DB: db, Notifier: notifier, Attachments: attachments}
}

// UpdateStatusRequest represents the request body for a status transition
type UpdateStatusRequest struct {
	Status  models.Status `json:"status" binding:"required"`
	Message string        `json:"message" binding:"required"`
}

// OrderListEntry is an order enriched with the student's display name
// for the admin listing.
type OrderListEntry struct {
	models.Order
	StudentName string `json:"student_name"`
}

// CommentView is a comment enriched with its author's name and role at
// read time. The author may have been deleted since; readers fall back
// to a placeholder identity instead of failing.
type CommentView struct {
	ID        uint      `json:"id"`
	OrderID   uint      `json:"order_id"`
	UserID    uint      `json:"user_id"`
	Text      string    `json:"text"`
	UserName  string    `json:"user_name"`
	UserRole  string    `json:"user_role"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateOrder handles POST /api/v1/orders - submits a new assignment.
// The request is multipart so an attachment can ride along with the
// form fields.
func (oc *OrderController) CreateOrder(c *gin.Context) {
	identity, err := middleware.CurrentIdentity(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not extract user information",
			},
		})
		return
	}

	title := c.PostForm("title")
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Title is required",
			},
		})
		return
	}
	description := c.PostForm("description")

	// Use provided page count or default to 1
	pageCount, err := strconv.Atoi(c.PostForm("page_count"))
	if err != nil || pageCount < 1 {
		pageCount = 1
	}

	var dueDate *time.Time
	if raw := c.PostForm("due_date"); raw != "" {
		parsed, err := parseDueDate(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "VALIDATION_ERROR",
					"message": "Invalid due date format",
				},
			})
			return
		}
		dueDate = &parsed
	}

	// Store the attachment first so the transaction below is all-database
	var filePath *string
	if fileHeader, err := c.FormFile("file"); err == nil {
		if err := utils.ValidateAttachment(fileHeader); err != nil {
			code, message := "UPLOAD_ERROR", "Invalid attachment"
			var uploadErr *utils.FileUploadError
			if errors.As(err, &uploadErr) {
				code, message = uploadErr.Code, uploadErr.Message
			}
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    code,
					"message": message,
				},
			})
			return
		}
		key, err := oc.Attachments.Save(fileHeader)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "UPLOAD_ERROR",
					"message": "Failed to store attachment",
				},
			})
			return
		}
		filePath = &key
	}

	order := models.Order{
		StudentID:    identity.ID,
		Title:        title,
		Description:  description,
		FilePath:     filePath,
		PageCount:    pageCount,
		PricePerPage: models.DefaultPricePerPage,
		Price:        float64(pageCount) * models.DefaultPricePerPage,
		Status:       models.StatusPending,
		DueDate:      dueDate,
	}

	// Order row, initial timeline entry and admin notices commit together
	err = oc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		update := models.StatusUpdate{
			OrderID: order.ID,
			Status:  models.StatusPending,
			Message: "Order placed successfully",
		}
		if err := tx.Create(&update).Error; err != nil {
			return err
		}
		return oc.Notifier.Publish(tx, services.OrderCreated{
			OrderID: order.ID,
			Title:   order.Title,
		})
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create order",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data": gin.H{
			"id":         order.ID,
			"page_count": order.PageCount,
			"price":      order.Price,
		},
	})
}

// ListOrders handles GET /api/v1/orders - role-scoped order listing
func (oc *OrderController) ListOrders(c *gin.Context) {
	identity, err := middleware.CurrentIdentity(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not extract user information",
			},
		})
		return
	}

	var orders []models.Order
	query := oc.DB
	switch identity.Role {
	case models.RoleAdmin:
		query = query.Preload("Student").Order("created_at DESC, id DESC")
	case models.RoleWriter:
		// Assigned to this writer, plus the pending inventory
		query = query.Where("writer_id = ? OR status = ?", identity.ID, models.StatusPending)
	case models.RoleDelivery:
		// Assigned to this agent, plus orders waiting for pickup
		query = query.Where("delivery_id = ? OR status = ?", identity.ID, models.StatusReadyForDelivery)
	default:
		query = query.Where("student_id = ?", identity.ID).Order("created_at DESC, id DESC")
	}

	if err := query.Find(&orders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch orders",
			},
		})
		return
	}

	if identity.Role == models.RoleAdmin {
		entries := make([]OrderListEntry, 0, len(orders))
		for _, order := range orders {
			entries = append(entries, OrderListEntry{
				Order:       order,
				StudentName: order.Student.Name,
			})
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    entries,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    orders,
	})
}

// GetOrder handles GET /api/v1/orders/:id - order with timeline and thread
func (oc *OrderController) GetOrder(c *gin.Context) {
	var order models.Order
	if err := oc.DB.First(&order, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ORDER_NOT_FOUND",
				"message": "Order not found",
			},
		})
		return
	}

	// Timeline reads newest first
	var updates []models.StatusUpdate
	if err := oc.DB.Where("order_id = ?", order.ID).
		Order("created_at DESC, id DESC").
		Find(&updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch status updates",
			},
		})
		return
	}

	// Thread reads oldest first, in conversation order
	var comments []models.Comment
	if err := oc.DB.Where("order_id = ?", order.ID).
		Order("created_at ASC, id ASC").
		Find(&comments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch comments",
			},
		})
		return
	}

	views, err := oc.enrichComments(comments)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch comment authors",
			},
		})
		return
	}

	// A broken presign should not take down the whole read
	var fileURL string
	if order.FilePath != nil {
		fileURL, err = oc.Attachments.GetPresignedURL(*order.FilePath)
		if err != nil {
			log.Printf("failed to presign attachment %s: %v", *order.FilePath, err)
			fileURL = ""
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"order":    order,
			"updates":  updates,
			"comments": views,
			"file_url": fileURL,
		},
	})
}

// UpdateStatus handles POST /api/v1/orders/:id/status - moves an order
// through its lifecycle. The target must be the legal successor of the
// current status and the caller's role must be entitled to set it.
func (oc *OrderController) UpdateStatus(c *gin.Context) {
	identity, err := middleware.CurrentIdentity(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not extract user information",
			},
		})
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	if !req.Status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Unknown status",
			},
		})
		return
	}

	var order models.Order
	if err := oc.DB.First(&order, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ORDER_NOT_FOUND",
				"message": "Order not found",
			},
		})
		return
	}

	action, ok := models.TransitionAction(req.Status)
	if !ok || !models.CanPerform(identity.Role, action) {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "Your role may not set this status",
			},
		})
		return
	}

	if !order.Status.CanTransitionTo(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_STATUS_TRANSITION",
				"message": "Order cannot move from " + string(order.Status) + " to " + string(req.Status),
			},
		})
		return
	}

	err = oc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&order).Update("status", req.Status).Error; err != nil {
			return err
		}
		update := models.StatusUpdate{
			OrderID: order.ID,
			Status:  req.Status,
			Message: req.Message,
		}
		if err := tx.Create(&update).Error; err != nil {
			return err
		}
		return oc.Notifier.Publish(tx, services.StatusChanged{
			OrderID:   order.ID,
			StudentID: order.StudentID,
			Message:   req.Message,
		})
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update order status",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
	})
}

// enrichComments joins each comment with its author's current name and
// role, tolerating authors that no longer exist.
func (oc *OrderController) enrichComments(comments []models.Comment) ([]CommentView, error) {
	if len(comments) == 0 {
		return []CommentView{}, nil
	}

	authorIDs := make([]uint, 0, len(comments))
	for _, comment := range comments {
		authorIDs = append(authorIDs, comment.UserID)
	}

	var authors []models.User
	if err := oc.DB.Where("id IN ?", authorIDs).Find(&authors).Error; err != nil {
		return nil, err
	}
	byID := make(map[uint]models.User, len(authors))
	for _, author := range authors {
		byID[author.ID] = author
	}

	views := make([]CommentView, 0, len(comments))
	for _, comment := range comments {
		view := CommentView{
			ID:        comment.ID,
			OrderID:   comment.OrderID,
			UserID:    comment.UserID,
			Text:      comment.Text,
			UserName:  "Unknown User",
			UserRole:  "unknown",
			CreatedAt: comment.CreatedAt,
		}
		if author, ok := byID[comment.UserID]; ok {
			view.UserName = author.Name
			view.UserRole = string(author.Role)
		}
		views = append(views, view)
	}
	return views, nil
}

// parseDueDate accepts the formats the client's date pickers produce
func parseDueDate(raw string) (time.Time, error) {
	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04",
		"2006-01-02 15:04",
		"2006-01-02",
	}
	var lastErr error
	for _, layout := range layouts {
		parsed, err := time.Parse(layout, raw)
		if err == nil {
			return parsed, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
