package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/inkwell-labs/inkwell-api/middleware"
	"github.com/inkwell-labs/inkwell-api/models"
	"github.com/inkwell-labs/inkwell-api/services"
	"gorm.io/gorm"
)

// CommentController handles the per-order discussion thread
type CommentController struct {
	DB       *gorm.DB
	Notifier *services.NotificationService
}

// NewCommentController creates a CommentController
func NewCommentController(db *gorm.DB, notifier *services.NotificationService) *CommentController {
	return &CommentController{DB: db, Notifier: notifier}
}

// AddCommentRequest represents the request body for posting a comment
type AddCommentRequest struct {
	Text string `json:"text" binding:"required"`
}

// AddComment handles POST /api/v1/orders/:id/comments - appends to the
// thread and notifies the other parties on the order.
func (cc *CommentController) AddComment(c *gin.Context) {
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

	var req AddCommentRequest
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

	var order models.Order
	if err := cc.DB.First(&order, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ORDER_NOT_FOUND",
				"message": "Order not found",
			},
		})
		return
	}

	comment := models.Comment{
		OrderID: order.ID,
		UserID:  identity.ID,
		Text:    req.Text,
	}

	err = cc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&comment).Error; err != nil {
			return err
		}
		return cc.Notifier.Publish(tx, services.CommentAdded{
			OrderID:    order.ID,
			Title:      order.Title,
			AuthorID:   identity.ID,
			AuthorRole: identity.Role,
			StudentID:  order.StudentID,
			WriterID:   order.WriterID,
			Text:       req.Text,
		})
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create comment",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
	})
}
