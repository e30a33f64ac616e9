package controllers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/inkwell-labs/inkwell-api/middleware"
	"github.com/inkwell-labs/inkwell-api/services"
	"gorm.io/gorm"
)

// NotificationController handles the notification read path
type NotificationController struct {
	DB       *gorm.DB
	Notifier *services.NotificationService
}

// NewNotificationController creates a NotificationController
func NewNotificationController(db *gorm.DB, notifier *services.NotificationService) *NotificationController {
	return &NotificationController{DB: db, Notifier: notifier}
}

// ListNotifications handles GET /api/v1/notifications - runs the
// deadline sweep for the caller, then returns their newest notices.
func (nc *NotificationController) ListNotifications(c *gin.Context) {
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

	// A failed sweep should not block the read; the next poll retries it
	if err := nc.Notifier.SweepDeadlines(nc.DB, identity.ID); err != nil {
		log.Printf("deadline sweep failed for user %d: %v", identity.ID, err)
	}

	notifications, err := nc.Notifier.ListForUser(nc.DB, identity.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch notifications",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    notifications,
	})
}

// MarkNotificationsRead handles POST /api/v1/notifications/read - marks
// every notification owned by the caller as read. Safe to repeat.
func (nc *NotificationController) MarkNotificationsRead(c *gin.Context) {
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

	if err := nc.Notifier.MarkAllRead(nc.DB, identity.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to mark notifications read",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
	})
}
