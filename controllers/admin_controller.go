package controllers

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/inkwell-labs/inkwell-api/models"
	"github.com/inkwell-labs/inkwell-api/services"
	"gorm.io/gorm"
)

// AdminController handles the admin-only management endpoints. Role
// gating happens in the router through middleware.RequirePermission,
// so every handler here can assume an admin caller.
type AdminController struct {
	DB          *gorm.DB
	Notifier    *services.NotificationService
	Attachments services.AttachmentStore
}

// NewAdminController creates an AdminController
func NewAdminController(db *gorm.DB, notifier *services.NotificationService, attachments services.AttachmentStore) *AdminController {
	return &AdminController{DB: db, Notifier: notifier, Attachments: attachments}
}

// UpdateUserRequest represents the request body for an admin user edit.
// The edit is a full overwrite of the three mutable fields.
type UpdateUserRequest struct {
	Name  string      `json:"name" binding:"required"`
	Email string      `json:"email" binding:"required,email"`
	Role  models.Role `json:"role" binding:"required"`
}

// UpdateOrderRequest represents the request body for an admin order
// edit, a full overwrite of the order's editable fields.
type UpdateOrderRequest struct {
	Title        string        `json:"title" binding:"required"`
	Description  string        `json:"description"`
	Price        float64       `json:"price"`
	Status       models.Status `json:"status" binding:"required"`
	PageCount    int           `json:"page_count"`
	PricePerPage float64       `json:"price_per_page"`
	DueDate      *string       `json:"due_date"`
}

// AssignRequest represents the request body for assigning an order
type AssignRequest struct {
	OrderID    uint `json:"order_id" binding:"required"`
	WriterID   uint `json:"writer_id" binding:"required"`
	DeliveryID uint `json:"delivery_id" binding:"required"`
}

// recentOrder is a row in the dashboard's recent-orders panel
type recentOrder struct {
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	StudentName string  `json:"student_name"`
}

// Stats handles GET /api/v1/admin/stats - dashboard counters
func (ac *AdminController) Stats(c *gin.Context) {
	var revenue float64
	var pending, writers, totalOrders int64

	err := ac.DB.Model(&models.Order{}).
		Where("status = ?", models.StatusDelivered).
		Select("COALESCE(SUM(price), 0)").
		Scan(&revenue).Error
	if err == nil {
		err = ac.DB.Model(&models.Order{}).Where("status = ?", models.StatusPending).Count(&pending).Error
	}
	if err == nil {
		err = ac.DB.Model(&models.User{}).Where("role = ?", models.RoleWriter).Count(&writers).Error
	}
	if err == nil {
		err = ac.DB.Model(&models.Order{}).Count(&totalOrders).Error
	}

	var recent []recentOrder
	if err == nil {
		err = ac.recentOrders(&recent)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to compute stats",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"revenue":      revenue,
			"pending":      pending,
			"writers":      writers,
			"totalOrders":  totalOrders,
			"recentOrders": recent,
		},
	})
}

// Analytics handles GET /api/v1/admin/analytics - aggregate counters
func (ac *AdminController) Analytics(c *gin.Context) {
	var totalRevenue float64
	var activeOrders, completedOrders, totalUsers int64

	err := ac.DB.Model(&models.Order{}).
		Where("status = ?", models.StatusDelivered).
		Select("COALESCE(SUM(price), 0)").
		Scan(&totalRevenue).Error
	if err == nil {
		err = ac.DB.Model(&models.Order{}).Where("status <> ?", models.StatusDelivered).Count(&activeOrders).Error
	}
	if err == nil {
		err = ac.DB.Model(&models.Order{}).Where("status = ?", models.StatusDelivered).Count(&completedOrders).Error
	}
	if err == nil {
		err = ac.DB.Model(&models.User{}).Count(&totalUsers).Error
	}

	var recent []recentOrder
	if err == nil {
		err = ac.recentOrders(&recent)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to compute analytics",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"totalRevenue":    totalRevenue,
			"activeOrders":    activeOrders,
			"completedOrders": completedOrders,
			"totalUsers":      totalUsers,
			"recentOrders":    recent,
		},
	})
}

// ListUsers handles GET /api/v1/admin/users - every registered user
func (ac *AdminController) ListUsers(c *gin.Context) {
	var users []models.User
	if err := ac.DB.Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch users",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    users,
	})
}

// UpdateUser handles PUT /api/v1/admin/users/:id - overwrites name,
// email and role. The admin edit is the only path that changes a role.
func (ac *AdminController) UpdateUser(c *gin.Context) {
	var req UpdateUserRequest
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

	if !req.Role.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Unknown role",
			},
		})
		return
	}

	var user models.User
	if err := ac.DB.First(&user, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "USER_NOT_FOUND",
				"message": "User not found",
			},
		})
		return
	}

	updates := map[string]interface{}{
		"name":  req.Name,
		"email": req.Email,
		"role":  req.Role,
	}
	if err := ac.DB.Model(&user).Updates(updates).Error; err != nil {
		errMsg := strings.ToLower(err.Error())
		if strings.Contains(errMsg, "duplicate") ||
			strings.Contains(errMsg, "unique constraint") ||
			strings.Contains(errMsg, "unique") {
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "EMAIL_EXISTS",
					"message": "A user with this email already exists",
				},
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update user",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
	})
}

// DeleteUser handles DELETE /api/v1/admin/users/:id. Orders, comments
// and notifications that reference the user are left in place; readers
// tolerate the dangling references.
func (ac *AdminController) DeleteUser(c *gin.Context) {
	var user models.User
	if err := ac.DB.First(&user, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "USER_NOT_FOUND",
				"message": "User not found",
			},
		})
		return
	}

	if err := ac.DB.Delete(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to delete user",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
	})
}

// UpdateOrder handles PUT /api/v1/admin/orders/:id - full overwrite of
// the order's fields. Always appends a timeline entry, whether or not
// the status actually changed. The admin edit may set any status
// directly (administrative override of the lifecycle ordering).
func (ac *AdminController) UpdateOrder(c *gin.Context) {
	var req UpdateOrderRequest
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

	var dueDate *time.Time
	if req.DueDate != nil && *req.DueDate != "" {
		parsed, err := parseDueDate(*req.DueDate)
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

	var order models.Order
	if err := ac.DB.First(&order, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ORDER_NOT_FOUND",
				"message": "Order not found",
			},
		})
		return
	}

	err := ac.DB.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"title":          req.Title,
			"description":    req.Description,
			"price":          req.Price,
			"status":         req.Status,
			"page_count":     req.PageCount,
			"price_per_page": req.PricePerPage,
			"due_date":       dueDate,
		}
		if err := tx.Model(&order).Updates(updates).Error; err != nil {
			return err
		}
		update := models.StatusUpdate{
			OrderID: order.ID,
			Status:  req.Status,
			Message: "Order updated by Admin",
		}
		return tx.Create(&update).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update order",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
	})
}

// DeleteOrder handles DELETE /api/v1/admin/orders/:id - removes the
// timeline rows, then the order, in one transaction. There is no
// cascade at the schema level.
func (ac *AdminController) DeleteOrder(c *gin.Context) {
	var order models.Order
	if err := ac.DB.First(&order, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ORDER_NOT_FOUND",
				"message": "Order not found",
			},
		})
		return
	}

	err := ac.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", order.ID).Delete(&models.StatusUpdate{}).Error; err != nil {
			return err
		}
		return tx.Delete(&order).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to delete order",
			},
		})
		return
	}

	// Remove the stored attachment after the rows are gone. A failure
	// here only leaves an orphaned file behind, so it is logged, not
	// surfaced.
	if order.FilePath != nil {
		if err := ac.Attachments.Delete(*order.FilePath); err != nil {
			log.Printf("failed to delete attachment %s: %v", *order.FilePath, err)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
	})
}

// Assign handles POST /api/v1/admin/assign - sets the writer and
// delivery agent, forces status to assigned, and notifies all three
// parties.
func (ac *AdminController) Assign(c *gin.Context) {
	var req AssignRequest
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
	if err := ac.DB.First(&order, req.OrderID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ORDER_NOT_FOUND",
				"message": "Order not found",
			},
		})
		return
	}

	err := ac.DB.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"writer_id":   req.WriterID,
			"delivery_id": req.DeliveryID,
			"status":      models.StatusAssigned,
		}
		if err := tx.Model(&order).Updates(updates).Error; err != nil {
			return err
		}
		update := models.StatusUpdate{
			OrderID: order.ID,
			Status:  models.StatusAssigned,
			Message: "Writer and Delivery Agent assigned",
		}
		if err := tx.Create(&update).Error; err != nil {
			return err
		}
		return ac.Notifier.Publish(tx, services.OrderAssigned{
			OrderID:    order.ID,
			Title:      order.Title,
			StudentID:  order.StudentID,
			WriterID:   req.WriterID,
			DeliveryID: req.DeliveryID,
		})
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to assign order",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
	})
}

// recentOrders loads the five newest orders with their student's name
func (ac *AdminController) recentOrders(dest *[]recentOrder) error {
	return ac.DB.Model(&models.Order{}).
		Select("orders.title, orders.price, users.name AS student_name").
		Joins("JOIN users ON users.id = orders.student_id").
		Order("orders.created_at DESC").
		Limit(5).
		Scan(dest).Error
}
