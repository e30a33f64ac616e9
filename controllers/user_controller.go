package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/inkwell-labs/inkwell-api/middleware"
	"github.com/inkwell-labs/inkwell-api/models"
	"gorm.io/gorm"
)

// WriterEarningsShare is the cut a writer keeps of a delivered order
const WriterEarningsShare = 0.7

// DeliveryFlatFee is what a delivery agent earns per delivered order
const DeliveryFlatFee = 30.0

// UserController handles user lookups and role-specific earnings
type UserController struct {
	DB *gorm.DB
}

// NewUserController creates a UserController
func NewUserController(db *gorm.DB) *UserController {
	return &UserController{DB: db}
}

// UserSummary is the id+name pair the assignment forms consume
type UserSummary struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// ListUsersByRole handles GET /api/v1/users/role/:role - id+name pairs
// for every user holding the role. Available to any authenticated user
// because assignment forms need writer and delivery rosters.
func (uc *UserController) ListUsersByRole(c *gin.Context) {
	role := models.Role(c.Param("role"))
	if !role.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Unknown role",
			},
		})
		return
	}

	var users []UserSummary
	if err := uc.DB.Model(&models.User{}).
		Where("role = ?", role).
		Select("id, name").
		Scan(&users).Error; err != nil {
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

// Earnings handles GET /api/v1/earnings - role-specific totals.
// Writers earn 70% of the price of each delivered order; delivery
// agents earn a flat fee per delivered order. No other role earns.
func (uc *UserController) Earnings(c *gin.Context) {
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

	if !models.CanPerform(identity.Role, models.ActionViewEarnings) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_APPLICABLE",
				"message": "Earnings are not applicable to this role",
			},
		})
		return
	}

	var total float64
	switch identity.Role {
	case models.RoleWriter:
		err = uc.DB.Model(&models.Order{}).
			Where("writer_id = ? AND status = ?", identity.ID, models.StatusDelivered).
			Select("COALESCE(SUM(price * ?), 0)", WriterEarningsShare).
			Scan(&total).Error
	case models.RoleDelivery:
		var delivered int64
		err = uc.DB.Model(&models.Order{}).
			Where("delivery_id = ? AND status = ?", identity.ID, models.StatusDelivered).
			Count(&delivered).Error
		total = float64(delivered) * DeliveryFlatFee
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to compute earnings",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"total": total,
		},
	})
}
