package models

import (
	"time"

	"gorm.io/gorm"
)

// DefaultPricePerPage is the rate applied to new orders
const DefaultPricePerPage = 40.0

// Order represents a handwriting-transcription assignment submitted by a student
type Order struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	StudentID    uint           `gorm:"not null;index" json:"student_id"` // foreign key to users table
	Student      User           `gorm:"foreignKey:StudentID" json:"-"`
	WriterID     *uint          `gorm:"index" json:"writer_id"` // nullable, set by admin assignment
	Writer       *User          `gorm:"foreignKey:WriterID" json:"-"`
	DeliveryID   *uint          `gorm:"index" json:"delivery_id"` // nullable, set by admin assignment
	Delivery     *User          `gorm:"foreignKey:DeliveryID" json:"-"`
	Title        string         `gorm:"not null" json:"title"`
	Description  string         `json:"description"`
	FilePath     *string        `json:"file_path"` // attachment key, nullable
	PageCount    int            `gorm:"not null;default:1" json:"page_count"`
	PricePerPage float64        `gorm:"not null;default:40" json:"price_per_page"`
	Price        float64        `gorm:"not null;default:0" json:"price"` // page_count * price_per_page
	Status       Status         `gorm:"not null;default:'pending'" json:"status"`
	DueDate      *time.Time     `json:"due_date"` // nullable
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}
