package models

import "time"

// StatusUpdate is one entry in an order's append-only status timeline.
// Rows are only ever inserted, and removed as a unit when the owning
// order is deleted.
type StatusUpdate struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OrderID   uint      `gorm:"not null;index" json:"order_id"` // foreign key to orders table
	Order     Order     `gorm:"foreignKey:OrderID" json:"-"`
	Status    Status    `gorm:"not null" json:"status"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for the StatusUpdate model
func (StatusUpdate) TableName() string {
	return "status_updates"
}
