package services

import "github.com/inkwell-labs/inkwell-api/models"

// Event is something that happened to an order. Mutating operations
// emit events; the Notifier decides who gets told about them. Keeping
// the two apart means the fan-out rules can be tested on their own.
type Event interface {
	isEvent()
}

// OrderCreated fires when a student places a new order
type OrderCreated struct {
	OrderID uint
	Title   string
}

// OrderAssigned fires when an admin assigns a writer and delivery agent
type OrderAssigned struct {
	OrderID    uint
	Title      string
	StudentID  uint
	WriterID   uint
	DeliveryID uint
}

// CommentAdded fires when someone posts on an order's discussion thread
type CommentAdded struct {
	OrderID    uint
	Title      string
	AuthorID   uint
	AuthorRole models.Role
	StudentID  uint
	WriterID   *uint
	Text       string
}

// StatusChanged fires when an order moves through its lifecycle
type StatusChanged struct {
	OrderID   uint
	StudentID uint
	Message   string
}

func (OrderCreated) isEvent()  {}
func (OrderAssigned) isEvent() {}
func (CommentAdded) isEvent()  {}
func (StatusChanged) isEvent() {}
