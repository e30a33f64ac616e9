package services

import (
	"fmt"
	"sync"
	"time"

	"github.com/inkwell-labs/inkwell-api/models"
	"gorm.io/gorm"
)

const (
	// NotificationPageSize bounds how many notices a single read returns
	NotificationPageSize = 20
	// CommentPreviewLength is how much of a comment lands in the notice
	CommentPreviewLength = 50
	// DeadlineWindow is how far ahead the deadline sweep looks
	DeadlineWindow = 24 * time.Hour
)

// NotificationService turns domain events into stored per-user notices
// and owns the notification read path, including the deadline sweep.
type NotificationService struct {
	// sweepMu serializes the check-then-insert in SweepDeadlines so two
	// concurrent polls by the same user cannot both pass the duplicate
	// check and insert the same notice twice.
	sweepMu sync.Mutex
}

// NewNotificationService creates a NotificationService
func NewNotificationService() *NotificationService {
	return &NotificationService{}
}

// Publish writes the notification rows derived from the given events.
// Callers pass their open transaction so the notices commit atomically
// with the mutation that produced them.
func (s *NotificationService) Publish(tx *gorm.DB, events ...Event) error {
	for _, event := range events {
		var err error
		switch e := event.(type) {
		case OrderCreated:
			err = s.orderCreated(tx, e)
		case OrderAssigned:
			err = s.orderAssigned(tx, e)
		case CommentAdded:
			err = s.commentAdded(tx, e)
		case StatusChanged:
			err = s.statusChanged(tx, e)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Notify appends a single notification row for a user
func (s *NotificationService) Notify(tx *gorm.DB, userID uint, message string) error {
	notification := models.Notification{
		UserID:  userID,
		Message: message,
	}
	return tx.Create(&notification).Error
}

func (s *NotificationService) orderCreated(tx *gorm.DB, e OrderCreated) error {
	var admins []models.User
	if err := tx.Where("role = ?", models.RoleAdmin).Find(&admins).Error; err != nil {
		return err
	}
	for _, admin := range admins {
		msg := fmt.Sprintf("New order #%d received: %s", e.OrderID, e.Title)
		if err := s.Notify(tx, admin.ID, msg); err != nil {
			return err
		}
	}
	return nil
}

func (s *NotificationService) orderAssigned(tx *gorm.DB, e OrderAssigned) error {
	studentMsg := fmt.Sprintf("Your order #%d %q has been assigned to a writer.", e.OrderID, e.Title)
	if err := s.Notify(tx, e.StudentID, studentMsg); err != nil {
		return err
	}
	writerMsg := fmt.Sprintf("You have been assigned a new writing task: #%d", e.OrderID)
	if err := s.Notify(tx, e.WriterID, writerMsg); err != nil {
		return err
	}
	deliveryMsg := fmt.Sprintf("New delivery assigned: #%d", e.OrderID)
	return s.Notify(tx, e.DeliveryID, deliveryMsg)
}

func (s *NotificationService) commentAdded(tx *gorm.DB, e CommentAdded) error {
	// Recipients are the student and writer on the order, minus the
	// author, plus all admins when the author is not one of them.
	recipients := make(map[uint]bool)
	if e.StudentID != e.AuthorID {
		recipients[e.StudentID] = true
	}
	if e.WriterID != nil && *e.WriterID != e.AuthorID {
		recipients[*e.WriterID] = true
	}
	if e.AuthorRole != models.RoleAdmin {
		var admins []models.User
		if err := tx.Where("role = ?", models.RoleAdmin).Find(&admins).Error; err != nil {
			return err
		}
		for _, admin := range admins {
			recipients[admin.ID] = true
		}
	}

	msg := fmt.Sprintf("New message on order #%d %q: %s...", e.OrderID, e.Title, previewText(e.Text))
	for userID := range recipients {
		if err := s.Notify(tx, userID, msg); err != nil {
			return err
		}
	}
	return nil
}

func (s *NotificationService) statusChanged(tx *gorm.DB, e StatusChanged) error {
	msg := fmt.Sprintf("Update on order #%d: %s", e.OrderID, e.Message)
	return s.Notify(tx, e.StudentID, msg)
}

// SweepDeadlines synthesizes "deadline approaching" notices for the
// user's undelivered orders due within the next 24 hours. A notice is
// skipped when one with an identical message already exists for the
// user, so polling the notification list never duplicates them.
func (s *NotificationService) SweepDeadlines(db *gorm.DB, userID uint) error {
	s.sweepMu.Lock()
	defer s.sweepMu.Unlock()

	now := time.Now()
	var upcoming []models.Order
	if err := db.
		Where("(student_id = ? OR writer_id = ?)", userID, userID).
		Where("status <> ?", models.StatusDelivered).
		Where("due_date IS NOT NULL AND due_date > ? AND due_date < ?", now, now.Add(DeadlineWindow)).
		Find(&upcoming).Error; err != nil {
		return err
	}

	for _, order := range upcoming {
		msg := fmt.Sprintf("Deadline approaching for order #%d: %s (Due: %s)",
			order.ID, order.Title, order.DueDate.Format("2006-01-02 15:04"))

		var count int64
		if err := db.Model(&models.Notification{}).
			Where("user_id = ? AND message = ?", userID, msg).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		if err := s.Notify(db, userID, msg); err != nil {
			return err
		}
	}
	return nil
}

// ListForUser returns the user's newest notifications, most recent
// first, capped at NotificationPageSize.
func (s *NotificationService) ListForUser(db *gorm.DB, userID uint) ([]models.Notification, error) {
	var notifications []models.Notification
	err := db.
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(NotificationPageSize).
		Find(&notifications).Error
	return notifications, err
}

// MarkAllRead flips every unread notification owned by the user
func (s *NotificationService) MarkAllRead(db *gorm.DB, userID uint) error {
	return db.Model(&models.Notification{}).
		Where("user_id = ?", userID).
		Update("is_read", true).Error
}

// previewText returns the first CommentPreviewLength characters of text
func previewText(text string) string {
	runes := []rune(text)
	if len(runes) > CommentPreviewLength {
		runes = runes[:CommentPreviewLength]
	}
	return string(runes)
}
