package services

import (
	"context"
	"log"

	"trip-planner/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationService records fire-and-forget notices. Failures are
// logged and swallowed so they never roll back the state transition
// that triggered them.
type NotificationService struct {
	db *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

// Notify persists a notice for one user
func (ns *NotificationService) Notify(
	ctx context.Context,
	userID uint,
	kind models.NotificationKind,
	message string,
	itemID *uuid.UUID,
) {
	notification := &models.Notification{
		ID:      uuid.New(),
		UserID:  userID,
		Kind:    kind,
		Message: message,
		ItemID:  itemID,
	}
	if err := ns.db.WithContext(ctx).Create(notification).Error; err != nil {
		log.Printf("[Notify] Failed to record %s notice for user %d: %v", kind, userID, err)
	}
}

// NotifyAll persists the same notice for a set of users
func (ns *NotificationService) NotifyAll(
	ctx context.Context,
	userIDs []uint,
	kind models.NotificationKind,
	message string,
	itemID *uuid.UUID,
) {
	for _, userID := range userIDs {
		ns.Notify(ctx, userID, kind, message, itemID)
	}
}

// GetUnread returns a user's unread notices, newest first
func (ns *NotificationService) GetUnread(ctx context.Context, userID uint) ([]models.Notification, error) {
	var notifications []models.Notification
	err := ns.db.WithContext(ctx).
		Where("user_id = ? AND read_at IS NULL", userID).
		Order("created_at DESC").
		Find(&notifications).Error
	return notifications, err
}
