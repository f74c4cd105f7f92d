package repository

import (
	"context"
	"errors"

	"trip-planner/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateScheduleEntry creates a schedule entry
func (r *Repository) CreateScheduleEntry(ctx context.Context, entry *models.ScheduleEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// GetScheduleEntryByID retrieves a schedule entry by ID
func (r *Repository) GetScheduleEntryByID(ctx context.Context, entryID uuid.UUID) (*models.ScheduleEntry, error) {
	var entry models.ScheduleEntry
	err := r.db.WithContext(ctx).Where("id = ?", entryID).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// GetTripSchedule retrieves all confirmed entries for a trip ordered by
// start time
func (r *Repository) GetTripSchedule(ctx context.Context, tripID uuid.UUID) ([]*models.ScheduleEntry, error) {
	var entries []*models.ScheduleEntry
	err := r.db.WithContext(ctx).
		Where("trip_id = ? AND status = ?", tripID, models.ScheduleEntryStatusConfirmed).
		Order("start_time ASC").
		Find(&entries).Error
	return entries, err
}

// GetEntryInvites retrieves all invites for a schedule entry
func (r *Repository) GetEntryInvites(ctx context.Context, entryID uuid.UUID) ([]models.Invite, error) {
	var invites []models.Invite
	err := r.db.WithContext(ctx).
		Where("item_id = ?", entryID).
		Order("created_at ASC").
		Find(&invites).Error
	return invites, err
}

// GetUserInvites retrieves a user's invites across the given entries
func (r *Repository) GetUserInvites(ctx context.Context, userID uint, entryIDs []uuid.UUID) ([]models.Invite, error) {
	if len(entryIDs) == 0 {
		return nil, nil
	}
	var invites []models.Invite
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND item_id IN ?", userID, entryIDs).
		Find(&invites).Error
	return invites, err
}
