package repository

import (
	"context"
	"errors"

	"trip-planner/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// DB exposes the underlying handle for services that manage their own
// transactions.
func (r *Repository) DB() *gorm.DB {
	return r.db
}

// GetUserByID retrieves a user by ID
func (r *Repository) GetUserByID(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetTripByID retrieves a trip by ID
func (r *Repository) GetTripByID(ctx context.Context, tripID uuid.UUID) (*models.Trip, error) {
	var trip models.Trip
	err := r.db.WithContext(ctx).Where("id = ?", tripID).First(&trip).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &trip, nil
}

// CreateTrip creates a trip and its owner membership in one transaction
func (r *Repository) CreateTrip(ctx context.Context, trip *models.Trip) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(trip).Error; err != nil {
			return err
		}
		member := &models.TripMember{
			ID:     uuid.New(),
			TripID: trip.ID,
			UserID: trip.CreatorID,
			Role:   models.TripMemberRoleOwner,
		}
		return tx.Create(member).Error
	})
}

// AddTripMember adds a user to a trip
func (r *Repository) AddTripMember(ctx context.Context, member *models.TripMember) error {
	return r.db.WithContext(ctx).Create(member).Error
}

// IsTripMember reports whether the user belongs to the trip
func (r *Repository) IsTripMember(ctx context.Context, tripID uuid.UUID, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.TripMember{}).
		Where("trip_id = ? AND user_id = ?", tripID, userID).
		Count(&count).Error
	return count > 0, err
}

// GetTripMembers retrieves all members of a trip
func (r *Repository) GetTripMembers(ctx context.Context, tripID uuid.UUID) ([]models.TripMember, error) {
	var members []models.TripMember
	err := r.db.WithContext(ctx).
		Where("trip_id = ?", tripID).
		Order("created_at ASC").
		Find(&members).Error
	return members, err
}
