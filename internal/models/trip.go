package models

import (
	"time"

	"github.com/google/uuid"
)

type TripMemberRole string

const (
	TripMemberRoleOwner  TripMemberRole = "OWNER"
	TripMemberRoleMember TripMemberRole = "MEMBER"
)

// Trip represents a shared trip that members coordinate around
type Trip struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string     `gorm:"not null;size:255" json:"name"`
	Destination string     `gorm:"size:255" json:"destination"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	CreatorID   uint       `gorm:"not null;index" json:"creator_id"`
	CreatedAt   time.Time  `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Trip) TableName() string {
	return "trips"
}

// TripMember links a user to a trip they participate in
type TripMember struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	TripID    uuid.UUID      `gorm:"type:uuid;not null;index:idx_trip_user,unique" json:"trip_id"`
	UserID    uint           `gorm:"not null;index:idx_trip_user,unique" json:"user_id"`
	Role      TripMemberRole `gorm:"size:50;not null;default:MEMBER" json:"role"`
	CreatedAt time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (TripMember) TableName() string {
	return "trip_members"
}

// CreateTripRequest is the payload for creating a trip
type CreateTripRequest struct {
	Name        string     `json:"name" binding:"required,max=255"`
	Destination string     `json:"destination" binding:"max=255"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
}

// AddMemberRequest is the payload for adding a member to a trip
type AddMemberRequest struct {
	UserID uint `json:"user_id" binding:"required"`
}
