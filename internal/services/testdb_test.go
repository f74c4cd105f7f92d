package services

import (
	"testing"
	"time"

	"trip-planner/internal/models"
	"trip-planner/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Trip{},
		&models.TripMember{},
		&models.Proposal{},
		&models.Rank{},
		&models.ScheduleEntry{},
		&models.Invite{},
		&models.Notification{},
	)
	if err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", username, err)
	}
	return user
}

func createTestTrip(t *testing.T, db *gorm.DB, creator *models.User, memberIDs ...uint) *models.Trip {
	t.Helper()
	trip := &models.Trip{
		ID:        uuid.New(),
		Name:      "Lisbon 2026",
		CreatorID: creator.ID,
	}
	if err := db.Create(trip).Error; err != nil {
		t.Fatalf("failed to create trip: %v", err)
	}
	ids := append([]uint{creator.ID}, memberIDs...)
	for i, id := range ids {
		role := models.TripMemberRoleMember
		if i == 0 {
			role = models.TripMemberRoleOwner
		}
		member := &models.TripMember{ID: uuid.New(), TripID: trip.ID, UserID: id, Role: role}
		if err := db.Create(member).Error; err != nil {
			t.Fatalf("failed to create trip member: %v", err)
		}
	}
	return trip
}

func createTestProposal(t *testing.T, db *gorm.DB, trip *models.Trip, proposer uint, kind models.ProposalKind, name string) *models.Proposal {
	t.Helper()
	start := time.Now().Add(48 * time.Hour)
	proposal := &models.Proposal{
		ID:         uuid.New(),
		TripID:     trip.ID,
		Kind:       kind,
		ProposedBy: proposer,
		Status:     models.ProposalStatusActive,
		Name:       name,
		Currency:   "USD",
		StartTime:  &start,
	}
	if err := db.Create(proposal).Error; err != nil {
		t.Fatalf("failed to create proposal %s: %v", name, err)
	}
	return proposal
}

func newTestProposalService(db *gorm.DB) *ProposalService {
	repo := repository.NewRepository(db)
	return NewProposalService(repo, NewVotingService(db), NewNotificationService(db))
}
