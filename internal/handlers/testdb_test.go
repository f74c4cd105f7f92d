package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"trip-planner/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gin.SetMode(gin.TestMode)

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
	user := &models.User{Username: username, Email: username + "@example.com", PasswordHash: "x"}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

func createTestTrip(t *testing.T, db *gorm.DB, creator *models.User, memberIDs ...uint) *models.Trip {
	t.Helper()
	trip := &models.Trip{ID: uuid.New(), Name: "Lisbon 2026", CreatorID: creator.ID}
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

// authedGet builds a GET request context carrying the caller identity
// and the :id path parameter.
func authedGet(userID uint, id string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Params = gin.Params{{Key: "id", Value: id}}
	c.Set("user_id", userID)
	return c, w
}
