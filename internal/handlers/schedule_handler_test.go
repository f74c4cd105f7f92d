package handlers

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"trip-planner/internal/models"
	"trip-planner/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func createTestEntry(t *testing.T, db *gorm.DB, tripID uuid.UUID, creator uint, title string, start, end time.Time) *models.ScheduleEntry {
	t.Helper()
	entry := &models.ScheduleEntry{
		ID:        uuid.New(),
		TripID:    tripID,
		Kind:      models.ProposalKindActivity,
		CreatedBy: creator,
		Title:     title,
		Currency:  "USD",
		StartTime: &start,
		EndTime:   &end,
		Status:    models.ScheduleEntryStatusConfirmed,
	}
	if err := db.Create(entry).Error; err != nil {
		t.Fatalf("failed to create entry %s: %v", title, err)
	}
	return entry
}

func TestGetSchedulePendingInviteWarnsAgainstConfirmed(t *testing.T) {
	db := setupTestDB(t)

	viewer := createTestUser(t, db, "ana")
	other := createTestUser(t, db, "ben")
	trip := createTestTrip(t, db, viewer, other.ID)

	day := time.Date(2026, 7, 12, 0, 0, 0, 0, time.UTC)
	mine := createTestEntry(t, db, trip.ID, viewer.ID, "Tram tour",
		day.Add(10*time.Hour), day.Add(11*time.Hour))
	pending := createTestEntry(t, db, trip.ID, other.ID, "Wine tasting",
		day.Add(10*time.Hour+30*time.Minute), day.Add(11*time.Hour+30*time.Minute))

	invite := &models.Invite{
		ID:       uuid.New(),
		ItemID:   pending.ID,
		ItemKind: pending.Kind,
		UserID:   viewer.ID,
		Status:   models.InviteStatusPending,
	}
	if err := db.Create(invite).Error; err != nil {
		t.Fatalf("failed to create invite: %v", err)
	}

	handler := NewScheduleHandler(repository.NewRepository(db))

	c, w := authedGet(viewer.ID, trip.ID.String())
	handler.GetSchedule(c)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var views []*models.ScheduleEntryView
	if err := json.Unmarshal(w.Body.Bytes(), &views); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	byID := make(map[uuid.UUID]*models.ScheduleEntryView, len(views))
	for _, view := range views {
		byID[view.Entry.ID] = view
	}

	pendingView := byID[pending.ID]
	if pendingView == nil {
		t.Fatal("pending entry missing from schedule")
	}
	if len(pendingView.Conflicts) != 1 {
		t.Fatalf("expected one candidate warning, got %+v", pendingView.Conflicts)
	}
	warning := pendingView.Conflicts[0]
	if warning.WithID != mine.ID || !warning.Candidate {
		t.Errorf("expected candidate warning against %s, got %+v", mine.ID, warning)
	}

	// The single confirmed item has nothing to conflict with
	if mineView := byID[mine.ID]; mineView == nil || len(mineView.Conflicts) != 0 {
		t.Errorf("confirmed entry should carry no conflicts, got %+v", byID[mine.ID])
	}
}
