package services

import (
	"testing"
	"time"

	"trip-planner/internal/models"

	"github.com/google/uuid"
)

func entryAt(viewer uint, title string, start time.Time, end *time.Time) *models.ScheduleEntry {
	return &models.ScheduleEntry{
		ID:        uuid.New(),
		TripID:    uuid.New(),
		Kind:      models.ProposalKindActivity,
		CreatedBy: viewer,
		Title:     title,
		StartTime: &start,
		EndTime:   end,
		Status:    models.ScheduleEntryStatusConfirmed,
	}
}

func at(hour, minute int) time.Time {
	return time.Date(2026, 9, 12, hour, minute, 0, 0, time.UTC)
}

func ptr(t time.Time) *time.Time { return &t }

func TestDetectConflictsOverlapAndSymmetry(t *testing.T) {
	viewer := uint(1)

	// 2:00–3:00 and 2:30–4:00 overlap; 5:00–6:00 is clear
	a := entryAt(viewer, "Museum", at(14, 0), ptr(at(15, 0)))
	b := entryAt(viewer, "Lunch", at(14, 30), ptr(at(16, 0)))
	c := entryAt(viewer, "Dinner", at(17, 0), ptr(at(18, 0)))

	conflicts := DetectConflicts(viewer, []*models.ScheduleEntry{a, b, c}, nil)

	if len(conflicts[a.ID]) != 1 || conflicts[a.ID][0].WithID != b.ID {
		t.Errorf("expected A to conflict with B, got %+v", conflicts[a.ID])
	}
	if len(conflicts[b.ID]) != 1 || conflicts[b.ID][0].WithID != a.ID {
		t.Errorf("expected B to conflict with A (symmetry), got %+v", conflicts[b.ID])
	}
	if len(conflicts[c.ID]) != 0 {
		t.Errorf("expected C conflict-free, got %+v", conflicts[c.ID])
	}
}

func TestDetectConflictsDefaultDuration(t *testing.T) {
	viewer := uint(1)

	// No end times: both get the 60-minute default window
	a := entryAt(viewer, "Coffee", at(10, 0), nil)
	b := entryAt(viewer, "Walk", at(10, 30), nil)
	c := entryAt(viewer, "Museum", at(11, 30), nil)

	conflicts := DetectConflicts(viewer, []*models.ScheduleEntry{a, b, c}, nil)

	if len(conflicts[a.ID]) != 1 {
		t.Errorf("expected A/B overlap under default duration, got %+v", conflicts[a.ID])
	}
	if len(conflicts[c.ID]) != 0 {
		t.Errorf("11:30 should clear a 10:30+60m window, got %+v", conflicts[c.ID])
	}
}

func TestDetectConflictsMembership(t *testing.T) {
	viewer := uint(1)
	other := uint(2)

	mine := entryAt(viewer, "Museum", at(14, 0), ptr(at(15, 0)))
	// Created by someone else, viewer accepted
	shared := entryAt(other, "Lunch", at(14, 30), ptr(at(16, 0)))
	// Created by someone else, viewer only pending
	notMine := entryAt(other, "Hike", at(14, 0), ptr(at(16, 0)))

	invites := []models.Invite{
		{ID: uuid.New(), ItemID: shared.ID, UserID: viewer, Status: models.InviteStatusAccepted},
		{ID: uuid.New(), ItemID: notMine.ID, UserID: viewer, Status: models.InviteStatusPending},
	}

	conflicts := DetectConflicts(viewer, []*models.ScheduleEntry{mine, shared, notMine}, invites)

	if len(conflicts[mine.ID]) != 1 || conflicts[mine.ID][0].WithID != shared.ID {
		t.Errorf("expected conflict only with the accepted entry, got %+v", conflicts[mine.ID])
	}
	if len(conflicts[notMine.ID]) != 0 {
		t.Errorf("pending entry must not participate, got %+v", conflicts[notMine.ID])
	}
}

func TestDetectConflictsSkipsUnresolvableAndOtherDays(t *testing.T) {
	viewer := uint(1)

	a := entryAt(viewer, "Museum", at(14, 0), ptr(at(15, 0)))
	noStart := &models.ScheduleEntry{
		ID:        uuid.New(),
		CreatedBy: viewer,
		Title:     "Sometime",
		Status:    models.ScheduleEntryStatusConfirmed,
	}
	nextDay := entryAt(viewer, "Tomorrow", at(14, 0).Add(24*time.Hour), ptr(at(15, 0).Add(24*time.Hour)))

	conflicts := DetectConflicts(viewer, []*models.ScheduleEntry{a, noStart, nextDay}, nil)

	if len(conflicts) != 0 {
		t.Errorf("expected no conflicts, got %+v", conflicts)
	}
}

func TestDetectCandidateConflicts(t *testing.T) {
	viewer := uint(1)

	confirmed := entryAt(viewer, "Museum", at(14, 0), ptr(at(15, 0)))

	// Candidate overlapping the confirmed entry warns
	details := DetectCandidateConflicts(viewer, ptr(at(14, 30)), nil,
		[]*models.ScheduleEntry{confirmed}, nil)
	if len(details) != 1 || !details[0].Candidate {
		t.Fatalf("expected one candidate warning, got %+v", details)
	}

	// Candidate with no start never participates
	if details := DetectCandidateConflicts(viewer, nil, nil,
		[]*models.ScheduleEntry{confirmed}, nil); details != nil {
		t.Errorf("expected nil for candidate without start, got %+v", details)
	}
}
