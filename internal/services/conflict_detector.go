package services

import (
	"time"

	"trip-planner/internal/models"
	"trip-planner/internal/timeutil"

	"github.com/google/uuid"
)

// ConflictDetector relates a viewer's confirmed calendar items and
// reports pairwise time overlaps. It is pure: it never touches storage
// and never errors — items without a resolvable start are skipped.

// conflictItem is one entry resolved to its effective window.
type conflictItem struct {
	entry *models.ScheduleEntry
	start time.Time
	end   time.Time
}

// DetectConflicts reports, for every confirmed entry belonging to the
// viewer, the other same-day confirmed entries whose effective windows
// overlap. An entry belongs to the viewer when they created it or hold
// an accepted invite. Symmetric: A conflicting with B implies B
// conflicting with A.
func DetectConflicts(
	viewerID uint,
	entries []*models.ScheduleEntry,
	invites []models.Invite,
) map[uuid.UUID][]models.ConflictDetail {
	confirmed := viewerItems(viewerID, entries, invites)

	conflicts := make(map[uuid.UUID][]models.ConflictDetail)
	for i := 0; i < len(confirmed); i++ {
		for j := i + 1; j < len(confirmed); j++ {
			a, b := confirmed[i], confirmed[j]
			if !timeutil.SameDay(a.start, b.start) {
				continue
			}
			if !timeutil.Overlaps(a.start, a.end, b.start, b.end) {
				continue
			}
			conflicts[a.entry.ID] = append(conflicts[a.entry.ID], detail(b, false))
			conflicts[b.entry.ID] = append(conflicts[b.entry.ID], detail(a, false))
		}
	}
	return conflicts
}

// DetectCandidateConflicts checks a not-yet-confirmed item (a pending
// RSVP or an active proposal) against the viewer's confirmed set.
// Candidates only warn — they are never checked against each other.
func DetectCandidateConflicts(
	viewerID uint,
	candidateStart, candidateEnd *time.Time,
	entries []*models.ScheduleEntry,
	invites []models.Invite,
) []models.ConflictDetail {
	start, end, ok := timeutil.EffectiveWindow(candidateStart, candidateEnd)
	if !ok {
		return nil
	}

	var details []models.ConflictDetail
	for _, item := range viewerItems(viewerID, entries, invites) {
		if !timeutil.SameDay(start, item.start) {
			continue
		}
		if timeutil.Overlaps(start, end, item.start, item.end) {
			details = append(details, detail(item, true))
		}
	}
	return details
}

// viewerItems filters to the viewer's confirmed entries with a
// resolvable time window.
func viewerItems(
	viewerID uint,
	entries []*models.ScheduleEntry,
	invites []models.Invite,
) []conflictItem {
	accepted := make(map[uuid.UUID]bool)
	for _, inv := range invites {
		if inv.UserID == viewerID && inv.Status == models.InviteStatusAccepted {
			accepted[inv.ItemID] = true
		}
	}

	var items []conflictItem
	for _, entry := range entries {
		if entry.Status != models.ScheduleEntryStatusConfirmed {
			continue
		}
		if entry.CreatedBy != viewerID && !accepted[entry.ID] {
			continue
		}
		start, end, ok := timeutil.EffectiveWindow(entry.StartTime, entry.EndTime)
		if !ok {
			continue
		}
		items = append(items, conflictItem{entry: entry, start: start, end: end})
	}
	return items
}

func detail(item conflictItem, candidate bool) models.ConflictDetail {
	return models.ConflictDetail{
		WithID:    item.entry.ID,
		WithTitle: item.entry.Title,
		Start:     item.start,
		End:       item.end,
		Candidate: candidate,
	}
}
