package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"trip-planner/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InviteService runs the per-(item, attendee) RSVP state machine,
// including the capacity check and waitlist promotion.
type InviteService struct {
	db       *gorm.DB
	notifier *NotificationService
}

func NewInviteService(db *gorm.DB, notifier *NotificationService) *InviteService {
	return &InviteService{db: db, notifier: notifier}
}

// Respond applies an attendee's action to their invite. ACCEPT on a
// full item downgrades to WAITLISTED (reported via the result flag, not
// an error). A decline that frees an accepted seat promotes the
// longest-waiting waitlisted invite in the same transaction.
func (is *InviteService) Respond(
	ctx context.Context,
	itemID uuid.UUID,
	userID uint,
	action models.InviteAction,
) (*models.InviteUpdateResult, error) {
	target, err := targetStatus(action)
	if err != nil {
		return nil, err
	}

	var entry models.ScheduleEntry
	err = is.db.WithContext(ctx).Where("id = ?", itemID).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: item %s", models.ErrNotFound, itemID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}

	if entry.Status != models.ScheduleEntryStatusConfirmed {
		return nil, fmt.Errorf("%w: item is %s", models.ErrItemNoLongerOpen, entry.Status)
	}
	if entry.EndTime != nil && time.Now().After(*entry.EndTime) {
		return nil, fmt.Errorf("%w: item is in the past", models.ErrItemNoLongerOpen)
	}

	result := &models.InviteUpdateResult{}

	err = is.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var invite models.Invite
		findErr := tx.Where("item_id = ? AND user_id = ?", itemID, userID).
			First(&invite).Error
		if errors.Is(findErr, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: user %d on item %s", models.ErrNotInvited, userID, itemID)
		}
		if findErr != nil {
			return findErr
		}

		if invite.IsCreator {
			return fmt.Errorf("%w: creator invite is not editable", models.ErrPermission)
		}

		// Re-submitting the current status is a no-op, not an error
		if invite.Status == target {
			result.Invite = &invite
			return nil
		}

		wasAccepted := invite.Status == models.InviteStatusAccepted
		now := time.Now()

		if target == models.InviteStatusAccepted && entry.Capacity != nil {
			var accepted int64
			if err := tx.Model(&models.Invite{}).
				Where("item_id = ? AND status = ?", itemID, models.InviteStatusAccepted).
				Count(&accepted).Error; err != nil {
				return err
			}
			if accepted >= int64(*entry.Capacity) {
				target = models.InviteStatusWaitlisted
				result.Waitlisted = true
			}
		}

		// A waitlisted attendee pressing ACCEPT on a still-full item
		// stays where they are; rewriting waitlisted_at would push them
		// behind later arrivals
		if invite.Status == target {
			result.Invite = &invite
			return nil
		}

		invite.Status = target
		invite.RespondedAt = &now
		if target == models.InviteStatusWaitlisted {
			invite.WaitlistedAt = &now
		} else {
			invite.WaitlistedAt = nil
		}
		if err := tx.Save(&invite).Error; err != nil {
			return err
		}

		// Freeing an accepted seat on a capacity-limited item promotes
		// the longest-waiting waitlisted invite
		if wasAccepted && entry.Capacity != nil {
			promoted, err := promoteNextWaitlisted(tx, itemID)
			if err != nil {
				return err
			}
			if promoted != nil {
				result.PromotedUserID = &promoted.UserID
			}
		}

		result.Invite = &invite
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.PromotedUserID != nil {
		is.notifier.Notify(ctx, *result.PromotedUserID, models.NotificationKindPromoted,
			fmt.Sprintf("A spot opened up for %s — you're in!", entry.Title), &entry.ID)
	}

	log.Printf("[Respond] User %d action %s on item %s -> %s",
		userID, action, itemID, result.Invite.Status)

	return result, nil
}

// promoteNextWaitlisted moves the oldest waitlisted invite to accepted.
// Returns nil when the waitlist is empty.
func promoteNextWaitlisted(tx *gorm.DB, itemID uuid.UUID) (*models.Invite, error) {
	var next models.Invite
	err := tx.Where("item_id = ? AND status = ?", itemID, models.InviteStatusWaitlisted).
		Order("waitlisted_at ASC").
		First(&next).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	now := time.Now()
	next.Status = models.InviteStatusAccepted
	next.WaitlistedAt = nil
	next.RespondedAt = &now
	if err := tx.Save(&next).Error; err != nil {
		return nil, err
	}
	return &next, nil
}

// targetStatus maps an attendee action onto the state machine's target
// status. MAYBE resets to pending.
func targetStatus(action models.InviteAction) (models.InviteStatus, error) {
	switch action {
	case models.InviteActionAccept:
		return models.InviteStatusAccepted, nil
	case models.InviteActionDecline:
		return models.InviteStatusDeclined, nil
	case models.InviteActionWaitlist:
		return models.InviteStatusWaitlisted, nil
	case models.InviteActionMaybe:
		return models.InviteStatusPending, nil
	default:
		return "", fmt.Errorf("%w: unknown action %q", models.ErrValidation, action)
	}
}

// ApplyResponseLocally computes the invite status Respond would
// produce, over an in-memory slice. Used by the optimistic coordinator
// for speculative cache updates; capacity downgrades are resolved
// against the cached attendee set.
func ApplyResponseLocally(invites []models.Invite, itemID uuid.UUID, userID uint, action models.InviteAction, capacity *int) []models.Invite {
	target, err := targetStatus(action)
	if err != nil {
		return invites
	}

	if target == models.InviteStatusAccepted && capacity != nil {
		accepted := 0
		for _, inv := range invites {
			if inv.ItemID == itemID && inv.Status == models.InviteStatusAccepted && inv.UserID != userID {
				accepted++
			}
		}
		if accepted >= *capacity {
			target = models.InviteStatusWaitlisted
		}
	}

	now := time.Now()
	out := make([]models.Invite, len(invites))
	copy(out, invites)
	for i := range out {
		if out[i].ItemID == itemID && out[i].UserID == userID && !out[i].IsCreator {
			out[i].Status = target
			out[i].RespondedAt = &now
		}
	}
	return out
}
