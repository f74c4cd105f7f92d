package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"trip-planner/internal/models"
	"trip-planner/internal/repository"
	"trip-planner/internal/services"

	"github.com/google/uuid"
)

// DeadlineWatcher notifies proposers when a voting deadline passes.
// Voting itself is already refused past the deadline; the watcher only
// produces the notice.
type DeadlineWatcher struct {
	repo     *repository.Repository
	notifier *services.NotificationService
	interval time.Duration
	stopChan chan struct{}

	// proposals already notified this process lifetime
	seen map[uuid.UUID]bool
}

// NewDeadlineWatcher creates a new deadline watcher job
func NewDeadlineWatcher(
	repo *repository.Repository,
	notifier *services.NotificationService,
	interval time.Duration,
) *DeadlineWatcher {
	return &DeadlineWatcher{
		repo:     repo,
		notifier: notifier,
		interval: interval,
		stopChan: make(chan struct{}),
		seen:     make(map[uuid.UUID]bool),
	}
}

// Start begins the watch loop
func (dw *DeadlineWatcher) Start() {
	log.Printf("[DeadlineWatcher] Starting deadline watch job (interval: %v)", dw.interval)

	ticker := time.NewTicker(dw.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			dw.notifyExpiredDeadlines()
		case <-dw.stopChan:
			log.Println("[DeadlineWatcher] Stopping deadline watch job")
			return
		}
	}
}

// Stop stops the watch loop
func (dw *DeadlineWatcher) Stop() {
	close(dw.stopChan)
}

// notifyExpiredDeadlines finds active proposals past their deadline and
// notifies each proposer once
func (dw *DeadlineWatcher) notifyExpiredDeadlines() {
	ctx := context.Background()

	proposals, err := dw.repo.GetProposalsPastDeadline(ctx, time.Now(), 100)
	if err != nil {
		log.Printf("[DeadlineWatcher] Error fetching proposals: %v", err)
		return
	}

	for _, proposal := range proposals {
		if dw.seen[proposal.ID] {
			continue
		}
		dw.seen[proposal.ID] = true

		dw.notifier.Notify(ctx, proposal.ProposedBy, models.NotificationKindDeadlinePassed,
			fmt.Sprintf("Voting closed on %q — time to decide", proposal.Name), &proposal.ID)

		log.Printf("[DeadlineWatcher] Deadline passed for proposal %s", proposal.ID)
	}
}
