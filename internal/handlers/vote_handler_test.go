package handlers

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"trip-planner/internal/models"
	"trip-planner/internal/optimistic"
	"trip-planner/internal/repository"
	"trip-planner/internal/services"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func newVoteTestHandler(db *gorm.DB) (*VoteHandler, *optimistic.Coordinator) {
	repo := repository.NewRepository(db)
	voting := services.NewVotingService(db)
	proposals := services.NewProposalService(repo, voting, services.NewNotificationService(db))
	coordinator := optimistic.NewCoordinator(optimistic.NewViewCache())
	return NewVoteHandler(voting, proposals, coordinator), coordinator
}

func TestGetRankingsServesCachedRankView(t *testing.T) {
	db := setupTestDB(t)

	voter := createTestUser(t, db, "ana")
	trip := createTestTrip(t, db, voter)

	proposal := &models.Proposal{
		ID:         uuid.New(),
		TripID:     trip.ID,
		Kind:       models.ProposalKindActivity,
		ProposedBy: voter.ID,
		Status:     models.ProposalStatusActive,
		Name:       "Surf lesson",
		Currency:   "USD",
	}
	if err := db.Create(proposal).Error; err != nil {
		t.Fatalf("failed to create proposal: %v", err)
	}
	rank := &models.Rank{
		ID:         uuid.New(),
		ProposalID: proposal.ID,
		VoterID:    voter.ID,
		TripID:     trip.ID,
		Kind:       proposal.Kind,
		Value:      2,
		UpdatedAt:  time.Now(),
	}
	if err := db.Create(rank).Error; err != nil {
		t.Fatalf("failed to create rank: %v", err)
	}

	handler, coordinator := newVoteTestHandler(db)

	// First read materializes the rank view in the shared cache
	c, w := authedGet(voter.ID, proposal.ID.String())
	handler.GetRankings(c)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	ranksKey := proposalRanksKey(proposal.ID)
	var cached []models.Rank
	if !coordinator.Cache().Get(ranksKey, &cached) {
		t.Fatal("rank view not cached after read")
	}
	if len(cached) != 1 || cached[0].Value != 2 {
		t.Fatalf("unexpected cached ranks: %+v", cached)
	}

	// A speculative update to the cached view is visible to the next
	// read before any durable write lands
	cached[0].Value = 5
	if err := coordinator.Cache().Set(ranksKey, cached); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	c, w = authedGet(voter.ID, proposal.ID.String())
	handler.GetRankings(c)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var set models.RankSet
	if err := json.Unmarshal(w.Body.Bytes(), &set); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(set.Ranks) != 1 || set.Ranks[0].Value != 5 {
		t.Fatalf("expected the cached speculative value 5, got %+v", set.Ranks)
	}
	if set.Ranks[0].VoterName != "ana" {
		t.Errorf("expected voter attribution, got %q", set.Ranks[0].VoterName)
	}
}
