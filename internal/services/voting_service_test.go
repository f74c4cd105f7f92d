package services

import (
	"context"
	"errors"
	"testing"

	"trip-planner/internal/models"
)

func TestSubmitRankMovesFirstChoice(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	proposer := createTestUser(t, db, "ana")
	voter := createTestUser(t, db, "ben")
	trip := createTestTrip(t, db, proposer, voter.ID)
	hotelA := createTestProposal(t, db, trip, proposer.ID, models.ProposalKindHotel, "Hotel A")
	hotelB := createTestProposal(t, db, trip, proposer.ID, models.ProposalKindHotel, "Hotel B")

	service := NewVotingService(db)

	// Rank 1 on Hotel A, then rank 1 on Hotel B
	if _, err := service.SubmitRank(ctx, hotelA.ID, voter.ID, 1); err != nil {
		t.Fatalf("SubmitRank on hotel A failed: %v", err)
	}
	setB, err := service.SubmitRank(ctx, hotelB.ID, voter.ID, 1)
	if err != nil {
		t.Fatalf("SubmitRank on hotel B failed: %v", err)
	}

	// Hotel A's rank from that voter must be cleared
	var count int64
	db.Model(&models.Rank{}).Where("proposal_id = ? AND voter_id = ?", hotelA.ID, voter.ID).Count(&count)
	if count != 0 {
		t.Errorf("expected hotel A rank to be vacated, found %d", count)
	}

	if len(setB.Ranks) != 1 || setB.Ranks[0].Value != 1 {
		t.Errorf("expected hotel B to hold rank 1, got %+v", setB.Ranks)
	}
}

func TestSubmitRankToggleClears(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	proposer := createTestUser(t, db, "ana")
	voter := createTestUser(t, db, "ben")
	trip := createTestTrip(t, db, proposer, voter.ID)
	hotel := createTestProposal(t, db, trip, proposer.ID, models.ProposalKindHotel, "Hotel A")

	service := NewVotingService(db)

	if _, err := service.SubmitRank(ctx, hotel.ID, voter.ID, 2); err != nil {
		t.Fatalf("first SubmitRank failed: %v", err)
	}
	set, err := service.SubmitRank(ctx, hotel.ID, voter.ID, 2)
	if err != nil {
		t.Fatalf("toggle SubmitRank failed: %v", err)
	}

	if !set.Toggled {
		t.Error("expected toggle flag to be set")
	}
	if len(set.Ranks) != 0 {
		t.Errorf("expected no ranks after toggle, got %d", len(set.Ranks))
	}
}

func TestRankUniquenessAcrossSequence(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	proposer := createTestUser(t, db, "ana")
	voter := createTestUser(t, db, "ben")
	trip := createTestTrip(t, db, proposer, voter.ID)

	proposals := []*models.Proposal{
		createTestProposal(t, db, trip, proposer.ID, models.ProposalKindHotel, "Hotel A"),
		createTestProposal(t, db, trip, proposer.ID, models.ProposalKindHotel, "Hotel B"),
		createTestProposal(t, db, trip, proposer.ID, models.ProposalKindHotel, "Hotel C"),
	}

	service := NewVotingService(db)

	// Arbitrary sequence of submissions
	moves := []struct {
		proposal int
		value    int
	}{
		{0, 1}, {1, 2}, {2, 1}, {0, 2}, {1, 1}, {2, 3}, {0, 1},
	}
	for _, move := range moves {
		if _, err := service.SubmitRank(ctx, proposals[move.proposal].ID, voter.ID, move.value); err != nil {
			t.Fatalf("SubmitRank failed: %v", err)
		}
	}

	// At most one proposal holds each value for the voter
	var ranks []models.Rank
	db.Where("voter_id = ?", voter.ID).Find(&ranks)
	seen := make(map[int]int)
	for _, r := range ranks {
		seen[r.Value]++
		if seen[r.Value] > 1 {
			t.Errorf("value %d held by %d proposals", r.Value, seen[r.Value])
		}
	}
}

func TestSubmitRankValidation(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	proposer := createTestUser(t, db, "ana")
	voter := createTestUser(t, db, "ben")
	trip := createTestTrip(t, db, proposer, voter.ID)
	hotel := createTestProposal(t, db, trip, proposer.ID, models.ProposalKindHotel, "Hotel A")
	restaurant := createTestProposal(t, db, trip, proposer.ID, models.ProposalKindRestaurant, "Taberna")

	service := NewVotingService(db)

	if _, err := service.SubmitRank(ctx, hotel.ID, voter.ID, 0); !errors.Is(err, models.ErrInvalidRankValue) {
		t.Errorf("expected ErrInvalidRankValue for rank 0, got %v", err)
	}
	if _, err := service.SubmitRank(ctx, hotel.ID, voter.ID, -3); !errors.Is(err, models.ErrInvalidRankValue) {
		t.Errorf("expected ErrInvalidRankValue for negative rank, got %v", err)
	}
	if _, err := service.SubmitRank(ctx, restaurant.ID, voter.ID, 2); !errors.Is(err, models.ErrInvalidRankValue) {
		t.Errorf("expected ErrInvalidRankValue for thumb value 2, got %v", err)
	}
	if _, err := service.SubmitRank(ctx, restaurant.ID, voter.ID, -1); err != nil {
		t.Errorf("thumbs down should be valid, got %v", err)
	}
}

func TestSubmitRankOnTerminalProposal(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	proposer := createTestUser(t, db, "ana")
	voter := createTestUser(t, db, "ben")
	trip := createTestTrip(t, db, proposer, voter.ID)
	hotel := createTestProposal(t, db, trip, proposer.ID, models.ProposalKindHotel, "Hotel A")

	db.Model(hotel).Update("status", models.ProposalStatusCanceled)

	service := NewVotingService(db)
	if _, err := service.SubmitRank(ctx, hotel.ID, voter.ID, 1); !errors.Is(err, models.ErrProposalNotActive) {
		t.Errorf("expected ErrProposalNotActive, got %v", err)
	}
}

func TestThumbTallyAndAverage(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	proposer := createTestUser(t, db, "ana")
	v1 := createTestUser(t, db, "ben")
	v2 := createTestUser(t, db, "cara")
	trip := createTestTrip(t, db, proposer, v1.ID, v2.ID)
	restaurant := createTestProposal(t, db, trip, proposer.ID, models.ProposalKindRestaurant, "Taberna")
	hotel := createTestProposal(t, db, trip, proposer.ID, models.ProposalKindHotel, "Hotel A")

	service := NewVotingService(db)

	if _, err := service.SubmitRank(ctx, restaurant.ID, v1.ID, 1); err != nil {
		t.Fatalf("thumbs up failed: %v", err)
	}
	set, err := service.SubmitRank(ctx, restaurant.ID, v2.ID, -1)
	if err != nil {
		t.Fatalf("thumbs down failed: %v", err)
	}
	if set.Thumbs == nil || set.Thumbs.Up != 1 || set.Thumbs.Down != 1 {
		t.Errorf("expected 1 up / 1 down, got %+v", set.Thumbs)
	}
	if set.AverageRanking != nil {
		t.Error("thumb-voted kind should not report an average")
	}

	// Average over ordinal ranks
	if _, err := service.SubmitRank(ctx, hotel.ID, v1.ID, 1); err != nil {
		t.Fatalf("rank failed: %v", err)
	}
	set, err = service.SubmitRank(ctx, hotel.ID, v2.ID, 3)
	if err != nil {
		t.Fatalf("rank failed: %v", err)
	}
	if set.AverageRanking == nil || *set.AverageRanking != 2.0 {
		t.Errorf("expected average 2.0, got %v", set.AverageRanking)
	}

	// No votes -> nil average
	empty := createTestProposal(t, db, trip, proposer.ID, models.ProposalKindHotel, "Hotel B")
	emptySet, err := service.GetRankSet(ctx, empty.ID, empty.Kind)
	if err != nil {
		t.Fatalf("GetRankSet failed: %v", err)
	}
	if emptySet.AverageRanking != nil {
		t.Errorf("expected nil average with no votes, got %v", *emptySet.AverageRanking)
	}

	// Every rank carries its voter's name
	hotelSet, err := service.GetRankSet(ctx, hotel.ID, hotel.Kind)
	if err != nil {
		t.Fatalf("GetRankSet failed: %v", err)
	}
	names := make(map[uint]string, len(hotelSet.Ranks))
	for _, rank := range hotelSet.Ranks {
		names[rank.VoterID] = rank.VoterName
	}
	if names[v1.ID] != v1.Username || names[v2.ID] != v2.Username {
		t.Errorf("voter attribution wrong: %+v", names)
	}
}
