package service

import (
	"context"
	"errors"
	"fmt"

	"dailyart/services/contest-service/internal/models"
	"dailyart/services/contest-service/internal/repository"
)

// ScoreAggregator persists a validated vote together with its score changes.
type ScoreAggregator interface {
	Apply(ctx context.Context, vote *models.Vote) (*models.Vote, []*models.Submission, error)
}

type scoreAggregator struct {
	votes repository.VoteRepository
}

func NewScoreAggregator(votes repository.VoteRepository) ScoreAggregator {
	return &scoreAggregator{votes: votes}
}

// Deltas expands a ballot into one score change per placement.
func Deltas(vote *models.Vote) []models.ScoreDelta {
	ids := vote.SubmissionIDs()
	deltas := make([]models.ScoreDelta, 0, len(ids))
	for i, p := range models.Placements {
		deltas = append(deltas, models.ScoreDelta{SubmissionID: ids[i], Placement: p})
	}
	return deltas
}

// Apply writes the vote and the three increments atomically. It returns the
// stored vote and the updated submissions in ballot order.
func (a *scoreAggregator) Apply(ctx context.Context, vote *models.Vote) (*models.Vote, []*models.Submission, error) {
	stored, updated, err := a.votes.Record(ctx, vote, Deltas(vote))
	switch {
	case err == nil:
		return stored, updated, nil
	case errors.Is(err, repository.ErrDuplicateKey):
		return nil, nil, fmt.Errorf("%w: %w", ErrAlreadyVoted, err)
	case errors.Is(err, repository.ErrForeignKey), errors.Is(err, repository.ErrRowMissing):
		return nil, nil, fmt.Errorf("%w: %w", ErrStaleSubmission, err)
	default:
		return nil, nil, storageErr("record vote", err)
	}
}
