package service

import (
	"context"
	"fmt"

	"dailyart/services/contest-service/internal/clock"
	"dailyart/services/contest-service/internal/models"
	"dailyart/services/contest-service/internal/repository"
)

// Ballot is a voter's ranked pick of three submissions.
type Ballot struct {
	VoterID  uint64
	Period   clock.Period
	FirstID  uint64
	SecondID uint64
	ThirdID  uint64
}

func (b Ballot) ids() [3]uint64 {
	return [3]uint64{b.FirstID, b.SecondID, b.ThirdID}
}

// VoteStatus tells whether a user has voted in a period.
type VoteStatus struct {
	Period   clock.Period
	HasVoted bool
	Vote     *models.Vote
}

type VoteService interface {
	// CastVote validates the ballot and, on success, records it with its score
	// changes. Checks run in a fixed order and the first failure is returned.
	CastVote(ctx context.Context, ballot Ballot) (*models.Vote, []*models.Submission, error)
	UserVoteStatus(ctx context.Context, userID uint64, period clock.Period) (*VoteStatus, error)
}

type voteService struct {
	votes      repository.VoteRepository
	ledger     SubmissionService
	aggregator ScoreAggregator
	resolver   *clock.Resolver
}

func NewVoteService(votes repository.VoteRepository, ledger SubmissionService, aggregator ScoreAggregator, resolver *clock.Resolver) VoteService {
	return &voteService{
		votes:      votes,
		ledger:     ledger,
		aggregator: aggregator,
		resolver:   resolver,
	}
}

func (s *voteService) CastVote(ctx context.Context, ballot Ballot) (*models.Vote, []*models.Submission, error) {
	ids := ballot.ids()
	for _, id := range ids {
		if id == 0 {
			return nil, nil, ErrIncompleteVote
		}
	}
	if _, err := clock.Parse(string(ballot.Period)); err != nil {
		return nil, nil, invalidInput(err)
	}

	prior, err := s.votes.GetByUserAndPeriod(ctx, ballot.VoterID, ballot.Period)
	if err != nil {
		return nil, nil, storageErr("check existing vote", err)
	}
	if prior != nil {
		return nil, nil, ErrAlreadyVoted
	}

	if ids[0] == ids[1] || ids[0] == ids[2] || ids[1] == ids[2] {
		return nil, nil, ErrDuplicateSelection
	}

	own, err := s.ledger.SubmissionsByUserForPeriod(ctx, ballot.VoterID, ballot.Period)
	if err != nil {
		return nil, nil, err
	}
	for _, sub := range own {
		for _, id := range ids {
			if sub.ID == id {
				return nil, nil, ErrSelfVote
			}
		}
	}

	found, err := s.ledger.SubmissionsInPeriod(ctx, ballot.Period, ids[:])
	if err != nil {
		return nil, nil, err
	}
	if len(found) != len(ids) {
		return nil, nil, ErrUnknownSubmission
	}

	now := s.resolver.Now()
	if s.resolver.PeriodOf(now) != ballot.Period {
		return nil, nil, fmt.Errorf("%w: period %s is no longer open", ErrStaleSubmission, ballot.Period)
	}

	vote := &models.Vote{
		UserID:                  ballot.VoterID,
		ContestDate:             ballot.Period,
		CastAt:                  now,
		FirstPlaceSubmissionID:  ballot.FirstID,
		SecondPlaceSubmissionID: ballot.SecondID,
		ThirdPlaceSubmissionID:  ballot.ThirdID,
	}
	return s.aggregator.Apply(ctx, vote)
}

func (s *voteService) UserVoteStatus(ctx context.Context, userID uint64, period clock.Period) (*VoteStatus, error) {
	if _, err := clock.Parse(string(period)); err != nil {
		return nil, invalidInput(err)
	}
	vote, err := s.votes.GetByUserAndPeriod(ctx, userID, period)
	if err != nil {
		return nil, storageErr("get vote", err)
	}
	return &VoteStatus{Period: period, HasVoted: vote != nil, Vote: vote}, nil
}
