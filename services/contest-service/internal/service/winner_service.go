package service

import (
	"context"
	"errors"
	"fmt"

	"dailyart/services/contest-service/internal/clock"
	"dailyart/services/contest-service/internal/models"
	"dailyart/services/contest-service/internal/repository"
	"dailyart/shared/pkg/logger"
)

// PodiumSize is the number of places awarded when a period closes.
const PodiumSize = 3

// MaxTopN bounds the number of places a TopN request may ask for.
const MaxTopN = 100

// PodiumCache caches TopN results. Lookup returns the cache generation it
// read so a result computed afterwards is stored under that same generation;
// a concurrent Invalidate then makes the stored entry unreachable.
type PodiumCache interface {
	Lookup(ctx context.Context, period clock.Period, n int) (podium []*models.Submission, generation int64, hit bool, err error)
	Store(ctx context.Context, generation int64, period clock.Period, n int, podium []*models.Submission) error
	Invalidate(ctx context.Context) error
}

type WinnerService interface {
	// TopN returns exactly n entries ranked by score desc, submitted_at asc,
	// id asc. When period has fewer than n submissions the n best submissions
	// across all periods are used instead. Missing places are nil.
	TopN(ctx context.Context, period clock.Period, n int) ([]*models.Submission, error)
	// ClosePeriod awards win counters to the owners of the top three scoring
	// submissions of a past period. Each period can be closed once.
	ClosePeriod(ctx context.Context, period clock.Period) ([]*models.Submission, error)
}

type winnerService struct {
	submissions repository.SubmissionRepository
	closures    repository.ClosureRepository
	cache       PodiumCache
	resolver    *clock.Resolver
	log         *logger.Logger
}

// NewWinnerService creates the selector. cache may be nil.
func NewWinnerService(
	submissions repository.SubmissionRepository,
	closures repository.ClosureRepository,
	cache PodiumCache,
	resolver *clock.Resolver,
	log *logger.Logger,
) WinnerService {
	if log == nil {
		log = logger.NewNop()
	}
	return &winnerService{
		submissions: submissions,
		closures:    closures,
		cache:       cache,
		resolver:    resolver,
		log:         log,
	}
}

func (s *winnerService) TopN(ctx context.Context, period clock.Period, n int) ([]*models.Submission, error) {
	if n <= 0 {
		return nil, invalidInput(fmt.Errorf("n must be positive, got %d", n))
	}
	if n > MaxTopN {
		return nil, invalidInput(fmt.Errorf("n must not exceed %d, got %d", MaxTopN, n))
	}
	if _, err := clock.Parse(string(period)); err != nil {
		return nil, invalidInput(err)
	}

	var generation int64
	if s.cache != nil {
		cached, gen, hit, err := s.cache.Lookup(ctx, period, n)
		if err != nil {
			s.log.WithPeriod(string(period)).WithError(err).Warn("podium cache lookup failed")
		} else if hit {
			return cached, nil
		}
		generation = gen
	}

	ranked, err := s.submissions.ListByPeriod(ctx, period)
	if err != nil {
		return nil, storageErr("list submissions", err)
	}
	if len(ranked) < n {
		ranked, err = s.submissions.ListTop(ctx, n)
		if err != nil {
			return nil, storageErr("list top submissions", err)
		}
	}

	podium := make([]*models.Submission, n)
	copy(podium, ranked)

	if s.cache != nil {
		if err := s.cache.Store(ctx, generation, period, n, podium); err != nil {
			s.log.WithPeriod(string(period)).WithError(err).Warn("podium cache store failed")
		}
	}
	return podium, nil
}

func (s *winnerService) ClosePeriod(ctx context.Context, period clock.Period) ([]*models.Submission, error) {
	if _, err := clock.Parse(string(period)); err != nil {
		return nil, invalidInput(err)
	}
	if !period.Before(s.resolver.Today()) {
		return nil, ErrPeriodOpen
	}

	closed, err := s.closures.IsClosed(ctx, period)
	if err != nil {
		return nil, storageErr("check period closure", err)
	}
	if closed {
		return nil, fmt.Errorf("%w: %s", ErrPeriodAlreadyClosed, period)
	}

	ranked, err := s.submissions.ListByPeriod(ctx, period)
	if err != nil {
		return nil, storageErr("list submissions", err)
	}

	var podium []*models.Submission
	var awards []repository.Award
	for i, sub := range ranked {
		if i == PodiumSize || sub.Score <= 0 {
			break
		}
		podium = append(podium, sub)
		awards = append(awards, repository.Award{UserID: sub.UserID, Placement: models.Placements[i]})
	}

	// A concurrent close that lands after IsClosed surfaces as a duplicate key.
	err = s.closures.Close(ctx, period, s.resolver.Now(), awards)
	switch {
	case errors.Is(err, repository.ErrDuplicateKey):
		return nil, fmt.Errorf("%w: %s", ErrPeriodAlreadyClosed, period)
	case err != nil:
		return nil, storageErr("close period", err)
	}

	s.log.WithPeriod(string(period)).WithField("winners", len(podium)).Info("period closed")
	return podium, nil
}
