package service

import (
	"context"
	"errors"
	"fmt"

	"dailyart/services/contest-service/internal/clock"
	"dailyart/services/contest-service/internal/imagestore"
	"dailyart/services/contest-service/internal/models"
	"dailyart/shared/pkg/logger"
	"dailyart/shared/pkg/metrics"
)

// RecentEntriesLimit bounds ListEntries when a period has no submissions.
const RecentEntriesLimit = 10

// ImageStore saves uploaded images for the ledger.
type ImageStore interface {
	ImageChecker
	Save(ctx context.Context, period clock.Period, data []byte, suggestedName string) (*imagestore.Stored, error)
	Delete(ctx context.Context, stored *imagestore.Stored) error
}

// Upload is an image submitted through a transport.
type Upload struct {
	Data     []byte
	Filename string
	Title    string
}

// ContestService is the operation surface exposed by the transports. Every
// call takes the caller's identity explicitly; an empty period means today.
type ContestService interface {
	SubmitEntry(ctx context.Context, userID uint64, upload Upload) (*models.Submission, error)
	CastVote(ctx context.Context, ballot Ballot) (*models.Vote, []*models.Submission, error)
	GetTopN(ctx context.Context, period clock.Period, n int) ([]*models.Submission, error)
	GetUserVoteStatus(ctx context.Context, userID uint64, period clock.Period) (*VoteStatus, error)
	ListEntries(ctx context.Context, period clock.Period) ([]*models.Submission, error)
	GetPrompt(ctx context.Context, period clock.Period) (clock.Period, string, error)
	ClosePeriod(ctx context.Context, period clock.Period) ([]*models.Submission, error)
}

type contestService struct {
	ledger   SubmissionService
	votes    VoteService
	winners  WinnerService
	prompts  PromptService
	images   ImageStore
	cache    PodiumCache
	resolver *clock.Resolver
	log      *logger.Logger
	metrics  *metrics.Metrics
}

// NewContestService wires the core components. cache and m may be nil.
func NewContestService(
	ledger SubmissionService,
	votes VoteService,
	winners WinnerService,
	prompts PromptService,
	images ImageStore,
	cache PodiumCache,
	resolver *clock.Resolver,
	log *logger.Logger,
	m *metrics.Metrics,
) ContestService {
	if log == nil {
		log = logger.NewNop()
	}
	return &contestService{
		ledger:   ledger,
		votes:    votes,
		winners:  winners,
		prompts:  prompts,
		images:   images,
		cache:    cache,
		resolver: resolver,
		log:      log,
		metrics:  m,
	}
}

func (s *contestService) periodOrToday(period clock.Period) clock.Period {
	if period == "" {
		return s.resolver.Today()
	}
	return period
}

func (s *contestService) SubmitEntry(ctx context.Context, userID uint64, upload Upload) (sub *models.Submission, err error) {
	defer func() { s.metrics.Observe("submission", err) }()

	period := s.resolver.Today()
	prompt, err := s.prompts.PromptFor(ctx, period)
	if err != nil {
		return nil, err
	}

	stored, err := s.images.Save(ctx, period, upload.Data, upload.Filename)
	switch {
	case errors.Is(err, imagestore.ErrEmptyImage):
		return nil, fmt.Errorf("%w: %w", ErrInvalidReference, err)
	case errors.Is(err, imagestore.ErrImageTooBig):
		return nil, invalidInput(err)
	case err != nil:
		return nil, fmt.Errorf("failed to store image: %w", err)
	}

	sub, err = s.ledger.Submit(ctx, NewEntry{
		UserID:       userID,
		Period:       period,
		ImageRef:     stored.Ref,
		ThumbnailRef: stored.ThumbnailRef,
		Title:        upload.Title,
		Prompt:       prompt,
	})
	if err != nil {
		if delErr := s.images.Delete(ctx, stored); delErr != nil {
			s.log.WithUserID(userID).WithError(delErr).Warn("failed to remove rejected image")
		}
		return nil, err
	}

	s.invalidatePodium(ctx)
	s.log.WithUserID(userID).WithField("submission_id", sub.ID).WithField("period", string(period)).Info("submission accepted")
	return sub, nil
}

func (s *contestService) CastVote(ctx context.Context, ballot Ballot) (vote *models.Vote, updated []*models.Submission, err error) {
	defer func() { s.metrics.Observe("vote", err) }()

	ballot.Period = s.periodOrToday(ballot.Period)
	vote, updated, err = s.votes.CastVote(ctx, ballot)
	if err != nil {
		s.log.WithUserID(ballot.VoterID).WithField("period", string(ballot.Period)).WithError(err).Debug("vote rejected")
		return nil, nil, err
	}

	s.invalidatePodium(ctx)
	s.log.WithUserID(ballot.VoterID).WithField("vote_id", vote.ID).WithField("period", string(ballot.Period)).Info("vote accepted")
	return vote, updated, nil
}

func (s *contestService) invalidatePodium(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Entry().WithError(err).Warn("failed to invalidate podium cache")
	}
}

func (s *contestService) GetTopN(ctx context.Context, period clock.Period, n int) ([]*models.Submission, error) {
	return s.winners.TopN(ctx, s.periodOrToday(period), n)
}

func (s *contestService) GetUserVoteStatus(ctx context.Context, userID uint64, period clock.Period) (*VoteStatus, error) {
	return s.votes.UserVoteStatus(ctx, userID, s.periodOrToday(period))
}

// ListEntries returns the ballot for period: its submissions in rank order,
// or the most recent submissions overall when the period has none yet.
func (s *contestService) ListEntries(ctx context.Context, period clock.Period) ([]*models.Submission, error) {
	period = s.periodOrToday(period)
	if _, err := clock.Parse(string(period)); err != nil {
		return nil, invalidInput(err)
	}
	entries, err := s.ledger.SubmissionsForPeriod(ctx, period)
	if err != nil {
		return nil, err
	}
	if len(entries) > 0 {
		return entries, nil
	}
	return s.ledger.RecentSubmissions(ctx, RecentEntriesLimit)
}

func (s *contestService) GetPrompt(ctx context.Context, period clock.Period) (clock.Period, string, error) {
	period = s.periodOrToday(period)
	if _, err := clock.Parse(string(period)); err != nil {
		return "", "", invalidInput(err)
	}
	prompt, err := s.prompts.PromptFor(ctx, period)
	if err != nil {
		return "", "", err
	}
	return period, prompt, nil
}

func (s *contestService) ClosePeriod(ctx context.Context, period clock.Period) (podium []*models.Submission, err error) {
	defer func() { s.metrics.Observe("close_period", err) }()

	if period == "" {
		period = s.resolver.Yesterday()
	}
	return s.winners.ClosePeriod(ctx, period)
}
