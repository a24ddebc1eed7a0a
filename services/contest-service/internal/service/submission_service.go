package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"dailyart/services/contest-service/internal/clock"
	"dailyart/services/contest-service/internal/models"
	"dailyart/services/contest-service/internal/repository"
	"dailyart/shared/pkg/helpers"
)

// ImageChecker confirms that an image ref points at stored content.
type ImageChecker interface {
	Exists(ctx context.Context, ref string) (bool, error)
}

// NewEntry is the input of SubmissionService.Submit.
type NewEntry struct {
	UserID       uint64       `json:"user_id" validate:"required"`
	Period       clock.Period `json:"period" validate:"required,period"`
	ImageRef     string       `json:"image_ref"`
	ThumbnailRef string       `json:"thumbnail_ref"`
	Title        string       `json:"title" validate:"max=128"`
	Prompt       string       `json:"prompt" validate:"max=255"`
}

// SubmissionService is the ledger of contest entries.
type SubmissionService interface {
	Submit(ctx context.Context, entry NewEntry) (*models.Submission, error)
	SubmissionsForPeriod(ctx context.Context, period clock.Period) ([]*models.Submission, error)
	SubmissionsByUserForPeriod(ctx context.Context, userID uint64, period clock.Period) ([]*models.Submission, error)
	// SubmissionsInPeriod returns the submissions of period among ids. Ids
	// outside period are silently dropped.
	SubmissionsInPeriod(ctx context.Context, period clock.Period, ids []uint64) ([]*models.Submission, error)
	// RecentSubmissions returns the newest submissions across all periods.
	RecentSubmissions(ctx context.Context, limit int) ([]*models.Submission, error)
}

type submissionService struct {
	submissions repository.SubmissionRepository
	images      ImageChecker
	resolver    *clock.Resolver
	validator   *helpers.CustomValidator
}

// NewSubmissionService creates the ledger. images may be nil, in which case
// only empty refs are rejected.
func NewSubmissionService(submissions repository.SubmissionRepository, images ImageChecker, resolver *clock.Resolver) SubmissionService {
	return &submissionService{
		submissions: submissions,
		images:      images,
		resolver:    resolver,
		validator:   helpers.NewCustomValidator(),
	}
}

func (s *submissionService) Submit(ctx context.Context, entry NewEntry) (*models.Submission, error) {
	if strings.TrimSpace(entry.ImageRef) == "" {
		return nil, ErrInvalidReference
	}
	if err := s.validator.Validate(entry); err != nil {
		return nil, invalidInput(err)
	}
	if s.images != nil {
		ok, err := s.images.Exists(ctx, entry.ImageRef)
		if err != nil {
			return nil, fmt.Errorf("failed to check image: %w", err)
		}
		if !ok {
			return nil, ErrInvalidReference
		}
	}

	existing, err := s.submissions.GetByUserAndPeriod(ctx, entry.UserID, entry.Period)
	if err != nil {
		return nil, storageErr("check existing submission", err)
	}
	if existing != nil {
		return nil, ErrDuplicateSubmission
	}

	created, err := s.submissions.Create(ctx, &models.Submission{
		UserID:       entry.UserID,
		ImageRef:     entry.ImageRef,
		ThumbnailRef: entry.ThumbnailRef,
		Title:        entry.Title,
		ContestDate:  entry.Period,
		SubmittedAt:  s.resolver.Now(),
		Prompt:       entry.Prompt,
	})
	switch {
	case errors.Is(err, repository.ErrDuplicateKey):
		return nil, fmt.Errorf("%w: %w", ErrDuplicateSubmission, err)
	case errors.Is(err, repository.ErrForeignKey):
		return nil, fmt.Errorf("%w: %w", ErrUserNotFound, err)
	case err != nil:
		return nil, storageErr("create submission", err)
	}
	return created, nil
}

func (s *submissionService) SubmissionsForPeriod(ctx context.Context, period clock.Period) ([]*models.Submission, error) {
	out, err := s.submissions.ListByPeriod(ctx, period)
	if err != nil {
		return nil, storageErr("list submissions", err)
	}
	return out, nil
}

func (s *submissionService) SubmissionsByUserForPeriod(ctx context.Context, userID uint64, period clock.Period) ([]*models.Submission, error) {
	sub, err := s.submissions.GetByUserAndPeriod(ctx, userID, period)
	if err != nil {
		return nil, storageErr("get user submission", err)
	}
	if sub == nil {
		return nil, nil
	}
	return []*models.Submission{sub}, nil
}

func (s *submissionService) SubmissionsInPeriod(ctx context.Context, period clock.Period, ids []uint64) ([]*models.Submission, error) {
	out, err := s.submissions.ListByIDsInPeriod(ctx, period, ids)
	if err != nil {
		return nil, storageErr("list submissions by id", err)
	}
	return out, nil
}

func (s *submissionService) RecentSubmissions(ctx context.Context, limit int) ([]*models.Submission, error) {
	out, err := s.submissions.ListRecent(ctx, limit)
	if err != nil {
		return nil, storageErr("list recent submissions", err)
	}
	return out, nil
}
