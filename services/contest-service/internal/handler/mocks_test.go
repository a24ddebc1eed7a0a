package handler

import (
	"bytes"
	"context"
	"errors"
	"io"
	"time"

	"dailyart/services/contest-service/internal/clock"
	"dailyart/services/contest-service/internal/imagestore"
	"dailyart/services/contest-service/internal/models"
	"dailyart/services/contest-service/internal/service"
	"dailyart/shared/pkg/auth"
)

var testNow = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

const testPeriod clock.Period = "2026-10-16"

func testResolver() *clock.Resolver {
	return clock.NewResolver(clock.NewFixed(testNow))
}

type mockContestService struct {
	submitEntryFunc       func(ctx context.Context, userID uint64, upload service.Upload) (*models.Submission, error)
	castVoteFunc          func(ctx context.Context, ballot service.Ballot) (*models.Vote, []*models.Submission, error)
	getTopNFunc           func(ctx context.Context, period clock.Period, n int) ([]*models.Submission, error)
	getUserVoteStatusFunc func(ctx context.Context, userID uint64, period clock.Period) (*service.VoteStatus, error)
	listEntriesFunc       func(ctx context.Context, period clock.Period) ([]*models.Submission, error)
	getPromptFunc         func(ctx context.Context, period clock.Period) (clock.Period, string, error)
	closePeriodFunc       func(ctx context.Context, period clock.Period) ([]*models.Submission, error)
}

func (m *mockContestService) SubmitEntry(ctx context.Context, userID uint64, upload service.Upload) (*models.Submission, error) {
	if m.submitEntryFunc != nil {
		return m.submitEntryFunc(ctx, userID, upload)
	}
	return nil, errors.New("not implemented")
}

func (m *mockContestService) CastVote(ctx context.Context, ballot service.Ballot) (*models.Vote, []*models.Submission, error) {
	if m.castVoteFunc != nil {
		return m.castVoteFunc(ctx, ballot)
	}
	return nil, nil, errors.New("not implemented")
}

func (m *mockContestService) GetTopN(ctx context.Context, period clock.Period, n int) ([]*models.Submission, error) {
	if m.getTopNFunc != nil {
		return m.getTopNFunc(ctx, period, n)
	}
	return nil, errors.New("not implemented")
}

func (m *mockContestService) GetUserVoteStatus(ctx context.Context, userID uint64, period clock.Period) (*service.VoteStatus, error) {
	if m.getUserVoteStatusFunc != nil {
		return m.getUserVoteStatusFunc(ctx, userID, period)
	}
	return nil, errors.New("not implemented")
}

func (m *mockContestService) ListEntries(ctx context.Context, period clock.Period) ([]*models.Submission, error) {
	if m.listEntriesFunc != nil {
		return m.listEntriesFunc(ctx, period)
	}
	return nil, errors.New("not implemented")
}

func (m *mockContestService) GetPrompt(ctx context.Context, period clock.Period) (clock.Period, string, error) {
	if m.getPromptFunc != nil {
		return m.getPromptFunc(ctx, period)
	}
	return "", "", errors.New("not implemented")
}

func (m *mockContestService) ClosePeriod(ctx context.Context, period clock.Period) ([]*models.Submission, error) {
	if m.closePeriodFunc != nil {
		return m.closePeriodFunc(ctx, period)
	}
	return nil, errors.New("not implemented")
}

type mockUserService struct {
	registerFunc         func(ctx context.Context, reg service.Registration) (*models.User, error)
	loginFunc            func(ctx context.Context, email, password string) (*service.Session, error)
	logoutFunc           func(ctx context.Context, token string) error
	getUserFunc          func(ctx context.Context, id uint64) (*models.User, error)
	generatePasswordFunc func() (string, error)
}

func (m *mockUserService) Register(ctx context.Context, reg service.Registration) (*models.User, error) {
	if m.registerFunc != nil {
		return m.registerFunc(ctx, reg)
	}
	return nil, errors.New("not implemented")
}

func (m *mockUserService) Login(ctx context.Context, email, password string) (*service.Session, error) {
	if m.loginFunc != nil {
		return m.loginFunc(ctx, email, password)
	}
	return nil, errors.New("not implemented")
}

func (m *mockUserService) Logout(ctx context.Context, token string) error {
	if m.logoutFunc != nil {
		return m.logoutFunc(ctx, token)
	}
	return errors.New("not implemented")
}

func (m *mockUserService) GetUser(ctx context.Context, id uint64) (*models.User, error) {
	if m.getUserFunc != nil {
		return m.getUserFunc(ctx, id)
	}
	return nil, errors.New("not implemented")
}

func (m *mockUserService) GeneratePassword() (string, error) {
	if m.generatePasswordFunc != nil {
		return m.generatePasswordFunc()
	}
	return "", errors.New("not implemented")
}

// tokenValidator accepts "token-<id>" for users 1..9.
type tokenValidator struct{}

func (tokenValidator) ValidateToken(ctx context.Context, token string) (*auth.UserContext, error) {
	if len(token) == len("token-1") && token[:6] == "token-" && token[6] >= '1' && token[6] <= '9' {
		return &auth.UserContext{UserID: uint64(token[6] - '0'), Token: token}, nil
	}
	return nil, auth.ErrInvalidToken
}

type memoryImages map[string][]byte

func (m memoryImages) Open(ctx context.Context, ref string) (io.ReadCloser, string, error) {
	if !imagestore.ValidRef(ref) {
		return nil, "", imagestore.ErrInvalidRef
	}
	data, ok := m[ref]
	if !ok {
		return nil, "", imagestore.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), "image/png", nil
}

func sampleSubmission(id, userID uint64) *models.Submission {
	return &models.Submission{
		ID:          id,
		UserID:      userID,
		ImageRef:    "2026-10-16/123e4567-e89b-12d3-a456-426614174000.png",
		Title:       "Entry",
		ContestDate: testPeriod,
		SubmittedAt: testNow,
		Prompt:      "Alien Invasion",
	}
}
