package service

import (
	"context"
	"sync"
	"time"

	"dailyart/services/contest-service/internal/clock"
	"dailyart/services/contest-service/internal/imagestore"
	"dailyart/services/contest-service/internal/models"
	"dailyart/services/contest-service/internal/repository"
)

var testNow = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

const testPeriod clock.Period = "2026-10-16"

func testResolver() *clock.Resolver {
	return clock.NewResolver(clock.NewFixed(testNow))
}

type mockSubmissionRepository struct {
	createFunc             func(ctx context.Context, s *models.Submission) (*models.Submission, error)
	getByUserAndPeriodFunc func(ctx context.Context, userID uint64, period clock.Period) (*models.Submission, error)
	listByPeriodFunc       func(ctx context.Context, period clock.Period) ([]*models.Submission, error)
	listByIDsInPeriodFunc  func(ctx context.Context, period clock.Period, ids []uint64) ([]*models.Submission, error)
	listTopFunc            func(ctx context.Context, limit int) ([]*models.Submission, error)
	listRecentFunc         func(ctx context.Context, limit int) ([]*models.Submission, error)
}

func (m *mockSubmissionRepository) Create(ctx context.Context, s *models.Submission) (*models.Submission, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, s)
	}
	created := *s
	created.ID = 1
	return &created, nil
}

func (m *mockSubmissionRepository) GetByUserAndPeriod(ctx context.Context, userID uint64, period clock.Period) (*models.Submission, error) {
	if m.getByUserAndPeriodFunc != nil {
		return m.getByUserAndPeriodFunc(ctx, userID, period)
	}
	return nil, nil
}

func (m *mockSubmissionRepository) ListByPeriod(ctx context.Context, period clock.Period) ([]*models.Submission, error) {
	if m.listByPeriodFunc != nil {
		return m.listByPeriodFunc(ctx, period)
	}
	return nil, nil
}

func (m *mockSubmissionRepository) ListByIDsInPeriod(ctx context.Context, period clock.Period, ids []uint64) ([]*models.Submission, error) {
	if m.listByIDsInPeriodFunc != nil {
		return m.listByIDsInPeriodFunc(ctx, period, ids)
	}
	return nil, nil
}

func (m *mockSubmissionRepository) ListTop(ctx context.Context, limit int) ([]*models.Submission, error) {
	if m.listTopFunc != nil {
		return m.listTopFunc(ctx, limit)
	}
	return nil, nil
}

func (m *mockSubmissionRepository) ListRecent(ctx context.Context, limit int) ([]*models.Submission, error) {
	if m.listRecentFunc != nil {
		return m.listRecentFunc(ctx, limit)
	}
	return nil, nil
}

type mockVoteRepository struct {
	getByUserAndPeriodFunc func(ctx context.Context, userID uint64, period clock.Period) (*models.Vote, error)
	recordFunc             func(ctx context.Context, vote *models.Vote, deltas []models.ScoreDelta) (*models.Vote, []*models.Submission, error)
}

func (m *mockVoteRepository) GetByUserAndPeriod(ctx context.Context, userID uint64, period clock.Period) (*models.Vote, error) {
	if m.getByUserAndPeriodFunc != nil {
		return m.getByUserAndPeriodFunc(ctx, userID, period)
	}
	return nil, nil
}

func (m *mockVoteRepository) Record(ctx context.Context, vote *models.Vote, deltas []models.ScoreDelta) (*models.Vote, []*models.Submission, error) {
	if m.recordFunc != nil {
		return m.recordFunc(ctx, vote, deltas)
	}
	stored := *vote
	stored.ID = 1
	return &stored, nil, nil
}

type mockClosureRepository struct {
	isClosedFunc func(ctx context.Context, period clock.Period) (bool, error)
	closeFunc    func(ctx context.Context, period clock.Period, closedAt time.Time, awards []repository.Award) error
}

func (m *mockClosureRepository) IsClosed(ctx context.Context, period clock.Period) (bool, error) {
	if m.isClosedFunc != nil {
		return m.isClosedFunc(ctx, period)
	}
	return false, nil
}

func (m *mockClosureRepository) Close(ctx context.Context, period clock.Period, closedAt time.Time, awards []repository.Award) error {
	if m.closeFunc != nil {
		return m.closeFunc(ctx, period, closedAt, awards)
	}
	return nil
}

type mockPromptRepository struct {
	getFunc    func(ctx context.Context, period clock.Period) (*models.ContestPrompt, error)
	upsertFunc func(ctx context.Context, period clock.Period, prompt string, at time.Time) error
}

func (m *mockPromptRepository) Get(ctx context.Context, period clock.Period) (*models.ContestPrompt, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, period)
	}
	return nil, nil
}

func (m *mockPromptRepository) Upsert(ctx context.Context, period clock.Period, prompt string, at time.Time) error {
	if m.upsertFunc != nil {
		return m.upsertFunc(ctx, period, prompt, at)
	}
	return nil
}

type mockUserRepository struct {
	createFunc        func(ctx context.Context, user *models.User) (*models.User, error)
	getByIDFunc       func(ctx context.Context, id uint64) (*models.User, error)
	getByEmailFunc    func(ctx context.Context, email string) (*models.User, error)
	getByUsernameFunc func(ctx context.Context, username string) (*models.User, error)
}

func (m *mockUserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, user)
	}
	created := *user
	created.ID = 1
	return &created, nil
}

func (m *mockUserRepository) GetByID(ctx context.Context, id uint64) (*models.User, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.getByEmailFunc != nil {
		return m.getByEmailFunc(ctx, email)
	}
	return nil, nil
}

func (m *mockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.getByUsernameFunc != nil {
		return m.getByUsernameFunc(ctx, username)
	}
	return nil, nil
}

type memorySessions struct {
	mu     sync.Mutex
	tokens map[string]uint64
}

func newMemorySessions() *memorySessions {
	return &memorySessions{tokens: make(map[string]uint64)}
}

func (m *memorySessions) Create(ctx context.Context, token string, userID uint64, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[token] = userID
	return nil
}

func (m *memorySessions) Lookup(ctx context.Context, token string) (uint64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.tokens[token]
	return id, ok, nil
}

func (m *memorySessions) Delete(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, token)
	return nil
}

type mockPodiumCache struct {
	lookupFunc     func(ctx context.Context, period clock.Period, n int) ([]*models.Submission, int64, bool, error)
	storeFunc      func(ctx context.Context, generation int64, period clock.Period, n int, podium []*models.Submission) error
	invalidateFunc func(ctx context.Context) error
}

func (m *mockPodiumCache) Lookup(ctx context.Context, period clock.Period, n int) ([]*models.Submission, int64, bool, error) {
	if m.lookupFunc != nil {
		return m.lookupFunc(ctx, period, n)
	}
	return nil, 0, false, nil
}

func (m *mockPodiumCache) Store(ctx context.Context, generation int64, period clock.Period, n int, podium []*models.Submission) error {
	if m.storeFunc != nil {
		return m.storeFunc(ctx, generation, period, n, podium)
	}
	return nil
}

func (m *mockPodiumCache) Invalidate(ctx context.Context) error {
	if m.invalidateFunc != nil {
		return m.invalidateFunc(ctx)
	}
	return nil
}

type mockImageStore struct {
	existsFunc func(ctx context.Context, ref string) (bool, error)
	saveFunc   func(ctx context.Context, period clock.Period, data []byte, name string) (*imagestore.Stored, error)
	deleted    []*imagestore.Stored
}

func (m *mockImageStore) Exists(ctx context.Context, ref string) (bool, error) {
	if m.existsFunc != nil {
		return m.existsFunc(ctx, ref)
	}
	return true, nil
}

func (m *mockImageStore) Save(ctx context.Context, period clock.Period, data []byte, name string) (*imagestore.Stored, error) {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, period, data, name)
	}
	return &imagestore.Stored{Ref: string(period) + "/img.png", MimeType: "image/png"}, nil
}

func (m *mockImageStore) Delete(ctx context.Context, stored *imagestore.Stored) error {
	m.deleted = append(m.deleted, stored)
	return nil
}
