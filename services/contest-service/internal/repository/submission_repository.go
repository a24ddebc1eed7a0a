package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"dailyart/services/contest-service/internal/clock"
	"dailyart/services/contest-service/internal/models"
)

// SubmissionRepository persists contest entries. List methods return
// submissions in rank order (score desc, submitted_at asc, id asc) unless noted.
type SubmissionRepository interface {
	Create(ctx context.Context, s *models.Submission) (*models.Submission, error)
	GetByUserAndPeriod(ctx context.Context, userID uint64, period clock.Period) (*models.Submission, error)
	ListByPeriod(ctx context.Context, period clock.Period) ([]*models.Submission, error)
	ListByIDsInPeriod(ctx context.Context, period clock.Period, ids []uint64) ([]*models.Submission, error)
	ListTop(ctx context.Context, limit int) ([]*models.Submission, error)
	// ListRecent orders by submitted_at desc.
	ListRecent(ctx context.Context, limit int) ([]*models.Submission, error)
}

type submissionRepository struct {
	db *sql.DB
}

func NewSubmissionRepository(db *sql.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

const (
	submissionColumns = `id, user_id, image_ref, thumbnail_ref, title, contest_date, submitted_at, prompt,
		score, first_place_votes, second_place_votes, third_place_votes`
	rankOrder = ` ORDER BY score DESC, submitted_at ASC, id ASC`
)

func scanSubmission(row rowScanner) (*models.Submission, error) {
	var s models.Submission
	var contestDate string
	err := row.Scan(
		&s.ID, &s.UserID, &s.ImageRef, &s.ThumbnailRef, &s.Title, &contestDate, &s.SubmittedAt, &s.Prompt,
		&s.Score, &s.FirstPlaceVotes, &s.SecondPlaceVotes, &s.ThirdPlaceVotes,
	)
	if err != nil {
		return nil, err
	}
	s.ContestDate = clock.Period(contestDate)
	s.SubmittedAt = s.SubmittedAt.UTC()
	return &s, nil
}

func scanSubmissions(rows *sql.Rows) ([]*models.Submission, error) {
	defer rows.Close()
	var out []*models.Submission
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *submissionRepository) Create(ctx context.Context, s *models.Submission) (*models.Submission, error) {
	query := `
		INSERT INTO submissions (user_id, image_ref, thumbnail_ref, title, contest_date, submitted_at, prompt,
			score, first_place_votes, second_place_votes, third_place_votes)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0, 0, 0, 0)
	`
	submittedAt := s.SubmittedAt.UTC()
	result, err := r.db.ExecContext(ctx, query,
		s.UserID, s.ImageRef, s.ThumbnailRef, s.Title, string(s.ContestDate), submittedAt, s.Prompt)
	if err != nil {
		return nil, wrapErr("create submission", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, wrapErr("get submission id", err)
	}

	created := *s
	created.ID = uint64(id)
	created.SubmittedAt = submittedAt
	created.Score = 0
	created.FirstPlaceVotes, created.SecondPlaceVotes, created.ThirdPlaceVotes = 0, 0, 0
	return &created, nil
}

func (r *submissionRepository) GetByUserAndPeriod(ctx context.Context, userID uint64, period clock.Period) (*models.Submission, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+submissionColumns+` FROM submissions WHERE user_id = ? AND contest_date = ?`,
		userID, string(period))
	s, err := scanSubmission(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapErr("get user submission", err)
	}
	return s, nil
}

func (r *submissionRepository) list(ctx context.Context, op, query string, args ...interface{}) ([]*models.Submission, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapErr(op, err)
	}
	out, err := scanSubmissions(rows)
	if err != nil {
		return nil, wrapErr(op, err)
	}
	return out, nil
}

func (r *submissionRepository) ListByPeriod(ctx context.Context, period clock.Period) ([]*models.Submission, error) {
	return r.list(ctx, "list submissions",
		`SELECT `+submissionColumns+` FROM submissions WHERE contest_date = ?`+rankOrder,
		string(period))
}

func (r *submissionRepository) ListByIDsInPeriod(ctx context.Context, period clock.Period, ids []uint64) ([]*models.Submission, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	args := make([]interface{}, 0, len(ids)+1)
	args = append(args, string(period))
	for _, id := range ids {
		args = append(args, id)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")
	return r.list(ctx, "list submissions by id",
		`SELECT `+submissionColumns+` FROM submissions WHERE contest_date = ? AND id IN (`+placeholders+`)`+rankOrder,
		args...)
}

func (r *submissionRepository) ListTop(ctx context.Context, limit int) ([]*models.Submission, error) {
	return r.list(ctx, "list top submissions",
		`SELECT `+submissionColumns+` FROM submissions`+rankOrder+` LIMIT ?`,
		limit)
}

func (r *submissionRepository) ListRecent(ctx context.Context, limit int) ([]*models.Submission, error) {
	return r.list(ctx, "list recent submissions",
		`SELECT `+submissionColumns+` FROM submissions ORDER BY submitted_at DESC, id DESC LIMIT ?`,
		limit)
}
