package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"dailyart/services/contest-service/internal/clock"
	"dailyart/services/contest-service/internal/models"
)

type PromptRepository interface {
	Get(ctx context.Context, period clock.Period) (*models.ContestPrompt, error)
	Upsert(ctx context.Context, period clock.Period, prompt string, at time.Time) error
}

type promptRepository struct {
	db *sql.DB
}

func NewPromptRepository(db *sql.DB) PromptRepository {
	return &promptRepository{db: db}
}

func (r *promptRepository) Get(ctx context.Context, period clock.Period) (*models.ContestPrompt, error) {
	var p models.ContestPrompt
	var contestDate string
	err := r.db.QueryRowContext(ctx,
		`SELECT contest_date, prompt, updated_at FROM contest_prompts WHERE contest_date = ?`,
		string(period),
	).Scan(&contestDate, &p.Prompt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapErr("get prompt", err)
	}
	p.ContestDate = clock.Period(contestDate)
	return &p, nil
}

// Upsert updates the row first and inserts when nothing matched. An insert
// that loses a race to another writer falls back to the update.
func (r *promptRepository) Upsert(ctx context.Context, period clock.Period, prompt string, at time.Time) error {
	update := `UPDATE contest_prompts SET prompt = ?, updated_at = ? WHERE contest_date = ?`
	res, err := r.db.ExecContext(ctx, update, prompt, at.UTC(), string(period))
	if err != nil {
		return wrapErr("update prompt", err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows > 0 {
		return nil
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO contest_prompts (contest_date, prompt, updated_at) VALUES (?, ?, ?)`,
		string(period), prompt, at.UTC())
	if err == nil {
		return nil
	}
	err = wrapErr("insert prompt", err)
	if !errors.Is(err, ErrDuplicateKey) {
		return err
	}
	if _, err := r.db.ExecContext(ctx, update, prompt, at.UTC(), string(period)); err != nil {
		return wrapErr("update prompt", err)
	}
	return nil
}
