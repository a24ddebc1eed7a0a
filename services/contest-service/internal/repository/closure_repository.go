package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"dailyart/services/contest-service/internal/clock"
	"dailyart/services/contest-service/internal/models"
)

// Award credits one podium placement to a user.
type Award struct {
	UserID    uint64
	Placement models.Placement
}

type ClosureRepository interface {
	// IsClosed reports whether period already has a closure record.
	IsClosed(ctx context.Context, period clock.Period) (bool, error)
	// Close marks period closed and increments the win counters in one
	// transaction. A second close of the same period fails with ErrDuplicateKey.
	Close(ctx context.Context, period clock.Period, closedAt time.Time, awards []Award) error
}

type closureRepository struct {
	db *sql.DB
}

func NewClosureRepository(db *sql.DB) ClosureRepository {
	return &closureRepository{db: db}
}

func (r *closureRepository) IsClosed(ctx context.Context, period clock.Period) (bool, error) {
	var contestDate string
	err := r.db.QueryRowContext(ctx,
		`SELECT contest_date FROM period_closures WHERE contest_date = ?`, string(period),
	).Scan(&contestDate)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, wrapErr("check period closure", err)
	}
	return true, nil
}

func (r *closureRepository) Close(ctx context.Context, period clock.Period, closedAt time.Time, awards []Award) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return wrapErr("begin transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO period_closures (contest_date, closed_at) VALUES (?, ?)`,
		string(period), closedAt.UTC(),
	); err != nil {
		return wrapErr("insert period closure", err)
	}

	for _, a := range awards {
		col := a.Placement.WinColumn()
		if col == "" {
			return fmt.Errorf("invalid placement %d", a.Placement)
		}
		res, err := tx.ExecContext(ctx, fmt.Sprintf(`UPDATE users SET %s = %s + 1 WHERE id = ?`, col, col), a.UserID)
		if err != nil {
			return wrapErr("award win", err)
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return wrapErr("get rows affected", err)
		}
		if rows != 1 {
			return fmt.Errorf("user %d: %w", a.UserID, ErrRowMissing)
		}
	}

	if err := tx.Commit(); err != nil {
		return wrapErr("commit period closure", err)
	}
	return nil
}
