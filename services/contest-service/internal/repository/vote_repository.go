package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"dailyart/services/contest-service/internal/clock"
	"dailyart/services/contest-service/internal/models"
)

type VoteRepository interface {
	GetByUserAndPeriod(ctx context.Context, userID uint64, period clock.Period) (*models.Vote, error)
	// Record inserts vote and applies deltas in one transaction. It returns the
	// stored vote and the updated submissions in delta order. A delta whose
	// submission is missing or belongs to another period aborts with ErrRowMissing.
	Record(ctx context.Context, vote *models.Vote, deltas []models.ScoreDelta) (*models.Vote, []*models.Submission, error)
}

type voteRepository struct {
	db *sql.DB
}

func NewVoteRepository(db *sql.DB) VoteRepository {
	return &voteRepository{db: db}
}

func (r *voteRepository) GetByUserAndPeriod(ctx context.Context, userID uint64, period clock.Period) (*models.Vote, error) {
	query := `
		SELECT id, user_id, contest_date, cast_at,
			first_place_submission_id, second_place_submission_id, third_place_submission_id
		FROM votes
		WHERE user_id = ? AND contest_date = ?
	`
	var v models.Vote
	var contestDate string
	err := r.db.QueryRowContext(ctx, query, userID, string(period)).Scan(
		&v.ID, &v.UserID, &contestDate, &v.CastAt,
		&v.FirstPlaceSubmissionID, &v.SecondPlaceSubmissionID, &v.ThirdPlaceSubmissionID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapErr("get vote", err)
	}
	v.ContestDate = clock.Period(contestDate)
	v.CastAt = v.CastAt.UTC()
	return &v, nil
}

func (r *voteRepository) Record(ctx context.Context, vote *models.Vote, deltas []models.ScoreDelta) (*models.Vote, []*models.Submission, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, wrapErr("begin transaction", err)
	}
	defer tx.Rollback()

	castAt := vote.CastAt.UTC()
	insert := `
		INSERT INTO votes (user_id, contest_date, cast_at,
			first_place_submission_id, second_place_submission_id, third_place_submission_id)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	result, err := tx.ExecContext(ctx, insert,
		vote.UserID, string(vote.ContestDate), castAt,
		vote.FirstPlaceSubmissionID, vote.SecondPlaceSubmissionID, vote.ThirdPlaceSubmissionID)
	if err != nil {
		return nil, nil, wrapErr("insert vote", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, nil, wrapErr("get vote id", err)
	}

	// Lock rows in id order so concurrent ballots cannot deadlock each other.
	ordered := make([]models.ScoreDelta, len(deltas))
	copy(ordered, deltas)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].SubmissionID < ordered[j].SubmissionID })

	for _, d := range ordered {
		col := d.Placement.VoteColumn()
		if col == "" {
			return nil, nil, fmt.Errorf("invalid placement %d", d.Placement)
		}
		update := fmt.Sprintf(`
			UPDATE submissions
			SET score = score + ?, %s = %s + 1
			WHERE id = ? AND contest_date = ?
		`, col, col)
		res, err := tx.ExecContext(ctx, update, d.Points(), d.SubmissionID, string(vote.ContestDate))
		if err != nil {
			return nil, nil, wrapErr("apply score", err)
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return nil, nil, wrapErr("get rows affected", err)
		}
		if rows != 1 {
			return nil, nil, fmt.Errorf("submission %d in %s: %w", d.SubmissionID, vote.ContestDate, ErrRowMissing)
		}
	}

	updated := make([]*models.Submission, 0, len(deltas))
	for _, d := range deltas {
		row := tx.QueryRowContext(ctx, `SELECT `+submissionColumns+` FROM submissions WHERE id = ?`, d.SubmissionID)
		s, err := scanSubmission(row)
		if err != nil {
			return nil, nil, wrapErr("reload submission", err)
		}
		updated = append(updated, s)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, wrapErr("commit vote", err)
	}

	stored := *vote
	stored.ID = uint64(id)
	stored.CastAt = castAt
	return &stored, updated, nil
}
