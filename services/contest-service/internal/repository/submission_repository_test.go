package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dailyart/services/contest-service/internal/clock"
	"dailyart/services/contest-service/internal/models"
)

func TestSubmissionRepository_Create(t *testing.T) {
	submittedAt := time.Date(2026, 10, 16, 9, 30, 0, 0, time.FixedZone("X", 3600))

	tests := []struct {
		name      string
		setupMock func(sqlmock.Sqlmock)
		wantErr   error
	}{
		{
			name: "successful creation",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO submissions`)).
					WithArgs(uint64(5), "2026-10-16/a.png", "2026-10-16/a_thumb.jpg", "Saucers", "2026-10-16",
						submittedAt.UTC(), "Alien Invasion").
					WillReturnResult(sqlmock.NewResult(12, 1))
			},
		},
		{
			name: "duplicate entry",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO submissions`)).
					WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry '5-2026-10-16'"})
			},
			wantErr: ErrDuplicateKey,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()
			repo := NewSubmissionRepository(db)

			tt.setupMock(mock)

			created, err := repo.Create(context.Background(), &models.Submission{
				UserID:       5,
				ImageRef:     "2026-10-16/a.png",
				ThumbnailRef: "2026-10-16/a_thumb.jpg",
				Title:        "Saucers",
				ContestDate:  "2026-10-16",
				SubmittedAt:  submittedAt,
				Prompt:       "Alien Invasion",
				Score:        99,
			})

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, created)
			} else {
				require.NoError(t, err)
				assert.Equal(t, uint64(12), created.ID)
				assert.Equal(t, int64(0), created.Score)
				assert.Equal(t, time.UTC, created.SubmittedAt.Location())
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestSubmissionRepository_Queries(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)

	t.Run("get by user and period not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewSubmissionRepository(db)

		mock.ExpectQuery(regexp.QuoteMeta(`WHERE user_id = ? AND contest_date = ?`)).
			WithArgs(uint64(5), "2026-10-16").
			WillReturnError(sql.ErrNoRows)

		s, err := repo.GetByUserAndPeriod(ctx, 5, "2026-10-16")
		require.NoError(t, err)
		assert.Nil(t, s)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("list by period uses rank order", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewSubmissionRepository(db)

		mock.ExpectQuery(regexp.QuoteMeta(`WHERE contest_date = ? ORDER BY score DESC, submitted_at ASC, id ASC`)).
			WithArgs("2026-10-16").
			WillReturnRows(submissionRows(
				models.Submission{ID: 2, ContestDate: "2026-10-16", SubmittedAt: at, Score: 8},
				models.Submission{ID: 1, ContestDate: "2026-10-16", SubmittedAt: at, Score: 3},
			))

		subs, err := repo.ListByPeriod(ctx, "2026-10-16")
		require.NoError(t, err)
		require.Len(t, subs, 2)
		assert.Equal(t, uint64(2), subs[0].ID)
		assert.Equal(t, clock.Period("2026-10-16"), subs[0].ContestDate)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("list by ids builds placeholders", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewSubmissionRepository(db)

		mock.ExpectQuery(regexp.QuoteMeta(`WHERE contest_date = ? AND id IN (?, ?, ?)`)).
			WithArgs("2026-10-16", uint64(1), uint64(2), uint64(3)).
			WillReturnRows(submissionRows(models.Submission{ID: 1, ContestDate: "2026-10-16", SubmittedAt: at}))

		subs, err := repo.ListByIDsInPeriod(ctx, "2026-10-16", []uint64{1, 2, 3})
		require.NoError(t, err)
		assert.Len(t, subs, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("list by no ids skips query", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewSubmissionRepository(db)

		subs, err := repo.ListByIDsInPeriod(ctx, "2026-10-16", nil)
		require.NoError(t, err)
		assert.Empty(t, subs)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("list top and recent", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewSubmissionRepository(db)

		mock.ExpectQuery(regexp.QuoteMeta(`FROM submissions ORDER BY score DESC, submitted_at ASC, id ASC LIMIT ?`)).
			WithArgs(3).
			WillReturnRows(submissionRows())
		mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY submitted_at DESC, id DESC LIMIT ?`)).
			WithArgs(10).
			WillReturnError(sql.ErrConnDone)

		top, err := repo.ListTop(ctx, 3)
		require.NoError(t, err)
		assert.Empty(t, top)

		_, err = repo.ListRecent(ctx, 10)
		assert.ErrorIs(t, err, sql.ErrConnDone)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
