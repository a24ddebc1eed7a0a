package models

import (
	"time"

	"dailyart/services/contest-service/internal/clock"
)

// User is a contest participant
type User struct {
	ID              uint64    `db:"id"`
	Email           string    `db:"email"`
	Username        string    `db:"username"`
	PasswordHash    string    `db:"password_hash"`
	FirstPlaceWins  int64     `db:"first_place_wins"`
	SecondPlaceWins int64     `db:"second_place_wins"`
	ThirdPlaceWins  int64     `db:"third_place_wins"`
	CreatedAt       time.Time `db:"created_at"`
}

// Submission is one user's entry for one contest period
type Submission struct {
	ID               uint64       `db:"id"`
	UserID           uint64       `db:"user_id"`
	ImageRef         string       `db:"image_ref"`
	ThumbnailRef     string       `db:"thumbnail_ref"`
	Title            string       `db:"title"`
	ContestDate      clock.Period `db:"contest_date"`
	SubmittedAt      time.Time    `db:"submitted_at"`
	Prompt           string       `db:"prompt"`
	Score            int64        `db:"score"`
	FirstPlaceVotes  int64        `db:"first_place_votes"`
	SecondPlaceVotes int64        `db:"second_place_votes"`
	ThirdPlaceVotes  int64        `db:"third_place_votes"`
}

// Vote is a voter's ranked ballot for one period. Votes are never modified.
type Vote struct {
	ID                      uint64       `db:"id"`
	UserID                  uint64       `db:"user_id"`
	ContestDate             clock.Period `db:"contest_date"`
	CastAt                  time.Time    `db:"cast_at"`
	FirstPlaceSubmissionID  uint64       `db:"first_place_submission_id"`
	SecondPlaceSubmissionID uint64       `db:"second_place_submission_id"`
	ThirdPlaceSubmissionID  uint64       `db:"third_place_submission_id"`
}

// SubmissionIDs returns the ballot in rank order.
func (v *Vote) SubmissionIDs() [3]uint64 {
	return [3]uint64{v.FirstPlaceSubmissionID, v.SecondPlaceSubmissionID, v.ThirdPlaceSubmissionID}
}

// ContestPrompt is the theme of a period
type ContestPrompt struct {
	ContestDate clock.Period `db:"contest_date"`
	Prompt      string       `db:"prompt"`
	UpdatedAt   time.Time    `db:"updated_at"`
}
