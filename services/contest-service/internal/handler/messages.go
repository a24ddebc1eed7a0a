package handler

import (
	"time"

	"dailyart/services/contest-service/internal/models"
	"dailyart/services/contest-service/internal/service"
)

// Messages of contest.ContestService. They travel as JSON through the
// grpcjson codec and are reused as HTTP response bodies.

type SubmitEntryRequest struct {
	Title    string `json:"title"`
	Filename string `json:"filename"`
	Image    []byte `json:"image"`
}

type SubmitEntryResponse struct {
	Submission *SubmissionResource `json:"submission"`
}

type CastVoteRequest struct {
	Period   string `json:"period,omitempty"`
	FirstID  uint64 `json:"first_place_submission_id"`
	SecondID uint64 `json:"second_place_submission_id"`
	ThirdID  uint64 `json:"third_place_submission_id"`
}

type CastVoteResponse struct {
	Vote        *VoteResource         `json:"vote"`
	Submissions []*SubmissionResource `json:"submissions"`
}

type GetTopNRequest struct {
	Period string `json:"period,omitempty"`
	N      int    `json:"n"`
}

// GetTopNResponse always has N entries; missing places are null.
type GetTopNResponse struct {
	Period  string                `json:"period"`
	Entries []*SubmissionResource `json:"entries"`
}

type PeriodRequest struct {
	Period string `json:"period,omitempty"`
}

type VoteStatusResponse struct {
	Period   string        `json:"period"`
	HasVoted bool          `json:"has_voted"`
	Vote     *VoteResource `json:"vote,omitempty"`
}

type ListEntriesResponse struct {
	Period  string                `json:"period"`
	Entries []*SubmissionResource `json:"entries"`
}

type PromptResponse struct {
	Period string `json:"period"`
	Prompt string `json:"prompt"`
}

type ClosePeriodResponse struct {
	Period  string                `json:"period"`
	Winners []*SubmissionResource `json:"winners"`
}

type RegisterRequest struct {
	Email           string `json:"email"`
	Username        string `json:"username"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expires_at"`
	User      *UserResource `json:"user"`
}

type GetUserRequest struct {
	UserID uint64 `json:"user_id"`
}

type GeneratePasswordResponse struct {
	Password string `json:"password"`
}

type Empty struct{}

type SubmissionResource struct {
	ID               uint64    `json:"id"`
	UserID           uint64    `json:"user_id"`
	ImageRef         string    `json:"image_ref"`
	ThumbnailRef     string    `json:"thumbnail_ref,omitempty"`
	Title            string    `json:"title"`
	ContestDate      string    `json:"contest_date"`
	SubmittedAt      time.Time `json:"submitted_at"`
	Prompt           string    `json:"prompt"`
	Score            int64     `json:"score"`
	FirstPlaceVotes  int64     `json:"first_place_votes"`
	SecondPlaceVotes int64     `json:"second_place_votes"`
	ThirdPlaceVotes  int64     `json:"third_place_votes"`
}

type VoteResource struct {
	ID                      uint64    `json:"id"`
	UserID                  uint64    `json:"user_id"`
	ContestDate             string    `json:"contest_date"`
	CastAt                  time.Time `json:"cast_at"`
	FirstPlaceSubmissionID  uint64    `json:"first_place_submission_id"`
	SecondPlaceSubmissionID uint64    `json:"second_place_submission_id"`
	ThirdPlaceSubmissionID  uint64    `json:"third_place_submission_id"`
}

// UserResource never carries the password hash.
type UserResource struct {
	ID              uint64    `json:"id"`
	Username        string    `json:"username"`
	Email           string    `json:"email,omitempty"`
	FirstPlaceWins  int64     `json:"first_place_wins"`
	SecondPlaceWins int64     `json:"second_place_wins"`
	ThirdPlaceWins  int64     `json:"third_place_wins"`
	CreatedAt       time.Time `json:"created_at"`
}

func buildSubmissionResource(s *models.Submission) *SubmissionResource {
	if s == nil {
		return nil
	}
	return &SubmissionResource{
		ID:               s.ID,
		UserID:           s.UserID,
		ImageRef:         s.ImageRef,
		ThumbnailRef:     s.ThumbnailRef,
		Title:            s.Title,
		ContestDate:      string(s.ContestDate),
		SubmittedAt:      s.SubmittedAt,
		Prompt:           s.Prompt,
		Score:            s.Score,
		FirstPlaceVotes:  s.FirstPlaceVotes,
		SecondPlaceVotes: s.SecondPlaceVotes,
		ThirdPlaceVotes:  s.ThirdPlaceVotes,
	}
}

// buildSubmissionResources keeps nil entries so podium padding survives.
func buildSubmissionResources(subs []*models.Submission) []*SubmissionResource {
	out := make([]*SubmissionResource, len(subs))
	for i, s := range subs {
		out[i] = buildSubmissionResource(s)
	}
	return out
}

func buildVoteResource(v *models.Vote) *VoteResource {
	if v == nil {
		return nil
	}
	return &VoteResource{
		ID:                      v.ID,
		UserID:                  v.UserID,
		ContestDate:             string(v.ContestDate),
		CastAt:                  v.CastAt,
		FirstPlaceSubmissionID:  v.FirstPlaceSubmissionID,
		SecondPlaceSubmissionID: v.SecondPlaceSubmissionID,
		ThirdPlaceSubmissionID:  v.ThirdPlaceSubmissionID,
	}
}

func buildUserResource(u *models.User, withEmail bool) *UserResource {
	if u == nil {
		return nil
	}
	res := &UserResource{
		ID:              u.ID,
		Username:        u.Username,
		FirstPlaceWins:  u.FirstPlaceWins,
		SecondPlaceWins: u.SecondPlaceWins,
		ThirdPlaceWins:  u.ThirdPlaceWins,
		CreatedAt:       u.CreatedAt,
	}
	if withEmail {
		res.Email = u.Email
	}
	return res
}

func buildVoteStatusResponse(st *service.VoteStatus) *VoteStatusResponse {
	return &VoteStatusResponse{
		Period:   string(st.Period),
		HasVoted: st.HasVoted,
		Vote:     buildVoteResource(st.Vote),
	}
}
