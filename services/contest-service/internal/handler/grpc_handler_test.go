package handler

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"dailyart/services/contest-service/internal/clock"
	"dailyart/services/contest-service/internal/models"
	"dailyart/services/contest-service/internal/repository"
	"dailyart/services/contest-service/internal/service"
	"dailyart/shared/pkg/auth"
)

func startContestServer(t *testing.T, contest *mockContestService, users *mockUserService) *ContestServiceClient {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(auth.UnaryServerInterceptor(tokenValidator{}, PublicMethods...)))
	RegisterContestHandler(srv, contest, users, testResolver())
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return NewContestServiceClient(conn)
}

func withToken(ctx context.Context, token string) context.Context {
	return metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+token)
}

func TestContestServer_CastVote(t *testing.T) {
	contest := &mockContestService{
		castVoteFunc: func(ctx context.Context, ballot service.Ballot) (*models.Vote, []*models.Submission, error) {
			assert.Equal(t, uint64(7), ballot.VoterID)
			assert.Equal(t, clock.Period(""), ballot.Period)
			vote := &models.Vote{
				ID:                      11,
				UserID:                  ballot.VoterID,
				ContestDate:             testPeriod,
				CastAt:                  testNow,
				FirstPlaceSubmissionID:  ballot.FirstID,
				SecondPlaceSubmissionID: ballot.SecondID,
				ThirdPlaceSubmissionID:  ballot.ThirdID,
			}
			first := sampleSubmission(ballot.FirstID, 1)
			first.Score = 5
			return vote, []*models.Submission{first}, nil
		},
	}
	client := startContestServer(t, contest, &mockUserService{})

	t.Run("requires session", func(t *testing.T) {
		_, err := client.CastVote(context.Background(), &CastVoteRequest{FirstID: 1, SecondID: 2, ThirdID: 3})
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	})

	t.Run("voter comes from the token", func(t *testing.T) {
		resp, err := client.CastVote(withToken(context.Background(), "token-7"), &CastVoteRequest{FirstID: 1, SecondID: 2, ThirdID: 3})
		require.NoError(t, err)
		assert.Equal(t, uint64(11), resp.Vote.ID)
		assert.Equal(t, uint64(7), resp.Vote.UserID)
		assert.Equal(t, "2026-10-16", resp.Vote.ContestDate)
		require.Len(t, resp.Submissions, 1)
		assert.Equal(t, int64(5), resp.Submissions[0].Score)
	})
}

func TestContestServer_ErrorCodes(t *testing.T) {
	tests := []struct {
		err  error
		code codes.Code
	}{
		{service.ErrIncompleteVote, codes.InvalidArgument},
		{service.ErrDuplicateSelection, codes.InvalidArgument},
		{fmt.Errorf("%w: bad period", service.ErrInvalidInput), codes.InvalidArgument},
		{service.ErrAlreadyVoted, codes.AlreadyExists},
		{fmt.Errorf("%w: %w", service.ErrDuplicateSubmission, repository.ErrDuplicateKey), codes.AlreadyExists},
		{service.ErrSelfVote, codes.PermissionDenied},
		{service.ErrUnknownSubmission, codes.NotFound},
		{service.ErrStaleSubmission, codes.Aborted},
		{fmt.Errorf("record vote: %w: %w", service.ErrStorageTimeout, repository.ErrTimeout), codes.DeadlineExceeded},
		{service.ErrStorageConstraintViolation, codes.Aborted},
		{fmt.Errorf("boom"), codes.Internal},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			contest := &mockContestService{
				castVoteFunc: func(ctx context.Context, ballot service.Ballot) (*models.Vote, []*models.Submission, error) {
					return nil, nil, tt.err
				},
			}
			client := startContestServer(t, contest, &mockUserService{})
			_, err := client.CastVote(withToken(context.Background(), "token-2"), &CastVoteRequest{FirstID: 1, SecondID: 2, ThirdID: 3})
			assert.Equal(t, tt.code, status.Code(err))
		})
	}
}

func TestContestServer_SelfVoteMessage(t *testing.T) {
	err := mapContestError(fmt.Errorf("slot 2: %w", service.ErrSelfVote))
	st, ok := status.FromError(err)
	require.True(t, ok)
	assert.Equal(t, codes.PermissionDenied, st.Code())
	assert.Equal(t, service.ErrSelfVote.Error(), st.Message())
}

func TestContestServer_GetTopNIsPublic(t *testing.T) {
	contest := &mockContestService{
		getTopNFunc: func(ctx context.Context, period clock.Period, n int) ([]*models.Submission, error) {
			assert.Equal(t, testPeriod, period)
			assert.Equal(t, service.PodiumSize, n)
			return []*models.Submission{sampleSubmission(4, 1), nil, nil}, nil
		},
	}
	client := startContestServer(t, contest, &mockUserService{})

	resp, err := client.GetTopN(context.Background(), &GetTopNRequest{})
	require.NoError(t, err)
	assert.Equal(t, "2026-10-16", resp.Period)
	require.Len(t, resp.Entries, 3)
	assert.Equal(t, uint64(4), resp.Entries[0].ID)
	assert.Nil(t, resp.Entries[1])
	assert.Nil(t, resp.Entries[2])
}

func TestContestServer_GetTopNBounds(t *testing.T) {
	contest := &mockContestService{
		getTopNFunc: func(ctx context.Context, period clock.Period, n int) ([]*models.Submission, error) {
			t.Errorf("service called with n=%d", n)
			return nil, nil
		},
	}
	client := startContestServer(t, contest, &mockUserService{})

	for _, n := range []int{-1, service.MaxTopN + 1, 1 << 50} {
		_, err := client.GetTopN(context.Background(), &GetTopNRequest{N: n})
		assert.Equal(t, codes.InvalidArgument, status.Code(err), "n=%d", n)
	}
}

func TestContestServer_GetTopNServiceRejection(t *testing.T) {
	contest := &mockContestService{
		getTopNFunc: func(ctx context.Context, period clock.Period, n int) ([]*models.Submission, error) {
			return nil, fmt.Errorf("%w: n must not exceed %d", service.ErrInvalidInput, service.MaxTopN)
		},
	}
	client := startContestServer(t, contest, &mockUserService{})

	_, err := client.GetTopN(context.Background(), &GetTopNRequest{N: 2})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestContestServer_SubmitEntry(t *testing.T) {
	contest := &mockContestService{
		submitEntryFunc: func(ctx context.Context, userID uint64, upload service.Upload) (*models.Submission, error) {
			assert.Equal(t, uint64(3), userID)
			assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, upload.Data)
			assert.Equal(t, "art.png", upload.Filename)
			sub := sampleSubmission(21, userID)
			sub.Title = upload.Title
			return sub, nil
		},
	}
	client := startContestServer(t, contest, &mockUserService{})

	resp, err := client.SubmitEntry(withToken(context.Background(), "token-3"), &SubmitEntryRequest{
		Title:    "Saucers",
		Filename: "art.png",
		Image:    []byte{0x89, 'P', 'N', 'G'},
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(21), resp.Submission.ID)
	assert.Equal(t, "Saucers", resp.Submission.Title)
	assert.Equal(t, "Alien Invasion", resp.Submission.Prompt)
}

func TestContestServer_VoteStatusAndClose(t *testing.T) {
	contest := &mockContestService{
		getUserVoteStatusFunc: func(ctx context.Context, userID uint64, period clock.Period) (*service.VoteStatus, error) {
			return &service.VoteStatus{Period: period, HasVoted: false}, nil
		},
		closePeriodFunc: func(ctx context.Context, period clock.Period) ([]*models.Submission, error) {
			assert.Equal(t, clock.Period("2026-10-15"), period)
			return []*models.Submission{sampleSubmission(1, 5)}, nil
		},
	}
	client := startContestServer(t, contest, &mockUserService{})
	ctx := withToken(context.Background(), "token-5")

	st, err := client.GetUserVoteStatus(ctx, &PeriodRequest{Period: "2026-10-14"})
	require.NoError(t, err)
	assert.Equal(t, "2026-10-14", st.Period)
	assert.False(t, st.HasVoted)
	assert.Nil(t, st.Vote)

	closed, err := client.ClosePeriod(ctx, &PeriodRequest{})
	require.NoError(t, err)
	assert.Equal(t, "2026-10-15", closed.Period)
	assert.Len(t, closed.Winners, 1)
}

func TestContestServer_Users(t *testing.T) {
	users := &mockUserService{
		registerFunc: func(ctx context.Context, reg service.Registration) (*models.User, error) {
			if reg.Username == "taken" {
				return nil, service.ErrUsernameTaken
			}
			return &models.User{ID: 9, Email: reg.Email, Username: reg.Username, PasswordHash: "hash"}, nil
		},
		loginFunc: func(ctx context.Context, email, password string) (*service.Session, error) {
			if password != "analytical" {
				return nil, service.ErrInvalidCredentials
			}
			return &service.Session{Token: "token-9", User: &models.User{ID: 9, Email: email}, ExpiresAt: testNow.Add(24 * time.Hour)}, nil
		},
		logoutFunc: func(ctx context.Context, token string) error {
			assert.Equal(t, "token-9", token)
			return nil
		},
		getUserFunc: func(ctx context.Context, id uint64) (*models.User, error) {
			if id != 9 {
				return nil, service.ErrUserNotFound
			}
			return &models.User{ID: 9, Email: "ada@example.com", Username: "ada_l", FirstPlaceWins: 2}, nil
		},
	}
	client := startContestServer(t, &mockContestService{}, users)
	ctx := context.Background()

	user, err := client.Register(ctx, &RegisterRequest{Email: "ada@example.com", Username: "ada_l", Password: "analytical", ConfirmPassword: "analytical"})
	require.NoError(t, err)
	assert.Equal(t, uint64(9), user.ID)
	assert.Equal(t, "ada@example.com", user.Email)

	_, err = client.Register(ctx, &RegisterRequest{Username: "taken"})
	assert.Equal(t, codes.AlreadyExists, status.Code(err))

	_, err = client.Login(ctx, &LoginRequest{Email: "ada@example.com", Password: "nope"})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	login, err := client.Login(ctx, &LoginRequest{Email: "ada@example.com", Password: "analytical"})
	require.NoError(t, err)
	assert.Equal(t, "token-9", login.Token)

	_, err = client.Logout(withToken(ctx, login.Token), &Empty{})
	require.NoError(t, err)

	profile, err := client.GetUser(ctx, &GetUserRequest{UserID: 9})
	require.NoError(t, err)
	assert.Empty(t, profile.Email)
	assert.Equal(t, int64(2), profile.FirstPlaceWins)

	_, err = client.GetUser(ctx, &GetUserRequest{UserID: 10})
	assert.Equal(t, codes.NotFound, status.Code(err))
}
