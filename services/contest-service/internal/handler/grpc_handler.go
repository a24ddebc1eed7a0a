package handler

import (
	"context"
	"errors"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"dailyart/services/contest-service/internal/clock"
	"dailyart/services/contest-service/internal/service"
	"dailyart/shared/pkg/auth"
	"dailyart/shared/pkg/helpers"
)

type contestHandler struct {
	UnimplementedContestServiceServer
	contestService service.ContestService
	userService    service.UserService
	resolver       *clock.Resolver
}

// NewContestServer adapts the contest and user services to ContestServiceServer.
// The HTTP handler calls it in-process.
func NewContestServer(contestService service.ContestService, userService service.UserService, resolver *clock.Resolver) ContestServiceServer {
	return &contestHandler{
		contestService: contestService,
		userService:    userService,
		resolver:       resolver,
	}
}

func RegisterContestHandler(grpcServer *grpc.Server, contestService service.ContestService, userService service.UserService, resolver *clock.Resolver) {
	RegisterContestServiceServer(grpcServer, NewContestServer(contestService, userService, resolver))
}

func (h *contestHandler) periodOrToday(p string) clock.Period {
	if p == "" {
		return h.resolver.Today()
	}
	return clock.Period(p)
}

func (h *contestHandler) SubmitEntry(ctx context.Context, req *SubmitEntryRequest) (*SubmitEntryResponse, error) {
	user, err := auth.GetUserFromContext(ctx)
	if err != nil {
		return nil, err
	}

	sub, err := h.contestService.SubmitEntry(ctx, user.UserID, service.Upload{
		Data:     req.Image,
		Filename: req.Filename,
		Title:    req.Title,
	})
	if err != nil {
		return nil, mapContestError(err)
	}
	return &SubmitEntryResponse{Submission: buildSubmissionResource(sub)}, nil
}

func (h *contestHandler) CastVote(ctx context.Context, req *CastVoteRequest) (*CastVoteResponse, error) {
	user, err := auth.GetUserFromContext(ctx)
	if err != nil {
		return nil, err
	}

	vote, updated, err := h.contestService.CastVote(ctx, service.Ballot{
		VoterID:  user.UserID,
		Period:   clock.Period(req.Period),
		FirstID:  req.FirstID,
		SecondID: req.SecondID,
		ThirdID:  req.ThirdID,
	})
	if err != nil {
		return nil, mapContestError(err)
	}
	return &CastVoteResponse{
		Vote:        buildVoteResource(vote),
		Submissions: buildSubmissionResources(updated),
	}, nil
}

func (h *contestHandler) GetTopN(ctx context.Context, req *GetTopNRequest) (*GetTopNResponse, error) {
	n := req.N
	if n == 0 {
		n = service.PodiumSize
	}
	if n < 0 || n > service.MaxTopN {
		return nil, status.Errorf(codes.InvalidArgument, "n must be between 1 and %d", service.MaxTopN)
	}
	period := h.periodOrToday(req.Period)

	podium, err := h.contestService.GetTopN(ctx, period, n)
	if err != nil {
		return nil, mapContestError(err)
	}
	return &GetTopNResponse{Period: string(period), Entries: buildSubmissionResources(podium)}, nil
}

func (h *contestHandler) GetUserVoteStatus(ctx context.Context, req *PeriodRequest) (*VoteStatusResponse, error) {
	user, err := auth.GetUserFromContext(ctx)
	if err != nil {
		return nil, err
	}

	st, err := h.contestService.GetUserVoteStatus(ctx, user.UserID, h.periodOrToday(req.Period))
	if err != nil {
		return nil, mapContestError(err)
	}
	return buildVoteStatusResponse(st), nil
}

func (h *contestHandler) ListEntries(ctx context.Context, req *PeriodRequest) (*ListEntriesResponse, error) {
	period := h.periodOrToday(req.Period)
	entries, err := h.contestService.ListEntries(ctx, period)
	if err != nil {
		return nil, mapContestError(err)
	}
	return &ListEntriesResponse{Period: string(period), Entries: buildSubmissionResources(entries)}, nil
}

func (h *contestHandler) GetPrompt(ctx context.Context, req *PeriodRequest) (*PromptResponse, error) {
	period, prompt, err := h.contestService.GetPrompt(ctx, clock.Period(req.Period))
	if err != nil {
		return nil, mapContestError(err)
	}
	return &PromptResponse{Period: string(period), Prompt: prompt}, nil
}

func (h *contestHandler) ClosePeriod(ctx context.Context, req *PeriodRequest) (*ClosePeriodResponse, error) {
	if _, err := auth.GetUserFromContext(ctx); err != nil {
		return nil, err
	}

	period := clock.Period(req.Period)
	if period == "" {
		period = h.resolver.Yesterday()
	}
	winners, err := h.contestService.ClosePeriod(ctx, period)
	if err != nil {
		return nil, mapContestError(err)
	}
	return &ClosePeriodResponse{Period: string(period), Winners: buildSubmissionResources(winners)}, nil
}

func (h *contestHandler) Register(ctx context.Context, req *RegisterRequest) (*UserResource, error) {
	user, err := h.userService.Register(ctx, service.Registration{
		Email:           req.Email,
		Username:        req.Username,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		return nil, mapContestError(err)
	}
	return buildUserResource(user, true), nil
}

func (h *contestHandler) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	session, err := h.userService.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, mapContestError(err)
	}
	return &LoginResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		User:      buildUserResource(session.User, true),
	}, nil
}

func (h *contestHandler) Logout(ctx context.Context, _ *Empty) (*Empty, error) {
	user, err := auth.GetUserFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := h.userService.Logout(ctx, user.Token); err != nil {
		return nil, mapContestError(err)
	}
	return &Empty{}, nil
}

func (h *contestHandler) GetUser(ctx context.Context, req *GetUserRequest) (*UserResource, error) {
	if req.UserID == 0 {
		return nil, status.Error(codes.InvalidArgument, "user_id is required")
	}
	user, err := h.userService.GetUser(ctx, req.UserID)
	if err != nil {
		return nil, mapContestError(err)
	}
	return buildUserResource(user, false), nil
}

func (h *contestHandler) GeneratePassword(ctx context.Context, _ *Empty) (*GeneratePasswordResponse, error) {
	pw, err := h.userService.GeneratePassword()
	if err != nil {
		return nil, mapContestError(err)
	}
	return &GeneratePasswordResponse{Password: pw}, nil
}

func mapContestError(err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		if summary, _, ok := helpers.FieldErrors(err); ok {
			return status.Error(codes.InvalidArgument, summary)
		}
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, service.ErrIncompleteVote),
		errors.Is(err, service.ErrDuplicateSelection),
		errors.Is(err, service.ErrInvalidReference):
		return status.Error(codes.InvalidArgument, rootMessage(err))
	case errors.Is(err, service.ErrDuplicateSubmission),
		errors.Is(err, service.ErrAlreadyVoted),
		errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, service.ErrUsernameTaken),
		errors.Is(err, service.ErrPeriodAlreadyClosed):
		return status.Error(codes.AlreadyExists, rootMessage(err))
	case errors.Is(err, service.ErrSelfVote):
		return status.Error(codes.PermissionDenied, rootMessage(err))
	case errors.Is(err, service.ErrUnknownSubmission), errors.Is(err, service.ErrUserNotFound):
		return status.Error(codes.NotFound, rootMessage(err))
	case errors.Is(err, service.ErrStaleSubmission), errors.Is(err, service.ErrStorageConstraintViolation):
		return status.Error(codes.Aborted, rootMessage(err))
	case errors.Is(err, service.ErrStorageTimeout):
		return status.Error(codes.DeadlineExceeded, "storage timeout, please retry")
	case errors.Is(err, service.ErrPeriodOpen):
		return status.Error(codes.FailedPrecondition, rootMessage(err))
	case errors.Is(err, service.ErrInvalidCredentials):
		return status.Error(codes.Unauthenticated, rootMessage(err))
	default:
		return status.Errorf(codes.Internal, "operation failed: %v", err)
	}
}

// rootMessage returns the message of the first sentinel in the chain.
func rootMessage(err error) string {
	for _, sentinel := range []error{
		service.ErrIncompleteVote,
		service.ErrDuplicateSelection,
		service.ErrInvalidReference,
		service.ErrDuplicateSubmission,
		service.ErrAlreadyVoted,
		service.ErrEmailTaken,
		service.ErrUsernameTaken,
		service.ErrPeriodAlreadyClosed,
		service.ErrSelfVote,
		service.ErrUnknownSubmission,
		service.ErrUserNotFound,
		service.ErrStaleSubmission,
		service.ErrStorageConstraintViolation,
		service.ErrPeriodOpen,
		service.ErrInvalidCredentials,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}
