package handler

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"dailyart/shared/pkg/grpcjson"
)

const ContestServiceName = "contest.ContestService"

// Full method names of contest.ContestService.
const (
	MethodSubmitEntry       = "/" + ContestServiceName + "/SubmitEntry"
	MethodCastVote          = "/" + ContestServiceName + "/CastVote"
	MethodGetTopN           = "/" + ContestServiceName + "/GetTopN"
	MethodGetUserVoteStatus = "/" + ContestServiceName + "/GetUserVoteStatus"
	MethodListEntries       = "/" + ContestServiceName + "/ListEntries"
	MethodGetPrompt         = "/" + ContestServiceName + "/GetPrompt"
	MethodClosePeriod       = "/" + ContestServiceName + "/ClosePeriod"
	MethodRegister          = "/" + ContestServiceName + "/Register"
	MethodLogin             = "/" + ContestServiceName + "/Login"
	MethodLogout            = "/" + ContestServiceName + "/Logout"
	MethodGetUser           = "/" + ContestServiceName + "/GetUser"
	MethodGeneratePassword  = "/" + ContestServiceName + "/GeneratePassword"
)

// PublicMethods need no session token.
var PublicMethods = []string{
	MethodGetTopN,
	MethodListEntries,
	MethodGetPrompt,
	MethodRegister,
	MethodLogin,
	MethodGetUser,
	MethodGeneratePassword,
}

// ContestServiceServer is the server API for contest.ContestService.
type ContestServiceServer interface {
	SubmitEntry(context.Context, *SubmitEntryRequest) (*SubmitEntryResponse, error)
	CastVote(context.Context, *CastVoteRequest) (*CastVoteResponse, error)
	GetTopN(context.Context, *GetTopNRequest) (*GetTopNResponse, error)
	GetUserVoteStatus(context.Context, *PeriodRequest) (*VoteStatusResponse, error)
	ListEntries(context.Context, *PeriodRequest) (*ListEntriesResponse, error)
	GetPrompt(context.Context, *PeriodRequest) (*PromptResponse, error)
	ClosePeriod(context.Context, *PeriodRequest) (*ClosePeriodResponse, error)
	Register(context.Context, *RegisterRequest) (*UserResource, error)
	Login(context.Context, *LoginRequest) (*LoginResponse, error)
	Logout(context.Context, *Empty) (*Empty, error)
	GetUser(context.Context, *GetUserRequest) (*UserResource, error)
	GeneratePassword(context.Context, *Empty) (*GeneratePasswordResponse, error)
}

// UnimplementedContestServiceServer can be embedded to keep servers
// compiling when methods are added.
type UnimplementedContestServiceServer struct{}

func (UnimplementedContestServiceServer) SubmitEntry(context.Context, *SubmitEntryRequest) (*SubmitEntryResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method SubmitEntry not implemented")
}
func (UnimplementedContestServiceServer) CastVote(context.Context, *CastVoteRequest) (*CastVoteResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CastVote not implemented")
}
func (UnimplementedContestServiceServer) GetTopN(context.Context, *GetTopNRequest) (*GetTopNResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetTopN not implemented")
}
func (UnimplementedContestServiceServer) GetUserVoteStatus(context.Context, *PeriodRequest) (*VoteStatusResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetUserVoteStatus not implemented")
}
func (UnimplementedContestServiceServer) ListEntries(context.Context, *PeriodRequest) (*ListEntriesResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListEntries not implemented")
}
func (UnimplementedContestServiceServer) GetPrompt(context.Context, *PeriodRequest) (*PromptResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetPrompt not implemented")
}
func (UnimplementedContestServiceServer) ClosePeriod(context.Context, *PeriodRequest) (*ClosePeriodResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ClosePeriod not implemented")
}
func (UnimplementedContestServiceServer) Register(context.Context, *RegisterRequest) (*UserResource, error) {
	return nil, status.Error(codes.Unimplemented, "method Register not implemented")
}
func (UnimplementedContestServiceServer) Login(context.Context, *LoginRequest) (*LoginResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Login not implemented")
}
func (UnimplementedContestServiceServer) Logout(context.Context, *Empty) (*Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method Logout not implemented")
}
func (UnimplementedContestServiceServer) GetUser(context.Context, *GetUserRequest) (*UserResource, error) {
	return nil, status.Error(codes.Unimplemented, "method GetUser not implemented")
}
func (UnimplementedContestServiceServer) GeneratePassword(context.Context, *Empty) (*GeneratePasswordResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GeneratePassword not implemented")
}

// RegisterContestServiceServer registers srv on s.
func RegisterContestServiceServer(s grpc.ServiceRegistrar, srv ContestServiceServer) {
	s.RegisterService(&ContestServiceDesc, srv)
}

// unaryHandler adapts one typed method to the grpc.MethodDesc handler shape.
func unaryHandler[Req any, Resp any](fullMethod string, call func(ContestServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(ContestServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(ContestServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// ContestServiceDesc is the grpc.ServiceDesc for contest.ContestService.
var ContestServiceDesc = grpc.ServiceDesc{
	ServiceName: ContestServiceName,
	HandlerType: (*ContestServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "SubmitEntry", Handler: unaryHandler(MethodSubmitEntry, ContestServiceServer.SubmitEntry)},
		{MethodName: "CastVote", Handler: unaryHandler(MethodCastVote, ContestServiceServer.CastVote)},
		{MethodName: "GetTopN", Handler: unaryHandler(MethodGetTopN, ContestServiceServer.GetTopN)},
		{MethodName: "GetUserVoteStatus", Handler: unaryHandler(MethodGetUserVoteStatus, ContestServiceServer.GetUserVoteStatus)},
		{MethodName: "ListEntries", Handler: unaryHandler(MethodListEntries, ContestServiceServer.ListEntries)},
		{MethodName: "GetPrompt", Handler: unaryHandler(MethodGetPrompt, ContestServiceServer.GetPrompt)},
		{MethodName: "ClosePeriod", Handler: unaryHandler(MethodClosePeriod, ContestServiceServer.ClosePeriod)},
		{MethodName: "Register", Handler: unaryHandler(MethodRegister, ContestServiceServer.Register)},
		{MethodName: "Login", Handler: unaryHandler(MethodLogin, ContestServiceServer.Login)},
		{MethodName: "Logout", Handler: unaryHandler(MethodLogout, ContestServiceServer.Logout)},
		{MethodName: "GetUser", Handler: unaryHandler(MethodGetUser, ContestServiceServer.GetUser)},
		{MethodName: "GeneratePassword", Handler: unaryHandler(MethodGeneratePassword, ContestServiceServer.GeneratePassword)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "contest.proto",
}

// ContestServiceClient is the client API for contest.ContestService. Every
// call uses the JSON codec.
type ContestServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewContestServiceClient(cc grpc.ClientConnInterface) *ContestServiceClient {
	return &ContestServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in interface{}, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(grpcjson.Name)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ContestServiceClient) SubmitEntry(ctx context.Context, in *SubmitEntryRequest, opts ...grpc.CallOption) (*SubmitEntryResponse, error) {
	return invoke[SubmitEntryResponse](ctx, c.cc, MethodSubmitEntry, in, opts)
}

func (c *ContestServiceClient) CastVote(ctx context.Context, in *CastVoteRequest, opts ...grpc.CallOption) (*CastVoteResponse, error) {
	return invoke[CastVoteResponse](ctx, c.cc, MethodCastVote, in, opts)
}

func (c *ContestServiceClient) GetTopN(ctx context.Context, in *GetTopNRequest, opts ...grpc.CallOption) (*GetTopNResponse, error) {
	return invoke[GetTopNResponse](ctx, c.cc, MethodGetTopN, in, opts)
}

func (c *ContestServiceClient) GetUserVoteStatus(ctx context.Context, in *PeriodRequest, opts ...grpc.CallOption) (*VoteStatusResponse, error) {
	return invoke[VoteStatusResponse](ctx, c.cc, MethodGetUserVoteStatus, in, opts)
}

func (c *ContestServiceClient) ListEntries(ctx context.Context, in *PeriodRequest, opts ...grpc.CallOption) (*ListEntriesResponse, error) {
	return invoke[ListEntriesResponse](ctx, c.cc, MethodListEntries, in, opts)
}

func (c *ContestServiceClient) GetPrompt(ctx context.Context, in *PeriodRequest, opts ...grpc.CallOption) (*PromptResponse, error) {
	return invoke[PromptResponse](ctx, c.cc, MethodGetPrompt, in, opts)
}

func (c *ContestServiceClient) ClosePeriod(ctx context.Context, in *PeriodRequest, opts ...grpc.CallOption) (*ClosePeriodResponse, error) {
	return invoke[ClosePeriodResponse](ctx, c.cc, MethodClosePeriod, in, opts)
}

func (c *ContestServiceClient) Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*UserResource, error) {
	return invoke[UserResource](ctx, c.cc, MethodRegister, in, opts)
}

func (c *ContestServiceClient) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error) {
	return invoke[LoginResponse](ctx, c.cc, MethodLogin, in, opts)
}

func (c *ContestServiceClient) Logout(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, MethodLogout, in, opts)
}

func (c *ContestServiceClient) GetUser(ctx context.Context, in *GetUserRequest, opts ...grpc.CallOption) (*UserResource, error) {
	return invoke[UserResource](ctx, c.cc, MethodGetUser, in, opts)
}

func (c *ContestServiceClient) GeneratePassword(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*GeneratePasswordResponse, error) {
	return invoke[GeneratePasswordResponse](ctx, c.cc, MethodGeneratePassword, in, opts)
}
