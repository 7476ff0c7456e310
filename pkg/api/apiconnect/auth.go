package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/pkg/api"
)

// AuthServiceName is the fully-qualified name of the AuthService.
const AuthServiceName = "splitledger.v1.AuthService"

// Procedure paths of the AuthService.
const (
	AuthServiceRegisterProcedure       = "/splitledger.v1.AuthService/Register"
	AuthServiceLoginProcedure          = "/splitledger.v1.AuthService/Login"
	AuthServiceGetCurrentUserProcedure = "/splitledger.v1.AuthService/GetCurrentUser"
	AuthServiceSearchUsersProcedure    = "/splitledger.v1.AuthService/SearchUsers"
)

// AuthServiceHandler is implemented by the server side of the AuthService.
// AuthService registers accounts and issues session tokens.
type AuthServiceHandler interface {
	Register(context.Context, *connect.Request[api.RegisterRequest]) (*connect.Response[api.RegisterResponse], error)
	Login(context.Context, *connect.Request[api.LoginRequest]) (*connect.Response[api.LoginResponse], error)
	GetCurrentUser(context.Context, *connect.Request[api.GetCurrentUserRequest]) (*connect.Response[api.GetCurrentUserResponse], error)
	SearchUsers(context.Context, *connect.Request[api.SearchUsersRequest]) (*connect.Response[api.SearchUsersResponse], error)
}

// NewAuthServiceHandler builds an HTTP handler serving svc. It returns the path
// prefix to mount it on.
func NewAuthServiceHandler(svc AuthServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{WithJSON()}, opts...)
	mux := http.NewServeMux()
	mux.Handle(AuthServiceRegisterProcedure, connect.NewUnaryHandler(AuthServiceRegisterProcedure, svc.Register, opts...))
	mux.Handle(AuthServiceLoginProcedure, connect.NewUnaryHandler(AuthServiceLoginProcedure, svc.Login, opts...))
	mux.Handle(AuthServiceGetCurrentUserProcedure, connect.NewUnaryHandler(AuthServiceGetCurrentUserProcedure, svc.GetCurrentUser, opts...))
	mux.Handle(AuthServiceSearchUsersProcedure, connect.NewUnaryHandler(AuthServiceSearchUsersProcedure, svc.SearchUsers, opts...))
	return "/" + AuthServiceName + "/", mux
}

// AuthServiceClient is a client for the AuthService.
type AuthServiceClient interface {
	Register(context.Context, *connect.Request[api.RegisterRequest]) (*connect.Response[api.RegisterResponse], error)
	Login(context.Context, *connect.Request[api.LoginRequest]) (*connect.Response[api.LoginResponse], error)
	GetCurrentUser(context.Context, *connect.Request[api.GetCurrentUserRequest]) (*connect.Response[api.GetCurrentUserResponse], error)
	SearchUsers(context.Context, *connect.Request[api.SearchUsersRequest]) (*connect.Response[api.SearchUsersResponse], error)
}

// NewAuthServiceClient constructs a client for the AuthService at baseURL
// (for example, http://localhost:8080).
func NewAuthServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) AuthServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{WithJSON()}, opts...)
	return &authServiceClient{
		register:       connect.NewClient[api.RegisterRequest, api.RegisterResponse](httpClient, baseURL+AuthServiceRegisterProcedure, opts...),
		login:          connect.NewClient[api.LoginRequest, api.LoginResponse](httpClient, baseURL+AuthServiceLoginProcedure, opts...),
		getCurrentUser: connect.NewClient[api.GetCurrentUserRequest, api.GetCurrentUserResponse](httpClient, baseURL+AuthServiceGetCurrentUserProcedure, opts...),
		searchUsers:    connect.NewClient[api.SearchUsersRequest, api.SearchUsersResponse](httpClient, baseURL+AuthServiceSearchUsersProcedure, opts...),
	}
}

type authServiceClient struct {
	register       *connect.Client[api.RegisterRequest, api.RegisterResponse]
	login          *connect.Client[api.LoginRequest, api.LoginResponse]
	getCurrentUser *connect.Client[api.GetCurrentUserRequest, api.GetCurrentUserResponse]
	searchUsers    *connect.Client[api.SearchUsersRequest, api.SearchUsersResponse]
}

func (c *authServiceClient) Register(ctx context.Context, req *connect.Request[api.RegisterRequest]) (*connect.Response[api.RegisterResponse], error) {
	return c.register.CallUnary(ctx, req)
}

func (c *authServiceClient) Login(ctx context.Context, req *connect.Request[api.LoginRequest]) (*connect.Response[api.LoginResponse], error) {
	return c.login.CallUnary(ctx, req)
}

func (c *authServiceClient) GetCurrentUser(ctx context.Context, req *connect.Request[api.GetCurrentUserRequest]) (*connect.Response[api.GetCurrentUserResponse], error) {
	return c.getCurrentUser.CallUnary(ctx, req)
}

func (c *authServiceClient) SearchUsers(ctx context.Context, req *connect.Request[api.SearchUsersRequest]) (*connect.Response[api.SearchUsersResponse], error) {
	return c.searchUsers.CallUnary(ctx, req)
}
