package api

import (
	"context"
	"errors"
	"log/slog"

	"github.com/bidhub/console-go/internal/domain/user"
	"github.com/bidhub/console-go/internal/engine"
	"github.com/bidhub/console-go/internal/query"
	"github.com/bidhub/console-go/internal/session"
)

// UserService builds the typed call sites for the user endpoints. Each
// method returns a fresh operation bound to its verb and path; call sites
// own their request state independently.
type UserService struct {
	client   *engine.Client
	sessions *session.Controller
	logger   *slog.Logger
}

// UserServiceOptions bundles dependencies for NewUserService.
type UserServiceOptions struct {
	// Client is the request engine. Required.
	Client *engine.Client

	// Sessions is the session controller login/logout report into. Required.
	Sessions *session.Controller

	// Logger defaults to slog.Default when nil.
	Logger *slog.Logger
}

// NewUserService creates the user API bindings.
func NewUserService(opts UserServiceOptions) (*UserService, error) {
	if opts.Client == nil {
		return nil, errors.New("engine client is required")
	}
	if opts.Sessions == nil {
		return nil, errors.New("session controller is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &UserService{
		client:   opts.Client,
		sessions: opts.Sessions,
		logger:   logger,
	}, nil
}

// MustNewUserService is like NewUserService but panics on error.
func MustNewUserService(opts UserServiceOptions) *UserService {
	s, err := NewUserService(opts)
	if err != nil {
		panic(err)
	}
	return s
}

// CurrentUser binds GET users/me.
func (s *UserService) CurrentUser() *engine.Read[user.User] {
	return engine.NewRead(s.client, "users/me", user.User{})
}

// GetUser binds GET users/{id}.
func (s *UserService) GetUser(id string) *engine.Read[user.User] {
	return engine.NewRead(s.client, "users/"+id, user.User{})
}

// CountUsers binds GET users/count. The count honours the same search
// filter as the list.
func (s *UserService) CountUsers() *engine.Read[int] {
	return engine.NewRead(s.client, "users/count", 0)
}

// ListUsers binds the paginated GET users/ read.
func (s *UserService) ListUsers() *ListUsersOperation {
	return &ListUsersOperation{
		op: engine.NewRead(s.client, "users/", []ListUser{}),
	}
}

// CreateUser binds POST users/register.
func (s *UserService) CreateUser() *CreateUserOperation {
	return &CreateUserOperation{
		op: engine.NewMutation(s.client, "POST", "users/register", user.User{}),
	}
}

// UpdateUser binds PATCH users/{id}.
func (s *UserService) UpdateUser(id string) *UpdateUserOperation {
	return &UpdateUserOperation{
		op: engine.NewMutation(s.client, "PATCH", "users/"+id, user.User{}),
	}
}

// DeleteUser binds DELETE users/{id}.
func (s *UserService) DeleteUser(id string) *engine.Mutation[user.User] {
	return engine.NewMutation(s.client, "DELETE", "users/"+id, user.User{})
}

// ListRoles binds GET roles.
func (s *UserService) ListRoles() *engine.Read[[]RoleDTO] {
	return engine.NewRead(s.client, "roles", []RoleDTO{})
}

// ListUsersOperation is the paginated list call site. Get merges the default
// page and limit under any caller-supplied parameters before delegating to
// the engine.
type ListUsersOperation struct {
	op *engine.Read[[]ListUser]
}

// Get triggers the list read. Overrides may be nil.
func (l *ListUsersOperation) Get(ctx context.Context, overrides engine.Params) engine.Settlement[[]ListUser] {
	params := engine.Params{
		"page":  0,
		"limit": query.DefaultPageSize,
	}
	for k, v := range overrides {
		params[k] = v
	}
	return l.op.Get(ctx, params)
}

// GetQuery triggers the list read from a structured list query.
func (l *ListUsersOperation) GetQuery(ctx context.Context, q query.ListQuery) engine.Settlement[[]ListUser] {
	params := engine.Params{
		"page":  q.Page,
		"limit": q.Limit,
	}
	if q.Sort != "" {
		params["sort"] = q.Sort
	}
	if q.Search != "" {
		params["search"] = q.Search
	}
	return l.op.Get(ctx, params)
}

// State returns the visible call-site state.
func (l *ListUsersOperation) State() engine.State[[]ListUser] { return l.op.State() }

// Subscribe registers for state change notifications.
func (l *ListUsersOperation) Subscribe() (func(), <-chan struct{}) { return l.op.Subscribe() }

// CreateUserOperation is the typed users/register call site.
type CreateUserOperation struct {
	op *engine.Mutation[user.User]
}

// Create validates and submits the registration payload.
func (c *CreateUserOperation) Create(ctx context.Context, req CreateUserRequest) (engine.Settlement[user.User], error) {
	if err := req.Validate(); err != nil {
		return engine.Settlement[user.User]{}, err
	}
	settlement := c.op.Mutate(ctx, req)
	return settlement, settlement.Err
}

// State returns the visible call-site state.
func (c *CreateUserOperation) State() engine.State[user.User] { return c.op.State() }

// UpdateUserOperation is the typed users/{id} PATCH call site.
type UpdateUserOperation struct {
	op *engine.Mutation[user.User]
}

// Update validates and submits the update payload.
func (u *UpdateUserOperation) Update(ctx context.Context, req UpdateUserRequest) (engine.Settlement[user.User], error) {
	if err := req.Validate(); err != nil {
		return engine.Settlement[user.User]{}, err
	}
	settlement := u.op.Mutate(ctx, req)
	return settlement, settlement.Err
}

// State returns the visible call-site state.
func (u *UpdateUserOperation) State() engine.State[user.User] { return u.op.State() }
