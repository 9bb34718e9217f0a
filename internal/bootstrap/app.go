// Package bootstrap wires configuration into the client stack: credential
// store, request engine, session controller and the user API bindings.
package bootstrap

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/bidhub/console-go/config"
	"github.com/bidhub/console-go/internal/api"
	"github.com/bidhub/console-go/internal/credentials"
	"github.com/bidhub/console-go/internal/engine"
	"github.com/bidhub/console-go/internal/listview"
	"github.com/bidhub/console-go/internal/session"
)

// App is the assembled authenticated request layer.
type App struct {
	Config   config.AppConfig
	Logger   *slog.Logger
	Store    credentials.Store
	Client   *engine.Client
	Sessions *session.Controller
	Users    *api.UserService
}

// AppOptions bundles inputs for NewApp.
type AppOptions struct {
	Config config.AppConfig
	Logger *slog.Logger
}

// NewApp builds the full client stack from configuration. Nothing touches
// the network yet; the session stays Unknown until Sessions.Resolve runs.
func NewApp(opts AppOptions) (*App, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	store, err := BuildCredentialStore(opts.Config)
	if err != nil {
		return nil, fmt.Errorf("build credential store: %w", err)
	}

	client, err := engine.NewClient(engine.ClientOptions{
		BaseURL:   opts.Config.API.BaseURL,
		Store:     store,
		Logger:    logger,
		Timeout:   opts.Config.API.Timeout,
		UserAgent: opts.Config.API.UserAgent,
	})
	if err != nil {
		return nil, fmt.Errorf("build engine client: %w", err)
	}

	sessions, err := session.NewController(session.ControllerOptions{
		Client: client,
		Logger: logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build session controller: %w", err)
	}

	users, err := api.NewUserService(api.UserServiceOptions{
		Client:   client,
		Sessions: sessions,
		Logger:   logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build user service: %w", err)
	}

	return &App{
		Config:   opts.Config,
		Logger:   logger,
		Store:    store,
		Client:   client,
		Sessions: sessions,
		Users:    users,
	}, nil
}

// NewListView builds a user list controller over the assembled user
// service, applying the configured page size and search debounce. Each
// caller owns its controller and must Close it.
func (a *App) NewListView() (*listview.Controller, error) {
	return listview.NewController(listview.ControllerOptions{
		Users:          a.Users,
		PageSize:       a.Config.List.PageSize,
		SearchDebounce: a.Config.List.SearchDebounce,
		Logger:         a.Logger,
	})
}

// BuildCredentialStore creates the credential store selected by
// configuration.
//
//nolint:ireturn // callers program against the Store port, not a concrete backend.
func BuildCredentialStore(cfg config.AppConfig) (credentials.Store, error) {
	switch cfg.Credentials.Backend {
	case config.BackendFile, "":
		path := cfg.Credentials.FilePath
		if path == "" {
			defaultPath, err := credentials.DefaultCredentialsPath()
			if err != nil {
				return nil, err
			}
			path = defaultPath
		}
		return credentials.NewFileStore(path)

	case config.BackendRedis:
		client := newRedisClient(cfg.Redis)
		return credentials.NewRedisStoreWithKey(client, cfg.Credentials.RedisKey), nil

	case config.BackendMemory:
		return credentials.NewMemoryStore(), nil

	default:
		return nil, errors.New("unknown credential backend")
	}
}

// newRedisClient builds a Redis client from configuration.
//
//nolint:ireturn // returning redis.UniversalClient keeps sentinel support flexible.
func newRedisClient(cfg config.RedisConfig) redis.UniversalClient {
	if cfg.UseSentinel {
		return redis.NewFailoverClient(&redis.FailoverOptions{
			MasterName:    cfg.SentinelMasterName,
			SentinelAddrs: cfg.SentinelNodes,
			Password:      cfg.Password,
			DB:            cfg.DB,
		})
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}
