package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/bidhub/console-go/internal/bootstrap"
	apperrors "github.com/bidhub/console-go/internal/errors"
)

type commandFn func(ctx *commandContext, args []string) error

type command struct {
	name        string
	description string
	run         commandFn
}

type commandContext struct {
	Ctx    context.Context
	Logger *slog.Logger
	App    *bootstrap.App
}

const defaultCommandTimeout = 2 * time.Minute

func main() {
	logger := bootstrap.InitLogger()

	if len(os.Args) < 2 {
		if err := printUsage(); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when no command is provided
	}

	cmdName := os.Args[1]
	cmd, ok := commands()[cmdName]
	if !ok {
		if err := writef(os.Stderr, "unknown command %q\n\n", cmdName); err != nil {
			logger.Error("print unknown command message failed", "error", err)
		}
		if err := printUsage(); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when command is unknown
	}

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		logger.ErrorContext(context.Background(), "load config", "error", err)
		os.Exit(1) //nolint:forbidigo // CLI must signal configuration load failure to shell scripts
	}
	if cfg.IsDev {
		logger = bootstrap.InitDevLogger()
	}

	app, err := bootstrap.NewApp(bootstrap.AppOptions{Config: cfg, Logger: logger})
	if err != nil {
		logger.ErrorContext(context.Background(), "assemble client stack", "error", err)
		os.Exit(1) //nolint:forbidigo // CLI must signal assembly failure to shell scripts
	}

	cmdCtx := &commandContext{
		Ctx:    context.Background(),
		Logger: logger,
		App:    app,
	}
	if runErr := cmd.run(cmdCtx, os.Args[2:]); runErr != nil {
		runErr = apperrors.MapAPIError(runErr)
		logger.ErrorContext(cmdCtx.Ctx, "command failed",
			"command", cmdName,
			"code", apperrors.CodeOf(runErr),
			"error", runErr,
		)
		os.Exit(1) //nolint:forbidigo // CLI must propagate command failure to shell scripts
	}
}

func commands() map[string]command {
	return map[string]command{
		"login": {
			name:        "login",
			description: "Authenticate against the remote API and persist the issued tokens",
			run:         runLogin,
		},
		"logout": {
			name:        "logout",
			description: "End the session and clear persisted tokens",
			run:         runLogout,
		},
		"whoami": {
			name:        "whoami",
			description: "Show the identity behind the current session",
			run:         runWhoami,
		},
		"users": {
			name:        "users",
			description: "List users with paging, search and sort",
			run:         runUsersList,
		},
		"user-count": {
			name:        "user-count",
			description: "Count users, optionally filtered by search",
			run:         runUserCount,
		},
		"user-get": {
			name:        "user-get",
			description: "Show one user record by id",
			run:         runUserGet,
		},
		"user-create": {
			name:        "user-create",
			description: "Register a new user (admin only)",
			run:         runUserCreate,
		},
		"user-update": {
			name:        "user-update",
			description: "Update a user record (admin only)",
			run:         runUserUpdate,
		},
		"user-delete": {
			name:        "user-delete",
			description: "Delete a user record (admin only)",
			run:         runUserDelete,
		},
		"roles": {
			name:        "roles",
			description: "List the roles known to the remote API (admin only)",
			run:         runRoles,
		},
	}
}

func printUsage() error {
	if err := writef(os.Stdout, "Usage: console <command> [flags]\n\n"); err != nil {
		return err
	}
	if err := writef(os.Stdout, "Available commands:\n"); err != nil {
		return err
	}
	cmds := commands()
	names := make([]string, 0, len(cmds))
	for name := range cmds {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		c := cmds[name]
		if err := writef(os.Stdout, "  %-14s %s\n", c.name, c.description); err != nil {
			return err
		}
	}
	return nil
}

func writef(w io.Writer, format string, args ...any) error {
	if _, err := fmt.Fprintf(w, format, args...); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
