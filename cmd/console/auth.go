package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/bidhub/console-go/internal/guard"
)

type loginOptions struct {
	Username string
	Password string
}

func parseLoginFlags(args []string) (loginOptions, error) {
	var opts loginOptions
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.StringVar(&opts.Username, "username", "", "account username")
	fs.StringVar(&opts.Password, "password", "", "account password (prompted when omitted)")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	return opts, nil
}

func runLogin(cmdCtx *commandContext, args []string) error {
	opts, err := parseLoginFlags(args)
	if err != nil {
		return err
	}

	reader := bufio.NewReader(os.Stdin)
	if opts.Username == "" {
		if err := writef(os.Stdout, "Username: "); err != nil {
			return err
		}
		line, readErr := reader.ReadString('\n')
		if readErr != nil {
			return fmt.Errorf("read username: %w", readErr)
		}
		opts.Username = strings.TrimSpace(line)
	}
	if opts.Password == "" {
		if err := writef(os.Stdout, "Password: "); err != nil {
			return err
		}
		line, readErr := reader.ReadString('\n')
		if readErr != nil {
			return fmt.Errorf("read password: %w", readErr)
		}
		opts.Password = strings.TrimRight(line, "\r\n")
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, defaultCommandTimeout)
	defer cancel()

	identity, err := cmdCtx.App.Users.Login().Do(ctx, opts.Username, opts.Password)
	if err != nil {
		return err
	}

	return writef(os.Stdout, "Logged in as %s\n", identity.Username)
}

func runLogout(cmdCtx *commandContext, _ []string) error {
	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, defaultCommandTimeout)
	defer cancel()

	if err := resolveSession(ctx, cmdCtx); err != nil {
		return err
	}
	if err := cmdCtx.App.Users.Logout().Do(ctx); err != nil {
		return err
	}
	return writef(os.Stdout, "Logged out\n")
}

func runWhoami(cmdCtx *commandContext, _ []string) error {
	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, defaultCommandTimeout)
	defer cancel()

	if err := resolveSession(ctx, cmdCtx); err != nil {
		return err
	}

	sessions := cmdCtx.App.Sessions
	u, ok := sessions.CurrentUser()
	if !ok {
		return writef(os.Stdout, "Not logged in (session: %s)\n", sessions.Status())
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	if err := writef(w, "ID\t%s\n", u.ID); err != nil {
		return err
	}
	if err := writef(w, "Username\t%s\n", u.Username); err != nil {
		return err
	}
	if u.Email != "" {
		if err := writef(w, "Email\t%s\n", u.Email); err != nil {
			return err
		}
	}
	roleNames := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		roleNames = append(roleNames, r.Name)
	}
	if err := writef(w, "Roles\t%s\n", strings.Join(roleNames, ", ")); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	return nil
}

// resolveSession settles the session before any dependent command runs.
func resolveSession(ctx context.Context, cmdCtx *commandContext) error {
	if err := cmdCtx.App.Sessions.Resolve(ctx); err != nil {
		return err
	}
	return cmdCtx.App.Sessions.WaitUntilResolved(ctx)
}

// requireUser gates a command on any authenticated session.
func requireUser(ctx context.Context, cmdCtx *commandContext) error {
	if err := resolveSession(ctx, cmdCtx); err != nil {
		return err
	}
	composer := guard.MustNewComposer(guard.ComposerOptions{
		Guards: []guard.Guard{guard.UserGuard(cmdCtx.App.Sessions)},
	})
	return guardError(composer.Check())
}

// requireAdmin gates a command on an authenticated admin session.
func requireAdmin(ctx context.Context, cmdCtx *commandContext) error {
	if err := resolveSession(ctx, cmdCtx); err != nil {
		return err
	}
	composer := guard.MustNewComposer(guard.ComposerOptions{
		Guards: []guard.Guard{guard.AdminGuard(cmdCtx.App.Sessions)},
	})
	return guardError(composer.Check())
}

func guardError(decision guard.Decision) error {
	if decision.Allowed {
		return nil
	}
	if decision.RedirectTo == guard.DefaultFallbackPath {
		return errors.New("access denied: run `console login` with an authorized account")
	}
	return fmt.Errorf("access denied: see %s", decision.RedirectTo)
}
