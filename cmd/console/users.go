package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/bidhub/console-go/internal/api"
	"github.com/bidhub/console-go/internal/engine"
	"github.com/bidhub/console-go/internal/query"
)

type listUsersOptions struct {
	Page   int
	Limit  int
	Search string
	Sort   string
	Query  string
}

func parseListUsersFlags(args []string) (listUsersOptions, error) {
	var opts listUsersOptions
	fs := flag.NewFlagSet("users", flag.ContinueOnError)
	fs.IntVar(&opts.Page, "page", 0, "zero-based page to fetch")
	fs.IntVar(&opts.Limit, "limit", 0, "rows per page (100, 250 or 500; defaults to the configured page size)")
	fs.StringVar(&opts.Search, "search", "", "free-text filter")
	fs.StringVar(&opts.Sort, "sort", "", `sort order, e.g. "name DESC"`)
	fs.StringVar(&opts.Query, "query", "", "JMESPath expression applied to the rows before output")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	return opts, nil
}

func runUsersList(cmdCtx *commandContext, args []string) error {
	opts, err := parseListUsersFlags(args)
	if err != nil {
		return err
	}
	if err := validateProjection(opts.Query); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, defaultCommandTimeout)
	defer cancel()

	if err := requireUser(ctx, cmdCtx); err != nil {
		return err
	}

	lv, err := cmdCtx.App.NewListView()
	if err != nil {
		return err
	}
	defer lv.Close()

	q := lv.Query()
	if opts.Limit > 0 {
		q = q.WithLimit(opts.Limit)
	}
	q = q.WithSearch(opts.Search).WithPage(opts.Page)
	q.Sort = query.DecodeSort(opts.Sort).Encode()

	// Flags restore like a shared link: the search counts as settled, so no
	// debounce delays the fetch.
	lv.Restore(q.Values())
	if err := lv.Refresh(ctx); err != nil {
		return err
	}

	st := lv.State()
	if opts.Query != "" {
		return printProjection(os.Stdout, opts.Query, st.Rows)
	}
	if err := printUserTable(st.Rows); err != nil {
		return err
	}
	pages := st.TotalPages
	if pages == 0 {
		pages = 1
	}
	return writef(os.Stdout, "%d users, page %d of %d\n", st.Total, st.Query.Page+1, pages)
}

func printUserTable(rows []api.ListUser) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	if err := writef(w, "ID\tNAME\tEMAIL\tBIDS\tSUBSCRIPTION\tSTATUS\tRENEWAL\n"); err != nil {
		return err
	}
	for _, row := range rows {
		renewal := ""
		if !row.RenewalDate.IsZero() {
			renewal = row.RenewalDate.Format("2006-01-02")
		}
		subscription := row.SubscriptionType.Label()
		if row.SubscriptionTrial {
			subscription += " (trial)"
		}
		if err := writef(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			row.ID, row.Name, row.Email, row.BidCount,
			subscription, row.SubscriptionStatus.Label(), renewal,
		); err != nil {
			return err
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	return nil
}

type countUsersOptions struct {
	Search string
}

func runUserCount(cmdCtx *commandContext, args []string) error {
	var opts countUsersOptions
	fs := flag.NewFlagSet("user-count", flag.ContinueOnError)
	fs.StringVar(&opts.Search, "search", "", "free-text filter")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, defaultCommandTimeout)
	defer cancel()

	if err := requireUser(ctx, cmdCtx); err != nil {
		return err
	}

	params := engine.Params{}
	if opts.Search != "" {
		params["search"] = opts.Search
	}
	settled := cmdCtx.App.Users.CountUsers().Get(ctx, params)
	if settled.Err != nil {
		return settled.Err
	}
	return writef(os.Stdout, "%d\n", settled.Data)
}

func runUserGet(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("user-get", flag.ContinueOnError)
	var projection string
	fs.StringVar(&projection, "query", "", "JMESPath expression applied to the record before output")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: console user-get [flags] <id>")
	}
	if err := validateProjection(projection); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, defaultCommandTimeout)
	defer cancel()

	if err := requireUser(ctx, cmdCtx); err != nil {
		return err
	}

	settled := cmdCtx.App.Users.GetUser(fs.Arg(0)).Get(ctx, nil)
	if settled.Err != nil {
		return settled.Err
	}
	u := settled.Data

	if projection != "" {
		return printProjection(os.Stdout, projection, u)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	if err := writef(w, "ID\t%s\n", u.ID); err != nil {
		return err
	}
	if err := writef(w, "Username\t%s\n", u.Username); err != nil {
		return err
	}
	if err := writef(w, "Email\t%s\n", u.Email); err != nil {
		return err
	}
	if !u.Created.IsZero() {
		if err := writef(w, "Created\t%s\n", u.Created.Format("2006-01-02 15:04:05")); err != nil {
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

type createUserOptions struct {
	Username string
	Email    string
	Password string
}

func runUserCreate(cmdCtx *commandContext, args []string) error {
	var opts createUserOptions
	fs := flag.NewFlagSet("user-create", flag.ContinueOnError)
	fs.StringVar(&opts.Username, "username", "", "new account username")
	fs.StringVar(&opts.Email, "email", "", "new account email")
	fs.StringVar(&opts.Password, "password", "", "new account password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, defaultCommandTimeout)
	defer cancel()

	if err := requireAdmin(ctx, cmdCtx); err != nil {
		return err
	}

	settled, err := cmdCtx.App.Users.CreateUser().Create(ctx, api.CreateUserRequest{
		Username: opts.Username,
		Email:    opts.Email,
		Password: opts.Password,
	})
	if err != nil {
		return err
	}
	return writef(os.Stdout, "Created user %s (id %s)\n", settled.Data.Username, settled.Data.ID)
}

type updateUserOptions struct {
	Username        string
	CurrentPassword string
	NewPassword     string
}

func runUserUpdate(cmdCtx *commandContext, args []string) error {
	var opts updateUserOptions
	fs := flag.NewFlagSet("user-update", flag.ContinueOnError)
	fs.StringVar(&opts.Username, "username", "", "replacement username")
	fs.StringVar(&opts.CurrentPassword, "current-password", "", "current password (required to change it)")
	fs.StringVar(&opts.NewPassword, "new-password", "", "replacement password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: console user-update [flags] <id>")
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, defaultCommandTimeout)
	defer cancel()

	if err := requireAdmin(ctx, cmdCtx); err != nil {
		return err
	}

	settled, err := cmdCtx.App.Users.UpdateUser(fs.Arg(0)).Update(ctx, api.UpdateUserRequest{
		Username:        opts.Username,
		CurrentPassword: opts.CurrentPassword,
		NewPassword:     opts.NewPassword,
	})
	if err != nil {
		return err
	}
	return writef(os.Stdout, "Updated user %s\n", settled.Data.Username)
}

func runUserDelete(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("user-delete", flag.ContinueOnError)
	yes := fs.Bool("yes", false, "skip the confirmation prompt")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: console user-delete [flags] <id>")
	}

	if !*yes {
		confirmed, err := confirm(fmt.Sprintf("Delete user %s? [y/N]: ", fs.Arg(0)))
		if err != nil {
			return err
		}
		if !confirmed {
			return writef(os.Stdout, "Aborted\n")
		}
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, defaultCommandTimeout)
	defer cancel()

	if err := requireAdmin(ctx, cmdCtx); err != nil {
		return err
	}

	settled := cmdCtx.App.Users.DeleteUser(fs.Arg(0)).Mutate(ctx, nil)
	if settled.Err != nil {
		return settled.Err
	}
	return writef(os.Stdout, "Deleted user %s\n", settled.Data.Username)
}

func runRoles(cmdCtx *commandContext, _ []string) error {
	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, defaultCommandTimeout)
	defer cancel()

	if err := requireAdmin(ctx, cmdCtx); err != nil {
		return err
	}

	settled := cmdCtx.App.Users.ListRoles().Get(ctx, nil)
	if settled.Err != nil {
		return settled.Err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	if err := writef(w, "ID\tNAME\n"); err != nil {
		return err
	}
	for _, role := range settled.Data {
		if err := writef(w, "%d\t%s\n", role.ID, role.Name); err != nil {
			return err
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	return nil
}
