// Package listview orchestrates the paginated user list: navigable query
// state, debounced free-text search, and the parallel page/count reads.
// Rendering is the caller's concern; the visible state here is a pure
// function of the four navigable parameters plus server data.
package listview

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bidhub/console-go/internal/api"
	"github.com/bidhub/console-go/internal/engine"
	"github.com/bidhub/console-go/internal/query"
)

// DefaultSearchDebounce is the settling delay for free-text search input.
const DefaultSearchDebounce = 500 * time.Millisecond

// State is the visible list view state.
type State struct {
	Query      query.ListQuery
	Rows       []api.ListUser
	Total      int
	TotalPages int
	Loading    bool
	Err        error
}

// Controller drives one user list view.
type Controller struct {
	logger   *slog.Logger
	list     *api.ListUsersOperation
	count    *engine.Read[int]
	debounce time.Duration

	mu            sync.Mutex
	query         query.ListQuery
	settledSearch string
	timer         *time.Timer
	closed        bool
	subs          map[chan struct{}]struct{}
}

// ControllerOptions bundles dependencies for NewController.
type ControllerOptions struct {
	// Users provides the list and count call sites. Required.
	Users *api.UserService

	// PageSize is the initial rows-per-page. Values outside the allowed set
	// (including zero) fall back to the default page size.
	PageSize int

	// SearchDebounce defaults to DefaultSearchDebounce when zero.
	SearchDebounce time.Duration

	// Logger defaults to slog.Default when nil.
	Logger *slog.Logger
}

// NewController creates a list view controller starting from the initial
// query state.
func NewController(opts ControllerOptions) (*Controller, error) {
	if opts.Users == nil {
		return nil, errors.New("user service is required")
	}
	debounce := opts.SearchDebounce
	if debounce <= 0 {
		debounce = DefaultSearchDebounce
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	initial := query.NewListQuery()
	if opts.PageSize > 0 {
		initial = initial.WithLimit(opts.PageSize)
	}
	return &Controller{
		logger:   logger,
		list:     opts.Users.ListUsers(),
		count:    opts.Users.CountUsers(),
		debounce: debounce,
		query:    initial,
		subs:     make(map[chan struct{}]struct{}),
	}, nil
}

// Restore replaces the query state from navigable URL parameters, e.g. a
// shared link or bookmark. The restored search counts as settled.
func (c *Controller) Restore(values url.Values) {
	c.mu.Lock()
	c.query = query.ParseListQuery(values)
	c.settledSearch = c.query.Search
	c.stopTimerLocked()
	c.notifyLocked()
	c.mu.Unlock()
}

// Location serializes the current query state into navigable parameters.
func (c *Controller) Location() url.Values {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query.Values()
}

// Query returns the current query state.
func (c *Controller) Query() query.ListQuery {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query
}

// SetPage navigates to a page and refreshes.
func (c *Controller) SetPage(ctx context.Context, page int) error {
	c.mu.Lock()
	c.query = c.query.WithPage(page)
	c.notifyLocked()
	c.mu.Unlock()
	return c.Refresh(ctx)
}

// SetLimit changes the page size (resetting to the first page) and
// refreshes.
func (c *Controller) SetLimit(ctx context.Context, limit int) error {
	c.mu.Lock()
	c.query = c.query.WithLimit(limit)
	c.notifyLocked()
	c.mu.Unlock()
	return c.Refresh(ctx)
}

// SetSort changes the ordering and refreshes.
func (c *Controller) SetSort(ctx context.Context, s query.Sort) error {
	c.mu.Lock()
	c.query = c.query.WithSort(s)
	c.notifyLocked()
	c.mu.Unlock()
	return c.Refresh(ctx)
}

// SetSearch updates the search term. The query state (and the page-reset
// invariant) applies immediately; the request itself waits for the settling
// delay so rapid keystrokes coalesce into one trigger. Only the settled
// value ever reaches the engine.
func (c *Controller) SetSearch(search string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	c.query = c.query.WithSearch(search)
	c.notifyLocked()

	c.stopTimerLocked()
	c.timer = time.AfterFunc(c.debounce, func() {
		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			return
		}
		c.settledSearch = c.query.Search
		c.mu.Unlock()

		if err := c.Refresh(context.Background()); err != nil {
			c.logger.Warn("debounced refresh failed", slog.Any("error", err))
		}
	})
}

// Refresh fetches the current page and the total count in parallel. The two
// reads are independent call sites; neither blocks the other. Errors settle
// into the operation state as usual and the first one is returned.
func (c *Controller) Refresh(ctx context.Context) error {
	c.mu.Lock()
	q := c.query
	q.Search = c.settledSearch
	c.mu.Unlock()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return c.list.GetQuery(gctx, q).Err
	})
	g.Go(func() error {
		params := engine.Params{}
		if q.Search != "" {
			params["search"] = q.Search
		}
		return c.count.Get(gctx, params).Err
	})
	err := g.Wait()

	c.mu.Lock()
	c.notifyLocked()
	c.mu.Unlock()
	return err
}

// State assembles the visible list state from the query and the two call
// sites. Rows keep their previous value while a refresh is in flight, so
// pagination never flashes an empty table.
func (c *Controller) State() State {
	c.mu.Lock()
	q := c.query
	c.mu.Unlock()

	listState := c.list.State()
	countState := c.count.State()

	st := State{
		Query:   q,
		Rows:    listState.Data,
		Total:   countState.Data,
		Loading: listState.Loading || countState.Loading,
		Err:     listState.Err,
	}
	if st.Err == nil {
		st.Err = countState.Err
	}
	if q.Limit > 0 {
		st.TotalPages = (st.Total + q.Limit - 1) / q.Limit
	}
	return st
}

// Subscribe registers for change notifications covering both query state
// changes and settlements.
func (c *Controller) Subscribe() (func(), <-chan struct{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan struct{}, 1)
	c.subs[ch] = struct{}{}

	unsub := func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subs, ch)
	}
	return unsub, ch
}

// Close stops any pending debounce timer. Further SetSearch calls are
// ignored.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.stopTimerLocked()
}

func (c *Controller) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Controller) notifyLocked() {
	for ch := range c.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
