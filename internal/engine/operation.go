package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
)

// Params are the scalar query parameters accepted by read triggers. Each
// key/value pair is serialized into the request's query string.
type Params map[string]any

func (p Params) encode() url.Values {
	v := url.Values{}
	for key, value := range p {
		v.Set(key, fmt.Sprint(value))
	}
	return v
}

// State is the visible lifecycle of an operation call site. Loading is true
// strictly between the newest trigger invocation and its settlement. Data
// holds the initial value until a successful settlement overwrites it and is
// never reset on trigger, so consumers do not flash empty mid-flight.
type State[T any] struct {
	Data     T
	Response *Response
	Loading  bool
	Err      error
}

// Settlement is what a single trigger invocation resolves to. Superseded
// marks an invocation whose result arrived after a newer trigger on the same
// operation; its outcome was discarded and the visible state untouched.
type Settlement[T any] struct {
	Data       T
	Response   *Response
	Err        error
	Superseded bool
}

// operation is the shared request lifecycle mechanism under Read and
// Mutation. Completion order over the network is not trigger order, so every
// invocation carries a sequence number and only the newest may settle into
// visible state (last writer wins by trigger order, not arrival order).
type operation[T any] struct {
	client    *Client
	method    string
	path      string
	anonymous bool

	mu     sync.Mutex
	issued uint64
	state  State[T]
	subs   map[chan struct{}]struct{}
}

func newOperation[T any](client *Client, method, path string, initial T) *operation[T] {
	return &operation[T]{
		client: client,
		method: method,
		path:   path,
		state:  State[T]{Data: initial},
		subs:   make(map[chan struct{}]struct{}),
	}
}

// State returns a snapshot of the visible operation state.
func (o *operation[T]) State() State[T] {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Subscribe registers for change notifications. The returned channel signals
// (coalescing) whenever the visible state changes; consumers recompute by
// reading State. The unsubscribe func releases the registration.
func (o *operation[T]) Subscribe() (func(), <-chan struct{}) {
	o.mu.Lock()
	defer o.mu.Unlock()

	ch := make(chan struct{}, 1)
	o.subs[ch] = struct{}{}

	unsub := func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		if _, ok := o.subs[ch]; !ok {
			return
		}
		delete(o.subs, ch)
	}
	return unsub, ch
}

func (o *operation[T]) notifyLocked() {
	for ch := range o.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// trigger performs one invocation end to end: marks the site loading,
// executes the exchange, and settles. A failure never propagates as a panic;
// everything lands in the returned settlement and, for the newest
// invocation, in the visible state.
func (o *operation[T]) trigger(ctx context.Context, query url.Values, body any) Settlement[T] {
	o.mu.Lock()
	o.issued++
	seq := o.issued
	o.state.Loading = true
	o.notifyLocked()
	o.mu.Unlock()

	resp, err := o.client.do(ctx, requestSpec{
		method:    o.method,
		path:      o.path,
		query:     query,
		body:      body,
		anonymous: o.anonymous,
	})

	var data T
	if err == nil && resp != nil && len(resp.Body) > 0 {
		if decodeErr := json.Unmarshal(resp.Body, &data); decodeErr != nil {
			err = fmt.Errorf("decode response: %w", decodeErr)
		}
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if seq != o.issued {
		// A newer trigger superseded this invocation while it was in flight.
		// Its settlement owns the visible state; discard this one.
		return Settlement[T]{Data: data, Response: resp, Err: err, Superseded: true}
	}

	o.state.Loading = false
	o.state.Response = resp
	o.state.Err = err
	if err == nil {
		o.state.Data = data
	}
	o.notifyLocked()

	return Settlement[T]{Data: o.state.Data, Response: resp, Err: err}
}

// Read is an operation bound to a fixed path whose trigger accepts optional
// scalar query parameters.
type Read[T any] struct {
	op *operation[T]
}

// NewRead creates a read operation for the given path. The initial value is
// what Data holds until the first successful settlement.
func NewRead[T any](client *Client, path string, initial T) *Read[T] {
	return &Read[T]{op: newOperation(client, "GET", path, initial)}
}

// Get triggers the read. Params may be nil.
func (r *Read[T]) Get(ctx context.Context, params Params) Settlement[T] {
	var query url.Values
	if len(params) > 0 {
		query = params.encode()
	}
	return r.op.trigger(ctx, query, nil)
}

// State returns the visible call-site state.
func (r *Read[T]) State() State[T] { return r.op.State() }

// Subscribe registers for state change notifications.
func (r *Read[T]) Subscribe() (func(), <-chan struct{}) { return r.op.Subscribe() }

// Mutation is an operation bound to a fixed path and verb (POST, PATCH or
// DELETE) whose trigger accepts an optional body payload.
type Mutation[T any] struct {
	op *operation[T]
}

// NewMutation creates a mutation operation.
func NewMutation[T any](client *Client, method, path string, initial T) *Mutation[T] {
	return &Mutation[T]{op: newOperation(client, method, path, initial)}
}

// NewAnonymousMutation creates a mutation that never attaches the stored
// access token (login is the one caller).
func NewAnonymousMutation[T any](client *Client, method, path string, initial T) *Mutation[T] {
	m := NewMutation[T](client, method, path, initial)
	m.op.anonymous = true
	return m
}

// Mutate triggers the mutation. Body may be nil.
func (m *Mutation[T]) Mutate(ctx context.Context, body any) Settlement[T] {
	return m.op.trigger(ctx, nil, body)
}

// State returns the visible call-site state.
func (m *Mutation[T]) State() State[T] { return m.op.State() }

// Subscribe registers for state change notifications.
func (m *Mutation[T]) Subscribe() (func(), <-chan struct{}) { return m.op.Subscribe() }
