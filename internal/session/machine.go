// Package session holds the client-side state machines that drive a study,
// quiz or arena session against the backend.
//
// A machine never blocks. Actions that need the network validate and move
// the machine synchronously, then hand back an Op. The caller runs the Op
// wherever it likes (a bubbletea Cmd, or inline from the CLI) and feeds the
// Result back through Apply. Machines are not safe for concurrent use; Ops
// are.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhisek/studyhall/internal/api"
	"github.com/abhisek/studyhall/internal/logging"
)

var (
	// ErrBusy is returned when an Op is already in flight.
	ErrBusy = errors.New("session: an operation is already in progress")
	// ErrClosed is returned by every action and Apply after Close.
	ErrClosed = errors.New("session: closed")
	// ErrStale means a Result was issued before the machine's latest Op
	// or by a different machine. It is discarded.
	ErrStale = errors.New("session: stale result")
	// ErrWrongPhase is returned when an action is not valid right now.
	ErrWrongPhase = errors.New("session: action not available in this phase")

	// ErrNotRevealed is returned when grading a card whose answer is hidden.
	ErrNotRevealed = &api.Error{Kind: api.KindValidationFailed, Op: "grade", Detail: "reveal the answer before grading"}
)

// Op is deferred work issued by a machine. It must only be run once.
type Op func(ctx context.Context) Result

// Result is what an Op produced, tagged with the issuing machine and epoch.
type Result struct {
	owner   *core
	epoch   uint64
	payload any
}

// Options carries the dependencies shared by all machines.
type Options struct {
	Journal Journal
	Logger  *logging.Logger
	Now     func() time.Time
}

// Await runs op inline and applies its result to m. A nil op is a no-op.
func Await(ctx context.Context, m interface{ Apply(Result) error }, op Op) error {
	if op == nil {
		return nil
	}
	return m.Apply(op(ctx))
}

// core is the bookkeeping every machine embeds: identity, the in-flight
// guard, the epoch used to drop stale results, and the journal.
type core struct {
	id     string
	kind   string
	setID  api.ID
	ctx    context.Context
	cancel context.CancelFunc

	epoch  uint64
	busy   bool
	closed bool
	err    error

	journal Journal
	log     *logging.Logger
	now     func() time.Time
	started time.Time
}

func (c *core) init(kind string, setID api.ID, opts Options) {
	c.id = uuid.NewString()
	c.kind = kind
	c.setID = setID
	c.journal = opts.Journal
	c.now = opts.Now
	if c.now == nil {
		c.now = time.Now
	}
	c.log = opts.Logger
	if c.log == nil {
		c.log = logging.NewNop()
	}
	c.log = c.log.Named(kind).With(zap.String("set.id", setID.String()))
	c.ctx, c.cancel = context.WithCancel(logging.WithSessionID(context.Background(), c.id))
	c.started = c.now()
}

// SessionID identifies this session in logs and the journal.
func (c *core) SessionID() string { return c.id }

// SetID is the study set the session runs against.
func (c *core) SetID() api.ID { return c.setID }

// Busy reports whether an Op is in flight.
func (c *core) Busy() bool { return c.busy }

// Closed reports whether Close was called.
func (c *core) Closed() bool { return c.closed }

// Err is the most recent failure, cleared by the next success.
func (c *core) Err() error { return c.err }

// Elapsed is the wall time since the machine was created.
func (c *core) Elapsed() time.Duration { return c.now().Sub(c.started) }

// Close invalidates the machine. In-flight Ops see their context cancelled
// and their Results are discarded.
func (c *core) Close() {
	if c.closed {
		return
	}
	c.closed = true
	c.epoch++
	c.busy = false
	c.cancel()
}

// guard checks the preconditions shared by every action.
func (c *core) guard() error {
	if c.closed {
		return ErrClosed
	}
	if c.busy {
		return ErrBusy
	}
	return nil
}

// begin marks an Op in flight and wraps work so that its Result carries
// the current epoch. The Op's context is cancelled by Close.
func (c *core) begin(work func(ctx context.Context) any) Op {
	c.busy = true
	c.epoch++
	epoch := c.epoch
	machineCtx := c.ctx
	return func(ctx context.Context) Result {
		if ctx == nil {
			ctx = context.Background()
		}
		runCtx, cancel := context.WithCancel(logging.WithSessionID(ctx, c.id))
		stop := context.AfterFunc(machineCtx, cancel)
		defer stop()
		defer cancel()
		return Result{owner: c, epoch: epoch, payload: work(runCtx)}
	}
}

// accept validates r and clears the in-flight flag.
func (c *core) accept(r Result) (any, error) {
	if c.closed {
		return nil, ErrClosed
	}
	if r.owner != c || r.epoch != c.epoch || !c.busy {
		return nil, ErrStale
	}
	c.busy = false
	return r.payload, nil
}

// record writes a journal entry. Journal failures are logged and dropped.
func (c *core) record(action, detail string, score *int) {
	if c.journal == nil {
		return
	}
	err := c.journal.Record(c.ctx, Event{
		SessionID: c.id,
		Kind:      c.kind,
		SetID:     c.setID,
		Action:    action,
		Detail:    detail,
		Score:     score,
	})
	if err != nil {
		c.log.Warn(c.ctx, "journal write failed", zap.String("action", action), zap.Error(err))
	}
}

func validationError(op, detail string) error {
	return &api.Error{Kind: api.KindValidationFailed, Op: op, Detail: detail}
}
