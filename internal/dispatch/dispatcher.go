// Package dispatch is the single entry point for player commands. Text is
// parsed locally, sent to the server, reconciled into the view, and followed
// by an out-of-band unread refresh.
package dispatch

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/mcoot/sovereign-client/internal/command"
	"github.com/mcoot/sovereign-client/internal/model"
	"github.com/mcoot/sovereign-client/internal/reconcile"
)

// CommandSender delivers a parsed command to the server
type CommandSender interface {
	Command(ctx context.Context, cmd command.Command) (*model.CommandResponse, error)
}

// UnreadRefresher triggers an out-of-band unread-count fetch
type UnreadRefresher interface {
	Refresh(ctx context.Context)
}

// SessionGuard is the session's view of dispatch
type SessionGuard interface {
	// Playable returns an error when the game view is withheld
	Playable() error
	// Guard tears the session down when err is an auth failure and returns err
	Guard(ctx context.Context, err error) error
	// Epoch identifies the current session
	Epoch() uint64
	// Commit runs apply only if the session at epoch is still live
	Commit(epoch uint64, apply func()) bool
}

// Result is the outcome of a successful submit
type Result struct {
	Command command.Command   `json:"command"`
	Message string            `json:"message"`
	Applied reconcile.Applied `json:"applied"`
}

// Dispatcher serializes submits per session: one command is in flight at a
// time and later submits wait their turn.
type Dispatcher struct {
	sender  CommandSender
	view    *reconcile.View
	unread  UnreadRefresher
	session SessionGuard
	logger  *slog.Logger

	mu sync.Mutex
}

// New creates a Dispatcher
func New(sender CommandSender, view *reconcile.View, unread UnreadRefresher, session SessionGuard, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Dispatcher{
		sender:  sender,
		view:    view,
		unread:  unread,
		session: session,
		logger:  logger,
	}
}

// Submit parses line and executes it. Parse failures return a
// *command.ParseError without touching the network.
func (d *Dispatcher) Submit(ctx context.Context, line string) (*Result, error) {
	cmd, err := command.Parse(line)
	if err != nil {
		d.logger.Debug("command rejected locally", "line", line, "error", err)
		return nil, err
	}
	return d.Execute(ctx, cmd)
}

// Execute sends an already-parsed command. A response that arrives after
// the session it was sent from has ended is dropped with
// model.ErrSessionEnded.
func (d *Dispatcher) Execute(ctx context.Context, cmd command.Command) (*Result, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	epoch := d.session.Epoch()
	if err := d.session.Playable(); err != nil {
		return nil, err
	}

	resp, err := d.sender.Command(ctx, cmd)
	if err != nil {
		d.logger.Debug("command failed", "command", cmd.String(), "error", err)
		return nil, d.session.Guard(ctx, err)
	}

	var applied reconcile.Applied
	if !d.session.Commit(epoch, func() { applied = d.view.ApplyCommand(*resp) }) {
		d.logger.Debug("response dropped, session ended", "command", cmd.String())
		return nil, model.ErrSessionEnded
	}
	d.unread.Refresh(ctx)

	d.logger.Debug("command applied",
		"command", cmd.String(),
		"new_logs", len(applied.Appended),
	)
	return &Result{
		Command: cmd,
		Message: resp.Message,
		Applied: applied,
	}, nil
}
