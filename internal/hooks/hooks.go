// Package hooks implements the turn engine's lifecycle dispatch (spec
// §4.9): on_turn_start, on_tool_result, and on_turn_end, each handed a
// read-only Context, run in registration order, bounded by a per-hook
// timeout, and never able to abort or alter the turn they observe.
package hooks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"picoagent/pkg/models"
)

// DefaultTimeout bounds a single hook invocation (spec §4.9).
const DefaultTimeout = 2 * time.Second

// Event identifies which lifecycle point a hook is being invoked for.
type Event string

const (
	EventTurnStart  Event = "turn_start"
	EventToolResult Event = "tool_result"
	EventTurnEnd    Event = "turn_end"
)

// Context is the read-only payload handed to a hook. It mirrors spec §6's
// hook ABI field-for-field; fields not relevant to the firing event are
// left at their zero value. Hooks must not mutate it — there is no
// exported way to write back into the turn from a hook.
type Context struct {
	SessionID   string
	TurnIndex   int
	UserMessage string
	Scores      *models.ToolScores
	Decision    *models.RoutingDecision
	ToolResult  *models.ToolResult
	Response    string
}

// Hook is one registered lifecycle observer. Any of the three methods may
// be a no-op; Registry calls whichever corresponds to the firing event.
type Hook interface {
	Name() string
	OnTurnStart(ctx context.Context, hctx Context) error
	OnToolResult(ctx context.Context, hctx Context) error
	OnTurnEnd(ctx context.Context, hctx Context) error
}

// Registry holds every registered hook, append-only after startup (spec
// §3 Ownership), and dispatches lifecycle events to them in registration
// order.
type Registry struct {
	mu      sync.RWMutex
	hooks   []Hook
	timeout time.Duration
	logger  *slog.Logger
}

// NewRegistry constructs an empty Registry. A zero timeout defaults to
// DefaultTimeout.
func NewRegistry(timeout time.Duration, logger *slog.Logger) *Registry {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{timeout: timeout, logger: logger}
}

// Register appends a hook. Registration order determines dispatch order;
// there is no unregister, matching the append-only lifecycle in spec §3.
func (r *Registry) Register(h Hook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hooks = append(r.hooks, h)
}

// Len reports how many hooks are registered.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.hooks)
}

// DispatchTurnStart fires on_turn_start against every hook in order.
func (r *Registry) DispatchTurnStart(ctx context.Context, hctx Context) {
	r.dispatch(ctx, EventTurnStart, hctx)
}

// DispatchToolResult fires on_tool_result against every hook in order.
func (r *Registry) DispatchToolResult(ctx context.Context, hctx Context) {
	r.dispatch(ctx, EventToolResult, hctx)
}

// DispatchTurnEnd fires on_turn_end against every hook in order.
func (r *Registry) DispatchTurnEnd(ctx context.Context, hctx Context) {
	r.dispatch(ctx, EventTurnEnd, hctx)
}

func (r *Registry) dispatch(ctx context.Context, event Event, hctx Context) {
	r.mu.RLock()
	hooksSnapshot := append([]Hook(nil), r.hooks...)
	r.mu.RUnlock()

	for _, h := range hooksSnapshot {
		r.callOne(ctx, event, h, hctx)
	}
}

// callOne runs a single hook bounded by r.timeout, catching panics and
// swallowing every error: a hook can never influence the turn's outcome
// (spec §7 HookError), only log.
func (r *Registry) callOne(ctx context.Context, event Event, h Hook, hctx Context) {
	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- fmt.Errorf("panic: %v", p)
			}
		}()
		done <- invoke(callCtx, event, h, hctx)
	}()

	select {
	case err := <-done:
		if err != nil {
			r.logger.Warn("hook error", "hook", h.Name(), "event", event, "error", err)
		}
	case <-callCtx.Done():
		r.logger.Warn("hook timed out", "hook", h.Name(), "event", event, "timeout", r.timeout)
	}
}

func invoke(ctx context.Context, event Event, h Hook, hctx Context) error {
	switch event {
	case EventTurnStart:
		return h.OnTurnStart(ctx, hctx)
	case EventToolResult:
		return h.OnToolResult(ctx, hctx)
	case EventTurnEnd:
		return h.OnTurnEnd(ctx, hctx)
	default:
		return fmt.Errorf("hooks: unknown event %q", event)
	}
}

// FuncHook adapts three plain functions into a Hook, for callers (and
// tests) that only care about one lifecycle point. Any nil function is a
// no-op.
type FuncHook struct {
	HookName     string
	TurnStartFn  func(context.Context, Context) error
	ToolResultFn func(context.Context, Context) error
	TurnEndFn    func(context.Context, Context) error
}

func (f *FuncHook) Name() string { return f.HookName }

func (f *FuncHook) OnTurnStart(ctx context.Context, hctx Context) error {
	if f.TurnStartFn == nil {
		return nil
	}
	return f.TurnStartFn(ctx, hctx)
}

func (f *FuncHook) OnToolResult(ctx context.Context, hctx Context) error {
	if f.ToolResultFn == nil {
		return nil
	}
	return f.ToolResultFn(ctx, hctx)
}

func (f *FuncHook) OnTurnEnd(ctx context.Context, hctx Context) error {
	if f.TurnEndFn == nil {
		return nil
	}
	return f.TurnEndFn(ctx, hctx)
}
