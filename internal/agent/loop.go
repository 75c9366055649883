package agent

import (
	"context"
	"log/slog"
	"time"

	ctxbuilder "picoagent/internal/context"
	"picoagent/internal/consolidation"
	"picoagent/internal/entropy"
	"picoagent/internal/hooks"
	"picoagent/internal/memory"
	"picoagent/internal/providers"
	"picoagent/internal/sessions"
	"picoagent/internal/skills"
	"picoagent/internal/subagent"
	"picoagent/internal/tools"
	"picoagent/pkg/models"
)

// chainConfidenceMargin is the minimum confidence gain a chained tool call
// must clear over the acting threshold to continue the chain (spec §4.10
// step 9's default margin of 0.1).
const chainConfidenceMargin = 0.1

// Defaults mirrored from spec §4, used whenever an Options field is zero.
const (
	DefaultMaxToolChain   = 3
	DefaultToolTimeout    = 30 * time.Second
	DefaultTurnDeadline   = 120 * time.Second
	DefaultRecallTopK     = 5
	DefaultConsolidationK = consolidation.DefaultK
)

// Options bundles every collaborator AgentLoop needs. All pointer fields
// are required except Subagent and Consolidation, which are optional
// (turns run fine without a second-opinion pass or background
// consolidation).
type Options struct {
	Sessions      *sessions.Store
	Memory        *memory.Store
	Skills        *skills.Library
	SkillUsage    *skills.UsageRecorder
	Context       *ctxbuilder.Builder
	Provider      providers.Client
	Heuristic     providers.Client
	Tools         *tools.Registry
	Hooks         *hooks.Registry
	Threshold     *entropy.AdaptiveThreshold
	Scheduler     *entropy.Scheduler
	Consolidation *consolidation.Store
	Subagent      *subagent.Coordinator
	Logger        *slog.Logger

	MaxToolChain   int
	ToolTimeout    time.Duration
	TurnDeadline   time.Duration
	RecallTopK     int
	ConsolidationK int
}

// Loop is AgentLoop: the top-level turn orchestrator (spec §4.10).
type Loop struct {
	opts Options
}

// New constructs a Loop, filling zero-valued Options with spec defaults.
// Heuristic defaults to providers.NewHeuristicClient() when unset.
func New(opts Options) *Loop {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Heuristic == nil {
		opts.Heuristic = providers.NewHeuristicClient()
	}
	if opts.MaxToolChain <= 0 {
		opts.MaxToolChain = DefaultMaxToolChain
	}
	if opts.ToolTimeout <= 0 {
		opts.ToolTimeout = DefaultToolTimeout
	}
	if opts.TurnDeadline <= 0 {
		opts.TurnDeadline = DefaultTurnDeadline
	}
	if opts.RecallTopK <= 0 {
		opts.RecallTopK = DefaultRecallTopK
	}
	if opts.ConsolidationK <= 0 {
		opts.ConsolidationK = DefaultConsolidationK
	}
	return &Loop{opts: opts}
}

// Sessions exposes the loop's session store so callers (the CLI's
// export/import/persist commands) can read or save it directly without the
// loop needing to know about those operations itself.
func (l *Loop) Sessions() *sessions.Store { return l.opts.Sessions }

// Memory exposes the loop's vector memory store for the same reason.
func (l *Loop) Memory() *memory.Store { return l.opts.Memory }

// Threshold exposes the loop's adaptive threshold tracker so the CLI's
// threshold-stats command and shutdown persistence can read/save it.
func (l *Loop) Threshold() *entropy.AdaptiveThreshold { return l.opts.Threshold }

// turn carries the mutable state threaded through one turn's steps; it
// exists so the state-machine steps in turn.go can be small methods
// instead of one giant function.
type turn struct {
	sessionID   string
	userMessage string
	now         time.Time

	session *models.SessionState

	embedding      []float32
	memorySnippets []string

	skillPrompts []string
	shortCircuit *skills.Selection // explicit-mention skill naming a tool, if any

	scores      models.ToolScores
	decision    models.RoutingDecision
	threshold   float64
	descriptors []models.ToolDescriptor

	acted      bool
	success    bool
	toolCalls  []models.ToolCall
	lastResult *models.ToolResult

	response string
}

// RunTurn executes one full turn for sessionID: recall, skill selection,
// context assembly, scoring, the entropy gate, argument planning and
// validation, bounded tool chaining, synthesis, memory storage, threshold
// update, consolidation check, and persistence (spec §4.10).
//
// It always returns a response string, even when every step degrades to a
// fallback; the only error returned is a *PersistenceError reporting that
// the turn's result did not make it to disk, which callers may log without
// discarding the response already produced.
func (l *Loop) RunTurn(ctx context.Context, sessionID, userMessage string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, l.opts.TurnDeadline)
	defer cancel()

	unlock := l.opts.Sessions.Lock(sessionID)
	defer unlock()

	t := &turn{
		sessionID:   sessionID,
		userMessage: userMessage,
		now:         time.Now(),
		session:     l.opts.Sessions.Get(sessionID),
	}
	turnIndex := len(t.session.History)

	l.opts.Hooks.DispatchTurnStart(ctx, hooks.Context{
		SessionID:   sessionID,
		TurnIndex:   turnIndex,
		UserMessage: userMessage,
	})

	l.recall(ctx, t)
	l.selectSkills(t)
	l.score(ctx, t)
	l.decide(t)

	if t.decision.Decision == models.DecisionAct {
		l.actAndChain(ctx, t)
	} else {
		l.clarify(ctx, t)
	}

	l.synthesize(ctx, t)

	l.opts.Hooks.DispatchToolResult(ctx, hooks.Context{
		SessionID:   sessionID,
		TurnIndex:   turnIndex,
		UserMessage: userMessage,
		Scores:      &t.scores,
		Decision:    &t.decision,
		ToolResult:  t.lastResult,
	})

	l.remember(ctx, t)

	l.opts.Threshold.Observe(t.acted, t.success, t.decision.Entropy)

	t.session.AppendTurn(models.Turn{
		UserMessage: userMessage,
		Response:    t.response,
		Scores:      &t.scores,
		Decision:    string(t.decision.Decision),
		ToolCalls:   t.toolCalls,
		CreatedAt:   t.now,
	})
	l.opts.Sessions.Put(t.session)

	l.checkConsolidation(t)

	var persistErr error
	if err := l.opts.Sessions.Save(); err != nil {
		persistErr = &PersistenceError{SessionID: sessionID, Cause: err}
		l.opts.Logger.Warn("persist session failed", "session_id", sessionID, "error", err)
	}

	l.opts.Hooks.DispatchTurnEnd(ctx, hooks.Context{
		SessionID:   sessionID,
		TurnIndex:   turnIndex,
		UserMessage: userMessage,
		Response:    t.response,
	})

	if ctx.Err() == context.DeadlineExceeded {
		l.opts.Logger.Warn("turn deadline exceeded",
			"error", &DeadlineExceededError{SessionID: sessionID, Deadline: l.opts.TurnDeadline.String()})
	}

	return t.response, persistErr
}

func (l *Loop) checkConsolidation(t *turn) {
	if l.opts.Consolidation == nil {
		return
	}
	if !consolidation.ShouldTrigger(t.session.History, t.session.ConsolidationOffset, l.opts.ConsolidationK) {
		return
	}
	sessionID := t.sessionID
	l.opts.Consolidation.TriggerAsync(sessionID, t.session.History, t.session.ConsolidationOffset, l.opts.ConsolidationK, func(newOffset int) {
		unlock := l.opts.Sessions.Lock(sessionID)
		defer unlock()
		s := l.opts.Sessions.Get(sessionID)
		if newOffset > s.ConsolidationOffset {
			s.ConsolidationOffset = newOffset
		}
		l.opts.Sessions.Put(s)
		if err := l.opts.Sessions.Save(); err != nil {
			l.opts.Logger.Warn("persist consolidation offset failed", "session_id", sessionID, "error", err)
		}
	})
}
