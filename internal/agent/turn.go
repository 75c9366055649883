package agent

import (
	"context"
	"fmt"
	"strings"

	ctxbuilder "picoagent/internal/context"
	"picoagent/internal/skills"
	"picoagent/pkg/models"
)

// recall embeds the user message and queries VectorMemory for the top-K
// related records (spec §4.10 step 2). A failed embed or an empty store
// degrades to no memory snippets rather than failing the turn.
func (l *Loop) recall(ctx context.Context, t *turn) {
	embedding, err := l.opts.Provider.Embed(ctx, t.userMessage)
	if err != nil {
		l.opts.Logger.Warn("embed failed, recall skipped", "session_id", t.sessionID, "error", err)
		return
	}
	t.embedding = embedding

	matches := l.opts.Memory.Recall(models.MemoryQuery{
		Embedding: embedding,
		TopK:      l.opts.RecallTopK,
		Now:       t.now,
	})
	for _, m := range matches {
		t.memorySnippets = append(t.memorySnippets, m.Record.Text)
	}
}

// selectSkills runs SkillLibrary.select_for_message, records telemetry for
// every activation, and detects the explicit-mention short-circuit (spec
// §4.10 step 3, §4.5 step 1).
func (l *Loop) selectSkills(t *turn) {
	if l.opts.Skills == nil {
		return
	}
	all, err := l.opts.Skills.List()
	if err != nil {
		l.opts.Logger.Warn("skill list failed", "error", err)
		return
	}

	selections, err := skills.SelectForMessage(all, t.userMessage)
	if err != nil {
		l.opts.Logger.Warn("skill selection degraded to primary only", "error", err)
	}

	for i, sel := range selections {
		if sel.Skill.Content != "" {
			t.skillPrompts = append(t.skillPrompts, sel.Skill.Content)
		}
		if l.opts.SkillUsage != nil {
			if err := l.opts.SkillUsage.RecordUse(sel.Skill.Name, t.sessionID, t.now); err != nil {
				l.opts.Logger.Warn("skill usage telemetry failed", "skill", sel.Skill.Name, "error", err)
			}
		}
		if i == 0 && sel.Reason == "explicit-mention" && sel.Skill.Tool != "" {
			s := sel
			t.shortCircuit = &s
		}
	}
}

// score produces ToolScores either from the skill short-circuit (bypassing
// the provider entirely, spec §4.10 step 5) or from
// provider.score_tools(...), falling back to the local heuristic on
// provider error (spec §4.6).
func (l *Loop) score(ctx context.Context, t *turn) {
	t.threshold = l.opts.Threshold.Current()
	t.descriptors = l.opts.Tools.List()

	if t.shortCircuit != nil {
		t.scores = models.ToolScores{Candidates: map[string]float64{t.shortCircuit.Skill.Tool: 1}, Entropy: 0}
		return
	}

	raw, err := l.opts.Provider.ScoreTools(ctx, t.userMessage, t.descriptors)
	if err != nil {
		l.opts.Logger.Warn("score_tools failed, using heuristic fallback", "error", err)
		raw, err = l.opts.Heuristic.ScoreTools(ctx, t.userMessage, t.descriptors)
		if err != nil {
			raw = map[string]float64{}
		}
	}
	t.scores = l.opts.Scheduler.Score(raw)
}

// decide runs the entropy gate (spec §4.10 step 6), short-circuiting
// straight to Act when a skill's explicit mention already named a tool.
func (l *Loop) decide(t *turn) {
	if t.shortCircuit != nil {
		t.decision = models.RoutingDecision{
			Decision:   models.DecisionAct,
			ToolName:   t.shortCircuit.Skill.Tool,
			Confidence: 1,
			Entropy:    0,
		}
		return
	}
	t.decision = l.opts.Scheduler.Decide(t.scores, t.threshold)
}

// clarify handles a Clarify decision: nothing was acted on, so the turn's
// response is a question (or, if args planning failed mid-chain, an
// apology naming why).
func (l *Loop) clarify(ctx context.Context, t *turn) {
	t.acted = false
	t.success = true

	messages := l.opts.Context.Build(ctxbuilder.Input{
		SkillPrompts:   t.skillPrompts,
		MemorySnippets: t.memorySnippets,
		History:        t.session.History,
		UserMessage:    t.userMessage + "\n\n(No tool was confident enough to act. Ask a short clarifying question instead of answering.)",
	})

	reply, err := l.opts.Provider.Chat(ctx, messages)
	if err != nil {
		l.opts.Logger.Warn("clarification chat failed, using canned reply", "error", err)
		reply = canned(t.decision.Reason)
	}
	t.response = reply
}

// actAndChain executes the decided tool, then re-scores with the result
// folded into context to decide whether to continue chaining, bounded by
// max_tool_chain (spec §4.10 steps 7-9).
func (l *Loop) actAndChain(ctx context.Context, t *turn) {
	toolName := t.decision.ToolName
	currentMessage := t.userMessage
	threshold := t.threshold

	for depth := 0; depth < l.opts.MaxToolChain; depth++ {
		descriptor, ok := l.opts.Tools.Descriptor(toolName)
		if !ok {
			t.decision = models.RoutingDecision{Decision: models.DecisionClarify, Reason: "unknown-tool", Entropy: t.decision.Entropy}
			l.clarify(ctx, t)
			return
		}

		args, ok := l.planArgs(ctx, currentMessage, toolName, descriptor)
		if !ok {
			t.decision = models.RoutingDecision{Decision: models.DecisionClarify, Reason: "args-invalid", Entropy: t.decision.Entropy}
			l.clarify(ctx, t)
			return
		}

		result, err := l.opts.Tools.Run(ctx, toolName, args, l.opts.ToolTimeout)
		if err != nil {
			result = &models.ToolResult{Success: false, Error: err.Error()}
		}
		t.toolCalls = append(t.toolCalls, models.ToolCall{Name: toolName, Args: args, Result: result})
		t.lastResult = result

		if !result.Success || depth == l.opts.MaxToolChain-1 {
			break
		}

		nextMessage := currentMessage + "\n" + result.Content
		nextRaw, err := l.opts.Provider.ScoreTools(ctx, nextMessage, t.descriptors)
		if err != nil {
			nextRaw, err = l.opts.Heuristic.ScoreTools(ctx, nextMessage, t.descriptors)
			if err != nil {
				break
			}
		}
		nextScores := l.opts.Scheduler.Score(nextRaw)
		nextDecision := l.opts.Scheduler.Decide(nextScores, threshold)

		if nextDecision.Decision != models.DecisionAct {
			break
		}
		if nextDecision.ToolName == toolName {
			break
		}
		if nextDecision.Confidence < threshold+chainConfidenceMargin {
			break
		}

		toolName = nextDecision.ToolName
		currentMessage = nextMessage
	}

	t.acted = true
	t.success = t.lastResult != nil && t.lastResult.Success
}

// planArgs runs provider.plan_tool_args, validates the result, and falls
// back to the heuristic planner on either a provider error or a
// validation failure (spec §4.10 step 7).
func (l *Loop) planArgs(ctx context.Context, userMessage, toolName string, descriptor models.ToolDescriptor) (map[string]any, bool) {
	args, err := l.opts.Provider.PlanToolArgs(ctx, userMessage, descriptor)
	if err == nil {
		if verr := l.opts.Tools.Validate(toolName, args); verr == nil {
			return args, true
		}
	}

	args, err = l.opts.Heuristic.PlanToolArgs(ctx, userMessage, descriptor)
	if err != nil {
		return nil, false
	}
	if verr := l.opts.Tools.Validate(toolName, args); verr != nil {
		return nil, false
	}
	return args, true
}

// synthesize turns the turn's outcome into the final response, folding in
// a subagent review when one is warranted (spec §4.10 step 10, §4.8).
func (l *Loop) synthesize(ctx context.Context, t *turn) {
	if !t.acted {
		return // clarify already set t.response
	}

	reply, err := l.opts.Provider.SynthesizeResponse(ctx, t.userMessage, t.lastResult)
	if err != nil {
		l.opts.Logger.Warn("synthesize_response failed, using canned reply", "error", err)
		reply, err = l.opts.Heuristic.SynthesizeResponse(ctx, t.userMessage, t.lastResult)
		if err != nil {
			reply = canned("synthesis-failed")
		}
	}
	t.response = reply

	if l.opts.Subagent != nil {
		if review := l.opts.Subagent.Review(ctx, t.userMessage, t.decision, t.lastResult); review != "" {
			t.response = reply + "\n\n---\nReview: " + review
		}
	}
}

// remember stores (user_message, final_response) as one new memory record
// (spec §4.10 step 11). A failed embed skips storage rather than failing
// the turn.
func (l *Loop) remember(ctx context.Context, t *turn) {
	combined := t.userMessage + "\n" + t.response
	embedding, err := l.opts.Provider.Embed(ctx, combined)
	if err != nil {
		l.opts.Logger.Warn("embed for memory store failed, turn not remembered", "error", err)
		return
	}
	if _, err := l.opts.Memory.Store(t.sessionID, combined, embedding); err != nil {
		l.opts.Logger.Warn("memory store rejected turn", "error", err)
	}
}

func canned(reason string) string {
	switch reason {
	case "no-signal":
		return "I'm not sure what you'd like me to do — could you say more?"
	case "entropy-above-threshold":
		return "A few things could apply here — which did you mean?"
	case "args-invalid":
		return "I understood what to do but couldn't work out the right arguments. Could you give me more detail?"
	default:
		return fmt.Sprintf("I couldn't complete that (%s). Could you rephrase?", strings.TrimSpace(reason))
	}
}
