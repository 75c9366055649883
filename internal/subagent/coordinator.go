// Package subagent implements SubagentCoordinator (spec §4.8): a
// confidence-gated second-opinion pass that reviews a reviewable tool
// result and appends its verdict to the turn's final response, bounded by
// a hard budget so a slow review can never stall the reply.
package subagent

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"picoagent/internal/providers"
	"picoagent/pkg/models"
)

// DefaultConfidenceThreshold (tau_sub) is the minimum routing confidence
// required to spawn a review pass.
const DefaultConfidenceThreshold = 0.7

// DefaultBudget bounds how long the review may run before being dropped.
const DefaultBudget = 5 * time.Second

const reviewSystemPrompt = `You are a second reviewer checking another assistant's tool result before
it is shown to the user. In one or two sentences, confirm the result looks
correct or flag anything that looks wrong. Be terse.`

// Coordinator decides whether a turn's result warrants a second opinion and
// runs that review against a provider.
type Coordinator struct {
	client              providers.Client
	confidenceThreshold float64
	budget              time.Duration
	logger              *slog.Logger
}

// New constructs a Coordinator. Zero values for threshold/budget fall back
// to the spec defaults.
func New(client providers.Client, confidenceThreshold float64, budget time.Duration, logger *slog.Logger) *Coordinator {
	if confidenceThreshold <= 0 {
		confidenceThreshold = DefaultConfidenceThreshold
	}
	if budget <= 0 {
		budget = DefaultBudget
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{client: client, confidenceThreshold: confidenceThreshold, budget: budget, logger: logger}
}

// IsReviewable reports whether a tool result looks worth a second opinion:
// it succeeded and carries structured data, spec §4.8's "reviewable
// artifact" condition.
func IsReviewable(result *models.ToolResult) bool {
	return result != nil && result.Success && len(result.Raw) > 0
}

// Review runs a second-opinion pass when decision.Confidence clears the
// coordinator's threshold and result looks reviewable. It returns "" (no
// error) when no review was warranted, when the provider failed, or when
// the review exceeded its budget — a missing review never blocks or
// degrades the primary response.
func (c *Coordinator) Review(ctx context.Context, userMessage string, decision models.RoutingDecision, result *models.ToolResult) string {
	if decision.Decision != models.DecisionAct || decision.Confidence < c.confidenceThreshold {
		return ""
	}
	if !IsReviewable(result) {
		return ""
	}

	reviewCtx, cancel := context.WithTimeout(ctx, c.budget)
	defer cancel()

	type outcome struct {
		text string
		err  error
	}
	done := make(chan outcome, 1)
	go func() {
		reply, err := c.client.Chat(reviewCtx, []providers.ChatMessage{
			{Role: "system", Content: reviewSystemPrompt},
			{Role: "user", Content: fmt.Sprintf("Original request: %s\n\nTool output:\n%s", userMessage, result.Content)},
		})
		done <- outcome{text: reply, err: err}
	}()

	select {
	case o := <-done:
		if o.err != nil {
			c.logger.Warn("subagent review failed", "error", o.err)
			return ""
		}
		return o.text
	case <-reviewCtx.Done():
		c.logger.Warn("subagent review exceeded budget", "budget", c.budget)
		return ""
	}
}
