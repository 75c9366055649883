package entropy

import (
	"math"
	"sort"

	"picoagent/pkg/models"
)

// Decide turns a scored distribution and a threshold into a routing
// decision. It is a pure function: equal scores and threshold always yield
// an equal RoutingDecision, including tie-breaks, which favor the
// lexicographically smallest tool name so that map iteration order never
// leaks into the result.
func (s *Scheduler) Decide(scores models.ToolScores, threshold float64) models.RoutingDecision {
	n := len(scores.Candidates)
	if n == 0 {
		return models.RoutingDecision{Decision: models.DecisionClarify, Reason: "no-signal", Entropy: scores.Entropy}
	}
	if scores.Entropy >= threshold {
		return models.RoutingDecision{Decision: models.DecisionClarify, Reason: "entropy-above-threshold", Entropy: scores.Entropy}
	}

	top := argmaxTieBreakFirst(scores.Candidates)

	hMax := math.Log2(float64(n))
	confidence := 1.0
	if hMax > 0 {
		confidence = 1 - scores.Entropy/hMax
	}

	return models.RoutingDecision{
		Decision:   models.DecisionAct,
		ToolName:   top,
		Confidence: confidence,
		Entropy:    scores.Entropy,
	}
}

// argmaxTieBreakFirst returns the key with the largest value, breaking ties
// by lexicographically smallest key.
func argmaxTieBreakFirst(dist map[string]float64) string {
	keys := make([]string, 0, len(dist))
	for k := range dist {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	best := keys[0]
	bestScore := dist[best]
	for _, k := range keys[1:] {
		if dist[k] > bestScore {
			best = k
			bestScore = dist[k]
		}
	}
	return best
}
