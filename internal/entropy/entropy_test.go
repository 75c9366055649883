package entropy

import (
	"math"
	"testing"

	"picoagent/pkg/models"
)

func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestScore_ConfidentSplit(t *testing.T) {
	s := NewScheduler()
	scores := s.Score(map[string]float64{"A": 9, "B": 1})

	if !approxEqual(scores.Entropy, 0.469, 0.01) {
		t.Errorf("Score() entropy = %v, want ~0.469", scores.Entropy)
	}
	if scores.Candidates["A"] != 0.9 {
		t.Errorf("Candidates[A] = %v, want 0.9", scores.Candidates["A"])
	}
}

func TestScore_Ambiguous(t *testing.T) {
	s := NewScheduler()
	scores := s.Score(map[string]float64{"A": 1, "B": 1, "C": 1})

	if !approxEqual(scores.Entropy, 1.585, 0.01) {
		t.Errorf("Score() entropy = %v, want ~1.585", scores.Entropy)
	}
}

func TestScore_SingleCandidateIsZeroEntropy(t *testing.T) {
	s := NewScheduler()
	scores := s.Score(map[string]float64{"A": 5})

	if scores.Entropy != 0 {
		t.Errorf("Score() entropy = %v, want 0", scores.Entropy)
	}
}

func TestScore_EmptyIsZeroEntropy(t *testing.T) {
	s := NewScheduler()
	scores := s.Score(map[string]float64{})

	if scores.Entropy != 0 {
		t.Errorf("Score() entropy = %v, want 0", scores.Entropy)
	}
	if len(scores.Candidates) != 0 {
		t.Errorf("Candidates = %v, want empty", scores.Candidates)
	}
}

func TestScore_AllZeroIsNoSignal(t *testing.T) {
	s := NewScheduler()
	scores := s.Score(map[string]float64{"A": 0, "B": 0})
	if len(scores.Candidates) != 0 {
		t.Errorf("Candidates = %v, want empty for all-zero scores", scores.Candidates)
	}
}

func TestScore_Monotonic(t *testing.T) {
	s := NewScheduler()
	confident := s.Score(map[string]float64{"A": 9, "B": 1})
	ambiguous := s.Score(map[string]float64{"A": 1, "B": 1, "C": 1})

	if confident.Entropy >= ambiguous.Entropy {
		t.Errorf("confident entropy %v should be less than ambiguous entropy %v", confident.Entropy, ambiguous.Entropy)
	}
}

// Seed scenario 1 (spec §8): Tools = {A, B, C}, scores all equal, τ = 1.5.
// H ≈ 1.585 ≥ τ → Clarify.
func TestDecide_ClarifyOnAmbiguity(t *testing.T) {
	s := NewScheduler()
	scores := s.Score(map[string]float64{"A": 1, "B": 1, "C": 1})

	decision := s.Decide(scores, DefaultThreshold)
	if decision.Decision != models.DecisionClarify {
		t.Errorf("Decide() = %v, want clarify", decision.Decision)
	}
	if decision.Reason != "entropy-above-threshold" {
		t.Errorf("Reason = %q, want entropy-above-threshold", decision.Reason)
	}
}

// Seed scenario 2 (spec §8): scores = {A: 9, B: 1}, τ = 1.5 → Act(A).
func TestDecide_ActOnConfidence(t *testing.T) {
	s := NewScheduler()
	scores := s.Score(map[string]float64{"A": 9, "B": 1})

	decision := s.Decide(scores, DefaultThreshold)
	if decision.Decision != models.DecisionAct {
		t.Errorf("Decide() = %v, want act", decision.Decision)
	}
	if decision.ToolName != "A" {
		t.Errorf("ToolName = %q, want A", decision.ToolName)
	}
	if decision.Confidence <= 0 || decision.Confidence >= 1 {
		t.Errorf("Confidence = %v, want in (0, 1)", decision.Confidence)
	}
}

func TestDecide_NoSignalOnEmptyScores(t *testing.T) {
	s := NewScheduler()
	scores := s.Score(map[string]float64{})

	decision := s.Decide(scores, DefaultThreshold)
	if decision.Decision != models.DecisionClarify || decision.Reason != "no-signal" {
		t.Errorf("Decide() = %+v, want Clarify(no-signal)", decision)
	}
}

func TestDecide_IsDeterministic(t *testing.T) {
	s := NewScheduler()
	scores := s.Score(map[string]float64{"A": 9, "B": 1})
	for i := 0; i < 5; i++ {
		decision := s.Decide(scores, DefaultThreshold)
		if decision.Decision != models.DecisionAct || decision.ToolName != "A" {
			t.Errorf("Decide() run %d = %+v, want stable Act(A)", i, decision)
		}
	}
}

func TestDecide_TiesBreakLexicographically(t *testing.T) {
	s := NewScheduler()
	scores := s.Score(map[string]float64{"B": 1, "A": 1})
	for i := 0; i < 5; i++ {
		top := argmaxTieBreakFirst(scores.Candidates)
		if top != "A" {
			t.Errorf("argmaxTieBreakFirst() = %q, want A (tie-break by name)", top)
		}
	}
}

func emptyState() models.AdaptiveState {
	return models.AdaptiveState{}
}
