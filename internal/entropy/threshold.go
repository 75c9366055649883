package entropy

import (
	"picoagent/pkg/models"
)

// Default bounds and initial value for the adaptive confidence threshold,
// expressed in bits of entropy, per the seed scenarios: a confident 9:1
// split sits at ~0.469 bits, an ambiguous three-way tie at ~1.585 bits.
const (
	DefaultThreshold    = 1.5
	MinThreshold        = 0.3
	MaxThreshold        = 3.0
	DefaultLearningRate = 0.1

	// maxOutcomeHistory bounds the ring Stats() draws win_rate and
	// sample_count from; older outcomes age out rather than growing the
	// persisted state without bound.
	maxOutcomeHistory = 50
)

// AdaptiveThreshold tracks the online-tuned entropy threshold: it pulls the
// gate looser after a confident success, tighter after a confident failure,
// and drifts toward the floor during a run of clarifications.
type AdaptiveThreshold struct {
	state models.AdaptiveState
}

// NewAdaptiveThreshold constructs a threshold tracker from persisted state,
// defaulting Threshold and LearningRate when the state is zero-valued (a
// fresh store or one loaded before these fields existed).
func NewAdaptiveThreshold(state models.AdaptiveState) *AdaptiveThreshold {
	if state.Threshold == 0 {
		state.Threshold = DefaultThreshold
	}
	if state.LearningRate == 0 {
		state.LearningRate = DefaultLearningRate
	}
	return &AdaptiveThreshold{state: state}
}

// Current returns the current decision threshold in bits.
func (a *AdaptiveThreshold) Current() float64 {
	return a.state.Threshold
}

// State returns a copy of the current adaptive state for persistence.
func (a *AdaptiveThreshold) State() models.AdaptiveState {
	return a.state
}

// Stats reports the threshold and, over the retained outcome window, the
// fraction of acted-on turns that succeeded and the sample count.
func (a *AdaptiveThreshold) Stats() (threshold, winRate float64, sampleCount int) {
	acted, wins := 0, 0
	for _, o := range a.state.Outcomes {
		if o.Acted {
			acted++
			if o.Success {
				wins++
			}
		}
	}
	if acted > 0 {
		winRate = float64(wins) / float64(acted)
	}
	return a.state.Threshold, winRate, len(a.state.Outcomes)
}

// Observe folds one turn's outcome into the threshold. acted is whether the
// loop executed a tool this turn (false for Clarify); success only matters
// when acted is true; entropyAtDecision is the entropy value the decision
// was made on.
func (a *AdaptiveThreshold) Observe(acted, success bool, entropyAtDecision float64) {
	s := &a.state
	eta := s.LearningRate
	tau := s.Threshold

	switch {
	case acted && success:
		tau = tau + eta*(entropyAtDecision-tau)
	case acted && !success:
		tau = tau - eta*(tau-MinThreshold)
	default:
		tau = tau - (eta/4)*(tau-MinThreshold)
	}
	s.Threshold = clamp(tau, MinThreshold, MaxThreshold)

	s.Outcomes = append(s.Outcomes, models.AdaptiveOutcome{
		Acted:   acted,
		Success: success,
		Entropy: entropyAtDecision,
	})
	if len(s.Outcomes) > maxOutcomeHistory {
		s.Outcomes = s.Outcomes[len(s.Outcomes)-maxOutcomeHistory:]
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
