package entropy

import "testing"

func TestAdaptiveThreshold_DefaultsFromZeroState(t *testing.T) {
	th := NewAdaptiveThreshold(emptyState())
	if th.Current() != DefaultThreshold {
		t.Errorf("Current() = %v, want %v", th.Current(), DefaultThreshold)
	}
}

func TestObserve_SuccessPullsThresholdTowardEntropy(t *testing.T) {
	th := NewAdaptiveThreshold(emptyState())
	before := th.Current()
	th.Observe(true, true, 2.0)
	after := th.Current()
	if after <= before {
		t.Errorf("Observe(acted, success, 2.0) threshold = %v, want > %v (pulled toward higher entropy)", after, before)
	}
}

func TestObserve_FailurePullsThresholdDown(t *testing.T) {
	th := NewAdaptiveThreshold(emptyState())
	before := th.Current()
	th.Observe(true, false, 0.2)
	after := th.Current()
	if after >= before {
		t.Errorf("Observe(acted, !success, ...) threshold = %v, want < %v (pulled toward MinThreshold)", after, before)
	}
}

func TestObserve_ClarifyDecaysThresholdTowardFloor(t *testing.T) {
	th := NewAdaptiveThreshold(emptyState())
	before := th.Current()
	th.Observe(false, true, 1.6)
	after := th.Current()
	if after >= before {
		t.Errorf("Observe(!acted, ...) threshold = %v, want < %v (decays toward floor)", after, before)
	}
}

func TestObserve_ClampsWithinBounds(t *testing.T) {
	th := NewAdaptiveThreshold(emptyState())
	for i := 0; i < 1000; i++ {
		th.Observe(true, true, 10)
	}
	if th.Current() > MaxThreshold {
		t.Errorf("Current() = %v, exceeds MaxThreshold %v", th.Current(), MaxThreshold)
	}

	th2 := NewAdaptiveThreshold(emptyState())
	for i := 0; i < 1000; i++ {
		th2.Observe(true, false, 0)
	}
	if th2.Current() < MinThreshold {
		t.Errorf("Current() = %v, below MinThreshold %v", th2.Current(), MinThreshold)
	}
}

func TestStats_WinRateOverActedOutcomes(t *testing.T) {
	th := NewAdaptiveThreshold(emptyState())
	th.Observe(true, true, 0.5)
	th.Observe(true, true, 0.5)
	th.Observe(true, false, 0.5)
	th.Observe(false, true, 1.6) // clarify, excluded from win_rate

	_, winRate, sampleCount := th.Stats()
	if winRate != 2.0/3.0 {
		t.Errorf("Stats() win_rate = %v, want %v", winRate, 2.0/3.0)
	}
	if sampleCount != 4 {
		t.Errorf("Stats() sample_count = %v, want 4", sampleCount)
	}
}

func TestStats_BoundedHistory(t *testing.T) {
	th := NewAdaptiveThreshold(emptyState())
	for i := 0; i < maxOutcomeHistory+10; i++ {
		th.Observe(true, true, 0.5)
	}
	_, _, sampleCount := th.Stats()
	if sampleCount != maxOutcomeHistory {
		t.Errorf("Stats() sample_count = %v, want bounded at %v", sampleCount, maxOutcomeHistory)
	}
}
