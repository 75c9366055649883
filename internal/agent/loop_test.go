package agent

import (
	"context"
	"errors"
	"testing"
	"time"

	ctxbuilder "picoagent/internal/context"
	"picoagent/internal/entropy"
	"picoagent/internal/hooks"
	"picoagent/internal/memory"
	"picoagent/internal/providers"
	"picoagent/internal/sessions"
	"picoagent/internal/tools"
	"picoagent/pkg/models"
)

// scriptedProvider drives score_tools/decide deterministically for tests
// instead of exercising a real vendor client.
type scriptedProvider struct {
	providers.HeuristicClient
	scores map[string]float64
	plan   map[string]any
	synth  string
	chat   string
	err    error
}

func (p *scriptedProvider) ScoreTools(ctx context.Context, userMessage string, candidates []models.ToolDescriptor) (map[string]float64, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.scores, nil
}

func (p *scriptedProvider) PlanToolArgs(ctx context.Context, userMessage string, tool models.ToolDescriptor) (map[string]any, error) {
	return p.plan, nil
}

func (p *scriptedProvider) SynthesizeResponse(ctx context.Context, userMessage string, result *models.ToolResult) (string, error) {
	if p.synth == "" {
		return "done: " + result.Content, nil
	}
	return p.synth, nil
}

func (p *scriptedProvider) Chat(ctx context.Context, messages []providers.ChatMessage) (string, error) {
	if p.chat == "" {
		return "could you clarify?", nil
	}
	return p.chat, nil
}

type fixedTool struct {
	name   string
	result *models.ToolResult
}

func (f *fixedTool) Descriptor() models.ToolDescriptor {
	return models.ToolDescriptor{Name: f.name, Description: f.name, Schema: []byte(`{"type":"object"}`)}
}

func (f *fixedTool) Execute(ctx context.Context, args map[string]any) (*models.ToolResult, error) {
	return f.result, nil
}

func newTestLoop(t *testing.T, provider providers.Client, toolResults map[string]*models.ToolResult) *Loop {
	t.Helper()

	registry := tools.NewRegistry(time.Minute, 100, nil)
	for name, result := range toolResults {
		if err := registry.Register(&fixedTool{name: name, result: result}); err != nil {
			t.Fatalf("register tool %s: %v", name, err)
		}
	}

	builder := ctxbuilder.NewBuilderFromFiles(ctxbuilder.WorkspaceFiles{Soul: "You are picoagent."})

	return New(Options{
		Sessions:  sessions.NewStore(t.TempDir() + "/sessions.json"),
		Memory:    memory.NewStore(memory.DefaultConfig(), nil),
		Context:   builder,
		Provider:  provider,
		Heuristic: providers.NewHeuristicClient(),
		Tools:     registry,
		Hooks:     hooks.NewRegistry(0, nil),
		Threshold: entropy.NewAdaptiveThreshold(models.AdaptiveState{}),
		Scheduler: entropy.NewScheduler(),
	})
}

func TestRunTurn_ActsOnConfidentSingleCandidate(t *testing.T) {
	provider := &scriptedProvider{
		scores: map[string]float64{"search": 10},
		plan:   map[string]any{},
	}
	loop := newTestLoop(t, provider, map[string]*models.ToolResult{
		"search": {Success: true, Content: "3 results"},
	})

	response, err := loop.RunTurn(context.Background(), "s1", "search for cats")
	if err != nil {
		t.Fatalf("RunTurn() error = %v", err)
	}
	if response != "done: 3 results" {
		t.Errorf("response = %q, want synthesized reply", response)
	}
}

func TestRunTurn_ClarifiesOnAmbiguousScores(t *testing.T) {
	provider := &scriptedProvider{
		scores: map[string]float64{"search": 5, "remind": 5, "email": 5},
		chat:   "which service did you mean?",
	}
	loop := newTestLoop(t, provider, map[string]*models.ToolResult{
		"search": {Success: true, Content: "ok"},
		"remind": {Success: true, Content: "ok"},
		"email":  {Success: true, Content: "ok"},
	})

	response, err := loop.RunTurn(context.Background(), "s1", "do the thing")
	if err != nil {
		t.Fatalf("RunTurn() error = %v", err)
	}
	if response != "which service did you mean?" {
		t.Errorf("response = %q, want clarification", response)
	}
}

func TestRunTurn_ClarifiesOnNoSignal(t *testing.T) {
	provider := &scriptedProvider{scores: map[string]float64{}}
	loop := newTestLoop(t, provider, nil)

	response, err := loop.RunTurn(context.Background(), "s1", "hello")
	if err != nil {
		t.Fatalf("RunTurn() error = %v", err)
	}
	if response == "" {
		t.Error("response is empty, want a clarifying reply")
	}
}

func TestRunTurn_PersistsHistoryAcrossTurns(t *testing.T) {
	provider := &scriptedProvider{
		scores: map[string]float64{"search": 10},
		plan:   map[string]any{},
	}
	loop := newTestLoop(t, provider, map[string]*models.ToolResult{
		"search": {Success: true, Content: "first"},
	})

	if _, err := loop.RunTurn(context.Background(), "s1", "one"); err != nil {
		t.Fatalf("first turn: %v", err)
	}
	if _, err := loop.RunTurn(context.Background(), "s1", "two"); err != nil {
		t.Fatalf("second turn: %v", err)
	}

	state := loop.opts.Sessions.Get("s1")
	if len(state.History) != 2 {
		t.Fatalf("len(History) = %d, want 2", len(state.History))
	}
	if state.History[0].UserMessage != "one" || state.History[1].UserMessage != "two" {
		t.Errorf("history out of order: %+v", state.History)
	}
}

func TestRunTurn_ScoreToolsFailureFallsBackToHeuristic(t *testing.T) {
	provider := &scriptedProvider{err: errors.New("provider down")}
	loop := newTestLoop(t, provider, map[string]*models.ToolResult{
		"search": {Success: true, Content: "ok"},
	})

	response, err := loop.RunTurn(context.Background(), "s1", "search something now")
	if err != nil {
		t.Fatalf("RunTurn() error = %v", err)
	}
	if response == "" {
		t.Error("response is empty even though the heuristic fallback should have produced one")
	}
}
