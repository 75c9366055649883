package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"picoagent/internal/agent"
	"picoagent/internal/config"
	"picoagent/internal/consolidation"
	"picoagent/internal/context"
	"picoagent/internal/entropy"
	"picoagent/internal/hooks"
	"picoagent/internal/memory"
	"picoagent/internal/providers"
	"picoagent/internal/sessions"
	"picoagent/internal/skills"
	"picoagent/internal/subagent"
	"picoagent/internal/tools"
	"picoagent/internal/tools/exec"
	"picoagent/internal/tools/files"
	"picoagent/internal/tools/vectormemory"
)

// runtimePaths names every file/directory picoagent's stores persist under
// a workspace root (spec §6).
type runtimePaths struct {
	sessions     string
	vectorMemory string
	threshold    string
	skills       string
	history      string
	memoryDoc    string
	skillUsage   string
}

func pathsFor(workspaceRoot string) runtimePaths {
	return runtimePaths{
		sessions:     filepath.Join(workspaceRoot, "sessions.json"),
		vectorMemory: filepath.Join(workspaceRoot, "memory.vec"),
		threshold:    filepath.Join(workspaceRoot, "adaptive_threshold.json"),
		skills:       filepath.Join(workspaceRoot, "skills"),
		history:      filepath.Join(workspaceRoot, "HISTORY.md"),
		memoryDoc:    filepath.Join(workspaceRoot, "MEMORY.md"),
		skillUsage:   filepath.Join(workspaceRoot, "skill_usage.jsonl"),
	}
}

// runtime bundles the live loop plus whatever needs an explicit shutdown or
// final persist, so every command can build one the same way and tear it
// down the same way.
type runtime struct {
	cfg    *config.Config
	paths  runtimePaths
	loop   *agent.Loop
	memory *memory.Store
	skills *skills.Library
	logger *slog.Logger
}

// buildRuntime loads config, constructs every collaborator AgentLoop needs,
// and wires them into a Loop. It never starts a server or adapter; callers
// decide what to do with the loop (drive one turn, print diagnostics, ...).
func buildRuntime(configPath string) (*runtime, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	logger := slog.Default()
	paths := pathsFor(cfg.WorkspaceRoot)

	provider, heuristic, err := buildProvider(cfg)
	if err != nil {
		return nil, err
	}

	embedDim := 64 // matches providers.HeuristicClient.Embed's fixed dimension
	memStore, err := memory.Load(paths.vectorMemory, embedDim, memory.DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("load vector memory: %w", err)
	}

	sessionStore, err := sessions.Load(paths.sessions)
	if err != nil {
		return nil, fmt.Errorf("load sessions: %w", err)
	}

	skillLibrary := skills.NewLibrary(paths.skills, logger)
	skillUsage := skills.NewUsageRecorder(paths.skillUsage)

	builder, err := context.NewBuilder(context.LoaderConfig{Root: cfg.WorkspaceRoot})
	if err != nil {
		return nil, fmt.Errorf("load workspace files: %w", err)
	}

	registry := tools.NewRegistry(
		time.Duration(cfg.ToolCacheTTLSeconds)*time.Second,
		1000,
		logger,
	)
	if err := registerTools(registry, cfg); err != nil {
		return nil, err
	}
	if err := registerMemoryTools(registry, memStore, provider); err != nil {
		return nil, err
	}

	state, err := entropy.LoadState(paths.threshold)
	if err != nil {
		return nil, fmt.Errorf("load adaptive threshold: %w", err)
	}
	threshold := entropy.NewAdaptiveThreshold(state)

	consolidationStore := consolidation.New(cfg.WorkspaceRoot, provider, logger)
	subagentCoordinator := subagent.New(provider, subagent.DefaultConfidenceThreshold, subagent.DefaultBudget, logger)

	loop := agent.New(agent.Options{
		Sessions:      sessionStore,
		Memory:        memStore,
		Skills:        skillLibrary,
		SkillUsage:    skillUsage,
		Context:       builder,
		Provider:      provider,
		Heuristic:     heuristic,
		Tools:         registry,
		Hooks:         hooks.NewRegistry(0, logger),
		Threshold:     threshold,
		Scheduler:     entropy.NewScheduler(),
		Consolidation: consolidationStore,
		Subagent:      subagentCoordinator,
		Logger:        logger,
		MaxToolChain:  cfg.MaxToolChain,
		ToolTimeout:   time.Duration(cfg.ToolTimeoutSeconds) * time.Second,
	})

	return &runtime{cfg: cfg, paths: paths, loop: loop, memory: memStore, skills: skillLibrary, logger: logger}, nil
}

// buildProvider resolves the configured primary Client, wrapped in a
// FallbackClient over the heuristic client (spec §4.6).
func buildProvider(cfg *config.Config) (providers.Client, providers.Client, error) {
	heuristic := providers.NewHeuristicClient()

	switch cfg.Provider {
	case "", "heuristic":
		return heuristic, heuristic, nil
	case "anthropic":
		primary, err := providers.NewAnthropicClient(providers.AnthropicConfig{APIKey: cfg.APIKey(), Model: cfg.ChatModel})
		if err != nil {
			return nil, nil, err
		}
		return providers.NewFallbackClient(primary, heuristic, nil), heuristic, nil
	case "openai":
		primary, err := providers.NewOpenAIClient(providers.OpenAIConfig{APIKey: cfg.APIKey(), ChatModel: cfg.ChatModel, EmbeddingModel: cfg.EmbeddingModel})
		if err != nil {
			return nil, nil, err
		}
		return providers.NewFallbackClient(primary, heuristic, nil), heuristic, nil
	default:
		return nil, nil, &config.Error{Field: "provider", Cause: fmt.Errorf("unknown provider %q", cfg.Provider)}
	}
}

// registerTools wires the built-in file and shell tools in according to
// the config's policy flags (spec §6's tool-runner contract).
func registerTools(registry *tools.Registry, cfg *config.Config) error {
	if cfg.AllowFileTool {
		fileCfg := files.Config{Workspace: cfg.WorkspaceRoot}
		for _, tool := range []tools.Tool{
			files.NewReadTool(fileCfg),
			files.NewWriteTool(fileCfg),
			files.NewEditTool(fileCfg),
			files.NewApplyPatchTool(fileCfg),
		} {
			if err := registry.Register(tool); err != nil {
				return fmt.Errorf("register file tool: %w", err)
			}
		}
	}
	if cfg.AllowShell {
		manager := exec.NewManager(cfg.WorkspaceRoot)
		denyPatterns := cfg.ShellDenyPatterns
		for _, tool := range []tools.Tool{
			exec.NewExecTool("shell", manager, denyPatterns),
			exec.NewProcessTool(manager),
		} {
			if err := registry.Register(tool); err != nil {
				return fmt.Errorf("register shell tool: %w", err)
			}
		}
	}
	return nil
}

// registerMemoryTools lets the model explicitly search or save a memory
// mid-turn rather than relying solely on AgentLoop's automatic recall and
// post-turn store (spec §4.3's memory tool surface).
func registerMemoryTools(registry *tools.Registry, store *memory.Store, embedder vectormemory.Embedder) error {
	for _, tool := range []tools.Tool{
		vectormemory.NewSearchTool(store, embedder),
		vectormemory.NewWriteTool(store, embedder),
	} {
		if err := registry.Register(tool); err != nil {
			return fmt.Errorf("register memory tool: %w", err)
		}
	}
	return nil
}

// persist saves every mutable store the runtime may have changed during a
// command (spec §6's persisted-state list). Commands that only read state
// (doctor, threshold-stats) can skip calling this.
func (r *runtime) persist() error {
	if err := r.memory.Save(r.paths.vectorMemory); err != nil {
		return fmt.Errorf("save vector memory: %w", err)
	}
	if err := r.loop.Sessions().Save(); err != nil {
		return fmt.Errorf("save sessions: %w", err)
	}
	if err := entropy.SaveState(r.paths.threshold, r.loop.Threshold()); err != nil {
		return fmt.Errorf("save adaptive threshold: %w", err)
	}
	return nil
}
