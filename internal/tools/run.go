package tools

import (
	"context"
	"errors"
	"fmt"
	"time"

	"picoagent/pkg/models"
)

// TimeoutError indicates a tool call was aborted because it exceeded its
// allotted timeout.
type TimeoutError struct {
	ToolName string
	Timeout  time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("tools: %s exceeded timeout of %s", e.ToolName, e.Timeout)
}

// Run validates args, checks the result cache, and on a miss executes the
// tool with a hard timeout of min(descriptor timeout, globalTimeout). A
// cache hit skips execution and the tool's timeout entirely.
func (r *Registry) Run(ctx context.Context, name string, args map[string]any, globalTimeout time.Duration) (*models.ToolResult, error) {
	tool, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("tools: unknown tool %q", name)
	}

	if err := r.Validate(name, args); err != nil {
		return nil, err
	}

	desc := tool.Descriptor()
	cacheable := desc.CacheEnabled()

	key := fingerprint(name, args)
	if cacheable {
		if cached, ok := r.cache.get(key); ok {
			return &cached, nil
		}
	}

	timeout := DefaultTimeout
	if desc.Timeout > 0 {
		timeout = time.Duration(desc.Timeout) * time.Second
	}
	if globalTimeout > 0 && globalTimeout < timeout {
		timeout = globalTimeout
	}

	result, err := r.executeWithTimeout(ctx, tool, args, timeout)
	if err != nil {
		return nil, err
	}

	if result.Success && cacheable {
		r.cache.put(key, *result)
	}
	return result, nil
}

// executeWithTimeout runs the tool in its own goroutine so a hung tool
// implementation can never block the caller past timeout; the goroutine is
// left to finish (or leak, in the pathological case) rather than be killed,
// since Go has no mechanism to forcibly cancel a running goroutine.
func (r *Registry) executeWithTimeout(ctx context.Context, tool Tool, args map[string]any, timeout time.Duration) (*models.ToolResult, error) {
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type outcome struct {
		result *models.ToolResult
		err    error
	}
	done := make(chan outcome, 1)

	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- outcome{result: &models.ToolResult{Success: false, Error: fmt.Sprintf("panic: %v", p)}}
			}
		}()
		res, err := tool.Execute(runCtx, args)
		done <- outcome{result: res, err: err}
	}()

	select {
	case o := <-done:
		if o.err != nil {
			return nil, o.err
		}
		return o.result, nil
	case <-runCtx.Done():
		desc := tool.Descriptor()
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			r.logger.Warn("tool timed out", "tool", desc.Name, "timeout", timeout)
			return &models.ToolResult{Success: false, Error: "timeout"}, nil
		}
		return nil, runCtx.Err()
	}
}
