package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/petasbytes/search-agent/internal/metrics"
	"github.com/petasbytes/search-agent/internal/telemetry"
	"github.com/petasbytes/search-agent/memory"
	"github.com/petasbytes/search-agent/tools"
)

// DefaultMaxSteps bounds model steps per run unless overridden.
const DefaultMaxSteps = 25

// Model is a stateless request/response client over the whole conversation.
type Model interface {
	Complete(ctx context.Context, msgs []memory.Message, defs []tools.ToolDefinition) (memory.Message, error)
}

type Runner struct {
	model    Model
	registry *tools.Registry
	recorder *telemetry.Recorder
	logger   *slog.Logger
	maxSteps int
}

type Option func(*Runner)

func WithRecorder(rec *telemetry.Recorder) Option {
	return func(r *Runner) { r.recorder = rec }
}

func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithMaxSteps sets the model step limit; n <= 0 keeps the default.
func WithMaxSteps(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.maxSteps = n
		}
	}
}

func New(model Model, registry *tools.Registry, opts ...Option) *Runner {
	r := &Runner{
		model:    model,
		registry: registry,
		logger:   slog.Default(),
		maxSteps: DefaultMaxSteps,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Run drives conv until the model answers without tool calls and returns
// that final assistant message. conv is appended to in place.
func (r *Runner) Run(ctx context.Context, conv *memory.Conversation) (memory.Message, error) {
	if conv.Len() == 0 {
		return memory.Message{}, &EmptyStateError{Op: "run"}
	}

	runID, ok := telemetry.RunIDFromContext(ctx)
	if !ok {
		runID = telemetry.NewRunID()
		ctx = telemetry.WithRunID(ctx, runID)
	}
	start := time.Now()
	r.recorder.Emit("run_started", map[string]any{
		"run_id":   runID,
		"messages": conv.Len(),
	})

	steps := 0
	final, err := r.loop(ctx, conv, &steps)

	fields := metrics.Summarize(conv.Messages()).Fields()
	fields["run_id"] = runID
	fields["steps"] = steps
	fields["duration_ms"] = time.Since(start).Milliseconds()
	fields["error"] = nil
	if err != nil {
		fields["error"] = err.Error()
	}
	r.recorder.Emit("run_finished", fields)
	return final, err
}

func (r *Runner) loop(ctx context.Context, conv *memory.Conversation, steps *int) (memory.Message, error) {
	var reply memory.Message
	state := StateAwaitingModel
	for state != StateTerminated {
		if *steps >= r.maxSteps {
			return memory.Message{}, fmt.Errorf("%w (%d)", ErrStepLimit, r.maxSteps)
		}
		*steps++

		var err error
		reply, err = r.ModelStep(ctx, conv)
		if err != nil {
			return memory.Message{}, err
		}

		route := RouteNext(conv)
		if route == RouteTools {
			if _, err := r.ToolStep(ctx, conv); err != nil {
				return memory.Message{}, err
			}
		}
		state = next(route)
		r.logger.Debug("runner transition", "step", *steps, "route", route.String(), "state", state.String())
	}
	return reply, nil
}

// ModelStep sends the full conversation to the model and appends exactly one
// assistant message.
func (r *Runner) ModelStep(ctx context.Context, conv *memory.Conversation) (memory.Message, error) {
	if conv.Len() == 0 {
		return memory.Message{}, &EmptyStateError{Op: "model step"}
	}
	runID, _ := telemetry.RunIDFromContext(ctx)
	start := time.Now()

	reply, err := r.model.Complete(ctx, conv.Messages(), r.registry.Definitions())
	if err != nil {
		r.recorder.Emit("model_step", map[string]any{
			"run_id":      runID,
			"duration_ms": time.Since(start).Milliseconds(),
			"error":       err.Error(),
		})
		return memory.Message{}, err
	}
	// Whatever the client returns is recorded as the assistant's turn.
	reply.Role = memory.RoleAssistant
	reply.ToolCallID, reply.ToolName = "", ""
	if err := conv.Append(reply); err != nil {
		return memory.Message{}, err
	}

	r.recorder.Emit("model_step", map[string]any{
		"run_id":      runID,
		"duration_ms": time.Since(start).Milliseconds(),
		"tool_calls":  len(reply.ToolCalls),
		"content_len": len(reply.Content),
		"error":       nil,
	})
	return reply, nil
}

// ToolStep runs every tool call of the newest assistant message in order and
// appends one tool message per call. Unknown tools and empty or repeated call
// IDs are rejected before any call runs; the first failing call aborts the step. Either way nothing is
// appended on error.
func (r *Runner) ToolStep(ctx context.Context, conv *memory.Conversation) ([]memory.Message, error) {
	last, ok := conv.Last()
	if !ok {
		return nil, &EmptyStateError{Op: "tool step"}
	}
	if !last.HasToolCalls() {
		return nil, nil
	}

	defs := make([]tools.ToolDefinition, len(last.ToolCalls))
	seen := make(map[string]struct{}, len(last.ToolCalls))
	for i, call := range last.ToolCalls {
		if call.ID == "" {
			return nil, fmt.Errorf("%w: call %d of %s has no id", ErrInvalidCallID, i, call.Name)
		}
		if _, dup := seen[call.ID]; dup {
			return nil, fmt.Errorf("%w: %q used twice", ErrInvalidCallID, call.ID)
		}
		seen[call.ID] = struct{}{}
		def, err := r.registry.Lookup(call.Name)
		if err != nil {
			return nil, err
		}
		defs[i] = def
	}

	results := make([]memory.Message, 0, len(last.ToolCalls))
	for i, call := range last.ToolCalls {
		out, err := r.execTool(ctx, defs[i], call)
		if err != nil {
			return nil, &ToolError{Tool: call.Name, CallID: call.ID, Err: err}
		}
		results = append(results, memory.ToolResultMessage(call.ID, call.Name, out))
	}
	if err := conv.Append(results...); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *Runner) execTool(ctx context.Context, def tools.ToolDefinition, call memory.ToolCall) (string, error) {
	runID, _ := telemetry.RunIDFromContext(ctx)

	// Helper to emit a tool_exec event
	emit := func(durationMs int64, outputSize int, errStr string) {
		fields := map[string]any{
			"tool_name":   call.Name,
			"call_id":     call.ID,
			"duration_ms": durationMs,
			"input_size":  len(call.Args),
			"output_size": outputSize,
			"run_id":      runID,
			"error":       nil,
		}
		if errStr != "" {
			fields["error"] = errStr
		}
		r.recorder.Emit("tool_exec", fields)
	}

	start := time.Now()
	out, err := def.Invoke(ctx, call.Args)
	if err != nil {
		// Keep raw payloads out of telemetry.
		reason := "tool error"
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			reason = "canceled"
		}
		emit(time.Since(start).Milliseconds(), 0, reason)
		return "", err
	}
	emit(time.Since(start).Milliseconds(), len(out), "")
	r.logger.Debug("tool executed", "tool", call.Name, "call_id", call.ID, "output_size", len(out))
	return out, nil
}
