// Package telemetry records agent run events as JSON lines.
//
// Events: run_started, model_step, tool_exec, run_finished. Every event of a
// run carries the same run_id, taken from the context.
package telemetry
