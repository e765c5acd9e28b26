// Package runner drives the model/tool loop for one user request.
//
// Topology:
//
//	__start__ -> model -> (tools -> model)* -> __end__
//
// The loop is a two-state machine. In StateAwaitingModel the model is asked
// for a reply; the router then either runs the requested tools and stays in
// StateAwaitingModel, or moves to StateTerminated.
//
// Invariant:
//   - tool messages are appended only after every call of the step
//     succeeded, so each tool_use is followed by exactly its results.
package runner
