package runner

import "github.com/petasbytes/search-agent/memory"

// Route is the router's decision after a model step.
type Route int

const (
	RouteEnd Route = iota
	RouteTools
)

func (r Route) String() string {
	switch r {
	case RouteTools:
		return "tools"
	default:
		return "end"
	}
}

// State is the run loop's state.
type State int

const (
	StateAwaitingModel State = iota
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateAwaitingModel:
		return "awaiting_model"
	default:
		return "terminated"
	}
}

// RouteNext picks the next step from the newest message: tools when it is an
// assistant message with at least one tool call, end otherwise.
func RouteNext(conv *memory.Conversation) Route {
	last, ok := conv.Last()
	if !ok {
		return RouteEnd
	}
	if last.HasToolCalls() {
		return RouteTools
	}
	return RouteEnd
}

// next is the single transition rule of the loop.
func next(r Route) State {
	if r == RouteTools {
		return StateAwaitingModel
	}
	return StateTerminated
}
