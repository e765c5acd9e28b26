package runner_test

import (
	"strings"
	"testing"

	"github.com/petasbytes/search-agent/internal/runner"
	"github.com/petasbytes/search-agent/memory"
)

func TestRouteNext(t *testing.T) {
	tests := []struct {
		name string
		msgs []memory.Message
		want runner.Route
	}{
		{name: "empty", want: runner.RouteEnd},
		{name: "user last", msgs: []memory.Message{memory.UserMessage("hi")}, want: runner.RouteEnd},
		{name: "assistant without calls", msgs: []memory.Message{memory.UserMessage("2+2?"), memory.AssistantMessage("4")}, want: runner.RouteEnd},
		{
			name: "assistant with one call",
			msgs: []memory.Message{memory.UserMessage("q"), memory.AssistantMessage("", call("a", "search", `{}`))},
			want: runner.RouteTools,
		},
		{
			name: "assistant with several calls",
			msgs: []memory.Message{memory.UserMessage("q"), memory.AssistantMessage("x", call("a", "search", `{}`), call("b", "search", `{}`))},
			want: runner.RouteTools,
		},
		{
			name: "tool result last",
			msgs: []memory.Message{
				memory.AssistantMessage("", call("a", "search", `{}`)),
				memory.ToolResultMessage("a", "search", "r"),
			},
			want: runner.RouteEnd,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conv := mustConversation(t, tt.msgs...)
			if got := runner.RouteNext(conv); got != tt.want {
				t.Fatalf("got %s want %s", got, tt.want)
			}
		})
	}
}

func TestRouteAndStateNames(t *testing.T) {
	if runner.RouteTools.String() != "tools" || runner.RouteEnd.String() != "end" {
		t.Fatal("unexpected route names")
	}
	if runner.StateAwaitingModel.String() != "awaiting_model" || runner.StateTerminated.String() != "terminated" {
		t.Fatal("unexpected state names")
	}
}

func TestMermaid(t *testing.T) {
	g := runner.Mermaid()
	for _, edge := range []string{
		"__start__ --> model;",
		"model -.-> tools;",
		"model -.-> __end__;",
		"tools --> model;",
	} {
		if !strings.Contains(g, edge) {
			t.Errorf("missing edge %q in:\n%s", edge, g)
		}
	}
	if !strings.HasPrefix(g, "graph TD;") {
		t.Fatalf("unexpected header:\n%s", g)
	}
}
