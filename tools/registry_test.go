package tools_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/petasbytes/search-agent/tools"
)

func echoTool(name string) tools.ToolDefinition {
	return tools.ToolDefinition{
		Name:        name,
		Description: "echoes its input",
		InputSchema: tools.GenerateSchema[struct{}](),
		Function: func(_ context.Context, input json.RawMessage) (string, error) {
			return string(input), nil
		},
	}
}

func TestRegistry_LookupByName(t *testing.T) {
	reg, err := tools.NewRegistry(echoTool("a"), echoTool("b"))
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	d, err := reg.Lookup("b")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if d.Name != "b" {
		t.Fatalf("got %q want b", d.Name)
	}
}

func TestRegistry_UnknownTool(t *testing.T) {
	reg, _ := tools.NewRegistry(echoTool("a"))

	_, err := reg.Lookup("nope")
	var unknown *tools.UnknownToolError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownToolError, got %v", err)
	}
	if unknown.Name != "nope" {
		t.Fatalf("error name got %q want nope", unknown.Name)
	}
}

func TestRegistry_RejectsInvalidDefinitions(t *testing.T) {
	noFunc := echoTool("x")
	noFunc.Function = nil

	cases := map[string][]tools.ToolDefinition{
		"duplicate":  {echoTool("a"), echoTool("a")},
		"empty name": {echoTool("")},
		"no func":    {noFunc},
	}
	for name, defs := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := tools.NewRegistry(defs...); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestRegistry_DefinitionsKeepOrder(t *testing.T) {
	reg, _ := tools.NewRegistry(echoTool("search"), echoTool("clock"), echoTool("calc"))
	want := []string{"search", "clock", "calc"}

	defs := reg.Definitions()
	if len(defs) != len(want) {
		t.Fatalf("unexpected number of tools: got %d want %d", len(defs), len(want))
	}
	for i, d := range defs {
		if d.Name != want[i] {
			t.Errorf("position %d: got %q want %q", i, d.Name, want[i])
		}
	}
	names := reg.Names()
	names[0] = "mutated"
	if reg.Names()[0] != "search" {
		t.Fatal("Names must return a copy")
	}
}

func TestToolDefinition_InvokeEmptyInput(t *testing.T) {
	out, err := echoTool("a").Invoke(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if out != "{}" {
		t.Fatalf("got %q want {}", out)
	}
}
