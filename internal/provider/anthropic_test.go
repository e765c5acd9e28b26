package provider_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/petasbytes/search-agent/internal/provider"
	"github.com/petasbytes/search-agent/memory"
	"github.com/petasbytes/search-agent/tools"
)

type capture struct {
	body []byte
}

type fakeTransport struct {
	respStatus int
	respBody   []byte
	captured   *capture
}

func (f *fakeTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	b, _ := io.ReadAll(req.Body)
	_ = req.Body.Close()
	if f.captured != nil {
		f.captured.body = b
	}
	resp := &http.Response{
		StatusCode: f.respStatus,
		Body:       io.NopCloser(bytes.NewReader(f.respBody)),
		Header:     make(http.Header),
	}
	resp.Header.Set("Content-Type", "application/json")
	return resp, nil
}

func newClientWithTransport(rt http.RoundTripper) *anthropic.Client {
	return provider.NewAnthropicClient(
		provider.ClientOptions{APIKey: "test-key"},
		option.WithHTTPClient(&http.Client{Transport: rt}),
		option.WithMaxRetries(0),
	)
}

type contentItem struct {
	Type      string          `json:"type"`
	Text      string          `json:"text,omitempty"`
	ID        string          `json:"id,omitempty"`
	Name      string          `json:"name,omitempty"`
	Input     json.RawMessage `json:"input,omitempty"`
	ToolUseID string          `json:"tool_use_id,omitempty"`
	Content   json.RawMessage `json:"content,omitempty"`
}

type reqBody struct {
	Model     string `json:"model"`
	MaxTokens int    `json:"max_tokens"`
	System    []struct {
		Text string `json:"text"`
	} `json:"system"`
	Messages []struct {
		Role    string        `json:"role"`
		Content []contentItem `json:"content"`
	} `json:"messages"`
	Tools []struct {
		Name string `json:"name"`
	} `json:"tools"`
}

func searchDef() tools.ToolDefinition {
	return tools.ToolDefinition{
		Name:        "search",
		Description: "search the web",
		InputSchema: tools.GenerateSchema[tools.SearchInput](),
		Function: func(context.Context, json.RawMessage) (string, error) {
			return "", nil
		},
	}
}

func TestComplete_SendsFullConversationGroupedByTurn(t *testing.T) {
	capReq := &capture{}
	fake := &fakeTransport{respStatus: 200, respBody: []byte(`{"role":"assistant","content":[{"type":"text","text":"4"}]}`), captured: capReq}
	a := provider.NewAnthropic(newClientWithTransport(fake), "", 0, "be brief")

	conv := []memory.Message{
		memory.UserMessage("weather in SF and NYC?"),
		memory.AssistantMessage("Let me look.",
			memory.ToolCall{ID: "a", Name: "search", Args: json.RawMessage(`{"query":"weather in SF"}`)},
			memory.ToolCall{ID: "b", Name: "search"},
		),
		memory.ToolResultMessage("a", "search", `{"results":[]}`),
		memory.ToolResultMessage("b", "search", `{"results":[1]}`),
	}

	msg, err := a.Complete(context.Background(), conv, []tools.ToolDefinition{searchDef()})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if msg.Role != memory.RoleAssistant || msg.Content != "4" || msg.HasToolCalls() {
		t.Fatalf("unexpected reply: %+v", msg)
	}

	var rb reqBody
	if err := json.Unmarshal(capReq.body, &rb); err != nil {
		t.Fatalf("unmarshal body: %v\nbody=%s", err, string(capReq.body))
	}
	if rb.Model != string(provider.DefaultModel) || rb.MaxTokens != 1024 {
		t.Fatalf("unexpected model/max_tokens: %s/%d", rb.Model, rb.MaxTokens)
	}
	if len(rb.System) != 1 || rb.System[0].Text != "be brief" {
		t.Fatalf("unexpected system: %+v", rb.System)
	}
	if len(rb.Tools) != 1 || rb.Tools[0].Name != "search" {
		t.Fatalf("unexpected tools: %+v", rb.Tools)
	}
	if len(rb.Messages) != 3 {
		t.Fatalf("expected 3 API messages (user, assistant, grouped results), got %d", len(rb.Messages))
	}

	asst := rb.Messages[1]
	if asst.Role != "assistant" || len(asst.Content) != 3 {
		t.Fatalf("unexpected assistant turn: %+v", asst)
	}
	if asst.Content[0].Type != "text" || asst.Content[1].Type != "tool_use" || asst.Content[1].ID != "a" {
		t.Fatalf("unexpected assistant blocks: %+v", asst.Content)
	}
	if string(asst.Content[2].Input) != "{}" {
		t.Fatalf("missing args should be sent as {}, got %s", asst.Content[2].Input)
	}

	results := rb.Messages[2]
	if results.Role != "user" || len(results.Content) != 2 {
		t.Fatalf("unexpected tool_result turn: %+v", results)
	}
	if results.Content[0].ToolUseID != "a" || results.Content[1].ToolUseID != "b" {
		t.Fatalf("tool_result order mismatch: %+v", results.Content)
	}
}

func TestComplete_ParsesToolUse(t *testing.T) {
	resp := `{
	"role": "assistant",
	"content": [
		{"type": "text", "text": "Searching."},
		{"type": "tool_use", "id": "t1", "name": "search", "input": {"query": "weather in SF"}}
	]
	}`
	fake := &fakeTransport{respStatus: 200, respBody: []byte(resp)}
	a := provider.NewAnthropic(newClientWithTransport(fake), "claude-test", 64, "")

	msg, err := a.Complete(context.Background(), []memory.Message{memory.UserMessage("weather in SF?")}, nil)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if msg.Content != "Searching." {
		t.Fatalf("content got %q", msg.Content)
	}
	if len(msg.ToolCalls) != 1 {
		t.Fatalf("expected one tool call, got %d", len(msg.ToolCalls))
	}
	call := msg.ToolCalls[0]
	if call.ID != "t1" || call.Name != "search" {
		t.Fatalf("unexpected call: %+v", call)
	}
	var args map[string]string
	if err := json.Unmarshal(call.Args, &args); err != nil || args["query"] != "weather in SF" {
		t.Fatalf("unexpected args %s (err=%v)", call.Args, err)
	}
}

func TestComplete_TransportErrorSurfaces(t *testing.T) {
	fake := &fakeTransport{respStatus: 500, respBody: []byte(`{"type":"error","error":{"type":"api_error","message":"overloaded"}}`)}
	a := provider.NewAnthropic(newClientWithTransport(fake), "", 0, "")

	_, err := a.Complete(context.Background(), []memory.Message{memory.UserMessage("hi")}, nil)
	if err == nil || !strings.Contains(err.Error(), "anthropic") {
		t.Fatalf("expected wrapped anthropic error, got %v", err)
	}
}

func TestFromResponse_JoinsText(t *testing.T) {
	var m anthropic.Message
	raw := `{"role":"assistant","content":[{"type":"text","text":"a"},{"type":"text","text":""},{"type":"text","text":"b"}]}`
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	got := provider.FromResponse(&m)
	if got.Content != "a\nb" {
		t.Fatalf("content got %q want %q", got.Content, "a\nb")
	}
}
