package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/petasbytes/search-agent/memory"
	"github.com/petasbytes/search-agent/tools"
)

const DefaultModel = anthropic.ModelClaude3_7SonnetLatest
const APIVersion = "2023-06-01"

const defaultMaxTokens = 1024

// ClientOptions configures the Anthropic client. Empty fields fall back to
// the SDK defaults, which read ANTHROPIC_API_KEY from the environment.
type ClientOptions struct {
	APIKey  string
	BaseURL string
}

// NewAnthropicClient returns a Messages API client.
func NewAnthropicClient(o ClientOptions, extra ...option.RequestOption) *anthropic.Client {
	opts := make([]option.RequestOption, 0, len(extra)+2)
	if o.APIKey != "" {
		opts = append(opts, option.WithAPIKey(o.APIKey))
	}
	if o.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(o.BaseURL))
	}
	opts = append(opts, extra...)
	c := anthropic.NewClient(opts...)
	return &c
}

// Anthropic adapts the Messages API to the runner's model contract.
type Anthropic struct {
	Client    *anthropic.Client
	Model     anthropic.Model
	MaxTokens int64
	System    string
}

func NewAnthropic(client *anthropic.Client, model string, maxTokens int64, system string) *Anthropic {
	m := anthropic.Model(model)
	if model == "" {
		m = DefaultModel
	}
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	return &Anthropic{Client: client, Model: m, MaxTokens: maxTokens, System: system}
}

// Complete sends the whole conversation and returns the reply as one assistant message.
func (a *Anthropic) Complete(ctx context.Context, msgs []memory.Message, defs []tools.ToolDefinition) (memory.Message, error) {
	params := anthropic.MessageNewParams{
		Model:     a.Model,
		MaxTokens: a.MaxTokens,
		Messages:  ToParams(msgs),
	}
	if a.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: a.System}}
	}
	if len(defs) > 0 {
		params.Tools = toolParams(defs)
	}

	resp, err := a.Client.Messages.New(ctx, params)
	if err != nil {
		return memory.Message{}, fmt.Errorf("anthropic: %w", err)
	}
	return FromResponse(resp), nil
}

func toolParams(defs []tools.ToolDefinition) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, 0, len(defs))
	for _, t := range defs {
		out = append(out, anthropic.ToolUnionParam{OfTool: &anthropic.ToolParam{
			Name:        t.Name,
			Description: anthropic.String(t.Description),
			InputSchema: t.InputSchema,
		}})
	}
	return out
}

// ToParams maps the conversation onto Messages API turns. Consecutive tool
// messages collapse into a single user turn of tool_result blocks, which keeps
// each tool_use adjacent to its results.
func ToParams(msgs []memory.Message) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(msgs))
	var pending []anthropic.ContentBlockParamUnion
	flush := func() {
		if len(pending) > 0 {
			out = append(out, anthropic.NewUserMessage(pending...))
			pending = nil
		}
	}

	for _, m := range msgs {
		switch m.Role {
		case memory.RoleTool:
			pending = append(pending, anthropic.NewToolResultBlock(m.ToolCallID, m.Content, false))
		case memory.RoleAssistant:
			flush()
			blocks := make([]anthropic.ContentBlockParamUnion, 0, len(m.ToolCalls)+1)
			if m.Content != "" {
				blocks = append(blocks, anthropic.NewTextBlock(m.Content))
			}
			for _, c := range m.ToolCalls {
				input := c.Args
				if len(input) == 0 {
					input = json.RawMessage(`{}`)
				}
				blocks = append(blocks, anthropic.ContentBlockParamUnion{OfToolUse: &anthropic.ToolUseBlockParam{
					ID:    c.ID,
					Name:  c.Name,
					Input: input,
				}})
			}
			out = append(out, anthropic.NewAssistantMessage(blocks...))
		default:
			flush()
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}
	flush()
	return out
}

// FromResponse converts an API reply into an assistant message. Text blocks
// are joined with newlines; tool_use inputs are passed through as raw JSON.
func FromResponse(resp *anthropic.Message) memory.Message {
	var texts []string
	var calls []memory.ToolCall
	for _, block := range resp.Content {
		switch v := block.AsAny().(type) {
		case anthropic.TextBlock:
			if v.Text != "" {
				texts = append(texts, v.Text)
			}
		case anthropic.ToolUseBlock:
			calls = append(calls, memory.ToolCall{
				ID:   v.ID,
				Name: v.Name,
				Args: json.RawMessage(v.JSON.Input.Raw()),
			})
		}
	}
	return memory.AssistantMessage(strings.Join(texts, "\n"), calls...)
}
