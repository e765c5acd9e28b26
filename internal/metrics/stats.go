package metrics

import (
	"unicode/utf8"

	"github.com/petasbytes/search-agent/memory"
)

// Stats summarizes the shape of a conversation.
type Stats struct {
	Messages    int `json:"messages"`
	User        int `json:"user"`
	Assistant   int `json:"assistant"`
	ToolResults int `json:"tool_results"`
	ToolCalls   int `json:"tool_calls"`
	Runes       int `json:"runes"`
}

// Summarize counts messages by role, requested tool calls and content runes.
func Summarize(msgs []memory.Message) Stats {
	s := Stats{Messages: len(msgs)}
	for _, m := range msgs {
		switch m.Role {
		case memory.RoleUser:
			s.User++
		case memory.RoleAssistant:
			s.Assistant++
			s.ToolCalls += len(m.ToolCalls)
		case memory.RoleTool:
			s.ToolResults++
		}
		s.Runes += utf8.RuneCountInString(m.Content)
	}
	return s
}

// Fields flattens s for telemetry events.
func (s Stats) Fields() map[string]any {
	return map[string]any{
		"messages":     s.Messages,
		"user":         s.User,
		"assistant":    s.Assistant,
		"tool_results": s.ToolResults,
		"tool_calls":   s.ToolCalls,
		"runes":        s.Runes,
	}
}
