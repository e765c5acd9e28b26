package memory

import (
	"errors"
	"fmt"
)

// ErrOrphanToolResult is returned when a tool message does not answer an
// outstanding call of the preceding assistant message.
var ErrOrphanToolResult = errors.New("tool result does not answer a pending tool call")

// Conversation is an append-only ordered list of messages.
// The zero value is an empty conversation ready for use.
type Conversation struct {
	msgs []Message
}

// NewConversation returns a conversation seeded with msgs.
// The seed is validated like any other append.
func NewConversation(msgs ...Message) (*Conversation, error) {
	c := &Conversation{}
	if err := c.Append(msgs...); err != nil {
		return nil, err
	}
	return c, nil
}

// Append adds msgs to the end of the conversation. The batch is validated as a
// whole; on error nothing is appended.
func (c *Conversation) Append(msgs ...Message) error {
	next := make([]Message, len(c.msgs), len(c.msgs)+len(msgs))
	copy(next, c.msgs)
	for _, m := range msgs {
		if m.Role == RoleTool {
			if err := checkAnswers(next, m.ToolCallID); err != nil {
				return err
			}
		}
		next = append(next, m.clone())
	}
	c.msgs = next
	return nil
}

// Messages returns a copy of the conversation, oldest first.
func (c *Conversation) Messages() []Message {
	out := make([]Message, len(c.msgs))
	for i, m := range c.msgs {
		out[i] = m.clone()
	}
	return out
}

// Last returns the newest message, if any.
func (c *Conversation) Last() (Message, bool) {
	if len(c.msgs) == 0 {
		return Message{}, false
	}
	return c.msgs[len(c.msgs)-1].clone(), true
}

func (c *Conversation) Len() int { return len(c.msgs) }

// checkAnswers walks back over the trailing run of tool messages to the
// assistant message that opened it and verifies id is one of its calls and
// has not been answered yet.
func checkAnswers(msgs []Message, id string) error {
	if id == "" {
		return fmt.Errorf("%w: empty call id", ErrOrphanToolResult)
	}
	answered := map[string]struct{}{}
	for i := len(msgs) - 1; i >= 0; i-- {
		m := msgs[i]
		switch m.Role {
		case RoleTool:
			answered[m.ToolCallID] = struct{}{}
			continue
		case RoleAssistant:
			if _, dup := answered[id]; dup {
				return fmt.Errorf("%w: call %q already answered", ErrOrphanToolResult, id)
			}
			for _, call := range m.ToolCalls {
				if call.ID == id {
					return nil
				}
			}
		}
		return fmt.Errorf("%w: call %q", ErrOrphanToolResult, id)
	}
	return fmt.Errorf("%w: call %q", ErrOrphanToolResult, id)
}
