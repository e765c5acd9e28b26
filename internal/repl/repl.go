// Package repl is the line-oriented front end of the agent.
package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/petasbytes/search-agent/memory"
)

// Agent runs one conversation to completion.
type Agent interface {
	Run(ctx context.Context, conv *memory.Conversation) (memory.Message, error)
}

type Session struct {
	Agent Agent
	In    io.Reader
	Out   io.Writer
	Err   io.Writer
	// Graph renders the agent topology for the draw command.
	Graph func() string
}

const (
	userPrompt      = "\u001b[94mUser\u001b[0m: "
	assistantPrefix = "\u001b[93mAssistant\u001b[0m: "
	toolPrefix      = "\u001b[91mTool\u001b[0m: "
)

func isQuit(cmd string) bool {
	switch cmd {
	case "quit", "exit", "q":
		return true
	}
	return false
}

func isDraw(cmd string) bool {
	switch cmd {
	case "draw", "graph", "show":
		return true
	}
	return false
}

// Loop reads lines until a quit command, end of input or ctx cancellation.
// Every other line starts a fresh run; a failed run is reported and the loop
// continues.
func (s *Session) Loop(ctx context.Context) error {
	fmt.Fprintln(s.Out, "Agent is ready. Type 'quit', 'exit', or 'q' to end.")
	fmt.Fprintln(s.Out, "Type 'draw' or 'graph' to see a diagram of the graph.")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// stdin reader goroutine -> lines into channel
	inputCh := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(s.In)
		for scanner.Scan() {
			select {
			case inputCh <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
		close(inputCh)
	}()

	for {
		fmt.Fprint(s.Out, userPrompt)
		var (
			line string
			ok   bool
		)
		select {
		case <-ctx.Done():
			fmt.Fprintln(s.Out, "\nGoodbye!")
			return nil
		case line, ok = <-inputCh:
			if !ok {
				fmt.Fprintln(s.Out, "\nGoodbye!")
				return <-readErr
			}
		}

		cmd := strings.ToLower(strings.TrimSpace(line))
		switch {
		case cmd == "":
			continue
		case isQuit(cmd):
			fmt.Fprintln(s.Out, "Goodbye!")
			return nil
		case isDraw(cmd):
			s.draw()
			continue
		}

		if err := s.runLine(ctx, line); err != nil {
			fmt.Fprintf(s.Err, "error: %v\n", err)
		}
	}
}

func (s *Session) draw() {
	if s.Graph == nil {
		fmt.Fprintln(s.Err, "error: no graph renderer configured")
		return
	}
	fmt.Fprintln(s.Out, "Attempting to draw the graph...")
	fmt.Fprintln(s.Out, s.Graph())
}

// runLine runs a single user request and prints everything the run appended,
// including the partial transcript of a failed run.
func (s *Session) runLine(ctx context.Context, line string) error {
	conv, err := memory.NewConversation(memory.UserMessage(line))
	if err != nil {
		return err
	}
	_, runErr := s.Agent.Run(ctx, conv)
	msgs := conv.Messages()
	for _, m := range msgs[1:] {
		s.print(m)
	}
	return runErr
}

func (s *Session) print(m memory.Message) {
	if m.Role != memory.RoleAssistant {
		return
	}
	if m.Content != "" {
		fmt.Fprintf(s.Out, "%s%s\n", assistantPrefix, m.Content)
	}
	for _, c := range m.ToolCalls {
		fmt.Fprintf(s.Out, "%s%s %s\n", toolPrefix, c.Name, string(c.Args))
	}
}
