package runner

import "strings"

const (
	nodeStart = "__start__"
	nodeModel = "model"
	nodeTools = "tools"
	nodeEnd   = "__end__"
)

// Mermaid renders the loop topology as a Mermaid flowchart. Dotted edges are
// the router's conditional branches.
func Mermaid() string {
	var b strings.Builder
	b.WriteString("graph TD;\n")
	b.WriteString("\t" + nodeStart + "([" + nodeStart + "])\n")
	b.WriteString("\t" + nodeModel + "(" + nodeModel + ")\n")
	b.WriteString("\t" + nodeTools + "(" + nodeTools + ")\n")
	b.WriteString("\t" + nodeEnd + "([" + nodeEnd + "])\n")
	b.WriteString("\t" + nodeStart + " --> " + nodeModel + ";\n")
	b.WriteString("\t" + nodeModel + " -.-> " + nodeTools + ";\n")
	b.WriteString("\t" + nodeModel + " -.-> " + nodeEnd + ";\n")
	b.WriteString("\t" + nodeTools + " --> " + nodeModel + ";\n")
	return b.String()
}
