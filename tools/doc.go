// Package tools defines tool contracts, the registry and the search tool.
//
// Includes:
//   - ToolDefinition: name, description, JSON input schema, handler.
//   - GenerateSchema[T](): derive JSON Schema from Go structs.
//   - Registry: name-keyed lookup; unknown names yield *UnknownToolError.
//   - search: web search over a pluggable Searcher backend.
package tools
