// Package provider connects the agent to the Anthropic Messages API.
//
// Mapping:
//
//	user(text)                  -> user[text]
//	assistant(text, calls...)   -> assistant[text, tool_use...]
//	tool, tool, ...             -> user[tool_result, tool_result, ...]
package provider
