// Package metrics derives simple counts from a conversation.
package metrics
