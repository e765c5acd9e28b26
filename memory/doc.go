// Package memory holds the in-memory conversation threaded through a run.
//
// Model:
//   - A Conversation is append-only; messages are copied in and copied out.
//   - tool messages answer a call ID emitted by the nearest preceding assistant
//     message. Only other tool messages may sit between the two.
//   - Nothing is persisted; a Conversation lives for one run.
package memory
