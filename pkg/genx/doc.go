// Package genx is a small, provider-neutral inference gateway.
//
// # Core Types
//
// Turn is one entry of a conversation history:
//   - Role: who produced the turn (system, user, assistant or tool)
//   - Content: the text payload
//   - ToolCalls: tool invocations requested by the assistant
//   - ToolCallID: the call a tool turn answers
//
// Generator performs a single model call. OpenAIGenerator and
// GeminiGenerator are the two provider implementations.
//
// Agent binds instructions, tools and an optional output schema. Running
// an agent drives the tool loop: the model is called, requested tools are
// invoked with a caller-supplied typed context, their results are appended
// to the history and the model is called again until it answers with text.
//
//	res, err := agent.Run(ctx, runner, history, callCtx)
//	history = res.History
//
// Structured answers are decoded with Decode, which repairs malformed JSON
// before giving up.
package genx
