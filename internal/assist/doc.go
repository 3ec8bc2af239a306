// Package assist turns a prompt into an answer.
//
// An [Assistant] wraps a provider client with fixed decoding parameters, a
// per-call timeout and the response cache. [Assistant.Invoke] returns a
// [Result] that carries either the answer or the failure; callers print
// [Result.Message] in both cases.
package assist
