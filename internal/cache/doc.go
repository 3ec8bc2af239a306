// Package cache stores LLM answers in a local SQLite database.
//
// Entries are keyed by a SHA-256 hash of the provider name, model and the
// fully built prompt. Each row keeps the answer text and a creation
// timestamp; rows older than the TTL are treated as misses and deleted on
// read. Only successful answers are stored, and prompts are redacted before
// they reach the key material.
//
// The database lives at $XDG_CACHE_HOME/clihelper/responses.db (or the
// OS-appropriate equivalent).
package cache
