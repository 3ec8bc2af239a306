// Package redact removes secrets from shell output, command history, and
// free-form user text before any of it is sent to an LLM provider.
//
// Detection is a fixed, ordered list of case-insensitive regex rules covering
// private key blocks, sk- prefixed API keys, api key / token / password
// assignments, bearer tokens, AWS access key IDs and secret access keys,
// credentials embedded in URLs, sshpass -p arguments, and payment card
// numbers.
//
// Rules run once, in declaration order, and most of them keep the key name or
// flag while blanking only the value. The rule set is idempotent:
// Sanitize(Sanitize(s)) == Sanitize(s).
package redact
