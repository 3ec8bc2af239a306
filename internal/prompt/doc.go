// Package prompt assembles the text sent to the completion API.
//
// Two modes share a layout: an instruction preamble, the shell history
// block, the user's question or the captured error output, and a short
// numbered list of what the answer should contain. Inputs must already be
// redacted.
package prompt
