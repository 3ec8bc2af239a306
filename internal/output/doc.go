// Package output formats answers for display or machine consumption.
//
// Two formats are supported:
//   - text: the answer framed between rules (default)
//   - json: the answer with provider, model, cache and timing metadata
//
// Failed calls are written too; the text format shows the error message in
// place of an answer and the json format sets "ok" to false.
package output
