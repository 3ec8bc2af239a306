// Package history reads the user's recent shell commands.
//
// The bash or zsh history file is parsed directly, including zsh extended
// entries and bash timestamp comments. When no file is readable an
// interactive bash subprocess running the `history` builtin is used, bounded
// by a one second timeout. The formatted block is redacted before it leaves
// the package.
package history
