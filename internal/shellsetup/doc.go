// Package shellsetup installs the snippet that makes the shell write each
// command to its history file as soon as it runs, so clihelper can see the
// command that just failed.
//
// The snippet lives between marker comments in ~/.bashrc or ~/.zshrc and is
// replaced in place on reinstall. A marker file in the config directory
// records whether the user accepted the first-run offer.
package shellsetup
