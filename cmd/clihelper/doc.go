// Clihelper is a command-line assistant that explains failing shell commands
// and answers command-line questions with an LLM.
//
// Error output and questions are scrubbed of secrets before they are sent,
// and recent shell history is included so answers fit what you just ran.
//
// Usage:
//
//	ls --fake-flag 2>&1 | clihelper           # explain an error
//	make 2>&1 | clihelper 'building on arm64' # explain with context
//	clihelper 'how do I find large files?'    # ask a question
//	clihelper --provider openai 'undo my last git commit'
//	clihelper config init                     # write a default config file
//	clihelper shell install                   # flush history after each command
package main
