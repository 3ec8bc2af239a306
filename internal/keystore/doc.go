// Package keystore finds, prompts for and stores the API key.
//
// Lookup order is the key file (~/.clihelper_key, or CLIHELPER_KEY_FILE),
// then the provider's environment variable, then an interactive prompt with
// hidden input. A prompted key is saved with mode 0600.
package keystore
