package keystore

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/dshills/clihelper/internal/providers"
)

// Source records where a key was found.
type Source string

const (
	SourceFile   Source = "file"
	SourceEnv    Source = "env"
	SourcePrompt Source = "prompt"
)

// Key is a resolved API key.
type Key struct {
	Value  string
	Source Source
	// Origin is the file path or environment variable the key came from.
	Origin string
}

// Prompter asks the user for a secret. label is shown before the input.
type Prompter func(label string) (string, error)

// ErrNoKey is returned when no key is stored and none could be prompted for.
var ErrNoKey = errors.New("no API key found")

// Store locates and persists the API key for one provider.
type Store struct {
	Provider string
	// Path overrides the key file location.
	Path string
	// Getenv defaults to os.Getenv.
	Getenv func(string) string
}

// New returns a Store for provider honoring CLIHELPER_KEY_FILE.
func New(provider string) *Store {
	return &Store{Provider: provider, Path: os.Getenv("CLIHELPER_KEY_FILE")}
}

// FilePath returns the key file location: ~/.clihelper_key for Anthropic,
// ~/.clihelper_<provider>_key otherwise.
func (s *Store) FilePath() (string, error) {
	if s.Path != "" {
		return s.Path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "cannot determine home directory")
	}
	name := ".clihelper_key"
	if s.Provider != "" && s.Provider != "anthropic" {
		name = fmt.Sprintf(".clihelper_%s_key", s.Provider)
	}
	return filepath.Join(home, name), nil
}

// Lookup returns a stored key without prompting: the key file first, then
// the provider's environment variables.
func (s *Store) Lookup() (Key, error) {
	path, err := s.FilePath()
	if err != nil {
		return Key{}, err
	}
	// An unreadable key file is treated as absent.
	if data, err := os.ReadFile(path); err == nil {
		if v := strings.TrimSpace(string(data)); v != "" {
			return Key{Value: v, Source: SourceFile, Origin: path}, nil
		}
	}

	getenv := s.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	for _, name := range providers.KeyEnvVars(s.Provider) {
		if v := strings.TrimSpace(getenv(name)); v != "" {
			return Key{Value: v, Source: SourceEnv, Origin: name}, nil
		}
	}
	return Key{}, s.noKey()
}

// Resolve returns the key from Lookup, or asks for one with prompt and
// saves it. Progress and save failures are written to out; a key that
// cannot be saved is still returned.
func (s *Store) Resolve(prompt Prompter, out io.Writer) (Key, error) {
	key, err := s.Lookup()
	if err == nil || !errors.Is(err, ErrNoKey) {
		return key, err
	}
	if prompt == nil {
		return Key{}, err
	}

	label := providers.Label(s.Provider)
	fmt.Fprintln(out, "Welcome to clihelper!")
	if url := KeyURL(s.Provider); url != "" {
		fmt.Fprintf(out, "\nGet your API key at: %s\n", url)
	}
	value, perr := prompt(fmt.Sprintf("Enter your %s API key: ", label))
	if errors.Is(perr, ErrNoTerminal) {
		return Key{}, err
	}
	if perr != nil {
		return Key{}, errors.Wrap(perr, "reading API key")
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return Key{}, s.noKey()
	}

	path, serr := s.Save(value)
	if serr != nil {
		fmt.Fprintf(out, "Could not save key: %v\n\n", serr)
	} else {
		fmt.Fprintf(out, "Key saved to %s\n\n", path)
	}
	return Key{Value: value, Source: SourcePrompt, Origin: path}, nil
}

// Save writes value to the key file with owner-only permissions.
func (s *Store) Save(value string) (string, error) {
	path, err := s.FilePath()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return path, errors.Wrap(err, "creating key directory")
	}
	if err := os.WriteFile(path, []byte(strings.TrimSpace(value)), 0o600); err != nil {
		return path, errors.Wrap(err, "writing key file")
	}
	// WriteFile keeps the mode of an existing file.
	if err := os.Chmod(path, 0o600); err != nil {
		return path, errors.Wrap(err, "restricting key file permissions")
	}
	return path, nil
}

// Clear removes the key file. A missing file is not an error.
func (s *Store) Clear() (bool, error) {
	path, err := s.FilePath()
	if err != nil {
		return false, err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.Wrap(err, "removing key file")
	}
	return true, nil
}

func (s *Store) noKey() error {
	hint := "run `clihelper key set`"
	if vars := providers.KeyEnvVars(s.Provider); len(vars) > 0 {
		hint += " or export " + vars[0]
	}
	return errors.WithHint(ErrNoKey, hint)
}

// KeyURL returns where a user can create a key for provider.
func KeyURL(provider string) string {
	switch provider {
	case "anthropic":
		return "https://console.anthropic.com/settings/keys"
	case "openai":
		return "https://platform.openai.com/api-keys"
	case "gemini", "google":
		return "https://aistudio.google.com/app/apikey"
	default:
		return ""
	}
}
