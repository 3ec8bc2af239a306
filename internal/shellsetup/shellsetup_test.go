package shellsetup

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
)

func newSetup(t *testing.T, shell Shell) (*Setup, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()
	var out bytes.Buffer
	return &Setup{
		Shell:      shell,
		RCPath:     filepath.Join(dir, "rc"),
		MarkerPath: filepath.Join(dir, "config", "shell_setup"),
		Out:        &out,
	}, &out
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}

func answer(yes bool, asked *int) Confirm {
	return func(string) (bool, error) {
		*asked++
		return yes, nil
	}
}

func TestSnippet(t *testing.T) {
	bash := Snippet(Bash)
	if !strings.HasPrefix(bash, markerStart+"\n") || !strings.HasSuffix(bash, markerEnd+"\n") {
		t.Errorf("bash snippet not marker-delimited:\n%s", bash)
	}
	if !strings.Contains(bash, "history -a") {
		t.Error("bash snippet should flush history with history -a")
	}
	if !strings.Contains(bash, "${PROMPT_COMMAND:+; $PROMPT_COMMAND}") {
		t.Error("bash snippet should preserve an existing PROMPT_COMMAND")
	}

	zsh := Snippet(Zsh)
	if !strings.Contains(zsh, "setopt INC_APPEND_HISTORY") {
		t.Error("zsh snippet should set INC_APPEND_HISTORY")
	}
	if strings.Contains(zsh, "PROMPT_COMMAND") {
		t.Error("zsh snippet should not touch PROMPT_COMMAND")
	}
}

func TestReplaceSection_NoExisting(t *testing.T) {
	existing := "export PATH=$HOME/bin:$PATH"
	result := replaceSection(existing, Snippet(Bash))

	if !strings.HasPrefix(result, existing+"\n") {
		t.Error("Existing content should be preserved with a trailing newline")
	}
	if !strings.HasSuffix(result, Snippet(Bash)) {
		t.Error("New section should be appended")
	}
}

func TestReplaceSection_Empty(t *testing.T) {
	if got := replaceSection("", Snippet(Zsh)); got != Snippet(Zsh) {
		t.Errorf("replaceSection on empty file = %q", got)
	}
}

func TestReplaceSection_ExistingSection(t *testing.T) {
	existing := "before\n" + Snippet(Bash) + "after\n"
	result := replaceSection(existing, Snippet(Zsh))

	if result != "before\n"+Snippet(Zsh)+"after\n" {
		t.Errorf("unexpected result:\n%s", result)
	}
}

func TestRemoveSection(t *testing.T) {
	existing := "before\n" + Snippet(Bash) + "after\n"
	if got := removeSection(existing); got != "before\nafter\n" {
		t.Errorf("removeSection = %q", got)
	}
	if got := removeSection("plain\n"); got != "plain\n" {
		t.Errorf("removeSection without section = %q", got)
	}
}

func TestInstall_Idempotent(t *testing.T) {
	s, _ := newSetup(t, Bash)
	if err := os.WriteFile(s.RCPath, []byte("alias ll='ls -l'\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 2; i++ {
		if err := s.Install(); err != nil {
			t.Fatalf("Install #%d error: %v", i+1, err)
		}
	}

	rc := readFile(t, s.RCPath)
	if strings.Count(rc, markerStart) != 1 {
		t.Errorf("expected exactly one section after two installs:\n%s", rc)
	}
	if !strings.HasPrefix(rc, "alias ll='ls -l'\n") {
		t.Error("existing rc content should be preserved")
	}
	info, err := os.Stat(s.RCPath)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("rc mode = %v, want existing 0600 preserved", info.Mode().Perm())
	}
	if st, _ := s.State(); st != StateEnabled {
		t.Errorf("State = %q, want enabled", st)
	}
}

func TestUninstall(t *testing.T) {
	s, _ := newSetup(t, Zsh)
	if err := s.Install(); err != nil {
		t.Fatal(err)
	}

	found, err := s.Uninstall()
	if err != nil {
		t.Fatalf("Uninstall error: %v", err)
	}
	if !found {
		t.Error("Uninstall should report the section was found")
	}
	if strings.Contains(readFile(t, s.RCPath), markerStart) {
		t.Error("section should be removed")
	}
	if st, _ := s.State(); st != StateDisabled {
		t.Errorf("State = %q, want disabled", st)
	}

	found, err = s.Uninstall()
	if err != nil || found {
		t.Errorf("second Uninstall = %v, %v; want false, nil", found, err)
	}
}

func TestEnsure_AcceptInstalls(t *testing.T) {
	s, out := newSetup(t, Bash)
	var asked int

	if err := s.Ensure(answer(true, &asked)); err != nil {
		t.Fatalf("Ensure error: %v", err)
	}
	if asked != 1 {
		t.Errorf("confirm called %d times, want 1", asked)
	}
	if !strings.Contains(readFile(t, s.RCPath), "history -a") {
		t.Error("accepting should install the snippet")
	}
	if readFile(t, s.MarkerPath) != "enabled\n" {
		t.Errorf("marker = %q", readFile(t, s.MarkerPath))
	}
	if !strings.Contains(out.String(), "source "+s.RCPath) {
		t.Errorf("output should tell the user how to reload: %q", out.String())
	}

	// Second run does not ask again.
	if err := s.Ensure(answer(true, &asked)); err != nil {
		t.Fatal(err)
	}
	if asked != 1 {
		t.Errorf("confirm called again after marker was written")
	}
}

func TestEnsure_DeclineRecordsDisabled(t *testing.T) {
	s, _ := newSetup(t, Bash)
	var asked int

	if err := s.Ensure(answer(false, &asked)); err != nil {
		t.Fatalf("Ensure error: %v", err)
	}
	if _, err := os.Stat(s.RCPath); !os.IsNotExist(err) {
		t.Error("declining must not create the rc file")
	}
	if st, _ := s.State(); st != StateDisabled {
		t.Errorf("State = %q, want disabled", st)
	}
	if err := s.Ensure(answer(true, &asked)); err != nil {
		t.Fatal(err)
	}
	if asked != 1 {
		t.Error("declined offer should not be repeated")
	}
}

func TestEnsure_NilConfirmRecordsNothing(t *testing.T) {
	s, _ := newSetup(t, Bash)

	if err := s.Ensure(nil); err != nil {
		t.Fatalf("Ensure error: %v", err)
	}
	if _, err := os.Stat(s.MarkerPath); !os.IsNotExist(err) {
		t.Error("non-interactive run should not write the marker")
	}
}

func TestEnsure_ConfirmError(t *testing.T) {
	s, _ := newSetup(t, Bash)

	err := s.Ensure(func(string) (bool, error) { return false, errors.New("tty gone") })
	if err == nil {
		t.Fatal("expected error from confirm to propagate")
	}
	if st, _ := s.State(); st != StateUnset {
		t.Errorf("State = %q, want unset after failed prompt", st)
	}
}

func TestStatus(t *testing.T) {
	s, _ := newSetup(t, Zsh)

	st, err := s.Status()
	if err != nil {
		t.Fatal(err)
	}
	if st.Installed || st.State != StateUnset || st.Shell != Zsh {
		t.Errorf("fresh Status = %+v", st)
	}

	if err := s.Install(); err != nil {
		t.Fatal(err)
	}
	st, err = s.Status()
	if err != nil {
		t.Fatal(err)
	}
	if !st.Installed || st.State != StateEnabled {
		t.Errorf("installed Status = %+v", st)
	}
}

func TestState_UnknownContent(t *testing.T) {
	s, _ := newSetup(t, Bash)
	if err := os.MkdirAll(filepath.Dir(s.MarkerPath), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(s.MarkerPath, []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}
	if st, err := s.State(); err != nil || st != StateUnset {
		t.Errorf("State = %q, %v; want unset", st, err)
	}
}

func TestDetectShell(t *testing.T) {
	t.Setenv("SHELL", "/usr/bin/zsh")
	if DetectShell() != Zsh {
		t.Error("expected zsh")
	}
	t.Setenv("SHELL", "/bin/fish")
	if DetectShell() != Bash {
		t.Error("unknown shells should default to bash")
	}
}

func TestNew_Paths(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, "cfg"))
	t.Setenv("SHELL", "/bin/bash")

	s, err := New(nil)
	if err != nil {
		t.Fatal(err)
	}
	if s.RCPath != filepath.Join(home, ".bashrc") {
		t.Errorf("RCPath = %q", s.RCPath)
	}
	if s.MarkerPath != filepath.Join(home, "cfg", "clihelper", "shell_setup") {
		t.Errorf("MarkerPath = %q", s.MarkerPath)
	}
}

func TestParseYes(t *testing.T) {
	tests := []struct {
		in   string
		def  bool
		want bool
	}{
		{"", true, true},
		{"", false, false},
		{"y", false, true},
		{" YES ", false, true},
		{"n", true, false},
		{"nope", true, false},
	}
	for _, tt := range tests {
		if got := ParseYes(tt.in, tt.def); got != tt.want {
			t.Errorf("ParseYes(%q, %v) = %v, want %v", tt.in, tt.def, got, tt.want)
		}
	}
}
