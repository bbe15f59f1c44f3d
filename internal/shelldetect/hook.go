package shelldetect

import (
	"fmt"
	"os"
	"path/filepath"
)

// InitHook is a fully-built argv + environment addition for launching a
// shell with Rain's init hook sourced, plus an optional temp directory the
// caller must clean up on session teardown (zsh's synthetic ZDOTDIR).
type InitHook struct {
	Args    []string          // extra args to append after the shell path
	Env     map[string]string // extra env vars to set for the child
	TempDir string            // scratch file or directory to remove on teardown, "" if none
}

// BuildInitHook returns the shell-specific invocation that sources
// hookScript (a bundled init script) without replacing the user's own rc
// files, per the injection scheme in §4.5/§4.8:
//   - zsh: a synthetic ZDOTDIR whose .zshrc sources the user's original
//     ~/.zshrc, then evals RAIN_SHELL_INIT.
//   - bash: --noprofile --rcfile <tempfile>, the tempfile sourcing both the
//     user's ~/.bashrc and the hook.
//   - fish: -C '<hook commands>'.
//   - PowerShell: -NoExit -Command <dot-source>.
//   - cmd / unknown: no hook available.
//
// Returns ok=false when the shell has no injection mechanism (cmd.exe, sh,
// or an unrecognized shell). The caller then passes plain "--login" for a
// recognized shell other than cmd.exe (e.g. sh); cmd.exe and an
// unrecognized shell get no extra arguments.
func BuildInitHook(shell Shell, hookScript string, rainShellInit string) (InitHook, bool) {
	switch shell.Kind {
	case Zsh:
		return buildZshHook(hookScript, rainShellInit)
	case Bash:
		return buildBashHook(hookScript, rainShellInit)
	case Fish:
		return InitHook{Args: []string{"-C", fmt.Sprintf("test -f %q; and source %q; end", hookScript, hookScript)}}, true
	case PowerShell:
		return InitHook{Args: []string{"-NoExit", "-Command", fmt.Sprintf(". %q", hookScript)}}, true
	default:
		return InitHook{}, false
	}
}

func buildZshHook(hookScript, rainShellInit string) (InitHook, bool) {
	dir, err := os.MkdirTemp("", "rain-zdotdir-")
	if err != nil {
		return InitHook{}, false
	}
	original := os.Getenv("ZDOTDIR")
	if original == "" {
		if home, err := os.UserHomeDir(); err == nil {
			original = home
		}
	}
	rc := "# generated by Rain, not a user config file\n"
	if original != "" {
		rc += fmt.Sprintf("[ -f %q/.zshrc ] && source %q/.zshrc\n", original, original)
	}
	if hookScript != "" {
		rc += fmt.Sprintf("[ -f %q ] && source %q\n", hookScript, hookScript)
	}
	if rainShellInit != "" {
		rc += "eval \"$RAIN_SHELL_INIT\"\n"
	}
	if err := os.WriteFile(filepath.Join(dir, ".zshrc"), []byte(rc), 0o600); err != nil {
		os.RemoveAll(dir)
		return InitHook{}, false
	}
	env := map[string]string{"ZDOTDIR": dir}
	if rainShellInit != "" {
		env["RAIN_SHELL_INIT"] = rainShellInit
	}
	return InitHook{Env: env, TempDir: dir}, true
}

func buildBashHook(hookScript, rainShellInit string) (InitHook, bool) {
	f, err := os.CreateTemp("", "rain-bashrc-")
	if err != nil {
		return InitHook{}, false
	}
	defer f.Close()
	content := "# generated by Rain, not a user config file\n"
	if home, err := os.UserHomeDir(); err == nil {
		content += fmt.Sprintf("[ -f %q/.bashrc ] && source %q/.bashrc\n", home, home)
	}
	if hookScript != "" {
		content += fmt.Sprintf("[ -f %q ] && source %q\n", hookScript, hookScript)
	}
	if rainShellInit != "" {
		content += "eval \"$RAIN_SHELL_INIT\"\n"
	}
	if _, err := f.WriteString(content); err != nil {
		os.Remove(f.Name())
		return InitHook{}, false
	}
	env := map[string]string{}
	if rainShellInit != "" {
		env["RAIN_SHELL_INIT"] = rainShellInit
	}
	return InitHook{Args: []string{"--noprofile", "--rcfile", f.Name()}, Env: env, TempDir: f.Name()}, true
}
