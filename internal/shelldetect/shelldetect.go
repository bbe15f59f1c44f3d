// Package shelldetect locates the user's shell and builds the
// shell-specific command line needed to inject Rain's init hook without
// disturbing the user's own rc files.
package shelldetect

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// Kind identifies a shell family for the purposes of init-hook injection.
type Kind uint8

const (
	Unknown Kind = iota
	Bash
	Zsh
	Fish
	PowerShell
	Cmd
	Sh
)

// Shell is a detected shell: its executable path and normalized kind.
type Shell struct {
	Path string
	Kind Kind
}

var unixFallbacks = []string{"zsh", "bash", "fish", "sh"}

// Detect returns the user's shell: $SHELL if set and the path exists, else the
// first of the common fallback chain found on PATH, else "sh" as a last
// resort. Windows prefers PowerShell 7 (pwsh.exe) first, then $ComSpec,
// then Windows PowerShell, then falls back to cmd.exe.
func Detect() Shell {
	if runtime.GOOS == "windows" {
		return detectWindows()
	}
	return detectUnix()
}

func detectUnix() Shell {
	if shell := os.Getenv("SHELL"); shell != "" {
		if _, err := os.Stat(shell); err == nil {
			return Shell{Path: shell, Kind: classify(shell)}
		}
	}
	for _, name := range unixFallbacks {
		if path, err := exec.LookPath(name); err == nil {
			return Shell{Path: path, Kind: classify(name)}
		}
	}
	return Shell{Path: "/bin/sh", Kind: Sh}
}

func detectWindows() Shell {
	if path, err := exec.LookPath("pwsh.exe"); err == nil {
		return Shell{Path: path, Kind: PowerShell}
	}
	if comspec := os.Getenv("ComSpec"); comspec != "" {
		if _, err := os.Stat(comspec); err == nil {
			return Shell{Path: comspec, Kind: classify(comspec)}
		}
	}
	if path, err := exec.LookPath("powershell.exe"); err == nil {
		return Shell{Path: path, Kind: PowerShell}
	}
	return Shell{Path: "cmd.exe", Kind: Cmd}
}

func classify(path string) Kind {
	switch filepath.Base(path) {
	case "bash":
		return Bash
	case "zsh":
		return Zsh
	case "fish":
		return Fish
	case "pwsh", "pwsh.exe", "powershell.exe":
		return PowerShell
	case "cmd.exe":
		return Cmd
	case "sh":
		return Sh
	default:
		return Unknown
	}
}

// Name returns a normalized shell name ("bash", "zsh", "fish", ...) for
// branded-env-var and logging purposes.
func (k Kind) Name() string {
	switch k {
	case Bash:
		return "bash"
	case Zsh:
		return "zsh"
	case Fish:
		return "fish"
	case PowerShell:
		return "powershell"
	case Cmd:
		return "cmd"
	case Sh:
		return "sh"
	default:
		return "unknown"
	}
}
