//go:build windows

package ptysession

import "os/exec"

// killProcessGroup has no process-group concept on Windows; killing the
// process itself is the best this platform offers.
func killProcessGroup(cmd *exec.Cmd) {
	if cmd.Process != nil {
		cmd.Process.Kill()
	}
}

func setProcAttrNewGroup(cmd *exec.Cmd) {}
