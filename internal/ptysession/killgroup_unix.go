//go:build !windows

package ptysession

import (
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// setProcAttrNewGroup puts the child in its own process group so
// killProcessGroup can target the whole group (shell + any children it
// spawned) rather than just the shell itself.
func setProcAttrNewGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// killProcessGroup force-kills the child's entire process group, then the
// child itself for good measure, per §4.5's kill() sequence.
func killProcessGroup(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	pgid, err := unix.Getpgid(cmd.Process.Pid)
	if err == nil {
		unix.Kill(-pgid, syscall.SIGKILL)
	}
	cmd.Process.Kill()
}
