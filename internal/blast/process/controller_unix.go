//go:build !windows

package process

import (
	"os/exec"
	"syscall"
)

type unixController struct{}

func newController() controller { return unixController{} }

// Start places the child in its own process group so signals reach its helpers too.
func (unixController) Start(cmd *exec.Cmd) error {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	setPdeathsig(cmd.SysProcAttr)
	return cmd.Start()
}

// Interrupt sends SIGINT to the process group.
func (unixController) Interrupt(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return errNotStarted
	}
	return syscall.Kill(-cmd.Process.Pid, syscall.SIGINT)
}

// Kill sends SIGKILL to the process group.
func (unixController) Kill(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return errNotStarted
	}
	return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
}
