//go:build windows

package process

import "os/exec"

type windowsController struct{}

func newController() controller { return windowsController{} }

func (windowsController) Start(cmd *exec.Cmd) error { return cmd.Start() }

// Interrupt has no process-group equivalent here; the child is killed outright.
func (windowsController) Interrupt(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return errNotStarted
	}
	return cmd.Process.Kill()
}

func (windowsController) Kill(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return errNotStarted
	}
	return cmd.Process.Kill()
}
