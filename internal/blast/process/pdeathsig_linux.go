//go:build linux

package process

import "syscall"

// setPdeathsig kills the child if the server dies first.
func setPdeathsig(attr *syscall.SysProcAttr) {
	attr.Pdeathsig = syscall.SIGKILL
}
