//go:build !linux && !windows

package process

import "syscall"

func setPdeathsig(*syscall.SysProcAttr) {}
