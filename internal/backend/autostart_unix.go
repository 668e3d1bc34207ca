//go:build !windows

package backend

import (
	"os/exec"
	"syscall"
)

// detachDaemonProcess gives the spawned daemon its own session so it is not
// tied to the controlling terminal and survives the UI process exiting.
func detachDaemonProcess(cmd *exec.Cmd) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Setsid = true
}
