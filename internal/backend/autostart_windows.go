//go:build windows

package backend

import "os/exec"

func detachDaemonProcess(cmd *exec.Cmd) {}
