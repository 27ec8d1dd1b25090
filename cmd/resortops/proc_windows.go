//go:build windows

package main

import "os/exec"

func configureDaemonProc(cmd *exec.Cmd) {
	// Windows has no Setsid; a started process already outlives its parent.
}
