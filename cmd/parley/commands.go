package main

import (
	"io"
	"os"
)

type commandRunner interface {
	Run(args []string) error
}

type commandWiring struct {
	stdout    io.Writer
	stderr    io.Writer
	runDaemon func(background bool) error
	runUI     func() error
	version   string
}

func defaultCommandWiring(stdout, stderr io.Writer) commandWiring {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	return commandWiring{
		stdout:    stdout,
		stderr:    stderr,
		runDaemon: runDaemonProcess,
		runUI:     runUIProcess,
		version:   buildVersion(),
	}
}

func buildCommands(wiring commandWiring) map[string]commandRunner {
	return map[string]commandRunner{
		"ui":     NewUICommand(wiring.stderr, wiring.runUI),
		"daemon": NewDaemonCommand(wiring.stderr, wiring.runDaemon),
		"login":  NewLoginCommand(wiring.stdout, wiring.stderr),
		"logout": NewLogoutCommand(wiring.stdout),
		"whoami": NewWhoamiCommand(wiring.stdout),
		"send":   NewSendCommand(wiring.stdout, wiring.stderr),
		"config": NewConfigCommand(wiring.stdout, wiring.stderr),
	}
}
