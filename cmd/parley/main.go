package main

import (
	"fmt"
	"os"
)

const usageText = `parley is a terminal chat client.

Usage:
  parley <command> [flags]

Commands:
  ui       run the terminal UI (default)
  daemon   run the local backend daemon
  login    store the principal used for future commands
  logout   forget the stored principal
  whoami   print the stored principal and display name
  send     send a message from the command line
  config   print configuration (effective or defaults)
  help     show help

Flags:
  -h, --help   show help

Daemon flags:
  --background    run in background (logs to file)
  --kill          stop any running daemon and exit

Examples:
  parley login alice@example.com
  parley send bob@example.com "lunch?"
  parley config --default --format toml
`

func printUsage() {
	fmt.Fprint(os.Stderr, usageText)
}

func main() {
	args := os.Args[1:]

	wiring := defaultCommandWiring(os.Stdout, os.Stderr)
	commands := buildCommands(wiring)

	if len(args) == 0 {
		exitOnErr("ui", commands["ui"].Run(nil), wiring.stderr)
		return
	}

	switch args[0] {
	case "-h", "--help", "help":
		printUsage()
		return
	}

	runner, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", args[0])
		printUsage()
		os.Exit(2)
	}
	exitOnErr(args[0], runner.Run(args[1:]), wiring.stderr)
}
