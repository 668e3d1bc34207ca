package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"parley/internal/backend"
	"parley/internal/config"
	"parley/internal/logging"
	syncer "parley/internal/sync"
)

type SendCommand struct {
	stdout io.Writer
	stderr io.Writer
}

func NewSendCommand(stdout, stderr io.Writer) *SendCommand {
	return &SendCommand{stdout: stdout, stderr: stderr}
}

func (c *SendCommand) Run(args []string) error {
	fs := flag.NewFlagSet("send", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	rest := fs.Args()
	if len(rest) < 2 {
		return errors.New("usage: parley send <recipient> <message>")
	}
	recipient := strings.TrimSpace(rest[0])
	content := strings.TrimSpace(strings.Join(rest[1:], " "))
	if recipient == "" || content == "" {
		return errors.New("usage: parley send <recipient> <message>")
	}

	principal, err := config.LoadIdentity()
	if err != nil {
		return err
	}
	if principal == "" {
		return errors.New("not signed in; run: parley login <principal>")
	}

	client, err := backend.New(principal)
	if err != nil {
		return err
	}
	engine := syncer.NewEngine(client, logging.Nop(), syncer.EngineOptions{})
	defer engine.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 6*time.Second)
	defer cancel()
	message, err := engine.Mutator().SendMessage(ctx, recipient, content)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "sent message %d to %s\n", message.ID, recipient)
	return nil
}
