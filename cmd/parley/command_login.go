package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"parley/internal/backend"
	"parley/internal/config"
)

type LoginCommand struct {
	stdout io.Writer
	stderr io.Writer
}

func NewLoginCommand(stdout, stderr io.Writer) *LoginCommand {
	return &LoginCommand{stdout: stdout, stderr: stderr}
}

func (c *LoginCommand) Run(args []string) error {
	if len(args) != 1 || strings.TrimSpace(args[0]) == "" {
		return errors.New("usage: parley login <principal>")
	}
	principal := strings.TrimSpace(args[0])
	if err := config.SaveIdentity(principal); err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "signed in as %s\n", principal)
	return nil
}

type LogoutCommand struct {
	stdout io.Writer
}

func NewLogoutCommand(stdout io.Writer) *LogoutCommand {
	return &LogoutCommand{stdout: stdout}
}

func (c *LogoutCommand) Run(args []string) error {
	if err := config.ClearIdentity(); err != nil {
		return err
	}
	fmt.Fprintln(c.stdout, "signed out")
	return nil
}

type WhoamiCommand struct {
	stdout io.Writer
}

func NewWhoamiCommand(stdout io.Writer) *WhoamiCommand {
	return &WhoamiCommand{stdout: stdout}
}

func (c *WhoamiCommand) Run(args []string) error {
	principal, err := config.LoadIdentity()
	if err != nil {
		return err
	}
	if principal == "" {
		fmt.Fprintln(c.stdout, "not signed in")
		return nil
	}
	fmt.Fprintln(c.stdout, principal)

	client, err := backend.New(principal)
	if err != nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 4*time.Second)
	defer cancel()
	profile, err := client.GetCallerUserProfile(ctx)
	if err == nil && profile != nil {
		fmt.Fprintf(c.stdout, "display name: %s\n", profile.Name)
	}
	return nil
}
