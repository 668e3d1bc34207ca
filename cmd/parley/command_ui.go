package main

import (
	"context"
	"flag"
	"io"
	"os"
	"path/filepath"
	"time"

	"parley/internal/app"
	"parley/internal/backend"
	"parley/internal/config"
	"parley/internal/logging"
	"parley/internal/store"
	syncer "parley/internal/sync"
)

type UICommand struct {
	stderr io.Writer
	runUI  func() error
}

func NewUICommand(stderr io.Writer, runUI func() error) *UICommand {
	return &UICommand{
		stderr: stderr,
		runUI:  runUI,
	}
}

func (c *UICommand) Run(args []string) error {
	fs := flag.NewFlagSet("ui", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	return c.runUI()
}

func runUIProcess() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	dataDir, err := config.DataDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return err
	}

	// The terminal belongs to the UI; logs go to a file.
	logFile, err := os.OpenFile(filepath.Join(dataDir, "ui.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return err
	}
	defer logFile.Close()
	log := logging.New(logFile, logging.ParseLevel(cfg.LogLevel()))

	bootClient, err := backend.New("")
	if err != nil {
		return err
	}
	bootCtx, cancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer cancel()
	if err := bootClient.EnsureDaemon(bootCtx); err != nil {
		return err
	}

	statePath, err := config.StatePath()
	if err != nil {
		return err
	}
	uiStore := store.NewFileUIStateStore(statePath)

	newEngine := func(principal string) (*syncer.Engine, error) {
		client, err := backend.New(principal)
		if err != nil {
			return nil, err
		}
		return syncer.NewEngine(client, log, syncer.EngineOptions{PollInterval: cfg.PollInterval()}), nil
	}

	return app.Run(newEngine, uiStore, log)
}
