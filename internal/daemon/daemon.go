package daemon

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"parley/internal/logging"
	"parley/internal/store"
)

// Daemon is the reference backend: an HTTP/JSON server over a bbolt
// repository implementing the full operation surface the client expects.
type Daemon struct {
	addr      string
	token     string
	tokenPath string
	version   string
	repo      *store.Repository
	log       logging.Logger
	server    *http.Server
}

func New(addr, tokenPath, version string, repo *store.Repository, log logging.Logger) *Daemon {
	if log == nil {
		log = logging.Nop()
	}
	return &Daemon{
		addr:      addr,
		tokenPath: tokenPath,
		version:   version,
		repo:      repo,
		log:       log,
	}
}

func (d *Daemon) Run(ctx context.Context) error {
	if err := d.ensureToken(); err != nil {
		return err
	}

	api := &API{
		Version: d.version,
		Stores: &Stores{
			Profiles: d.repo.Profiles(),
			Messages: d.repo.Messages(),
			Projects: d.repo.Projects(),
		},
		Log: d.log,
	}

	mux := http.NewServeMux()
	api.RegisterRoutes(mux)

	d.server = &http.Server{
		Addr:    d.addr,
		Handler: TokenAuthMiddleware(d.token, mux),
	}
	api.Shutdown = d.server.Shutdown

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		d.log.Info("daemon listening", logging.F("addr", d.addr))
		err := d.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		return d.server.Shutdown(shutdownCtx)
	})
	return group.Wait()
}

// ensureToken loads the shared auth token, minting a fresh one on first run
// so local clients can authenticate.
func (d *Daemon) ensureToken() error {
	data, err := os.ReadFile(d.tokenPath)
	if err == nil && strings.TrimSpace(string(data)) != "" {
		d.token = strings.TrimSpace(string(data))
		return nil
	}
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	token := uuid.NewString()
	if err := os.MkdirAll(filepath.Dir(d.tokenPath), 0o700); err != nil {
		return err
	}
	if err := os.WriteFile(d.tokenPath, []byte(token+"\n"), 0o600); err != nil {
		return err
	}
	d.token = token
	return nil
}
