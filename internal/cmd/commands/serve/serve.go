package serve

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	api "github.com/hashicorp-forge/notion-mirror/internal/api/v2"
	"github.com/hashicorp-forge/notion-mirror/internal/app"
	"github.com/hashicorp-forge/notion-mirror/internal/cmd/base"
	"github.com/hashicorp-forge/notion-mirror/internal/config"
	"github.com/hashicorp-forge/notion-mirror/internal/server"
)

type Command struct {
	*base.Command

	flagConfig       string
	flagAddr         string
	flagSyncInterval time.Duration
}

func (c *Command) Synopsis() string {
	return "Run the read API"
}

func (c *Command) Help() string {
	return `Usage: notion-mirror serve -config=config.hcl

  Serve cached Notion databases and documents over HTTP. Files copied to a
  local file store are served under the path of its base_url.

  With -sync-interval, the full sync pipeline also runs in the background at
  that interval, starting immediately.` + c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("serve", flag.ExitOnError))

	f.StringVar(
		&c.flagConfig, "config", "config.hcl", "Path to config file",
	)
	f.StringVar(
		&c.flagAddr, "addr", "",
		"Address to listen on. Overrides server.addr in the config file.",
	)
	f.DurationVar(
		&c.flagSyncInterval, "sync-interval", 0,
		"Interval between background syncs. Zero disables background sync.",
	)

	return f
}

func (c *Command) Run(args []string) int {
	logger, ui := c.Log, c.UI

	f := c.Flags()
	if err := f.Parse(args); err != nil {
		ui.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}

	cfg, err := c.LoadConfig(c.flagConfig)
	if err != nil {
		ui.Error(fmt.Sprintf("error loading config: %v", err))
		return 1
	}
	if c.flagAddr != "" {
		cfg.Server.Addr = c.flagAddr
	}

	ctx, stop := signal.NotifyContext(
		context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		ui.Error(fmt.Sprintf("error initializing: %v", err))
		return 1
	}
	defer a.Close()

	srv := server.Server{
		Config:    cfg,
		DB:        a.DB,
		Datastore: a.Datastore,
		Logger:    logger,
	}

	mux := http.NewServeMux()
	mux.Handle("/health", api.HealthHandler(srv))
	mux.Handle("/api/v2/databases", api.DatabasesHandler(srv))
	mux.Handle("/api/v2/databases/", api.DatabasesHandler(srv))
	mux.Handle("/api/v2/search", api.SearchHandler(srv))

	if a.FileHandler != nil {
		prefix, err := filesPath(cfg.FileStore.Local.BaseURL)
		if err != nil {
			ui.Error(fmt.Sprintf("error parsing local file store base_url: %v", err))
			return 1
		}
		mux.Handle(prefix+"/", http.StripPrefix(prefix, a.FileHandler))
		logger.Info("serving local file store", "path", prefix)
	}

	httpSrv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if c.flagSyncInterval > 0 {
		go c.syncLoop(ctx, a, c.flagSyncInterval)
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Server.Addr)
		if err := httpSrv.ListenAndServe(); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			ui.Error(fmt.Sprintf("error running server: %v", err))
			return 1
		}
	case <-ctx.Done():
		logger.Info("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		config.Duration(cfg.Server.ShutdownTimeout, 10*time.Second))
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		ui.Error(fmt.Sprintf("error shutting down server: %v", err))
		return 1
	}

	return 0
}

// syncLoop runs the full sync pipeline every interval until ctx is done.
// Failures are logged and retried at the next tick.
func (c *Command) syncLoop(ctx context.Context, a *app.App, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		start := time.Now()
		if err := a.Datastore.Sync.All(ctx); err != nil {
			c.Log.Error("background sync failed", "error", err)
		} else {
			c.Log.Info("background sync complete", "duration", time.Since(start))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// filesPath returns the URL path of a local file store base URL without a
// trailing slash.
func filesPath(baseURL string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	p := strings.TrimSuffix(u.Path, "/")
	if p == "" {
		return "", fmt.Errorf("base_url %q must have a path", baseURL)
	}
	return p, nil
}
