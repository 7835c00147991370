package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/spiderfy/internal/server"
	"github.com/matzehuels/spiderfy/pkg/config"
	"github.com/matzehuels/spiderfy/pkg/session"
)

type serveOpts struct {
	addr         string
	sessionStore string
	noCache      bool
}

// serveCommand runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the layout, render and session API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := withLogger(cmd.Context(), c.Logger)
			return c.runServe(ctx, cmd, &opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default from config, \":8080\")")
	cmd.Flags().StringVar(&opts.sessionStore, "session-store", "", "session store: memory, file, redis")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, cmd *cobra.Command, opts *serveOpts) error {
	logger := loggerFromContext(ctx)

	cfg, err := c.config()
	if err != nil {
		return err
	}
	sc := cfg.Server
	if cmd.Flags().Changed("addr") {
		sc.Addr = opts.addr
	}
	if cmd.Flags().Changed("session-store") {
		sc.SessionStore = opts.sessionStore
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	store, err := openSessionStore(ctx, sc.SessionStore, cfg.Cache.Redis)
	if err != nil {
		return err
	}
	defer store.Close()
	logger.Info("session store ready", "backend", sc.SessionStore, "ttl", sc.SessionTTL.Duration)

	srv := server.New(runner, store, logger, server.Options{
		SessionTTL:      sc.SessionTTL.Duration,
		MaxBodyBytes:    sc.MaxBodyBytes,
		ReadTimeout:     sc.ReadTimeout.Duration,
		WriteTimeout:    sc.WriteTimeout.Duration,
		ShutdownTimeout: sc.ShutdownTimeout.Duration,
		CleanupInterval: time.Minute,
	})
	return srv.ListenAndServe(ctx, sc.Addr)
}

// openSessionStore creates the named session store. The Redis store shares
// the [cache.redis] connection settings.
func openSessionStore(ctx context.Context, backend string, rc config.RedisConfig) (session.Store, error) {
	switch backend {
	case config.SessionStoreMemory, "":
		return session.NewMemoryStore(), nil
	case config.SessionStoreFile:
		dir, err := config.Dir()
		if err != nil {
			return nil, err
		}
		fs, err := session.NewFileStore(filepath.Join(dir, "sessions"))
		if err != nil {
			return nil, err
		}
		return fs, nil
	case config.SessionStoreRedis:
		rs, err := session.DialRedisStore(ctx, rc.Addr, rc.Password, rc.DB)
		if err != nil {
			return nil, err
		}
		return rs, nil
	default:
		return nil, fmt.Errorf("unknown session store %q (must be memory, file or redis)", backend)
	}
}
