package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/matzehuels/ladderkit/internal/server"
	"github.com/matzehuels/ladderkit/pkg/cache"
	"github.com/matzehuels/ladderkit/pkg/pipeline"
	"github.com/matzehuels/ladderkit/pkg/session"
)

// defaultSweepInterval is how often expired sessions are dropped.
const defaultSweepInterval = time.Minute

// artifactPrefix scopes the server's artifact keys in a shared Redis.
const artifactPrefix = "ladderkit:artifact:"

// serveCommand creates the command that runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		flags   ServerConfig
		ttl     time.Duration
		sweep   time.Duration
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve editing sessions over HTTP",
		Long: `Serve editing sessions over HTTP.

Each session owns one rung. Clients show placeholders, select one, insert and
remove elements, drag elements to new places and export the result. Sessions
are kept in memory, in JSON files or in Redis, as set by --store or the
[server] section of the config file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.Config.Server
			fl := cmd.Flags()
			if fl.Changed("addr") {
				cfg.Addr = flags.Addr
			}
			if fl.Changed("store") {
				cfg.Store = flags.Store
			}
			if fl.Changed("session-dir") {
				cfg.SessionDir = flags.SessionDir
			}
			if fl.Changed("redis-addr") {
				cfg.Redis.Addr = flags.Redis.Addr
			}
			if fl.Changed("session-ttl") {
				cfg.SessionTTL = Duration{ttl}
			}
			if err := (Config{Server: cfg}).Validate(); err != nil {
				return err
			}
			return c.runServe(cmd.Context(), cfg, sweep, noCache)
		},
	}

	cmd.Flags().StringVar(&flags.Addr, "addr", "", "listen address (default: localhost:8080)")
	cmd.Flags().StringVar(&flags.Store, "store", "", "session store: memory (default), file, redis")
	cmd.Flags().StringVar(&flags.SessionDir, "session-dir", "", "directory of the file store (default: ~/.config/ladderkit/sessions)")
	cmd.Flags().StringVar(&flags.Redis.Addr, "redis-addr", "", "address of the redis store (default: localhost:6379)")
	cmd.Flags().DurationVar(&ttl, "session-ttl", 0, "idle lifetime of a session (default: 24h)")
	cmd.Flags().DurationVar(&sweep, "sweep", defaultSweepInterval, "interval between expired-session sweeps")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the artifact cache")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, cfg ServerConfig, sweep time.Duration, noCache bool) error {
	store, err := c.newStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	runner, err := c.newServerRunner(ctx, cfg, noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	srv := server.New(store, runner, server.Options{
		SessionTTL: cfg.SessionTTL.Duration,
		Edit:       c.editOptions(),
		Export:     c.exportOptions(nil),
		Logger:     c.Logger,
	})
	if sweep > 0 {
		go c.sweepLoop(ctx, srv, sweep)
	}

	printInfo("Serving on %s (%s store)", StyleHighlight.Render("http://"+cfg.Addr), cfg.Store)
	return srv.ListenAndServe(ctx, cfg.Addr)
}

// newStore opens the configured session store.
func (c *CLI) newStore(ctx context.Context, cfg ServerConfig) (session.Store, error) {
	switch cfg.Store {
	case storeFile:
		return session.NewFileStore(cfg.SessionDir)
	case storeRedis:
		return session.NewRedisStore(ctx, cfg.Redis)
	default:
		return session.NewMemoryStore(), nil
	}
}

// newServerRunner creates the server's pipeline runner. With the redis
// session store, artifacts are cached in the same Redis under their own
// prefix; otherwise the CLI's file cache is used.
func (c *CLI) newServerRunner(ctx context.Context, cfg ServerConfig, noCache bool) (*pipeline.Runner, error) {
	if cfg.Store != storeRedis || noCache || c.Config.Cache.Disabled {
		return c.newRunner(noCache)
	}
	rc := cache.NewRedisCache(redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}))
	if err := rc.Ping(ctx); err != nil {
		rc.Close()
		return nil, fmt.Errorf("connect artifact cache: %w", err)
	}
	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), artifactPrefix)
	return pipeline.NewRunner(rc, keyer, c.Logger), nil
}

func (c *CLI) sweepLoop(ctx context.Context, srv *server.Server, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := srv.Sweep(ctx); err != nil {
				c.Logger.Warn("session sweep failed", "error", err)
			}
		}
	}
}
