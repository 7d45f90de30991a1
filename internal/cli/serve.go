package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/stratumviz/stratum/internal/httpapi"
	"github.com/stratumviz/stratum/pkg/cache"
	"github.com/stratumviz/stratum/pkg/config"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr        string // listen address
	configPath  string // visualizer TOML config path
	redisURL    string // redis cache URL (file cache when empty)
	cachePrefix string // key prefix when sharing a cache backend
	noCache     bool   // disable marker caching entirely
}

// newServeCmd creates the serve command: the scene rendering API over HTTP.
func newServeCmd() *cobra.Command {
	opts := serveOpts{addr: ":8080"}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the scene rendering API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.addr, "addr", "a", opts.addr, "listen address")
	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "visualizer config TOML (defaults applied when omitted)")
	cmd.Flags().StringVar(&opts.redisURL, "redis", "", "redis URL for the marker cache (file cache when empty)")
	cmd.Flags().StringVar(&opts.cachePrefix, "cache-prefix", "", "cache key prefix for shared backends")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable marker caching")

	return cmd
}

func runServe(ctx context.Context, opts *serveOpts) error {
	logger := loggerFromContext(ctx)

	cfg := config.Default()
	if opts.configPath != "" {
		loaded, err := config.Load(opts.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	store, err := serveCache(ctx, opts)
	if err != nil {
		return err
	}
	defer store.Close()

	var handlerOpts []httpapi.HandlerOption
	if opts.cachePrefix != "" {
		handlerOpts = append(handlerOpts, httpapi.WithKeyer(cache.NewScopedKeyer(nil, opts.cachePrefix)))
	}
	handler := httpapi.NewHandler(logger, store, cfg, handlerOpts...)
	srv := &http.Server{
		Addr:              opts.addr,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		logger.Infof("Listening on %s", opts.addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// serveCache picks the cache backend for the server: redis when a URL is
// given, the local file cache otherwise, a no-op when caching is off.
func serveCache(ctx context.Context, opts *serveOpts) (cache.Cache, error) {
	if opts.noCache {
		return cache.NewNullCache(), nil
	}
	if opts.redisURL != "" {
		return cache.NewRedisCacheFromURL(ctx, opts.redisURL)
	}
	return newCache(false), nil
}
