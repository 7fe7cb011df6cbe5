package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/hmaputil/internal/server"
	"github.com/matzehuels/hmaputil/pkg/cache"
	"github.com/matzehuels/hmaputil/pkg/pipeline"
)

type serveOpts struct {
	addr      string
	redisURL  string
	noCache   bool
	maxUpload int64
}

// serveCommand creates the serve command for the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{addr: ":8080", maxUpload: server.DefaultMaxUpload}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the render pipeline over HTTP",
		Long: `Serve exposes POST /v1/maps, which accepts a multipart upload with a
"heightmap" file (and optionally a "trackmask" file) and returns the
selected products as a zip archive.

Bundles are cached on disk by default; --redis shares them between
instances instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), &opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", opts.addr, "listen address")
	cmd.Flags().StringVar(&opts.redisURL, "redis", "", "Redis URL for the shared bundle cache (redis://host:6379/0)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the bundle cache")
	cmd.Flags().Int64Var(&opts.maxUpload, "max-upload", opts.maxUpload, "maximum upload size in bytes")

	return cmd
}

// newServeRunner picks the cache backend for the server.
func (c *CLI) newServeRunner(ctx context.Context, opts *serveOpts) (*pipeline.Runner, error) {
	if opts.redisURL == "" || opts.noCache {
		return c.newRunner(opts.noCache)
	}
	rc, err := cache.NewRedisCache(ctx, opts.redisURL)
	if err != nil {
		return nil, err
	}
	runner := pipeline.NewRunner(rc, c.Logger)
	runner.Keyer = cache.NewScopedKeyer(nil, redisKeyPrefix)
	c.Logger.Info("using redis bundle cache")
	return runner, nil
}

func (c *CLI) runServe(ctx context.Context, opts *serveOpts) error {
	runner, err := c.newServeRunner(ctx, opts)
	if err != nil {
		return err
	}
	defer runner.Close()

	srv := server.New(runner, c.Logger, server.WithMaxUpload(opts.maxUpload))
	return srv.ListenAndServe(ctx, opts.addr)
}
