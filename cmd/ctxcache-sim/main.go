package main

import (
	"context"
	ctxcache "github.com/Borislavv/go-ctx-cache"
	"github.com/Borislavv/go-ctx-cache/config"
	"github.com/Borislavv/go-ctx-cache/internal/sim"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"os"
	"os/signal"
	"syscall"
	"time"
)

type runFlags struct {
	config     string
	dimensions string
	requests   int
	workers    int
	rate       int
	skew       float64
	seed       int64
	verbose    bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	if err := newRootCmd(logger).ExecuteContext(ctx); err != nil {
		logger.Error().Err(err).Msg("ctxcache-sim failed")
		os.Exit(1)
	}
}

func newRootCmd(logger zerolog.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:           "ctxcache-sim",
		Short:         "Replays synthetic request contexts against a context cache",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCmd(logger))
	return root
}

func newRunCmd(logger zerolog.Logger) *cobra.Command {
	f := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a load simulation and log its summary",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), f, logger)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.config, "config", "", "cache configuration YAML (defaults when empty)")
	flags.StringVar(&f.dimensions, "dimensions", "", "dimensions fixture YAML (built-in when empty)")
	flags.IntVar(&f.requests, "requests", 100_000, "number of requests to replay")
	flags.IntVar(&f.workers, "workers", 4, "number of concurrent workers")
	flags.IntVar(&f.rate, "rate", 0, "requests per second, 0 for unlimited")
	flags.Float64Var(&f.skew, "skew", 2, "traffic skew, 1 for uniform contexts")
	flags.Int64Var(&f.seed, "seed", 1, "random seed")
	flags.BoolVar(&f.verbose, "verbose", false, "log admission decisions")

	return cmd
}

func run(ctx context.Context, f *runFlags, logger zerolog.Logger) error {
	level := zerolog.InfoLevel
	if f.verbose {
		level = zerolog.DebugLevel
	}
	logger = logger.Level(level)

	var cfg *config.Cache
	if f.config != "" {
		loaded, err := config.LoadConfig(f.config)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	dims := sim.DefaultDimensions()
	if f.dimensions != "" {
		loaded, err := sim.LoadDimensions(f.dimensions)
		if err != nil {
			return err
		}
		dims = loaded
	}

	cache, err := ctxcache.NewSharded(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = cache.Close() }()

	logger.Info().
		Int("contexts", dims.Combinations()).
		Int("max_cache_size", cache.Options().MaxCacheSize).
		Int("shards", cache.Options().Shards).
		Str("isolation", string(cache.Options().IsolationMode)).
		Bool("serialized", cache.Options().StoreObjectsSerialized).
		Msg("simulation started")

	summary, err := sim.Run(ctx, cache, dims, sim.Config{
		Requests: f.requests,
		Workers:  f.workers,
		Rate:     f.rate,
		Skew:     f.skew,
		Seed:     f.seed,
	}, logger)
	if err != nil {
		return err
	}

	logger.Info().EmbedObject(summary).Msg("simulation finished")
	return nil
}
