package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cyderes/notion-sync/internal/config"
	"github.com/cyderes/notion-sync/internal/ingestion"
	"github.com/cyderes/notion-sync/internal/logging"
	"github.com/cyderes/notion-sync/internal/notion"
	"github.com/cyderes/notion-sync/internal/storage"
)

type options struct {
	envFile  string
	output   string
	schedule string
	verbose  bool
}

func rootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:           "notion-sync",
		Short:         "Snapshot Notion habits, journal, skincare and treatment databases to JSON",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.envFile, "env-file", ".env", "env file to load before reading the environment")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "snapshot path (overrides OUTPUT_PATH)")
	cmd.Flags().StringVar(&opts.schedule, "schedule", "", "cron expression to keep running (overrides SYNC_SCHEDULE)")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	return cmd
}

func run(ctx context.Context, opts *options) error {
	cfg, err := config.Load(opts.envFile)
	if err != nil {
		return err
	}
	if opts.output != "" {
		cfg.Output.Path = opts.output
	}
	if opts.schedule != "" {
		cfg.Sync.Schedule = opts.schedule
	}
	if opts.verbose {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	if missing := cfg.Notion.Databases.Missing(); len(missing) > 0 {
		logger.Warn("database ids not configured, feeds will be empty", zap.Strings("feeds", missing))
	}

	store, err := storage.NewStorage(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	client := notion.New(notion.Options{
		BaseURL: cfg.Notion.BaseURL,
		Token:   cfg.Notion.APIKey,
		Version: cfg.Notion.Version,
		Timeout: cfg.Notion.Timeout,
	})
	svc := ingestion.NewService(cfg.Notion.Databases, client, store, logger)

	if cfg.Sync.Schedule == "" {
		if _, err := svc.Sync(ctx); err != nil {
			return err
		}
		logger.Info("Data saved", zap.String("path", cfg.Output.Path))
		return nil
	}

	err = svc.Start(ctx, cfg.Sync.Schedule)
	if errors.Is(err, context.Canceled) {
		logger.Info("Shutdown complete")
		return nil
	}
	return err
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Sync failed:", err)
		cancel()
		os.Exit(1)
	}
}
