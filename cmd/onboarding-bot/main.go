package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ubiquity-os/onboarding-bot/internal/actions"
	"github.com/ubiquity-os/onboarding-bot/internal/config"
	"github.com/ubiquity-os/onboarding-bot/internal/dispatch"
	"github.com/ubiquity-os/onboarding-bot/internal/github"
	"github.com/ubiquity-os/onboarding-bot/internal/permission"
	"github.com/ubiquity-os/onboarding-bot/internal/server"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "onboarding-bot",
		Short:        "GitHub webhook bot driving the Ubiquity OS onboarding demo flow",
		SilenceUsage: true,
	}

	root.AddCommand(newServeCmd())
	return root
}

func newServeCmd() *cobra.Command {
	var (
		configPath string
		debug      bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the webhook server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(configPath, debug)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "config.yaml", "path to config file")
	cmd.Flags().BoolVar(&debug, "debug", false, "enable debug logging")

	return cmd
}

func serve(configPath string, debug bool) error {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	bot, err := github.NewClient(cfg.GitHub.BotToken)
	if err != nil {
		return fmt.Errorf("create bot client: %w", err)
	}

	user, err := github.NewClient(cfg.GitHub.UserToken)
	if err != nil {
		return fmt.Errorf("create user client: %w", err)
	}

	var waiter actions.ProvisioningWaiter
	switch cfg.ForkWaitStrategy() {
	case config.WaitStrategyPoll:
		waiter = actions.PollingWaiter{Client: user, MaxWait: cfg.MaxPollWait()}
	default:
		waiter = actions.FixedDelayWaiter{Delay: cfg.ForkDelay()}
	}

	msgs := dispatch.DefaultMessages()
	if cfg.Demo.WalletAddress != "" {
		msgs.WalletAddress = cfg.Demo.WalletAddress
	}

	catalog := actions.NewCatalog(bot, user, waiter, logger)
	resolver := permission.NewResolver(bot, logger)
	dispatcher := dispatch.NewDispatcher(catalog, resolver, msgs, logger)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           server.NewRouter(server.New(dispatcher, cfg.GitHub.ActingUsername, logger)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("webhook server started", "addr", cfg.HTTPAddr())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
	case <-ctx.Done():
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
	}

	return nil
}
