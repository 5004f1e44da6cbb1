package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/buildgate/pkg/cli/config"
	controller "github.com/m-mizutani/buildgate/pkg/controller/http"
	"github.com/m-mizutani/buildgate/pkg/utils/async"
)

func cmdWatch() *cli.Command {
	var (
		githubCfg  config.GitHub
		signingCfg config.Signing
		gateCfg    config.Gate
		buildCfg   config.Build
		notifyCfg  config.Notify
		serverCfg  config.Server
		interval   time.Duration
	)

	flags := append(githubCfg.Flags(), signingCfg.Flags()...)
	flags = append(flags, gateCfg.Flags()...)
	flags = append(flags, buildCfg.Flags()...)
	flags = append(flags, notifyCfg.Flags()...)
	flags = append(flags, serverCfg.Flags()...)
	flags = append(flags, &cli.DurationFlag{
		Name:        "interval",
		Usage:       "Time between pipeline runs",
		Value:       time.Hour,
		Destination: &interval,
		Sources:     cli.EnvVars("BUILDGATE_INTERVAL"),
	})

	return &cli.Command{
		Name:    "watch",
		Aliases: []string{"w"},
		Usage:   "Run the pipeline on a recurring schedule and serve the gate API",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			w, err := buildWiring(&githubCfg, &signingCfg, &gateCfg, &buildCfg, &notifyCfg)
			if err != nil {
				return err
			}

			server, err := controller.NewServer(ctx, w.source, w.gateUC,
				controller.WithAddr(serverCfg.Addr),
			)
			if err != nil {
				return goerr.Wrap(err, "failed to create HTTP server")
			}

			go func() {
				logger.Info("HTTP server starting", slog.String("addr", serverCfg.Addr))
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("HTTP server error", slog.Any("error", err))
				}
			}()

			logger.Info("Starting watch loop",
				slog.Duration("interval", interval),
				slog.String("owner", githubCfg.Owner),
				slog.String("repo", githubCfg.Repo),
				slog.String("branch", githubCfg.Branch),
			)

			guard := async.NewGuard()
			runOnce := func(ctx context.Context) error {
				_, err := w.pipeline.Run(ctx, false)
				return err
			}

			// First run immediately, then per tick. A tick that fires while a
			// run is still in progress is skipped.
			if !guard.Dispatch(ctx, runOnce) {
				logger.Warn("Initial run dropped, another run in progress")
			}

			ticker := time.NewTicker(interval)
			defer ticker.Stop()

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

			for {
				select {
				case <-ticker.C:
					if !guard.Dispatch(ctx, runOnce) {
						logger.Warn("Tick skipped, previous run still in progress")
					}

				case <-ctx.Done():
					logger.Info("Context cancelled, shutting down...")
					return shutdown(ctx, server, logger)

				case sig := <-sigChan:
					logger.Info("Signal received, shutting down...", slog.Any("signal", sig))
					return shutdown(ctx, server, logger)
				}
			}
		},
	}
}

func shutdown(ctx context.Context, server *controller.Server, logger *slog.Logger) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return goerr.Wrap(err, "failed to shutdown server gracefully")
	}

	logger.Info("Watch shutdown complete")
	return nil
}
