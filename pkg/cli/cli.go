package cli

import (
	"context"
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/ctxlog"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/buildgate/pkg/cli/config"
	"github.com/m-mizutani/buildgate/pkg/domain/types"
)

// Run runs the CLI application
func Run(ctx context.Context, args []string) error {
	var (
		loggerCfg config.Logger
		sentryCfg config.Sentry
	)
	var logger *slog.Logger
	var sentryEnabled bool

	flags := append(loggerCfg.Flags(), sentryCfg.Flags()...)

	app := &cli.Command{
		Name:    types.AppName,
		Usage:   "Build gate and release automation for a tracked upstream repository",
		Version: types.Version,
		Flags:   flags,
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			var err error
			logger, err = loggerCfg.Configure()
			if err != nil {
				return nil, err
			}

			slog.SetDefault(logger)
			ctx = ctxlog.With(ctx, logger)

			sentryEnabled, err = sentryCfg.Configure()
			if err != nil {
				return nil, err
			}

			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if sentryEnabled {
				sentry.Flush(2 * time.Second)
			}
			return nil
		},
		Commands: []*cli.Command{
			cmdRun(),
			cmdWatch(),
		},
	}

	if err := app.Run(ctx, args); err != nil {
		if sentryEnabled {
			sentry.CaptureException(err)
			sentry.Flush(2 * time.Second)
		}
		if logger == nil {
			logger = slog.Default()
		}
		logger.Error("CLI execution failed", slog.Any("error", err))
		return err
	}

	return nil
}
