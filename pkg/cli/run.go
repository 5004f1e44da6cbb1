package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/buildgate/pkg/cli/config"
	"github.com/m-mizutani/buildgate/pkg/domain/interfaces"
	"github.com/m-mizutani/buildgate/pkg/domain/model"
	execinfra "github.com/m-mizutani/buildgate/pkg/infra/exec"
	"github.com/m-mizutani/buildgate/pkg/infra/notify"
	"github.com/m-mizutani/buildgate/pkg/usecase"
)

func cmdRun() *cli.Command {
	var (
		githubCfg  config.GitHub
		signingCfg config.Signing
		gateCfg    config.Gate
		buildCfg   config.Build
		notifyCfg  config.Notify
		force      bool
	)

	flags := append(githubCfg.Flags(), signingCfg.Flags()...)
	flags = append(flags, gateCfg.Flags()...)
	flags = append(flags, buildCfg.Flags()...)
	flags = append(flags, notifyCfg.Flags()...)
	flags = append(flags, &cli.BoolFlag{
		Name:        "force",
		Usage:       "Build and publish regardless of release state",
		Destination: &force,
		Sources:     cli.EnvVars("BUILDGATE_FORCE"),
	})

	return &cli.Command{
		Name:    "run",
		Aliases: []string{"r"},
		Usage:   "Run one check-build-publish cycle",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			w, err := buildWiring(&githubCfg, &signingCfg, &gateCfg, &buildCfg, &notifyCfg)
			if err != nil {
				return err
			}

			report, err := w.pipeline.Run(ctx, force)
			if err != nil {
				return err
			}

			printReport(report)
			return nil
		},
	}
}

// wiring bundles the use cases and infra clients built from configuration,
// shared between run and watch.
type wiring struct {
	source   interfaces.ReleaseSource
	gateUC   interfaces.GateUseCase
	pipeline interfaces.PipelineUseCase
}

func buildWiring(
	githubCfg *config.GitHub,
	signingCfg *config.Signing,
	gateCfg *config.Gate,
	buildCfg *config.Build,
	notifyCfg *config.Notify,
) (*wiring, error) {
	source, err := githubCfg.Configure()
	if err != nil {
		return nil, err
	}

	if err := buildCfg.Load(); err != nil {
		return nil, err
	}

	gateUC := usecase.NewGate(source,
		usecase.WithLookupAttempts(int(gateCfg.LookupAttempts)),
		usecase.WithLookupDelay(gateCfg.LookupDelay),
	)

	builder := execinfra.NewBuilder(buildCfg.Command, buildCfg.Args, buildCfg.WorkDir, buildCfg.ArtifactGlobs)

	notifier := notify.NewNop()
	if notifyCfg.SlackWebhookURL != "" {
		notifier = notify.NewSlack(notifyCfg.SlackWebhookURL)
	}

	return &wiring{
		source:   source,
		gateUC:   gateUC,
		pipeline: usecase.NewPipeline(gateUC, source, builder, notifier, signingCfg.Material()),
	}, nil
}

func printReport(report *model.RunReport) {
	if report.Release != nil {
		color.Green("✔ published release %s (%s)", report.Release.TagName, report.Decision.Reason)
		fmt.Println(report.Release.HTMLURL)
		return
	}

	color.Yellow("– no build needed (%s, latest=%s current=%s)",
		report.Decision.Reason,
		report.Decision.LatestTag,
		report.Decision.CurrentHash,
	)
}
