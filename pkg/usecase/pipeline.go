package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/buildgate/pkg/domain/interfaces"
	"github.com/m-mizutani/buildgate/pkg/domain/model"
)

type pipelineUseCase struct {
	gate     interfaces.GateUseCase
	source   interfaces.ReleaseSource
	builder  interfaces.Builder
	notifier interfaces.Notifier
	signing  *model.SigningMaterial
}

// NewPipeline creates a new instance of PipelineUseCase
func NewPipeline(
	gate interfaces.GateUseCase,
	source interfaces.ReleaseSource,
	builder interfaces.Builder,
	notifier interfaces.Notifier,
	signing *model.SigningMaterial,
) interfaces.PipelineUseCase {
	return &pipelineUseCase{
		gate:     gate,
		source:   source,
		builder:  builder,
		notifier: notifier,
		signing:  signing,
	}
}

// Run drives one check-build-publish cycle. When the gate stays closed the
// run succeeds having performed no build. Signing material is validated
// before the build tool is invoked; a build failure fails the whole run.
func (uc *pipelineUseCase) Run(ctx context.Context, force bool) (*model.RunReport, error) {
	logger := ctxlog.From(ctx)

	report := &model.RunReport{
		RunID: uuid.NewString(),
	}

	head, err := uc.source.BranchHead(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to resolve upstream branch head")
	}
	report.Commit = head

	logger.Info("Resolved upstream branch head",
		"run_id", report.RunID,
		"sha", head.SHA,
		"short_sha", head.ShortSHA,
		"committed", head.Committed,
	)

	decision, err := uc.gate.Evaluate(ctx, force, head.ShortSHA)
	if err != nil {
		return nil, err
	}
	report.Decision = decision

	if !decision.BuildNeeded {
		logger.Info("No build needed, run complete",
			"run_id", report.RunID,
			"reason", decision.Reason,
		)
		return report, nil
	}

	if err := uc.signing.Validate(); err != nil {
		return nil, err
	}

	build, err := uc.builder.Build(ctx, uc.signing)
	if err != nil {
		return nil, goerr.Wrap(err, "build failed", goerr.V("run_id", report.RunID))
	}
	report.Build = build

	release, err := uc.source.CreateRelease(ctx, uc.releaseRequest(head, decision, build))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to publish release", goerr.V("run_id", report.RunID))
	}
	report.Release = release

	logger.Info("Release published",
		"run_id", report.RunID,
		"tag", release.TagName,
		"url", release.HTMLURL,
		"assets", release.Assets,
	)

	if err := uc.notifier.NotifyRelease(ctx, report); err != nil {
		// Notification failure never rolls back a published release
		logger.Warn("Failed to send release notification",
			"run_id", report.RunID,
			"error", err,
		)
	}

	return report, nil
}

func (uc *pipelineUseCase) releaseRequest(head *model.CommitInfo, decision *model.GateDecision, build *model.BuildResult) *model.ReleaseRequest {
	title := fmt.Sprintf("Build %s (%s)", head.ShortSHA, head.Committed.Format("2006-01-02"))
	body := fmt.Sprintf("Automated build of commit `%s`.\n\nTrigger: %s\nCommitted: %s\n",
		head.SHA,
		decision.Reason,
		head.Committed.Format("2006-01-02 15:04:05 MST"),
	)

	return &model.ReleaseRequest{
		TagName:         head.ShortSHA,
		TargetCommitish: head.SHA,
		Name:            title,
		Body:            body,
		AssetGlobs:      build.Artifacts,
	}
}
