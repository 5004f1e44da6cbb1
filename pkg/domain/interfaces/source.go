package interfaces

import (
	"context"

	"github.com/m-mizutani/buildgate/pkg/domain/model"
)

// ReleaseSource defines operations against the release hosting service for
// the tracked upstream repository.
type ReleaseSource interface {
	// LatestReleaseTag returns the tag name of the most recent published
	// release, or types.ErrReleaseNotFound when none exists.
	LatestReleaseTag(ctx context.Context) (string, error)

	// BranchHead returns the latest commit of the tracked branch
	BranchHead(ctx context.Context) (*model.CommitInfo, error)

	// CreateRelease publishes a release and attaches all files matching the
	// request's asset globs.
	CreateRelease(ctx context.Context, req *model.ReleaseRequest) (*model.PublishedRelease, error)
}

// Builder invokes the external build tool with signing parameters and
// collects the produced artifacts.
type Builder interface {
	Build(ctx context.Context, signing *model.SigningMaterial) (*model.BuildResult, error)
}

// Notifier delivers a notification about a completed run
type Notifier interface {
	NotifyRelease(ctx context.Context, report *model.RunReport) error
}
