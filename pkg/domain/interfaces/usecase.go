package interfaces

import (
	"context"

	"github.com/m-mizutani/buildgate/pkg/domain/model"
)

// GateUseCase decides whether a build-and-release cycle should run
type GateUseCase interface {
	// Evaluate produces a fresh gate decision given the short hash of the
	// upstream branch head. The release lookup is its only external read.
	Evaluate(ctx context.Context, force bool, currentHash string) (*model.GateDecision, error)
}

// PipelineUseCase drives one full check-build-publish cycle
type PipelineUseCase interface {
	// Run evaluates the gate and, when a build is needed, builds and
	// publishes a release. Returns the report of what happened.
	Run(ctx context.Context, force bool) (*model.RunReport, error)
}
