package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/buildgate/pkg/domain/interfaces"
	"github.com/m-mizutani/buildgate/pkg/domain/model"
	"github.com/m-mizutani/buildgate/pkg/domain/types"
)

const (
	DefaultLookupAttempts = 3
	DefaultLookupDelay    = 10 * time.Second
)

type gateUseCase struct {
	source   interfaces.ReleaseSource
	attempts int
	delay    time.Duration
}

// GateOption configures the gate evaluator
type GateOption func(*gateUseCase)

// WithLookupAttempts sets how many times the release lookup is tried.
// The lookup always runs at least once.
func WithLookupAttempts(n int) GateOption {
	return func(uc *gateUseCase) {
		if n < 1 {
			n = 1
		}
		uc.attempts = n
	}
}

// WithLookupDelay sets the wait between lookup attempts
func WithLookupDelay(d time.Duration) GateOption {
	return func(uc *gateUseCase) {
		uc.delay = d
	}
}

// NewGate creates a new instance of GateUseCase
func NewGate(source interfaces.ReleaseSource, opts ...GateOption) interfaces.GateUseCase {
	uc := &gateUseCase{
		source:   source,
		attempts: DefaultLookupAttempts,
		delay:    DefaultLookupDelay,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Evaluate decides whether a build-and-release cycle should run. The decision
// policy is strict priority order, first match wins:
//
//  1. force requested
//  2. release lookup exhausted retries on a transient error (fail-open)
//  3. no release exists yet
//  4. latest release tag differs from the branch head short hash
//  5. latest release tag matches the branch head short hash
func (uc *gateUseCase) Evaluate(ctx context.Context, force bool, currentHash string) (*model.GateDecision, error) {
	logger := ctxlog.From(ctx)

	decision := &model.GateDecision{
		Force:       force,
		CurrentHash: currentHash,
		CheckedAt:   time.Now(),
	}

	if force {
		decision.BuildNeeded = true
		decision.Reason = model.ReasonForceBuild
		logger.Info("Build forced by operator, skipping release lookup")
		return decision, nil
	}

	tag, err := uc.lookupLatestTag(ctx)
	switch {
	case err == nil:
		decision.LatestTag = tag
		if tag != currentHash {
			decision.BuildNeeded = true
			decision.Reason = model.ReasonCodeChanges
		} else {
			decision.Reason = model.ReasonNoChanges
		}

	case errors.Is(err, types.ErrReleaseNotFound):
		decision.BuildNeeded = true
		decision.FirstRelease = true
		decision.Reason = model.ReasonFirstRelease

	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		// Cancellation is not a lookup failure, do not fail open
		return nil, err

	default:
		// Fail open: a possibly redundant build is preferred over silently
		// skipping one when the release state cannot be determined.
		decision.BuildNeeded = true
		decision.Reason = model.ReasonAPIFailureFallback
		logger.Warn("Release lookup failed after retries, falling back to build",
			"error", err,
			"attempts", uc.attempts,
		)
	}

	logger.Info("Build gate evaluated",
		"build_needed", decision.BuildNeeded,
		"first_release", decision.FirstRelease,
		"reason", decision.Reason,
		"latest_tag", decision.LatestTag,
		"current_hash", decision.CurrentHash,
	)

	return decision, nil
}

// lookupLatestTag retries the release lookup on transient failures. A
// not-found result is definitive and returned immediately.
func (uc *gateUseCase) lookupLatestTag(ctx context.Context) (string, error) {
	logger := ctxlog.From(ctx)

	var lastErr error
	for attempt := 1; attempt <= uc.attempts; attempt++ {
		tag, err := uc.source.LatestReleaseTag(ctx)
		if err == nil {
			return tag, nil
		}
		if errors.Is(err, types.ErrReleaseNotFound) {
			return "", err
		}

		lastErr = err
		logger.Warn("Release lookup attempt failed",
			"attempt", attempt,
			"max_attempts", uc.attempts,
			"error", err,
		)

		if attempt < uc.attempts {
			select {
			case <-ctx.Done():
				return "", goerr.Wrap(ctx.Err(), "release lookup cancelled")
			case <-time.After(uc.delay):
			}
		}
	}

	return "", goerr.Wrap(lastErr, "release lookup exhausted retries",
		goerr.V("attempts", uc.attempts),
	)
}
