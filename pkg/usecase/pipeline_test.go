package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/buildgate/pkg/domain/model"
	"github.com/m-mizutani/buildgate/pkg/domain/types"
	"github.com/m-mizutani/buildgate/pkg/usecase"
)

// MockBuilder is a mock implementation of Builder
type MockBuilder struct {
	buildFunc  func(ctx context.Context, signing *model.SigningMaterial) (*model.BuildResult, error)
	buildCalls int
}

func (m *MockBuilder) Build(ctx context.Context, signing *model.SigningMaterial) (*model.BuildResult, error) {
	m.buildCalls++
	if m.buildFunc != nil {
		return m.buildFunc(ctx, signing)
	}
	return nil, errors.New("mock not configured")
}

// MockNotifier is a mock implementation of Notifier
type MockNotifier struct {
	notifyFunc  func(ctx context.Context, report *model.RunReport) error
	notifyCalls []*model.RunReport
}

func (m *MockNotifier) NotifyRelease(ctx context.Context, report *model.RunReport) error {
	m.notifyCalls = append(m.notifyCalls, report)
	if m.notifyFunc != nil {
		return m.notifyFunc(ctx, report)
	}
	return nil
}

func validSigning() *model.SigningMaterial {
	return &model.SigningMaterial{
		KeystorePath:  "/secrets/release.keystore",
		StorePassword: "store-pass",
		KeyAlias:      "release",
		KeyPassword:   "key-pass",
	}
}

func headSource(sha, latestTag string) *MockReleaseSource {
	return &MockReleaseSource{
		branchHeadFunc: func(ctx context.Context) (*model.CommitInfo, error) {
			return model.NewCommitInfo(sha, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)), nil
		},
		latestReleaseTagFunc: func(ctx context.Context) (string, error) {
			if latestTag == "" {
				return "", types.ErrReleaseNotFound
			}
			return latestTag, nil
		},
	}
}

func TestPipeline_NoBuildNeeded(t *testing.T) {
	ctx := context.Background()

	source := headSource("a1b2c3d4e5f60708", "a1b2c3d")
	builder := &MockBuilder{}
	notifier := &MockNotifier{}

	uc := usecase.NewPipeline(newGate(source), source, builder, notifier, validSigning())
	report, err := uc.Run(ctx, false)

	gt.NoError(t, err)
	gt.Value(t, report.Decision.BuildNeeded).Equal(false)
	gt.Value(t, report.Decision.Reason).Equal(model.ReasonNoChanges)
	gt.Value(t, report.Build).Nil()
	gt.Value(t, report.Release).Nil()
	gt.Number(t, builder.buildCalls).Equal(0)
	gt.Number(t, len(source.createCalls)).Equal(0)
}

func TestPipeline_BuildAndPublish(t *testing.T) {
	ctx := context.Background()

	source := headSource("f9e8d7c6b5a40302", "a1b2c3d")
	source.createReleaseFunc = func(ctx context.Context, req *model.ReleaseRequest) (*model.PublishedRelease, error) {
		return &model.PublishedRelease{
			ID:      42,
			TagName: req.TagName,
			HTMLURL: "https://github.com/owner/repo/releases/tag/" + req.TagName,
			Assets:  []string{"app-release.apk"},
		}, nil
	}

	builder := &MockBuilder{
		buildFunc: func(ctx context.Context, signing *model.SigningMaterial) (*model.BuildResult, error) {
			return &model.BuildResult{
				Artifacts: []string{"/work/out/app-release.apk"},
				Duration:  3 * time.Minute,
			}, nil
		},
	}
	notifier := &MockNotifier{}

	uc := usecase.NewPipeline(newGate(source), source, builder, notifier, validSigning())
	report, err := uc.Run(ctx, false)

	gt.NoError(t, err)
	gt.Value(t, report.Decision.Reason).Equal(model.ReasonCodeChanges)
	gt.Number(t, builder.buildCalls).Equal(1)

	// Tag is the short hash of the branch head
	gt.Number(t, len(source.createCalls)).Equal(1)
	req := source.createCalls[0]
	gt.Value(t, req.TagName).Equal("f9e8d7c")
	gt.Value(t, req.TargetCommitish).Equal("f9e8d7c6b5a40302")
	gt.Value(t, req.AssetGlobs).Equal([]string{"/work/out/app-release.apk"})

	gt.Value(t, report.Release.ID).Equal(int64(42))
	gt.Number(t, len(notifier.notifyCalls)).Equal(1)
}

func TestPipeline_ForceSkipsLookup(t *testing.T) {
	ctx := context.Background()

	source := headSource("f9e8d7c6b5a40302", "")
	source.latestReleaseTagFunc = func(ctx context.Context) (string, error) {
		return "", errors.New("lookup should not be called")
	}
	source.createReleaseFunc = func(ctx context.Context, req *model.ReleaseRequest) (*model.PublishedRelease, error) {
		return &model.PublishedRelease{ID: 1, TagName: req.TagName}, nil
	}

	builder := &MockBuilder{
		buildFunc: func(ctx context.Context, signing *model.SigningMaterial) (*model.BuildResult, error) {
			return &model.BuildResult{Artifacts: []string{"out.apk"}}, nil
		},
	}
	notifier := &MockNotifier{}

	uc := usecase.NewPipeline(newGate(source), source, builder, notifier, validSigning())
	report, err := uc.Run(ctx, true)

	gt.NoError(t, err)
	gt.Value(t, report.Decision.Reason).Equal(model.ReasonForceBuild)
	gt.Number(t, source.lookupCalls).Equal(0)
	gt.Number(t, builder.buildCalls).Equal(1)
}

func TestPipeline_MissingSecretAbortsBeforeBuild(t *testing.T) {
	ctx := context.Background()

	source := headSource("f9e8d7c6b5a40302", "a1b2c3d")
	builder := &MockBuilder{}
	notifier := &MockNotifier{}

	signing := validSigning()
	signing.KeyPassword = ""

	uc := usecase.NewPipeline(newGate(source), source, builder, notifier, signing)
	report, err := uc.Run(ctx, false)

	gt.Error(t, err)
	gt.Value(t, errors.Is(err, types.ErrIncompleteSigningMaterial)).Equal(true)
	gt.Value(t, report).Nil()
	gt.Number(t, builder.buildCalls).Equal(0)
	gt.Number(t, len(source.createCalls)).Equal(0)
}

func TestPipeline_BuildFailurePropagates(t *testing.T) {
	ctx := context.Background()

	source := headSource("f9e8d7c6b5a40302", "a1b2c3d")
	builder := &MockBuilder{
		buildFunc: func(ctx context.Context, signing *model.SigningMaterial) (*model.BuildResult, error) {
			return nil, errors.New("gradle exited with status 1")
		},
	}
	notifier := &MockNotifier{}

	uc := usecase.NewPipeline(newGate(source), source, builder, notifier, validSigning())
	report, err := uc.Run(ctx, false)

	gt.Error(t, err)
	gt.Value(t, report).Nil()
	gt.Number(t, len(source.createCalls)).Equal(0)
	gt.Number(t, len(notifier.notifyCalls)).Equal(0)
}

func TestPipeline_NotifyFailureDoesNotFailRun(t *testing.T) {
	ctx := context.Background()

	source := headSource("f9e8d7c6b5a40302", "a1b2c3d")
	source.createReleaseFunc = func(ctx context.Context, req *model.ReleaseRequest) (*model.PublishedRelease, error) {
		return &model.PublishedRelease{ID: 7, TagName: req.TagName}, nil
	}
	builder := &MockBuilder{
		buildFunc: func(ctx context.Context, signing *model.SigningMaterial) (*model.BuildResult, error) {
			return &model.BuildResult{Artifacts: []string{"out.apk"}}, nil
		},
	}
	notifier := &MockNotifier{
		notifyFunc: func(ctx context.Context, report *model.RunReport) error {
			return errors.New("slack unreachable")
		},
	}

	uc := usecase.NewPipeline(newGate(source), source, builder, notifier, validSigning())
	report, err := uc.Run(ctx, false)

	gt.NoError(t, err)
	gt.Value(t, report.Release).NotNil()
}
