package exec

import (
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/buildgate/pkg/domain/interfaces"
	"github.com/m-mizutani/buildgate/pkg/domain/model"
	"github.com/m-mizutani/buildgate/pkg/domain/types"
)

type builder struct {
	command       string
	args          []string
	workDir       string
	artifactGlobs []string
}

// NewBuilder creates a Builder that shells out to an external build tool.
// Signing credentials are injected as environment variables of the child
// process and never appear in the argument list or logs.
func NewBuilder(command string, args []string, workDir string, artifactGlobs []string) interfaces.Builder {
	return &builder{
		command:       command,
		args:          args,
		workDir:       workDir,
		artifactGlobs: artifactGlobs,
	}
}

// Build runs the build tool and collects the artifacts it produced. A failing
// build propagates as the failure of the whole run; there is no retry.
func (b *builder) Build(ctx context.Context, signing *model.SigningMaterial) (*model.BuildResult, error) {
	logger := ctxlog.From(ctx)

	if err := signing.Validate(); err != nil {
		return nil, err
	}

	tail := newTailWriter(maxLogTail)
	cmd := exec.CommandContext(ctx, b.command, b.args...)
	cmd.Dir = b.workDir
	cmd.Stdout = io.MultiWriter(os.Stdout, tail)
	cmd.Stderr = io.MultiWriter(os.Stderr, tail)
	cmd.Env = append(os.Environ(),
		"KEYSTORE_PATH="+signing.KeystorePath,
		"KEYSTORE_PASSWORD="+signing.StorePassword,
		"KEY_ALIAS="+signing.KeyAlias,
		"KEY_PASSWORD="+signing.KeyPassword,
	)

	logger.Info("Invoking build tool",
		"command", b.command,
		"work_dir", b.workDir,
	)

	start := time.Now()
	if err := cmd.Run(); err != nil {
		return nil, goerr.Wrap(err, "build tool failed",
			goerr.V("command", b.command),
			goerr.V("work_dir", b.workDir),
		)
	}
	duration := time.Since(start)

	artifacts, err := b.collectArtifacts()
	if err != nil {
		return nil, err
	}

	logger.Info("Build completed",
		"duration_ms", duration.Milliseconds(),
		"artifact_count", len(artifacts),
	)

	return &model.BuildResult{
		Artifacts: artifacts,
		Duration:  duration,
		LogTail:   tail.String(),
	}, nil
}

// maxLogTail bounds how much build tool output is kept in the result
const maxLogTail = 4096

// tailWriter keeps the last limit bytes of everything written to it. The
// full output still streams to the parent's stdio; the tail only feeds the
// run report.
type tailWriter struct {
	mu    sync.Mutex
	buf   []byte
	limit int
}

func newTailWriter(limit int) *tailWriter {
	return &tailWriter{limit: limit}
}

func (w *tailWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf = append(w.buf, p...)
	if len(w.buf) > w.limit {
		w.buf = w.buf[len(w.buf)-w.limit:]
	}
	return len(p), nil
}

func (w *tailWriter) String() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return string(w.buf)
}

// collectArtifacts resolves the output globs relative to the work directory.
// A successful build with no artifacts is treated as a failure so a release
// is published with all intended files or not at all.
func (b *builder) collectArtifacts() ([]string, error) {
	var artifacts []string
	for _, pattern := range b.artifactGlobs {
		if !filepath.IsAbs(pattern) && b.workDir != "" {
			pattern = filepath.Join(b.workDir, pattern)
		}
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, goerr.Wrap(err, "invalid artifact glob", goerr.V("pattern", pattern))
		}
		artifacts = append(artifacts, matches...)
	}

	if len(artifacts) == 0 {
		return nil, goerr.Wrap(types.ErrNoArtifacts, "no files matched artifact globs",
			goerr.V("globs", b.artifactGlobs),
		)
	}

	return artifacts, nil
}
