package types

import "github.com/m-mizutani/goerr/v2"

var (
	// ErrReleaseNotFound is returned by ReleaseSource.LatestReleaseTag when the
	// repository definitively has no published release. It is the only lookup
	// error that must not trigger the fail-open fallback.
	ErrReleaseNotFound = goerr.New("no published release found")

	// ErrIncompleteSigningMaterial aborts a run before the build tool is
	// invoked when any of the four signing secrets is missing.
	ErrIncompleteSigningMaterial = goerr.New("incomplete signing material")

	// ErrNoArtifacts is returned when a build succeeded but produced no files
	// matching the configured artifact globs.
	ErrNoArtifacts = goerr.New("build produced no artifacts")
)
