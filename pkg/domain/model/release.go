package model

// ReleaseRequest contains everything needed to publish a release
type ReleaseRequest struct {
	TagName         string   // Release tag (short commit hash)
	TargetCommitish string   // Full commit SHA the tag points at
	Name            string   // Human readable title
	Body            string   // Release notes body
	AssetGlobs      []string // File path globs of artifacts to attach
}

// PublishedRelease represents a release after creation
type PublishedRelease struct {
	ID      int64    // Release ID assigned by the hosting service
	TagName string   // Release tag name
	HTMLURL string   // Web URL of the release page
	Assets  []string // Names of attached artifact files
}
