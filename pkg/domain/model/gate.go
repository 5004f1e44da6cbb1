package model

import "time"

// BuildReason explains why the build gate opened or stayed closed
type BuildReason string

const (
	ReasonForceBuild         BuildReason = "force_build"
	ReasonFirstRelease       BuildReason = "first_release"
	ReasonCodeChanges        BuildReason = "code_changes"
	ReasonNoChanges          BuildReason = "no_changes"
	ReasonAPIFailureFallback BuildReason = "api_failure_fallback"
)

// GateDecision is the transient outcome of one build-gate evaluation. It is
// recomputed fresh on every run and never persisted.
type GateDecision struct {
	Force        bool        `json:"force"`
	LatestTag    string      `json:"latest_tag,omitempty"`
	CurrentHash  string      `json:"current_hash"`
	BuildNeeded  bool        `json:"build_needed"`
	FirstRelease bool        `json:"first_release"`
	Reason       BuildReason `json:"reason"`
	CheckedAt    time.Time   `json:"checked_at"`
}
