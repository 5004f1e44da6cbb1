package model

// RunReport aggregates the outcome of one pipeline run
type RunReport struct {
	RunID    string            // Unique ID of this run
	Commit   *CommitInfo       // Upstream branch head at evaluation time
	Decision *GateDecision     // Build gate outcome
	Build    *BuildResult      // Nil when no build was performed
	Release  *PublishedRelease // Nil when no release was published
}
