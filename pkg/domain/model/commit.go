package model

import "time"

// shortHashLen matches the abbreviated commit identifier used as release tags
const shortHashLen = 7

// CommitInfo represents the head of the tracked upstream branch
type CommitInfo struct {
	SHA       string    // Full commit identifier
	ShortSHA  string    // Abbreviated identifier, used as the release tag
	Committed time.Time // Commit timestamp
}

// NewCommitInfo derives the short hash from a full SHA
func NewCommitInfo(sha string, committed time.Time) *CommitInfo {
	short := sha
	if len(short) > shortHashLen {
		short = short[:shortHashLen]
	}
	return &CommitInfo{
		SHA:       sha,
		ShortSHA:  short,
		Committed: committed,
	}
}
