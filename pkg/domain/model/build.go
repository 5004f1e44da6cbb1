package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/buildgate/pkg/domain/types"
)

// SigningMaterial holds the four opaque signing credentials. They are passed
// through to the build tool and never inspected or transformed. The masq tags
// keep the password values out of any log output.
type SigningMaterial struct {
	KeystorePath  string
	StorePassword string `masq:"secret"`
	KeyAlias      string
	KeyPassword   string `masq:"secret"`
}

// Validate reports whether all required signing values are present. Called
// before the build tool is invoked; a missing value aborts the run.
func (s *SigningMaterial) Validate() error {
	var missing []string
	if s.KeystorePath == "" {
		missing = append(missing, "keystore_path")
	}
	if s.StorePassword == "" {
		missing = append(missing, "store_password")
	}
	if s.KeyAlias == "" {
		missing = append(missing, "key_alias")
	}
	if s.KeyPassword == "" {
		missing = append(missing, "key_password")
	}
	if len(missing) > 0 {
		return goerr.Wrap(types.ErrIncompleteSigningMaterial, "signing material validation failed", goerr.V("missing", missing))
	}
	return nil
}

// BuildResult represents the outcome of one build tool invocation
type BuildResult struct {
	Artifacts []string      // Paths of produced artifact files
	Duration  time.Duration // Wall clock time of the build
	LogTail   string        // Last part of the combined build tool output
}
