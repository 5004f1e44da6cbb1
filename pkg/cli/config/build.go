package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"
)

// Build holds the build tool invocation configuration. The step definition
// can also be loaded from a TOML file, which is more convenient than flags
// for argument lists and artifact globs; file values fill in anything the
// flags left empty.
type Build struct {
	Command       string
	Args          []string
	WorkDir       string
	ArtifactGlobs []string
	File          string
}

type buildFile struct {
	Command       string   `toml:"command"`
	Args          []string `toml:"args"`
	WorkDir       string   `toml:"work_dir"`
	ArtifactGlobs []string `toml:"artifact_globs"`
}

// Flags returns CLI flags for build configuration
func (c *Build) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "build-command",
			Usage:       "Build tool executable",
			Destination: &c.Command,
			Sources:     cli.EnvVars("BUILDGATE_BUILD_COMMAND"),
		},
		&cli.StringSliceFlag{
			Name:        "build-arg",
			Usage:       "Build tool argument (repeatable)",
			Destination: &c.Args,
			Sources:     cli.EnvVars("BUILDGATE_BUILD_ARGS"),
		},
		&cli.StringFlag{
			Name:        "build-dir",
			Usage:       "Working directory for the build tool",
			Destination: &c.WorkDir,
			Sources:     cli.EnvVars("BUILDGATE_BUILD_DIR"),
		},
		&cli.StringSliceFlag{
			Name:        "artifact-glob",
			Usage:       "Glob of artifact files to attach to the release (repeatable)",
			Destination: &c.ArtifactGlobs,
			Sources:     cli.EnvVars("BUILDGATE_ARTIFACT_GLOBS"),
		},
		&cli.StringFlag{
			Name:        "build-config",
			Usage:       "TOML file defining the build step",
			Destination: &c.File,
			Sources:     cli.EnvVars("BUILDGATE_BUILD_CONFIG"),
		},
	}
}

// Load merges the TOML build file (if any) and validates the result
func (c *Build) Load() error {
	if c.File != "" {
		raw, err := os.ReadFile(c.File)
		if err != nil {
			return goerr.Wrap(err, "failed to read build config", goerr.V("path", c.File))
		}

		var f buildFile
		if err := toml.Unmarshal(raw, &f); err != nil {
			return goerr.Wrap(err, "failed to parse build config", goerr.V("path", c.File))
		}

		if c.Command == "" {
			c.Command = f.Command
		}
		if len(c.Args) == 0 {
			c.Args = f.Args
		}
		if c.WorkDir == "" {
			c.WorkDir = f.WorkDir
		}
		if len(c.ArtifactGlobs) == 0 {
			c.ArtifactGlobs = f.ArtifactGlobs
		}
	}

	if c.Command == "" {
		return goerr.New("build command is not configured")
	}
	if len(c.ArtifactGlobs) == 0 {
		return goerr.New("no artifact globs configured")
	}

	return nil
}
