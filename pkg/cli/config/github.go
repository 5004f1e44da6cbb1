package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/buildgate/pkg/domain/interfaces"
	githubinfra "github.com/m-mizutani/buildgate/pkg/infra/github"
)

// GitHub holds configuration of the tracked upstream repository and the
// credentials used against the hosting service.
type GitHub struct {
	Owner  string
	Repo   string
	Branch string

	Token string

	AppID          int64
	InstallationID int64
	PrivateKeyPath string
}

// Flags returns CLI flags for GitHub configuration
func (c *GitHub) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "github-owner",
			Usage:       "Owner of the tracked repository",
			Required:    true,
			Destination: &c.Owner,
			Sources:     cli.EnvVars("BUILDGATE_GITHUB_OWNER"),
		},
		&cli.StringFlag{
			Name:        "github-repo",
			Usage:       "Name of the tracked repository",
			Required:    true,
			Destination: &c.Repo,
			Sources:     cli.EnvVars("BUILDGATE_GITHUB_REPO"),
		},
		&cli.StringFlag{
			Name:        "github-branch",
			Usage:       "Tracked branch",
			Value:       "main",
			Destination: &c.Branch,
			Sources:     cli.EnvVars("BUILDGATE_GITHUB_BRANCH"),
		},
		&cli.StringFlag{
			Name:        "github-token",
			Usage:       "Personal access token (alternative to App auth)",
			Destination: &c.Token,
			Sources:     cli.EnvVars("BUILDGATE_GITHUB_TOKEN"),
		},
		&cli.Int64Flag{
			Name:        "github-app-id",
			Usage:       "GitHub App ID",
			Destination: &c.AppID,
			Sources:     cli.EnvVars("BUILDGATE_GITHUB_APP_ID"),
		},
		&cli.Int64Flag{
			Name:        "github-installation-id",
			Usage:       "GitHub App installation ID",
			Destination: &c.InstallationID,
			Sources:     cli.EnvVars("BUILDGATE_GITHUB_INSTALLATION_ID"),
		},
		&cli.StringFlag{
			Name:        "github-private-key",
			Usage:       "Path to the GitHub App private key",
			Destination: &c.PrivateKeyPath,
			Sources:     cli.EnvVars("BUILDGATE_GITHUB_PRIVATE_KEY"),
		},
	}
}

// Configure builds the ReleaseSource. App auth takes precedence when an App
// ID is set, otherwise a token is required.
func (c *GitHub) Configure() (interfaces.ReleaseSource, error) {
	if c.AppID != 0 {
		if c.InstallationID == 0 || c.PrivateKeyPath == "" {
			return nil, goerr.New("GitHub App auth requires installation ID and private key path")
		}
		key, err := os.ReadFile(c.PrivateKeyPath)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read GitHub App private key",
				goerr.V("path", c.PrivateKeyPath),
			)
		}
		return githubinfra.NewAppClient(c.AppID, c.InstallationID, key, c.Owner, c.Repo, c.Branch)
	}

	if c.Token == "" {
		return nil, goerr.New("either a GitHub token or App credentials must be configured")
	}

	return githubinfra.NewClient(c.Token, c.Owner, c.Repo, c.Branch)
}
