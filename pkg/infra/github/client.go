package github

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/buildgate/pkg/domain/interfaces"
	"github.com/m-mizutani/buildgate/pkg/domain/model"
	"github.com/m-mizutani/buildgate/pkg/domain/types"
)

type client struct {
	githubClient *github.Client
	owner        string
	repo         string
	branch       string
}

// ClientOption is a functional option for client configuration
type ClientOption func(*github.Client) error

// WithBaseURL points the client at a different API endpoint, used for GitHub
// Enterprise and in tests.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *github.Client) error {
		u, err := url.Parse(baseURL)
		if err != nil {
			return goerr.Wrap(err, "invalid API base URL", goerr.V("url", baseURL))
		}
		c.BaseURL = u
		c.UploadURL = u
		return nil
	}
}

// NewClient creates a ReleaseSource backed by a personal access token
func NewClient(token, owner, repo, branch string, opts ...ClientOption) (interfaces.ReleaseSource, error) {
	githubClient := github.NewClient(nil).WithAuthToken(token)
	for _, opt := range opts {
		if err := opt(githubClient); err != nil {
			return nil, err
		}
	}

	return &client{
		githubClient: githubClient,
		owner:        owner,
		repo:         repo,
		branch:       branch,
	}, nil
}

// NewAppClient creates a ReleaseSource authenticated as a GitHub App installation
func NewAppClient(appID, installationID int64, privateKey []byte, owner, repo, branch string) (interfaces.ReleaseSource, error) {
	itr, err := ghinstallation.New(http.DefaultTransport, appID, installationID, privateKey)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create GitHub App transport")
	}

	return &client{
		githubClient: github.NewClient(&http.Client{Transport: itr}),
		owner:        owner,
		repo:         repo,
		branch:       branch,
	}, nil
}

// LatestReleaseTag returns the tag of the most recent published release.
// A 404 from the API is mapped to types.ErrReleaseNotFound so callers can
// distinguish "no release yet" from a transient failure.
func (c *client) LatestReleaseTag(ctx context.Context) (string, error) {
	release, resp, err := c.githubClient.Repositories.GetLatestRelease(ctx, c.owner, c.repo)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return "", goerr.Wrap(types.ErrReleaseNotFound, "no release in repository",
				goerr.V("owner", c.owner),
				goerr.V("repo", c.repo),
			)
		}
		var errResp *github.ErrorResponse
		if errors.As(err, &errResp) && errResp.Response != nil && errResp.Response.StatusCode == http.StatusNotFound {
			return "", goerr.Wrap(types.ErrReleaseNotFound, "no release in repository",
				goerr.V("owner", c.owner),
				goerr.V("repo", c.repo),
			)
		}
		return "", goerr.Wrap(err, "failed to get latest release",
			goerr.V("owner", c.owner),
			goerr.V("repo", c.repo),
		)
	}

	return release.GetTagName(), nil
}

// BranchHead returns the latest commit on the tracked branch
func (c *client) BranchHead(ctx context.Context) (*model.CommitInfo, error) {
	branch, _, err := c.githubClient.Repositories.GetBranch(ctx, c.owner, c.repo, c.branch, 3)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get branch head",
			goerr.V("owner", c.owner),
			goerr.V("repo", c.repo),
			goerr.V("branch", c.branch),
		)
	}

	sha := branch.GetCommit().GetSHA()
	committed := branch.GetCommit().GetCommit().GetCommitter().GetDate().Time

	return model.NewCommitInfo(sha, committed), nil
}

// CreateRelease publishes a release and uploads every file matching the
// request's asset globs. Glob matches are resolved before the release is
// created so a bad pattern fails the run without publishing anything.
func (c *client) CreateRelease(ctx context.Context, req *model.ReleaseRequest) (*model.PublishedRelease, error) {
	logger := ctxlog.From(ctx)

	assetPaths, err := resolveGlobs(req.AssetGlobs)
	if err != nil {
		return nil, err
	}

	release, _, err := c.githubClient.Repositories.CreateRelease(ctx, c.owner, c.repo, &github.RepositoryRelease{
		TagName:         github.Ptr(req.TagName),
		TargetCommitish: github.Ptr(req.TargetCommitish),
		Name:            github.Ptr(req.Name),
		Body:            github.Ptr(req.Body),
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create release",
			goerr.V("owner", c.owner),
			goerr.V("repo", c.repo),
			goerr.V("tag", req.TagName),
		)
	}

	published := &model.PublishedRelease{
		ID:      release.GetID(),
		TagName: release.GetTagName(),
		HTMLURL: release.GetHTMLURL(),
	}

	for _, path := range assetPaths {
		name, err := c.uploadAsset(ctx, release.GetID(), path)
		if err != nil {
			return nil, err
		}
		published.Assets = append(published.Assets, name)

		logger.Info("Uploaded release asset",
			"tag", req.TagName,
			"asset", name,
		)
	}

	return published, nil
}

func (c *client) uploadAsset(ctx context.Context, releaseID int64, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", goerr.Wrap(err, "failed to open artifact", goerr.V("path", path))
	}
	defer f.Close()

	name := filepath.Base(path)
	_, _, err = c.githubClient.Repositories.UploadReleaseAsset(ctx, c.owner, c.repo, releaseID, &github.UploadOptions{
		Name: name,
	}, f)
	if err != nil {
		return "", goerr.Wrap(err, "failed to upload release asset",
			goerr.V("path", path),
			goerr.V("release_id", releaseID),
		)
	}

	return name, nil
}

func resolveGlobs(globs []string) ([]string, error) {
	var paths []string
	for _, pattern := range globs {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, goerr.Wrap(err, "invalid asset glob", goerr.V("pattern", pattern))
		}
		paths = append(paths, matches...)
	}
	return paths, nil
}
