package util

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gaubeleo/photoframe/config"
	"github.com/google/go-github/v63/github"
	"golang.org/x/mod/semver"
)

const (
	githubOwner = "gaubeleo"
	githubRepo  = "photoframe"
)

// CheckForUpdatesResult holds the outcome of the update check.
type CheckForUpdatesResult struct {
	UpdateAvailable bool
	CurrentVersion  string
	LatestVersion   string
	ReleaseURL      string
}

// CheckForUpdates compares config.AppVersion with the latest GitHub release.
// A nil client uses http.DefaultClient.
func CheckForUpdates(ctx context.Context, client *http.Client) (*CheckForUpdatesResult, error) {
	release, _, err := github.NewClient(client).Repositories.GetLatestRelease(ctx, githubOwner, githubRepo)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch latest GitHub release: %w", err)
	}

	current := canonicalVersion(config.AppVersion)
	latest := canonicalVersion(release.GetTagName())

	return &CheckForUpdatesResult{
		// Development builds carry no version and never prompt.
		UpdateAvailable: semver.IsValid(current) && semver.Compare(latest, current) > 0,
		CurrentVersion:  current,
		LatestVersion:   latest,
		ReleaseURL:      release.GetHTMLURL(),
	}, nil
}

func canonicalVersion(v string) string {
	v = strings.TrimSpace(v)
	if v != "" && !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}
