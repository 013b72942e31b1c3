// Package update checks whether a newer release has been published.
package update

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/openinterpreter/oi/pkg/httpclient"
)

// DefaultURL is the latest-release endpoint.
const DefaultURL = "https://api.github.com/repos/OpenInterpreter/open-interpreter/releases/latest"

// Checker compares the running version with the latest release.
type Checker struct {
	URL     string
	Current string
	Client  *httpclient.Client
}

// NewChecker creates a Checker for the running version.
func NewChecker(current string) *Checker {
	return &Checker{
		URL:     DefaultURL,
		Current: current,
		Client:  httpclient.New(httpclient.WithMaxRetries(0)),
	}
}

type release struct {
	TagName string `json:"tag_name"`
}

// Check reports whether the latest release is newer than Current.
func (c *Checker) Check(ctx context.Context) (bool, error) {
	current := canonical(c.Current)
	if !semver.IsValid(current) {
		return false, fmt.Errorf("invalid current version %q", c.Current)
	}

	resp, err := c.Client.Get(ctx, c.URL)
	if err != nil {
		return false, fmt.Errorf("failed to fetch latest release: %w", err)
	}
	defer resp.Body.Close()

	var rel release
	if err := json.NewDecoder(resp.Body).Decode(&rel); err != nil {
		return false, fmt.Errorf("failed to decode release: %w", err)
	}

	latest := canonical(rel.TagName)
	if !semver.IsValid(latest) {
		return false, fmt.Errorf("invalid release tag %q", rel.TagName)
	}
	return semver.Compare(latest, current) > 0, nil
}

func canonical(v string) string {
	v = strings.TrimSpace(v)
	if v != "" && !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}
