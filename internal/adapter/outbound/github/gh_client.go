package github

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"os/exec"
	"strings"
)

// Runner executes an external command and returns its standard output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// GHClient wraps the gh CLI command for GitHub operations
type GHClient struct {
	run Runner
}

// NewGHClient creates a GitHub client backed by the installed gh CLI.
func NewGHClient() *GHClient {
	return &GHClient{run: execRunner}
}

// NewGHClientWithRunner creates a GitHub client that executes commands through run.
func NewGHClientWithRunner(run Runner) *GHClient {
	return &GHClient{run: run}
}

// Location is a parsed github://owner/repo/path[@ref] URL.
type Location struct {
	Owner string
	Repo  string
	Path  string
	Ref   string
}

// ContentsPath returns the REST contents endpoint for the location.
func (l Location) ContentsPath() string {
	p := fmt.Sprintf("repos/%s/%s/contents/%s", l.Owner, l.Repo, l.Path)
	if l.Ref != "" {
		p += "?ref=" + l.Ref
	}
	return p
}

// ParseURL parses a github:// URL into its components.
func ParseURL(githubURL string) (Location, error) {
	if !IsGitHubURL(githubURL) {
		return Location{}, fmt.Errorf("invalid GitHub URL format: %s", githubURL)
	}

	var loc Location
	urlPath := strings.TrimPrefix(githubURL, "github://")
	if at := strings.LastIndex(urlPath, "@"); at >= 0 {
		loc.Ref = urlPath[at+1:]
		urlPath = urlPath[:at]
	}

	parts := strings.SplitN(urlPath, "/", 3)
	if len(parts) < 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return Location{}, fmt.Errorf("invalid GitHub URL format: expected github://owner/repo/path/to/file")
	}
	loc.Owner, loc.Repo, loc.Path = parts[0], parts[1], parts[2]
	return loc, nil
}

// FetchFile retrieves a file's content through the GitHub contents API.
func (c *GHClient) FetchFile(ctx context.Context, githubURL string) ([]byte, error) {
	loc, err := ParseURL(githubURL)
	if err != nil {
		return nil, err
	}

	if err := c.checkAuth(ctx); err != nil {
		return nil, err
	}

	out, err := c.run(ctx, "gh", "api", loc.ContentsPath(), "--jq", ".content")
	if err != nil {
		return nil, fmt.Errorf("gh command failed: %w", err)
	}

	encoded := strings.TrimSpace(string(out))
	if encoded == "" || encoded == "null" {
		return nil, fmt.Errorf("empty response from GitHub for %s", githubURL)
	}

	// The contents API wraps base64 at 60 columns; the decoder skips newlines.
	content, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 content: %w", err)
	}
	return content, nil
}

// checkAuth verifies that the gh CLI is installed and authenticated
func (c *GHClient) checkAuth(ctx context.Context) error {
	if _, err := c.run(ctx, "gh", "auth", "status"); err != nil {
		msg := err.Error()
		switch {
		case strings.Contains(msg, "executable file not found"), strings.Contains(msg, "not found"):
			return fmt.Errorf("gh CLI is not installed. Please install it from https://cli.github.com/")
		case strings.Contains(msg, "not logged in"):
			return fmt.Errorf("gh CLI is not authenticated. Please run 'gh auth login' first")
		}
		return fmt.Errorf("gh auth check failed: %w", err)
	}
	return nil
}

// IsGitHubURL checks if a URL is a GitHub URL
func IsGitHubURL(url string) bool {
	return strings.HasPrefix(url, "github://")
}

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if stderr.Len() > 0 {
			return nil, fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr.String()))
		}
		return nil, err
	}
	return stdout.Bytes(), nil
}
