package github

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRunner answers gh invocations from a table keyed by the joined arguments.
type fakeRunner struct {
	responses map[string]string
	errs      map[string]error
	calls     []string
}

func (f *fakeRunner) run(_ context.Context, name string, args ...string) ([]byte, error) {
	key := name + " " + strings.Join(args, " ")
	f.calls = append(f.calls, key)
	if err, ok := f.errs[key]; ok {
		return nil, err
	}
	return []byte(f.responses[key]), nil
}

func TestParseURL(t *testing.T) {
	tests := []struct {
		name        string
		url         string
		expected    Location
		expectError bool
	}{
		{
			name:     "simple github URL",
			url:      "github://owner/repo/path/to/file.json",
			expected: Location{Owner: "owner", Repo: "repo", Path: "path/to/file.json"},
		},
		{
			name:     "github URL with ref",
			url:      "github://owner/repo/path/to/file.json@v1.0",
			expected: Location{Owner: "owner", Repo: "repo", Path: "path/to/file.json", Ref: "v1.0"},
		},
		{
			name:     "github URL with branch ref",
			url:      "github://bceao/pi-spi/specs/openapi.json@main",
			expected: Location{Owner: "bceao", Repo: "pi-spi", Path: "specs/openapi.json", Ref: "main"},
		},
		{
			name:        "invalid URL - not github",
			url:         "https://github.com/owner/repo/file.json",
			expectError: true,
		},
		{
			name:        "invalid URL - missing path",
			url:         "github://owner/repo",
			expectError: true,
		},
		{
			name:        "invalid URL - missing repo",
			url:         "github://owner",
			expectError: true,
		},
		{
			name:        "invalid URL - empty owner",
			url:         "github:///repo/file.json",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := ParseURL(tt.url)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, loc)
		})
	}
}

func TestLocation_ContentsPath(t *testing.T) {
	assert.Equal(t, "repos/o/r/contents/a/b.json", Location{Owner: "o", Repo: "r", Path: "a/b.json"}.ContentsPath())
	assert.Equal(t, "repos/o/r/contents/a.json?ref=dev", Location{Owner: "o", Repo: "r", Path: "a.json", Ref: "dev"}.ContentsPath())
}

func TestIsGitHubURL(t *testing.T) {
	tests := []struct {
		url      string
		expected bool
	}{
		{"github://owner/repo/file.json", true},
		{"github://owner/repo/file.json@v1.0", true},
		{"https://github.com/owner/repo/file.json", false},
		{"http://example.com/api.json", false},
		{"/local/path/api.json", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsGitHubURL(tt.url))
		})
	}
}

func TestGHClient_FetchFile(t *testing.T) {
	ctx := context.Background()
	content := `{"openapi":"3.0.3"}`
	encoded := base64.StdEncoding.EncodeToString([]byte(content))
	// Mimic the 60-column wrapping of the contents API.
	wrapped := encoded[:10] + "\n" + encoded[10:] + "\n"

	t.Run("decodes content", func(t *testing.T) {
		runner := &fakeRunner{responses: map[string]string{
			"gh api repos/bceao/pi-spi/contents/openapi.json?ref=main --jq .content": wrapped,
		}}
		client := NewGHClientWithRunner(runner.run)

		got, err := client.FetchFile(ctx, "github://bceao/pi-spi/openapi.json@main")
		require.NoError(t, err)
		assert.Equal(t, content, string(got))
		assert.Equal(t, []string{"gh auth status", "gh api repos/bceao/pi-spi/contents/openapi.json?ref=main --jq .content"}, runner.calls)
	})

	t.Run("not logged in", func(t *testing.T) {
		runner := &fakeRunner{errs: map[string]error{
			"gh auth status": errors.New("exit status 1: You are not logged in to any GitHub hosts"),
		}}
		_, err := NewGHClientWithRunner(runner.run).FetchFile(ctx, "github://bceao/pi-spi/openapi.json")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "gh auth login")
	})

	t.Run("empty content", func(t *testing.T) {
		runner := &fakeRunner{responses: map[string]string{
			"gh api repos/bceao/pi-spi/contents/openapi.json --jq .content": "null\n",
		}}
		_, err := NewGHClientWithRunner(runner.run).FetchFile(ctx, "github://bceao/pi-spi/openapi.json")
		assert.Error(t, err)
	})

	t.Run("api failure", func(t *testing.T) {
		runner := &fakeRunner{errs: map[string]error{
			"gh api repos/bceao/pi-spi/contents/openapi.json --jq .content": errors.New("HTTP 404"),
		}}
		_, err := NewGHClientWithRunner(runner.run).FetchFile(ctx, "github://bceao/pi-spi/openapi.json")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "gh command failed")
	})
}
