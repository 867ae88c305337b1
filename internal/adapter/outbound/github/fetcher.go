package github

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/i2y/pispi/internal/domain"
	"github.com/i2y/pispi/internal/usecase"
)

// Fetcher implements usecase.SpecFetcher for github:// sources.
type Fetcher struct {
	ghClient *GHClient
	logger   *slog.Logger
}

// NewFetcher creates a new GitHub spec fetcher. A nil client uses the gh CLI.
func NewFetcher(client *GHClient, logger *slog.Logger) *Fetcher {
	if client == nil {
		client = NewGHClient()
	}
	return &Fetcher{
		ghClient: client,
		logger:   logger.With("component", "github_fetcher"),
	}
}

// Fetch retrieves an API description document from a GitHub repository.
// Headers are ignored since gh handles authentication.
func (f *Fetcher) Fetch(ctx context.Context, config usecase.SpecSourceConfig) (domain.APISchema, error) {
	log := f.logger.With(slog.String("source", config.URL))

	if !IsGitHubURL(config.URL) {
		return domain.APISchema{}, fmt.Errorf("not a GitHub URL: %s", config.URL)
	}

	log.Info("Fetching spec from GitHub")
	content, err := f.ghClient.FetchFile(ctx, config.URL)
	if err != nil {
		log.Error("Failed to fetch file from GitHub", slog.Any("error", err))
		return domain.APISchema{}, fmt.Errorf("failed to fetch file from GitHub: %w", err)
	}

	log.Info("Fetched spec from GitHub", slog.Int("size", len(content)))
	return domain.APISchema{
		Source:  config.URL,
		Kind:    domain.SourceKindGitHub,
		RawData: content,
	}, nil
}

// LoadGitHubConfig loads a configuration file from GitHub
func LoadGitHubConfig(ctx context.Context, githubURL string) ([]byte, error) {
	if !IsGitHubURL(githubURL) {
		return nil, fmt.Errorf("not a GitHub URL: %s", githubURL)
	}

	content, err := NewGHClient().FetchFile(ctx, githubURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch config from GitHub: %w", err)
	}
	return content, nil
}
