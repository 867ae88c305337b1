package openapi

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/spf13/afero"

	"github.com/i2y/pispi/internal/domain"
	"github.com/i2y/pispi/internal/usecase"
)

// SpecFetcher implements the usecase.SpecFetcher interface for local files and
// http(s) URLs, delegating github:// sources to a dedicated fetcher.
type SpecFetcher struct {
	httpClient *http.Client
	fs         afero.Fs
	github     usecase.SpecFetcher
	logger     *slog.Logger
}

// NewSpecFetcher creates a new SpecFetcher. github may be nil, in which case
// github:// sources are rejected.
func NewSpecFetcher(client *http.Client, fs afero.Fs, github usecase.SpecFetcher, logger *slog.Logger) *SpecFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &SpecFetcher{
		httpClient: client,
		fs:         fs,
		github:     github,
		logger:     logger.With("component", "spec_fetcher"),
	}
}

// Fetch loads the raw document described by config.
func (f *SpecFetcher) Fetch(ctx context.Context, config usecase.SpecSourceConfig) (domain.APISchema, error) {
	log := f.logger.With(slog.String("source", config.URL))

	if strings.HasPrefix(config.URL, "github://") {
		if f.github == nil {
			return domain.APISchema{}, fmt.Errorf("github sources are not supported: %s", config.URL)
		}
		return f.github.Fetch(ctx, config)
	}

	u, parseErr := url.ParseRequestURI(config.URL)
	if parseErr == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return f.fetchURL(ctx, log, config)
	}

	// For local files, headers are ignored
	log.Debug("Reading spec from local file")
	data, err := afero.ReadFile(f.fs, config.URL)
	if err != nil {
		log.Error("Failed to read spec from file", slog.Any("error", err))
		return domain.APISchema{}, fmt.Errorf("failed to read spec from file %s: %w", config.URL, err)
	}

	log.Info("Loaded spec from file", slog.Int("size", len(data)))
	return domain.APISchema{
		Source:  config.URL,
		Kind:    domain.SourceKindFile,
		RawData: data,
	}, nil
}

func (f *SpecFetcher) fetchURL(ctx context.Context, log *slog.Logger, config usecase.SpecSourceConfig) (domain.APISchema, error) {
	if len(config.Headers) > 0 {
		log.Info("Fetching spec with custom headers", slog.Int("header_count", len(config.Headers)))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, config.URL, nil)
	if err != nil {
		log.Error("Failed to create HTTP request", slog.Any("error", err))
		return domain.APISchema{}, fmt.Errorf("failed to create request for %s: %w", config.URL, err)
	}
	req.Header.Set("Accept", "application/json")
	for key, value := range config.Headers {
		req.Header.Set(key, value)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		log.Error("Failed to fetch spec from URL", slog.Any("error", err))
		return domain.APISchema{}, fmt.Errorf("failed to fetch spec from URL %s: %w", config.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Warn("Received non-OK status code from URL", slog.String("status", resp.Status), slog.Int("status_code", resp.StatusCode))
		return domain.APISchema{}, fmt.Errorf("failed to fetch spec from URL %s: status %s", config.URL, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Error("Failed to read response body from URL", slog.Any("error", err))
		return domain.APISchema{}, fmt.Errorf("failed to read response body from %s: %w", config.URL, err)
	}

	log.Info("Fetched spec from URL", slog.Int("size", len(data)))
	return domain.APISchema{
		Source:  config.URL,
		Kind:    domain.SourceKindHTTP,
		RawData: data,
	}, nil
}
