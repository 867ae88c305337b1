package usecase

import (
	"context"
	"errors"

	"github.com/i2y/pispi/internal/domain"
)

// Standard errors returned by use cases and adapters.
var (
	ErrEmptySource = errors.New("spec source is empty")
	ErrNoOutput    = errors.New("output path required for remote spec sources")
)

// --- Spec Source Related ---

// SpecSourceConfig represents an API description source with optional request headers.
type SpecSourceConfig struct {
	URL     string
	Headers map[string]string
}

// SpecFetcher loads the raw API description document from a file, an HTTP URL
// or a github:// URL.
type SpecFetcher interface {
	Fetch(ctx context.Context, config SpecSourceConfig) (domain.APISchema, error)
}

// SpecValidator runs an advisory OpenAPI validation over normalized document bytes.
// Implementations return the validation problem; callers treat it as a warning.
type SpecValidator interface {
	Validate(ctx context.Context, data []byte) error
}

// --- Telemetry Related ---

// FixRecorder records fix counters for observability. The OpenTelemetry-backed
// implementation lives in the telemetry adapter.
type FixRecorder interface {
	RecordNormalize(ctx context.Context, report domain.NormalizeReport)
	RecordPatch(ctx context.Context, report domain.PatchReport)
}

type noopRecorder struct{}

func (noopRecorder) RecordNormalize(context.Context, domain.NormalizeReport) {}
func (noopRecorder) RecordPatch(context.Context, domain.PatchReport)         {}
