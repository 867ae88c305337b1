package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/afero"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/i2y/pispi/internal/domain"
	"github.com/i2y/pispi/internal/normalizer"
)

const tracerName = "github.com/i2y/pispi/internal/usecase"

// NormalizeRequest describes one normalizer run.
type NormalizeRequest struct {
	Source SpecSourceConfig
	// OutputPath is where the normalized document is written. When empty, a local
	// source is overwritten in place.
	OutputPath string
	// Validate runs the advisory OpenAPI validation after writing.
	Validate bool
}

// NormalizeSpecUseCase fetches an API description document, repairs it and writes it back.
type NormalizeSpecUseCase struct {
	fetcher    SpecFetcher
	validator  SpecValidator
	normalizer *normalizer.Normalizer
	fs         afero.Fs
	recorder   FixRecorder
	tracer     trace.Tracer
	logger     *slog.Logger
}

// NewNormalizeSpecUseCase creates a new NormalizeSpecUseCase. validator and recorder may be nil.
func NewNormalizeSpecUseCase(
	fetcher SpecFetcher,
	validator SpecValidator,
	norm *normalizer.Normalizer,
	fs afero.Fs,
	recorder FixRecorder,
	logger *slog.Logger,
) *NormalizeSpecUseCase {
	if recorder == nil {
		recorder = noopRecorder{}
	}
	return &NormalizeSpecUseCase{
		fetcher:    fetcher,
		validator:  validator,
		normalizer: norm,
		fs:         fs,
		recorder:   recorder,
		tracer:     otel.Tracer(tracerName),
		logger:     logger.With("usecase", "NormalizeSpec"),
	}
}

// Execute runs fetch, validation, normalization and write. A structural validation
// failure is returned wrapped (errors.Is(err, normalizer.ErrStructuralValidation))
// and nothing is written.
func (uc *NormalizeSpecUseCase) Execute(ctx context.Context, req NormalizeRequest) (domain.NormalizeReport, error) {
	ctx, span := uc.tracer.Start(ctx, "NormalizeSpec", trace.WithAttributes(attribute.String("spec.source", req.Source.URL)))
	defer span.End()

	report, err := uc.execute(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return report, err
	}
	span.SetAttributes(
		attribute.Int("normalize.fixed_paths", report.FixedPaths),
		attribute.Int("normalize.removed_null_operations", report.RemovedNullOperations),
	)
	return report, nil
}

func (uc *NormalizeSpecUseCase) execute(ctx context.Context, req NormalizeRequest) (domain.NormalizeReport, error) {
	var report domain.NormalizeReport
	log := uc.logger.With(slog.String("source", req.Source.URL))

	if req.Source.URL == "" {
		return report, ErrEmptySource
	}

	// 1. Fetch
	schema, err := uc.fetcher.Fetch(ctx, req.Source)
	if err != nil {
		log.Error("Failed to fetch spec", slog.Any("error", err))
		return report, fmt.Errorf("failed to fetch spec from %s: %w", req.Source.URL, err)
	}

	output := req.OutputPath
	if output == "" {
		if !schema.IsLocal() {
			return report, ErrNoOutput
		}
		output = schema.Source
	}
	log = log.With(slog.String("output", output))

	// 2. Parse, validate and repair
	doc, err := normalizer.ParseDocument(schema.RawData)
	if err != nil {
		log.Error("Failed to parse spec", slog.Any("error", err))
		return report, fmt.Errorf("failed to parse spec %s: %w", req.Source.URL, err)
	}
	report, err = uc.normalizer.Normalize(doc)
	if err != nil {
		return report, fmt.Errorf("spec %s rejected: %w", req.Source.URL, err)
	}

	// 3. Write
	data, err := doc.MarshalIndent()
	if err != nil {
		return report, fmt.Errorf("failed to encode normalized spec: %w", err)
	}
	perm := os.FileMode(0o644)
	if info, statErr := uc.fs.Stat(output); statErr == nil {
		perm = info.Mode().Perm()
	}
	if err := afero.WriteFile(uc.fs, output, data, perm); err != nil {
		log.Error("Failed to write normalized spec", slog.Any("error", err))
		return report, fmt.Errorf("failed to write normalized spec to %s: %w", output, err)
	}
	uc.recorder.RecordNormalize(ctx, report)

	// 4. Advisory validation
	if req.Validate && uc.validator != nil {
		if err := uc.validator.Validate(ctx, data); err != nil {
			log.Warn(domain.CategorySkipped.Message("Normalized spec does not pass OpenAPI validation"),
				domain.CategorySkipped.Attr(), slog.Any("validation_error", err))
		} else {
			log.Info(domain.CategoryInfo.Message("Normalized spec passes OpenAPI validation"), domain.CategoryInfo.Attr())
		}
	}

	log.Info(domain.CategoryInfo.Message("Spec normalized"), domain.CategoryInfo.Attr(),
		slog.Int("fixed_paths", report.FixedPaths),
		slog.Int("removed_null_operations", report.RemovedNullOperations),
		slog.Int("generated_operation_ids", report.GeneratedOperationIDs),
		slog.Int("warnings", report.Warnings()))
	return report, nil
}
