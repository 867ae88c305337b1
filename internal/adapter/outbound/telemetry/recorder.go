// Package telemetry records normalizer and patcher fix counters as
// OpenTelemetry metrics.
package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/i2y/pispi/internal/domain"
)

// MeterName is the instrumentation scope used for every pispi instrument.
const MeterName = "github.com/i2y/pispi"

// Recorder implements usecase.FixRecorder on top of OpenTelemetry counters.
type Recorder struct {
	normalizeFixes metric.Int64Counter
	patchFixes     metric.Int64Counter
	patchedFiles   metric.Int64Counter
	unmatched      metric.Int64Counter
}

// NewRecorder creates the counters on meter.
func NewRecorder(meter metric.Meter) (*Recorder, error) {
	normalizeFixes, err := meter.Int64Counter(
		"pispi.normalize.fixes",
		metric.WithDescription("Fixes applied to API description documents, by kind"),
		metric.WithUnit("{fix}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create normalize counter: %w", err)
	}
	patchFixes, err := meter.Int64Counter(
		"pispi.patch.fixes",
		metric.WithDescription("Repairs applied to generated type files"),
		metric.WithUnit("{fix}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create patch counter: %w", err)
	}
	patchedFiles, err := meter.Int64Counter(
		"pispi.patch.files",
		metric.WithDescription("Generated files rewritten by the patcher"),
		metric.WithUnit("{file}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create patched files counter: %w", err)
	}
	unmatched, err := meter.Int64Counter(
		"pispi.patch.unmatched",
		metric.WithDescription("Empty type declarations without a known correction"),
		metric.WithUnit("{declaration}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create unmatched counter: %w", err)
	}
	return &Recorder{
		normalizeFixes: normalizeFixes,
		patchFixes:     patchFixes,
		patchedFiles:   patchedFiles,
		unmatched:      unmatched,
	}, nil
}

// RecordNormalize adds the report counters, one data point per fix kind.
func (r *Recorder) RecordNormalize(ctx context.Context, report domain.NormalizeReport) {
	add := func(kind string, n int) {
		if n == 0 {
			return
		}
		r.normalizeFixes.Add(ctx, int64(n), metric.WithAttributes(attribute.String("kind", kind)))
	}
	if report.TagsCreated {
		add("tags_created", 1)
	}
	add("fixed_paths", report.FixedPaths)
	add("removed_null_operations", report.RemovedNullOperations)
	add("skipped_operations", report.SkippedOperations)
	add("generated_operation_ids", report.GeneratedOperationIDs)
}

// RecordPatch adds the patcher totals.
func (r *Recorder) RecordPatch(ctx context.Context, report domain.PatchReport) {
	if report.TotalFixes > 0 {
		r.patchFixes.Add(ctx, int64(report.TotalFixes))
	}
	if len(report.Files) > 0 {
		r.patchedFiles.Add(ctx, int64(len(report.Files)))
	}
	if len(report.Unmatched) > 0 {
		r.unmatched.Add(ctx, int64(len(report.Unmatched)))
	}
}
