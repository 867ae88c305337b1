package usecase

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/i2y/pispi/internal/domain"
	"github.com/i2y/pispi/internal/patcher"
)

// PatchOutputUseCase repairs the code generator output.
type PatchOutputUseCase struct {
	patcher  *patcher.Patcher
	recorder FixRecorder
	tracer   trace.Tracer
	logger   *slog.Logger
}

// NewPatchOutputUseCase creates a new PatchOutputUseCase. recorder may be nil.
func NewPatchOutputUseCase(p *patcher.Patcher, recorder FixRecorder, logger *slog.Logger) *PatchOutputUseCase {
	if recorder == nil {
		recorder = noopRecorder{}
	}
	return &PatchOutputUseCase{
		patcher:  p,
		recorder: recorder,
		tracer:   otel.Tracer(tracerName),
		logger:   logger.With("usecase", "PatchOutput"),
	}
}

// Execute patches targets. Missing files are skipped by the patcher, so the only
// error is context cancellation.
func (uc *PatchOutputUseCase) Execute(ctx context.Context, targets patcher.Targets) (domain.PatchReport, error) {
	ctx, span := uc.tracer.Start(ctx, "PatchOutput", trace.WithAttributes(
		attribute.String("patch.config_file", targets.ConfigFile),
		attribute.String("patch.models_dir", targets.ModelsDir),
	))
	defer span.End()

	log := uc.logger.With(slog.String("models_dir", targets.ModelsDir), slog.String("config_file", targets.ConfigFile))
	log.Info("Patching generated output")

	report, err := uc.patcher.Patch(ctx, targets)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Error("Patching interrupted", slog.Any("error", err))
		return report, err
	}
	uc.recorder.RecordPatch(ctx, report)
	span.SetAttributes(attribute.Int("patch.total_fixes", report.TotalFixes))

	if report.TotalFixes == 0 {
		log.Info(domain.CategoryInfo.Message("No generated type needed repair"), domain.CategoryInfo.Attr())
	}
	log.Info(domain.CategoryInfo.Message("Generated output patched"), domain.CategoryInfo.Attr(),
		slog.Bool("config_skipped", report.Config.Skipped),
		slog.Bool("types_skipped", report.TypesSkipped),
		slog.Int("total_fixes", report.TotalFixes),
		slog.Int("unmatched", len(report.Unmatched)))
	return report, nil
}
