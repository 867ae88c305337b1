package openapi

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/getkin/kin-openapi/openapi3"
)

// Validator implements the usecase.SpecValidator interface with kin-openapi.
type Validator struct {
	logger *slog.Logger
}

// NewValidator creates a new Validator.
func NewValidator(logger *slog.Logger) *Validator {
	return &Validator{
		logger: logger.With("component", "openapi_validator"),
	}
}

// Validate loads data as an OpenAPI 3 document and validates it. External
// references are not followed.
func (v *Validator) Validate(ctx context.Context, data []byte) error {
	loader := &openapi3.Loader{Context: ctx, IsExternalRefsAllowed: false}
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return fmt.Errorf("failed to load OpenAPI document: %w", err)
	}

	if err := doc.Validate(ctx); err != nil {
		return fmt.Errorf("OpenAPI document is invalid: %w", err)
	}

	operations := 0
	if doc.Paths != nil {
		for _, item := range doc.Paths.Map() {
			operations += len(item.Operations())
		}
	}
	v.logger.Debug("OpenAPI document valid",
		slog.String("title", doc.Info.Title),
		slog.Int("paths", doc.Paths.Len()),
		slog.Int("operations", operations))
	return nil
}
