package domain

import "log/slog"

// Category classifies a progress line emitted by the normalizer or the patcher.
type Category string

const (
	CategoryFixed   Category = "fixed"
	CategoryRemoved Category = "removed"
	CategorySkipped Category = "skipped"
	CategoryError   Category = "error"
	CategoryInfo    Category = "info"
)

// Glyph returns the status glyph prefixed to human-readable log lines.
func (c Category) Glyph() string {
	switch c {
	case CategoryFixed:
		return "✔"
	case CategoryRemoved:
		return "✖"
	case CategorySkipped:
		return "⚠"
	case CategoryError:
		return "✘"
	default:
		return "ℹ"
	}
}

// Message prefixes msg with the category glyph.
func (c Category) Message(msg string) string {
	return c.Glyph() + " " + msg
}

// Attr returns the structured attribute carrying the category.
func (c Category) Attr() slog.Attr {
	return slog.String("category", string(c))
}

// NormalizeReport summarizes one normalizer pass over an API description document.
type NormalizeReport struct {
	// TagsCreated is set when the top-level tags array was missing or malformed.
	TagsCreated bool `json:"tags_created"`
	// FixedPaths counts operations whose tags were replaced with the default tag.
	FixedPaths int `json:"fixed_paths"`
	// RemovedNullOperations counts method keys deleted because they mapped to null.
	RemovedNullOperations int `json:"removed_null_operations"`
	// SkippedOperations counts method keys whose value was not an object.
	SkippedOperations int `json:"skipped_operations"`
	// GeneratedOperationIDs counts operationIds synthesized from method and path.
	GeneratedOperationIDs int `json:"generated_operation_ids"`
}

// Warnings returns the number of non-fatal fixes applied to the document root.
func (r NormalizeReport) Warnings() int {
	if r.TagsCreated {
		return 1
	}
	return 0
}

// Changed reports whether the pass mutated the document.
func (r NormalizeReport) Changed() bool {
	return r.TagsCreated || r.FixedPaths > 0 || r.RemovedNullOperations > 0 || r.GeneratedOperationIDs > 0
}

// ConfigRewrite describes the outcome of the base-configuration rewrite.
type ConfigRewrite struct {
	Path            string `json:"path"`
	Skipped         bool   `json:"skipped"`
	BaseReplaced    bool   `json:"base_replaced"`
	VersionReplaced bool   `json:"version_replaced"`
}

// FilePatch records the fixes applied to a single generated file.
type FilePatch struct {
	Path  string `json:"path"`
	Fixes int    `json:"fixes"`
}

// PatchReport summarizes one patcher run over the generator output.
type PatchReport struct {
	Config ConfigRewrite `json:"config"`
	// TypesSkipped is set when the generated models directory could not be listed.
	TypesSkipped bool        `json:"types_skipped"`
	Files        []FilePatch `json:"files,omitempty"`
	TotalFixes   int         `json:"total_fixes"`
	// Unmatched lists empty type declarations with no entry in the correction table.
	Unmatched []string `json:"unmatched,omitempty"`
}
