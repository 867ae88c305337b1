// Package normalizer repairs API description documents so the downstream code
// generator can consume them: missing tags, missing operationIds and null
// operations are fixed in place, in document order.
package normalizer

import (
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/i2y/pispi/internal/domain"
)

// DefaultTag is assigned to operations that carry no tags.
const DefaultTag = "Default"

var httpMethods = map[string]struct{}{
	"get":     {},
	"post":    {},
	"put":     {},
	"delete":  {},
	"patch":   {},
	"options": {},
	"head":    {},
}

// Normalizer applies the structural repairs to a Document.
type Normalizer struct {
	logger *slog.Logger
}

// New creates a Normalizer.
func New(logger *slog.Logger) *Normalizer {
	return &Normalizer{
		logger: logger.With("component", "normalizer"),
	}
}

// Normalize validates doc and repairs it in place. A StructuralValidationError is
// returned before any mutation when a required section is missing or malformed.
func (n *Normalizer) Normalize(doc *Document) (domain.NormalizeReport, error) {
	var report domain.NormalizeReport

	if err := doc.Validate(); err != nil {
		n.logger.Error(domain.CategoryError.Message("Invalid API description document"),
			domain.CategoryError.Attr(), slog.Any("error", err))
		return report, err
	}

	if _, tags := lookup(doc.root, "tags"); tags == nil || tags.Kind != yaml.SequenceNode {
		set(doc.root, "tags", stringSeq())
		report.TagsCreated = true
		n.logger.Warn(domain.CategoryFixed.Message("Top-level tags missing or not an array, replaced with []"),
			domain.CategoryFixed.Attr())
	}

	_, paths := lookup(doc.root, "paths")
	for i := 0; i+1 < len(paths.Content); i += 2 {
		path := paths.Content[i].Value
		item := resolve(paths.Content[i+1])
		if item == nil || item.Kind != yaml.MappingNode {
			n.logger.Warn(domain.CategorySkipped.Message("Path item is not an object, skipped"),
				domain.CategorySkipped.Attr(), slog.String("path", path))
			continue
		}
		n.normalizePathItem(path, item, &report)
	}

	n.logger.Info(domain.CategoryInfo.Message("Normalization finished"),
		domain.CategoryInfo.Attr(),
		slog.Int("fixed_paths", report.FixedPaths),
		slog.Int("removed_null_operations", report.RemovedNullOperations),
		slog.Int("skipped_operations", report.SkippedOperations),
		slog.Int("generated_operation_ids", report.GeneratedOperationIDs),
		slog.Int("warnings", report.Warnings()))
	return report, nil
}

func (n *Normalizer) normalizePathItem(path string, item *yaml.Node, report *domain.NormalizeReport) {
	for i := 0; i+1 < len(item.Content); {
		method := strings.ToLower(item.Content[i].Value)
		if _, ok := httpMethods[method]; !ok {
			i += 2
			continue
		}
		log := n.logger.With(slog.String("method", method), slog.String("path", path))

		op := resolve(item.Content[i+1])
		switch {
		case op == nil || isNull(op):
			item.Content = append(item.Content[:i], item.Content[i+2:]...)
			report.RemovedNullOperations++
			log.Info(domain.CategoryRemoved.Message("Removed null operation"), domain.CategoryRemoved.Attr())
			continue
		case op.Kind != yaml.MappingNode:
			report.SkippedOperations++
			log.Warn(domain.CategorySkipped.Message("Operation is not an object, skipped"), domain.CategorySkipped.Attr())
		default:
			n.normalizeOperation(log, method, path, op, report)
		}
		i += 2
	}
}

func (n *Normalizer) normalizeOperation(log *slog.Logger, method, path string, op *yaml.Node, report *domain.NormalizeReport) {
	if _, tags := lookup(op, "tags"); tags == nil || tags.Kind != yaml.SequenceNode || len(tags.Content) == 0 {
		set(op, "tags", stringSeq(DefaultTag))
		report.FixedPaths++
		log.Info(domain.CategoryFixed.Message("Added default tag"), domain.CategoryFixed.Attr(), slog.String("tag", DefaultTag))
	}

	if _, id := lookup(op, "operationId"); isFalsy(id) {
		generated := SynthesizeOperationID(method, path)
		set(op, "operationId", stringNode(generated))
		report.GeneratedOperationIDs++
		log.Info(domain.CategoryFixed.Message("Generated operationId"), domain.CategoryFixed.Attr(), slog.String("operation_id", generated))
	}
}

// SynthesizeOperationID builds an operationId from the lower-cased method followed by
// every non-parameter path segment, capitalized:
//
//	SynthesizeOperationID("get", "/comptes/{numero}/operations") == "getComptesOperations"
func SynthesizeOperationID(method, path string) string {
	var b strings.Builder
	b.WriteString(strings.ToLower(method))
	for _, seg := range strings.Split(path, "/") {
		if seg == "" || strings.HasPrefix(seg, "{") {
			continue
		}
		r, size := utf8.DecodeRuneInString(seg)
		b.WriteRune(unicode.ToUpper(r))
		b.WriteString(seg[size:])
	}
	return b.String()
}
