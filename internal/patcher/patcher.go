// Package patcher post-processes the code generator output: it pins the base
// configuration constants and restores type bodies the generator emitted empty.
package patcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"github.com/spf13/afero"

	"github.com/i2y/pispi/internal/domain"
)

const (
	DefaultBaseURL   = "https://sandbox.pi-spi.bceao.int/api"
	DefaultVersion   = "1.0.0"
	DefaultExtension = ".ts"
)

var (
	baseAssignment    = regexp.MustCompile(`\bBASE:\s*'[^']*'`)
	versionAssignment = regexp.MustCompile(`\bVERSION:\s*'[^']*'`)
	emptyRemiseField  = regexp.MustCompile(`(\s*)\bremise\??:\s*;`)
)

const emptyRemiseLiteral = "remise: ;"

// Targets locates the generator output to patch.
type Targets struct {
	// ConfigFile holds the BASE and VERSION assignments.
	ConfigFile string
	// ModelsDir holds one generated type file per model.
	ModelsDir string
}

// Options configures a Patcher.
type Options struct {
	BaseURL     string
	Version     string
	Extension   string
	Corrections CorrectionTable
}

// Patcher applies the known generator fixes through an afero filesystem.
type Patcher struct {
	fs     afero.Fs
	opts   Options
	logger *slog.Logger
}

// New creates a Patcher. Empty options fall back to the package defaults.
func New(fs afero.Fs, opts Options, logger *slog.Logger) *Patcher {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Version == "" {
		opts.Version = DefaultVersion
	}
	if opts.Extension == "" {
		opts.Extension = DefaultExtension
	}
	if !strings.HasPrefix(opts.Extension, ".") {
		opts.Extension = "." + opts.Extension
	}
	if opts.Corrections == nil {
		opts.Corrections = Corrections
	}
	return &Patcher{
		fs:     fs,
		opts:   opts,
		logger: logger.With("component", "patcher"),
	}
}

// Patch rewrites the base configuration and repairs the generated types. Missing
// files and directories are skipped with a warning; only context cancellation is
// returned as an error.
func (p *Patcher) Patch(ctx context.Context, targets Targets) (domain.PatchReport, error) {
	var report domain.PatchReport

	rewrite, err := p.RewriteBaseConfig(targets.ConfigFile)
	if err != nil {
		p.logger.Error(domain.CategoryError.Message("Base configuration rewrite failed"),
			domain.CategoryError.Attr(), slog.String("path", targets.ConfigFile), slog.Any("error", err))
		rewrite.Skipped = true
	}
	report.Config = rewrite

	types, err := p.RepairTypes(ctx, targets.ModelsDir)
	if err != nil {
		return report, err
	}
	report.TypesSkipped = types.TypesSkipped
	report.Files = types.Files
	report.TotalFixes = types.TotalFixes
	report.Unmatched = types.Unmatched
	return report, nil
}

// RewriteBaseConfig replaces the first BASE and VERSION assignments of the file at
// path with the configured targets. The file is only written when it changed.
func (p *Patcher) RewriteBaseConfig(path string) (domain.ConfigRewrite, error) {
	result := domain.ConfigRewrite{Path: path}
	log := p.logger.With(slog.String("path", path))

	info, err := p.fs.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Warn(domain.CategorySkipped.Message("Base configuration file not found, skipped"), domain.CategorySkipped.Attr())
			result.Skipped = true
			return result, nil
		}
		return result, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	data, err := afero.ReadFile(p.fs, path)
	if err != nil {
		return result, fmt.Errorf("failed to read %s: %w", path, err)
	}

	content := string(data)
	content, result.BaseReplaced = replaceFirst(baseAssignment, content, fmt.Sprintf("BASE: '%s'", p.opts.BaseURL))
	content, result.VersionReplaced = replaceFirst(versionAssignment, content, fmt.Sprintf("VERSION: '%s'", p.opts.Version))

	if content == string(data) {
		log.Info(domain.CategoryInfo.Message("Base configuration already up to date"), domain.CategoryInfo.Attr())
		return result, nil
	}
	if err := afero.WriteFile(p.fs, path, []byte(content), info.Mode().Perm()); err != nil {
		return result, fmt.Errorf("failed to write %s: %w", path, err)
	}

	log.Info(domain.CategoryFixed.Message("Base configuration updated"), domain.CategoryFixed.Attr(),
		slog.String("base", p.opts.BaseURL), slog.String("version", p.opts.Version))
	return result, nil
}

// RepairTypes scans dir for generated type files and applies the correction table.
func (p *Patcher) RepairTypes(ctx context.Context, dir string) (domain.PatchReport, error) {
	var report domain.PatchReport
	log := p.logger.With(slog.String("dir", dir))

	entries, err := afero.ReadDir(p.fs, dir)
	if err != nil {
		log.Warn(domain.CategorySkipped.Message("Generated models directory unavailable, type repair skipped"),
			domain.CategorySkipped.Attr(), slog.Any("error", err))
		report.TypesSkipped = true
		return report, nil
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if entry.IsDir() || filepath.Ext(entry.Name()) != p.opts.Extension {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		fixes, unmatched, err := p.repairFile(path, entry.Mode().Perm())
		if err != nil {
			log.Error(domain.CategoryError.Message("Failed to repair generated file"),
				domain.CategoryError.Attr(), slog.String("file", path), slog.Any("error", err))
			continue
		}
		report.Unmatched = append(report.Unmatched, unmatched...)
		if fixes > 0 {
			report.Files = append(report.Files, domain.FilePatch{Path: path, Fixes: fixes})
			report.TotalFixes += fixes
		}
	}

	log.Info(domain.CategoryInfo.Message("Type repair finished"), domain.CategoryInfo.Attr(),
		slog.Int("total_fixes", report.TotalFixes), slog.Int("files", len(report.Files)))
	return report, nil
}

func (p *Patcher) repairFile(path string, perm os.FileMode) (int, []string, error) {
	data, err := afero.ReadFile(p.fs, path)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	out, fixes, unmatched := RepairSource(string(data), p.opts.Corrections)
	for _, name := range unmatched {
		p.logger.Warn(domain.CategorySkipped.Message("Empty type has no correction, left as-is"),
			domain.CategorySkipped.Attr(), slog.String("file", path), slog.String("type", name))
	}
	if fixes == 0 {
		return 0, unmatched, nil
	}

	if err := afero.WriteFile(p.fs, path, []byte(out), perm); err != nil {
		return 0, unmatched, fmt.Errorf("failed to write %s: %w", path, err)
	}
	p.logger.Info(domain.CategoryFixed.Message("Repaired generated file"), domain.CategoryFixed.Attr(),
		slog.String("file", path), slog.Int("fixes", fixes))
	return fixes, unmatched, nil
}

// RepairSource applies the three repair rules to a generated file's content:
//
//  1. every empty "export type Name = ;" whose Name is in table gets its body
//     (one fix per declaration);
//  2. every "remise: ;" or "remise?: ;" field, whatever precedes it, becomes
//     "remise?: <body>;" (one fix per file);
//  3. a literal "remise: ;" present before rule 2 ran counts one more fix per
//     file, independently of rule 2; any occurrence rule 2 left behind becomes
//     "remise: <body>;".
//
// It returns the new content, the fix count and the names of empty declarations
// that have no table entry.
func RepairSource(src string, table CorrectionTable) (string, int, []string) {
	fixes := 0
	var unmatched []string

	var b strings.Builder
	last := 0
	for _, decl := range ParseDeclarations(src) {
		if !decl.Empty() {
			continue
		}
		body, ok := table[decl.Name]
		if !ok {
			unmatched = append(unmatched, decl.Name)
			continue
		}
		b.WriteString(src[last:decl.Start])
		fmt.Fprintf(&b, "export type %s = %s;", decl.Name, body)
		last = decl.End
		fixes++
	}
	b.WriteString(src[last:])
	out := b.String()

	if remise, ok := table[RemiseKey]; ok {
		literal := strings.Contains(out, emptyRemiseLiteral)
		if emptyRemiseField.MatchString(out) {
			out = emptyRemiseField.ReplaceAllStringFunc(out, func(field string) string {
				ws := field[:len(field)-len(strings.TrimLeftFunc(field, unicode.IsSpace))]
				return ws + "remise?: " + remise + ";"
			})
			fixes++
		}
		if literal {
			out = strings.ReplaceAll(out, emptyRemiseLiteral, "remise: "+remise+";")
			fixes++
		}
	}

	return out, fixes, unmatched
}

func replaceFirst(re *regexp.Regexp, s, repl string) (string, bool) {
	loc := re.FindStringIndex(s)
	if loc == nil {
		return s, false
	}
	return s[:loc[0]] + repl + s[loc[1]:], true
}
