package rot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cory-johannsen/rotimport/internal/importer"
)

var _ importer.Source = (*Source)(nil)

// DefaultPattern matches area files inside the source directory.
const DefaultPattern = "*.are"

// SourceOption configures a Source.
type SourceOption func(*Source)

// WithPattern sets the glob used to find area files.
func WithPattern(pattern string) SourceOption {
	return func(s *Source) {
		if pattern != "" {
			s.pattern = pattern
		}
	}
}

// WithContinueOnError skips files that fail to parse instead of aborting the run.
func WithContinueOnError(v bool) SourceOption {
	return func(s *Source) { s.continueOnError = v }
}

// WithSourceLogger sets the logger for per-file progress.
func WithSourceLogger(logger *zap.Logger) SourceOption {
	return func(s *Source) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Source implements importer.Source for a flat directory of ROT area files:
//
//	sourceDir/
//	  westbridge.are
//	  midgaard.are
type Source struct {
	parser          *Parser
	pattern         string
	continueOnError bool
	logger          *zap.Logger
}

// NewSource constructs a Source backed by parser.
//
// Precondition: parser must be non-nil.
func NewSource(parser *Parser, opts ...SourceOption) *Source {
	s := &Source{parser: parser, pattern: DefaultPattern, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load parses every area file under sourceDir in lexical order. Each file is
// parsed into its own Store and merged only when it parses cleanly, so a
// failing file never contributes partial records.
//
// Precondition: sourceDir must be a readable directory.
// Postcondition: returns a Batch of finalized areas and mobiles, or a
// non-nil error. Without WithContinueOnError the first failing file aborts
// the load and its *ParseError is returned.
func (s *Source) Load(ctx context.Context, sourceDir string) (*importer.Batch, error) {
	info, err := os.Stat(sourceDir)
	if err != nil {
		return nil, fmt.Errorf("source directory not accessible: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source %s is not a directory", sourceDir)
	}

	paths, err := filepath.Glob(filepath.Join(sourceDir, s.pattern))
	if err != nil {
		return nil, fmt.Errorf("matching %q in %s: %w", s.pattern, sourceDir, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w in %s (pattern %q)", ErrNoAreaFiles, sourceDir, s.pattern)
	}
	sort.Strings(paths)

	store := NewStore()
	batch := &importer.Batch{}
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		s.logger.Debug("processing area file", zap.String("file", path))

		res, err := s.parser.ParseFile(path)
		if err != nil {
			var pe *ParseError
			if !s.continueOnError || !errors.As(err, &pe) {
				return nil, err
			}
			batch.Failed = append(batch.Failed, path)
			batch.Diagnostics = append(batch.Diagnostics, importer.Diagnostic{
				Level:   zapcore.ErrorLevel,
				File:    path,
				Section: pe.Section.String(),
				Index:   pe.Index,
				Line:    pe.Line,
				Message: fmt.Sprintf("file skipped: %v", pe.Err),
			})
			continue
		}
		batch.Diagnostics = append(batch.Diagnostics, res.Diagnostics...)
		for _, key := range store.Merge(res.Store) {
			batch.Diagnostics = append(batch.Diagnostics, importer.Diagnostic{
				Level:   zapcore.WarnLevel,
				File:    path,
				Section: SectionNone.String(),
				Index:   -1,
				Message: fmt.Sprintf("%s also defined in an earlier file; later record wins", key),
			})
		}
	}

	areas, orphans := store.Areas()
	for _, r := range orphans {
		batch.Diagnostics = append(batch.Diagnostics, importer.Diagnostic{
			Level:   zapcore.WarnLevel,
			File:    r.AreaVnum,
			Section: SectionRooms.String(),
			Index:   -1,
			Message: fmt.Sprintf("room %s has no #AREADATA for area %q; not emitted", r.Vnum, r.AreaVnum),
		})
	}
	batch.Areas = areas
	batch.Mobiles = store.Mobiles()
	return batch, nil
}
