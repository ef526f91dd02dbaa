package rot

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cory-johannsen/rotimport/internal/importer"
	"github.com/cory-johannsen/rotimport/internal/observability"
)

// maxLineBytes bounds a single physical line.
const maxLineBytes = 1 << 20

// IDFunc generates an opaque record identity.
type IDFunc func() string

// sectionParser consumes one buffered block for a section.
type sectionParser func(fc *fileContext, lines []string) error

// Option configures a Parser.
type Option func(*Parser)

// WithLogger sets the logger used for failure dumps.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Parser) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithIDFunc replaces the identity generator (uuid.NewString by default).
func WithIDFunc(f IDFunc) Option {
	return func(p *Parser) {
		if f != nil {
			p.newID = f
		}
	}
}

// WithDenylist sets the symbols that look like headers but are content.
func WithDenylist(symbols []string) Option {
	return func(p *Parser) {
		p.classifier = NewClassifier(symbols)
	}
}

// Parser turns area files into records. A Parser holds no per-file state and
// may be reused for any number of files.
type Parser struct {
	classifier *Classifier
	logger     *zap.Logger
	newID      IDFunc
	parsers    map[Section]sectionParser
}

// NewParser constructs a Parser.
//
// Postcondition: returns a non-nil Parser with every section registered.
func NewParser(opts ...Option) *Parser {
	p := &Parser{
		classifier: NewClassifier(nil),
		logger:     zap.NewNop(),
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.parsers = map[Section]sectionParser{
		SectionArea:     parseArea,
		SectionMobiles:  parseMobile,
		SectionRooms:    parseRoom,
		SectionObjects:  skipSection,
		SectionSpecials: skipSection,
		SectionResets:   skipSection,
		SectionShops:    skipSection,
		SectionMobProgs: skipSection,
	}
	return p
}

// FileResult is the outcome of parsing one file.
type FileResult struct {
	Store       *Store
	Diagnostics []importer.Diagnostic
}

// ParseFile reads and parses the area file at path.
//
// Postcondition: see Parse.
func (p *Parser) ParseFile(path string) (*FileResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening area file %s: %w", path, err)
	}
	defer f.Close()
	return p.Parse(path, f)
}

// Parse reads an area file from rd. name is the file's path; the area vnum is
// derived from its base name.
//
// Postcondition: on success returns a FileResult whose Store holds every
// record of the file. On a structural failure returns a *ParseError and no
// records; the failing section's buffer has already been logged.
func (p *Parser) Parse(name string, rd io.Reader) (*FileResult, error) {
	fc := &fileContext{
		path:  name,
		vnum:  importer.AreaVnumFromPath(name),
		newID: p.newID,
		store: NewStore(),
	}

	scanner := bufio.NewScanner(rd)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	section := SectionNone
	var content []string

	flush := func() error {
		defer func() { content = nil }()
		if len(content) == 0 {
			return nil
		}
		fc.section = section
		if section == SectionNone {
			for i, line := range content {
				if strings.TrimSpace(line) != "" {
					fc.report(zapcore.WarnLevel, i, line, "content outside any section")
				}
			}
			return nil
		}
		if err := p.parsers[section](fc, content); err != nil {
			return p.fail(fc, content, err)
		}
		return nil
	}

scan:
	for scanner.Scan() {
		line := scanner.Text()
		c := p.classifier.Classify(line)
		switch c.Kind {
		case KindIgnored, KindEndMarker:
			continue
		case KindEndOfFile:
			break scan
		case KindSectionHeader, KindRecordHeader:
			if err := flush(); err != nil {
				return nil, err
			}
			if c.Kind == KindSectionHeader {
				section = c.Section
			}
		}
		if c.Buffered() {
			content = append(content, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading area file %s: %w", name, err)
	}
	if err := flush(); err != nil {
		return nil, err
	}

	return &FileResult{Store: fc.store, Diagnostics: fc.diags}, nil
}

// fail widens a sub-parser error into a ParseError and dumps the buffer.
func (p *Parser) fail(fc *fileContext, lines []string, err error) error {
	pe := &ParseError{
		File:    fc.path,
		Section: fc.section,
		Index:   -1,
		Lines:   append([]string(nil), lines...),
		Err:     err,
	}
	var le *lineError
	if errors.As(err, &le) {
		pe.Index = le.index
		pe.State = le.state
		pe.Err = le.err
		if le.index >= 0 && le.index < len(lines) {
			pe.Line = lines[le.index]
		}
	}

	p.logger.Error("area parse failure",
		zap.String("file", pe.File),
		zap.Stringer("section", pe.Section),
		zap.String("state", pe.State),
		zap.Int("index", pe.Index),
		zap.String("line", pe.Line),
		observability.NumberedLines("content", pe.Lines),
		zap.Error(pe.Err),
	)
	return pe
}

// skipSection stands in for sections that are recognised but not yet modelled.
func skipSection(*fileContext, []string) error { return nil }

// fileContext is the state shared by the sub-parsers of one file.
type fileContext struct {
	path    string
	vnum    string
	section Section
	newID   IDFunc
	store   *Store
	diags   []importer.Diagnostic
}

func (fc *fileContext) report(level zapcore.Level, index int, line, msg string) {
	fc.diags = append(fc.diags, importer.Diagnostic{
		Level:   level,
		File:    fc.path,
		Section: fc.section.String(),
		Index:   index,
		Line:    line,
		Message: msg,
	})
}

// splitTerminator strips one trailing '~' and reports whether it was present.
func splitTerminator(line string) (text string, terminated bool) {
	if strings.HasSuffix(line, "~") {
		return line[:len(line)-1], true
	}
	return line, false
}

// trimTerminator strips one trailing '~' and surrounding whitespace.
func trimTerminator(s string) string {
	text, _ := splitTerminator(strings.TrimRight(s, " \t"))
	return strings.TrimSpace(text)
}
