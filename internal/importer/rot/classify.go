package rot

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Kind is the role a physical line plays in an area file.
type Kind int

const (
	// KindContent is record data appended to the current buffer.
	KindContent Kind = iota
	// KindSectionHeader opens a new section, e.g. "#ROOMS".
	KindSectionHeader
	// KindRecordHeader starts a new record inside the current section, e.g. "#3001".
	KindRecordHeader
	// KindIgnored is a "##" or "#@" line; it is dropped.
	KindIgnored
	// KindEndMarker is "#0", the end of a section's records; it is dropped.
	KindEndMarker
	// KindEndOfFile is "#$"; nothing after it is read.
	KindEndOfFile
)

func (k Kind) String() string {
	switch k {
	case KindContent:
		return "content"
	case KindSectionHeader:
		return "section-header"
	case KindRecordHeader:
		return "record-header"
	case KindIgnored:
		return "ignored"
	case KindEndMarker:
		return "end-marker"
	case KindEndOfFile:
		return "end-of-file"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Classification is the result of classifying one line.
type Classification struct {
	Kind Kind
	// Section is set when Kind is KindSectionHeader.
	Section Section
}

// IsHeader reports whether the line ends the current buffer.
func (c Classification) IsHeader() bool {
	return c.Kind == KindSectionHeader || c.Kind == KindRecordHeader
}

// Buffered reports whether the line itself is appended to the section buffer.
// "#AREADATA" and "#ROOMS" are structural only; every other header is kept so
// that record sub-parsers see their own "#<vnum>" line.
func (c Classification) Buffered() bool {
	switch c.Kind {
	case KindContent, KindRecordHeader:
		return true
	case KindSectionHeader:
		return c.Section != SectionArea && c.Section != SectionRooms
	default:
		return false
	}
}

// Classifier decides what each line of an area file is.
// It is safe for concurrent use once constructed.
type Classifier struct {
	denylist map[string]struct{}
}

// NewClassifier builds a Classifier. Each denylist entry is a "#word" symbol
// that appears at the start of content lines in some legacy areas and must
// not be mistaken for a header. Matching is case-insensitive and the leading
// '#' is optional in the entry.
func NewClassifier(denylist []string) *Classifier {
	c := &Classifier{denylist: make(map[string]struct{}, len(denylist))}
	for _, entry := range denylist {
		entry = strings.ToLower(strings.TrimSpace(entry))
		if entry == "" {
			continue
		}
		if !strings.HasPrefix(entry, "#") {
			entry = "#" + entry
		}
		c.denylist[entry] = struct{}{}
	}
	return c
}

// Denied reports whether line starts with a denylisted symbol.
func (c *Classifier) Denied(line string) bool {
	first, _, _ := strings.Cut(line, " ")
	_, ok := c.denylist[strings.ToLower(first)]
	return ok
}

// Classify returns the role of line, which must already be stripped of its
// line terminator.
func (c *Classifier) Classify(line string) Classification {
	if !strings.HasPrefix(line, "#") || c.Denied(line) {
		return Classification{Kind: KindContent}
	}
	// Descriptions embed a literal hash this way.
	if strings.HasPrefix(line, "##") || strings.HasPrefix(line, "#@") {
		return Classification{Kind: KindIgnored}
	}

	trimmed := strings.TrimRight(line, " \t")
	switch trimmed {
	case "#0":
		return Classification{Kind: KindEndMarker}
	case "#$":
		return Classification{Kind: KindEndOfFile}
	}
	if s, ok := sectionHeaders[trimmed]; ok {
		return Classification{Kind: KindSectionHeader, Section: s}
	}
	return Classification{Kind: KindRecordHeader}
}

type denylistFile struct {
	Symbols []string `yaml:"symbols"`
}

// LoadDenylist reads a YAML denylist file of the form:
//
//	symbols:
//	  - "#sos"
//	  - "#candlekeep"
//
// Precondition: path must point to a readable YAML file.
// Postcondition: returns the listed symbols or a non-nil error.
func LoadDenylist(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading denylist %s: %w", path, err)
	}
	var f denylistFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing denylist %s: %w", path, err)
	}
	return f.Symbols, nil
}

// ResolveDenylist combines inline symbols with those listed in file, when
// file is non-empty. An empty result is logged as a warning: without a
// denylist, content lines such as "#sos" open spurious records.
//
// Postcondition: returns inline followed by the file's symbols, or a non-nil
// error when file cannot be loaded.
func ResolveDenylist(inline []string, file string, logger *zap.Logger) ([]string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	symbols := append([]string(nil), inline...)
	if file != "" {
		extra, err := LoadDenylist(file)
		if err != nil {
			return nil, err
		}
		symbols = append(symbols, extra...)
	}
	if len(symbols) == 0 {
		logger.Warn("header denylist is empty; set import.denylist_file to configs/header_denylist.yaml")
	}
	return symbols, nil
}
