package rot

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/cory-johannsen/rotimport/internal/importer"
)

// sequentialIDs returns a deterministic IDFunc.
func sequentialIDs() IDFunc {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newTestParser(opts ...Option) *Parser {
	return NewParser(append([]Option{WithIDFunc(sequentialIDs())}, opts...)...)
}

func parseText(t *testing.T, p *Parser, name string, lines ...string) *FileResult {
	t.Helper()
	res, err := p.Parse(name, strings.NewReader(strings.Join(lines, "\n")+"\n"))
	require.NoError(t, err)
	return res
}

func diagsAt(diags []importer.Diagnostic, level zapcore.Level) []importer.Diagnostic {
	var out []importer.Diagnostic
	for _, d := range diags {
		if d.Level == level {
			out = append(out, d)
		}
	}
	return out
}

func newFileContext(vnum string, section Section) *fileContext {
	return &fileContext{
		path:    vnum + ".are",
		vnum:    vnum,
		section: section,
		newID:   sequentialIDs(),
		store:   NewStore(),
	}
}

func itoa(n int) string { return fmt.Sprintf("%d", n) }
