package importer_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/rotimport/internal/importer"
)

func TestAreaVnumFromPath_KnownValues(t *testing.T) {
	cases := []struct{ in, want string }{
		{"/data/rot/area/westbridge.are", "westbridge"},
		{"midgaard.are", "midgaard"},
		{"area/haven.old.are", "haven"},
		{"noext", "noext"},
		{filepath.Join("a", "b", "c.are"), "c"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, importer.AreaVnumFromPath(c.in), "input: %q", c.in)
	}
}

func TestAreaVnumFromPath_Idempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		path := rapid.StringMatching(`(/[a-z0-9_.]{1,8}){1,4}`).Draw(t, "path")
		v := importer.AreaVnumFromPath(path)
		assert.Equal(t, v, importer.AreaVnumFromPath(v))
	})
}

func TestAreaVnumFromPath_NoSeparatorOrDot(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		path := rapid.StringMatching(`([a-z.]{0,6}/){0,3}[a-z.]{1,10}`).Draw(t, "path")
		v := importer.AreaVnumFromPath(path)
		assert.False(t, strings.ContainsAny(v, "/."), "vnum %q from %q", v, path)
	})
}

func TestDirectionForIndex(t *testing.T) {
	want := []importer.Direction{importer.North, importer.East, importer.South, importer.West, importer.Up, importer.Down}
	for i, d := range want {
		got, ok := importer.DirectionForIndex(i)
		assert.True(t, ok)
		assert.Equal(t, d, got)
		assert.True(t, got.IsKnown())
	}
	_, ok := importer.DirectionForIndex(6)
	assert.False(t, ok)
	_, ok = importer.DirectionForIndex(-1)
	assert.False(t, ok)
	assert.False(t, importer.Direction("northeast").IsKnown())
}
