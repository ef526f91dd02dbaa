package importer

import (
	"path/filepath"
	"strings"
)

// AreaVnumFromPath derives an area vnum from its source file path: the base
// name up to the first '.'.
//
// Postcondition: result contains no path separator and no '.'.
// AreaVnumFromPath(AreaVnumFromPath(p)) == AreaVnumFromPath(p).
func AreaVnumFromPath(path string) string {
	base := filepath.Base(path)
	if i := strings.IndexByte(base, '.'); i >= 0 {
		base = base[:i]
	}
	return base
}
