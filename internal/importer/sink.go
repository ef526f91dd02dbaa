package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

var _ Sink = (*FileSink)(nil)

// FileSink writes one JSON document per record under a data root:
//
//	dataRoot/
//	  areas/    <- <area_vnum>.json
//	  mobiles/  <- <mobile_vnum>.json
type FileSink struct {
	root   string
	indent bool
}

// NewFileSink creates the areas/ and mobiles/ directories under root.
//
// Precondition: root must be creatable.
// Postcondition: returns a ready FileSink or a non-nil error.
func NewFileSink(root string, indent bool) (*FileSink, error) {
	for _, dir := range []string{"areas", "mobiles"} {
		p := filepath.Join(root, dir)
		if err := os.MkdirAll(p, 0755); err != nil {
			return nil, fmt.Errorf("creating output directory %s: %w", p, err)
		}
	}
	return &FileSink{root: root, indent: indent}, nil
}

// AreaPath returns the path an area document with the given vnum is written to.
func (s *FileSink) AreaPath(vnum string) string {
	return filepath.Join(s.root, "areas", vnum+".json")
}

// MobilePath returns the path a mobile document with the given vnum is written to.
func (s *FileSink) MobilePath(vnum int) string {
	return filepath.Join(s.root, "mobiles", strconv.Itoa(vnum)+".json")
}

// WriteArea serialises area to <root>/areas/<vnum>.json.
func (s *FileSink) WriteArea(_ context.Context, area *Area) error {
	data, err := MarshalArea(area, s.indent)
	if err != nil {
		return err
	}
	path := s.AreaPath(area.Vnum)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing area %q to %s: %w", area.Vnum, path, err)
	}
	return nil
}

// WriteMobile serialises mobile to <root>/mobiles/<vnum>.json.
func (s *FileSink) WriteMobile(_ context.Context, mobile *Mobile) error {
	data, err := marshal(mobile, s.indent)
	if err != nil {
		return fmt.Errorf("serialising mobile %d: %w", mobile.Vnum, err)
	}
	path := s.MobilePath(mobile.Vnum)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing mobile %d to %s: %w", mobile.Vnum, path, err)
	}
	return nil
}

// Close is a no-op; every write is flushed when it returns.
func (s *FileSink) Close() error { return nil }

// MarshalArea serialises area as a JSON document.
func MarshalArea(area *Area, indent bool) ([]byte, error) {
	data, err := marshal(area, indent)
	if err != nil {
		return nil, fmt.Errorf("serialising area %q: %w", area.Vnum, err)
	}
	return data, nil
}

func marshal(v any, indent bool) ([]byte, error) {
	if indent {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}
