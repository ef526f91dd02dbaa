package importer

import (
	"encoding/json"
	"fmt"

	"github.com/pixil98/go-errors"
)

// Validate checks the structural invariants of an area document.
//
// Postcondition: returns nil when the area has a vnum, a sane vnum range, and
// every room belongs to it with a unique vnum and well-formed exits; otherwise
// an error listing every violation.
func (a *Area) Validate() error {
	el := errors.NewErrorList()

	if a.Vnum == "" {
		el.Add(fmt.Errorf("area vnum is required"))
	}
	if a.Vnums[0] > a.Vnums[1] {
		el.Add(fmt.Errorf("area %q: vnum range %d-%d is inverted", a.Vnum, a.Vnums[0], a.Vnums[1]))
	}

	seen := make(map[string]bool, len(a.Rooms))
	for _, r := range a.Rooms {
		if r == nil {
			el.Add(fmt.Errorf("area %q: nil room", a.Vnum))
			continue
		}
		if r.AreaVnum != a.Vnum {
			el.Add(fmt.Errorf("room %q: area_vnum %q does not match area %q", r.Vnum, r.AreaVnum, a.Vnum))
		}
		if seen[r.Vnum] {
			el.Add(fmt.Errorf("area %q: duplicate room vnum %q", a.Vnum, r.Vnum))
		}
		seen[r.Vnum] = true
		el.Add(r.Validate())
	}

	return el.Err()
}

// Validate checks a room's own invariants.
func (r *Room) Validate() error {
	el := errors.NewErrorList()
	if r.Vnum == "" {
		el.Add(fmt.Errorf("room vnum is required"))
	}
	for key, exit := range r.Exits {
		if !key.IsKnown() {
			el.Add(fmt.Errorf("room %q: unknown exit direction %q", r.Vnum, key))
		}
		if exit.DirectionID != key {
			el.Add(fmt.Errorf("room %q: exit keyed %q has direction_id %q", r.Vnum, key, exit.DirectionID))
		}
	}
	for key, ed := range r.ExtraDescriptions {
		if ed.Keywords != key {
			el.Add(fmt.Errorf("room %q: extra description keyed %q has keywords %q", r.Vnum, key, ed.Keywords))
		}
	}
	return el.Err()
}

// Validate checks a mobile's invariants.
func (m *Mobile) Validate() error {
	el := errors.NewErrorList()
	if m.AreaVnum == "" {
		el.Add(fmt.Errorf("mobile %d: area_vnum is required", m.Vnum))
	}
	if len(m.Keywords) == 0 {
		el.Add(fmt.Errorf("mobile %d: at least one keyword is required", m.Vnum))
	}
	return el.Err()
}

// DecodeArea parses and validates an area document.
//
// Precondition: data must be a JSON area document.
// Postcondition: returns a validated Area or a non-nil error.
func DecodeArea(data []byte) (*Area, error) {
	var a Area
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("parsing area JSON: %w", err)
	}
	if err := a.Validate(); err != nil {
		return nil, fmt.Errorf("validating area: %w", err)
	}
	return &a, nil
}
