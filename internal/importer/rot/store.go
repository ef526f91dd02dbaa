package rot

import (
	"strconv"

	"github.com/cory-johannsen/rotimport/internal/importer"
)

type roomKey struct {
	area string
	vnum string
}

// Store is the in-memory record store for one parse run. Areas are keyed by
// vnum, rooms by owning area and vnum, mobiles by vnum. Encounter order is
// preserved. A Store is not safe for concurrent use.
type Store struct {
	areas       map[string]*importer.Area
	areaOrder   []string
	rooms       map[roomKey]*importer.Room
	roomOrder   []roomKey
	mobiles     map[int]*importer.Mobile
	mobileOrder []int
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{
		areas:   make(map[string]*importer.Area),
		rooms:   make(map[roomKey]*importer.Room),
		mobiles: make(map[int]*importer.Mobile),
	}
}

// PutArea inserts or replaces an area and reports whether one was replaced.
// A replaced entry keeps its original position.
func (s *Store) PutArea(a *importer.Area) (replaced bool) {
	if _, replaced = s.areas[a.Vnum]; !replaced {
		s.areaOrder = append(s.areaOrder, a.Vnum)
	}
	s.areas[a.Vnum] = a
	return replaced
}

// PutRoom inserts or replaces a room and reports whether one was replaced.
func (s *Store) PutRoom(r *importer.Room) (replaced bool) {
	k := roomKey{area: r.AreaVnum, vnum: r.Vnum}
	if _, replaced = s.rooms[k]; !replaced {
		s.roomOrder = append(s.roomOrder, k)
	}
	s.rooms[k] = r
	return replaced
}

// PutMobile inserts or replaces a mobile and reports whether one was replaced.
func (s *Store) PutMobile(m *importer.Mobile) (replaced bool) {
	if _, replaced = s.mobiles[m.Vnum]; !replaced {
		s.mobileOrder = append(s.mobileOrder, m.Vnum)
	}
	s.mobiles[m.Vnum] = m
	return replaced
}

// Area returns the area with the given vnum.
func (s *Store) Area(vnum string) (*importer.Area, bool) {
	a, ok := s.areas[vnum]
	return a, ok
}

// Room returns the room with the given vnum inside areaVnum.
func (s *Store) Room(areaVnum, vnum string) (*importer.Room, bool) {
	r, ok := s.rooms[roomKey{area: areaVnum, vnum: vnum}]
	return r, ok
}

// Mobile returns the mobile with the given vnum.
func (s *Store) Mobile(vnum int) (*importer.Mobile, bool) {
	m, ok := s.mobiles[vnum]
	return m, ok
}

// AreaCount returns the number of stored areas.
func (s *Store) AreaCount() int { return len(s.areas) }

// RoomCount returns the number of stored rooms.
func (s *Store) RoomCount() int { return len(s.rooms) }

// MobileCount returns the number of stored mobiles.
func (s *Store) MobileCount() int { return len(s.mobiles) }

// Merge folds every record of other into s in other's encounter order and
// returns a description of each record that replaced one already in s, e.g.
// "mobile 3000" or "room midgaard/3001".
//
// Postcondition: other is unchanged.
func (s *Store) Merge(other *Store) (replaced []string) {
	for _, v := range other.areaOrder {
		if s.PutArea(other.areas[v]) {
			replaced = append(replaced, "area "+v)
		}
	}
	for _, k := range other.roomOrder {
		if s.PutRoom(other.rooms[k]) {
			replaced = append(replaced, "room "+k.area+"/"+k.vnum)
		}
	}
	for _, v := range other.mobileOrder {
		if s.PutMobile(other.mobiles[v]) {
			replaced = append(replaced, "mobile "+strconv.Itoa(v))
		}
	}
	return replaced
}

// Areas returns every area with its rooms attached, plus the rooms whose
// area back-reference matches no stored area.
//
// Postcondition: each returned Area is a copy whose Rooms holds, in encounter
// order, every room with AreaVnum equal to its Vnum. Stored areas are not
// modified, so Areas may be called repeatedly.
func (s *Store) Areas() (areas []*importer.Area, orphans []*importer.Room) {
	byArea := make(map[string][]*importer.Room, len(s.areas))
	for _, k := range s.roomOrder {
		r := s.rooms[k]
		if _, ok := s.areas[r.AreaVnum]; !ok {
			orphans = append(orphans, r)
			continue
		}
		byArea[r.AreaVnum] = append(byArea[r.AreaVnum], r)
	}

	areas = make([]*importer.Area, 0, len(s.areaOrder))
	for _, v := range s.areaOrder {
		a := *s.areas[v]
		a.Rooms = byArea[v]
		if a.Rooms == nil {
			a.Rooms = []*importer.Room{}
		}
		areas = append(areas, &a)
	}
	return areas, orphans
}

// Mobiles returns every stored mobile in encounter order.
func (s *Store) Mobiles() []*importer.Mobile {
	out := make([]*importer.Mobile, 0, len(s.mobileOrder))
	for _, v := range s.mobileOrder {
		out = append(out, s.mobiles[v])
	}
	return out
}
