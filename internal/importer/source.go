package importer

import "context"

// Direction identifies the side of a room an exit leaves from.
type Direction string

// Exit directions in the order the area format indexes them (D0 through D5).
const (
	North Direction = "north"
	East  Direction = "east"
	South Direction = "south"
	West  Direction = "west"
	Up    Direction = "up"
	Down  Direction = "down"
)

// Directions is the fixed position-indexed direction table.
var Directions = [6]Direction{North, East, South, West, Up, Down}

// DirectionForIndex returns the direction at position i of the table.
//
// Postcondition: ok is false when i is outside [0, 5].
func DirectionForIndex(i int) (d Direction, ok bool) {
	if i < 0 || i >= len(Directions) {
		return "", false
	}
	return Directions[i], true
}

// IsKnown reports whether d is one of the six table directions.
func (d Direction) IsKnown() bool {
	for _, known := range Directions {
		if d == known {
			return true
		}
	}
	return false
}

// Area is the finalized document for one source area file. Its JSON tags are
// the area document schema written by every Sink.
type Area struct {
	ID              string   `json:"id"`
	Vnum            string   `json:"vnum"`
	Name            string   `json:"name"`
	Builders        []string `json:"builders"`
	Vnums           [2]int   `json:"vnums"`
	Credits         string   `json:"credits"`
	Security        int      `json:"security"`
	RecallVnum      int      `json:"recall_vnum"`
	FactionID       *string  `json:"faction_id"`
	AreaQuestPoints int      `json:"area_quest_points"`
	RealmID         int      `json:"realm_id"`
	ZoneID          int      `json:"zone_id"`
	Rooms           []*Room  `json:"rooms"`
}

// Room is a single parsed room. AreaVnum is a back-reference to the owning
// Area's Vnum.
type Room struct {
	ID                string                      `json:"id"`
	Vnum              string                      `json:"vnum"`
	AreaVnum          string                      `json:"area_vnum"`
	Name              string                      `json:"name"`
	Description       []string                    `json:"description"`
	ExtraDescriptions map[string]ExtraDescription `json:"extra_descriptions"`
	Exits             map[Direction]Exit          `json:"exits"`
	RawFlags1         string                      `json:"raw_flags1"`
	RawFlags2         string                      `json:"raw_flags2"`
	RawManaHeal       string                      `json:"raw_mana_heal,omitempty"`
	ClanID            *string                     `json:"clan_id,omitempty"`
}

// Exit is one direction leaving a Room.
type Exit struct {
	Name        string    `json:"name"`
	DirectionID Direction `json:"direction_id"`
	Description []string  `json:"description"`
	RawFlags    string    `json:"raw_flags"`
}

// ExtraDescription is a keyword-addressed piece of room text.
type ExtraDescription struct {
	Keywords    string   `json:"keywords"`
	Description []string `json:"description"`
}

// Mobile is a parsed mobile template. Everything after the stat block is left
// unparsed.
type Mobile struct {
	ID                   string   `json:"id"`
	Vnum                 int      `json:"vnum"`
	AreaVnum             string   `json:"area_vnum"`
	Keywords             []string `json:"keywords"`
	Name                 string   `json:"name"`
	RoomName             string   `json:"room_name"`
	Something1           *string  `json:"something1,omitempty"`
	Description          []string `json:"description"`
	RaceID               string   `json:"race_id"`
	RawFlags1            string   `json:"raw_flags1"`
	RawLevelAndDamage    string   `json:"raw_level_and_damage"`
	RawArmors            string   `json:"raw_armors"`
	RawFlags2            string   `json:"raw_flags2"`
	RawPositionAndGender string   `json:"raw_position_and_gender"`
	RawFlags3            string   `json:"raw_flags3"`
	RawExtra             []string `json:"raw_extra"`
}

// Batch is everything a Source produced for one run.
type Batch struct {
	Areas       []*Area
	Mobiles     []*Mobile
	Diagnostics []Diagnostic
	// Failed lists source files that were skipped after a parse failure.
	Failed []string
}

// Source loads content from a format-specific source directory.
//
// Precondition: sourceDir must exist and contain the expected layout for the format.
// Postcondition: returns a non-nil Batch or a non-nil error.
type Source interface {
	Load(ctx context.Context, sourceDir string) (*Batch, error)
}

// Sink persists finalized records.
type Sink interface {
	WriteArea(ctx context.Context, area *Area) error
	WriteMobile(ctx context.Context, mobile *Mobile) error
	Close() error
}
