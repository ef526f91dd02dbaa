// Package rot parses ROT-style ".are" area files into importer records.
//
// An area file is a sequence of sections introduced by "#KEYWORD" header
// lines. Within a section every "#<vnum>" line starts a new record. The parser
// buffers lines until the next header and hands each buffer to the sub-parser
// of the active section.
package rot

// Section identifies the kind of block currently being read.
type Section int

// Sections in the order they usually appear in an area file.
const (
	SectionNone Section = iota
	SectionArea
	SectionMobiles
	SectionObjects
	SectionRooms
	SectionSpecials
	SectionResets
	SectionShops
	SectionMobProgs
)

var sectionNames = [...]string{
	SectionNone:     "none",
	SectionArea:     "area",
	SectionMobiles:  "mobile",
	SectionObjects:  "object",
	SectionRooms:    "room",
	SectionSpecials: "special",
	SectionResets:   "reset",
	SectionShops:    "shop",
	SectionMobProgs: "mobprog",
}

func (s Section) String() string {
	if s < 0 || int(s) >= len(sectionNames) {
		return "unknown"
	}
	return sectionNames[s]
}

// sectionHeaders maps header lines to the section they open.
var sectionHeaders = map[string]Section{
	"#AREADATA": SectionArea,
	"#MOBILES":  SectionMobiles,
	"#OBJECTS":  SectionObjects,
	"#ROOMS":    SectionRooms,
	"#SPECIALS": SectionSpecials,
	"#RESETS":   SectionResets,
	"#SHOPS":    SectionShops,
	"#MOBPROGS": SectionMobProgs,
}
