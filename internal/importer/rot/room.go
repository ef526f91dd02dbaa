package rot

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap/zapcore"

	"github.com/cory-johannsen/rotimport/internal/importer"
)

type roomState int

const (
	roomVnum roomState = iota
	roomName
	roomUnknown
	roomDescription
	roomFlags1
	roomFlags2
	roomMeta
	roomExitName
	roomExitDescription
	roomExitFlags
	roomExtraName
	roomExtraDescription
)

var roomStateNames = [...]string{
	roomVnum:             "vnum",
	roomName:             "name",
	roomUnknown:          "unknown",
	roomDescription:      "description",
	roomFlags1:           "flags1",
	roomFlags2:           "flags2",
	roomMeta:             "meta",
	roomExitName:         "exit_name",
	roomExitDescription:  "exit_description",
	roomExitFlags:        "exit_flags",
	roomExtraName:        "extra_desc_name",
	roomExtraDescription: "extra_desc_desc",
}

func (s roomState) String() string { return roomStateNames[s] }

// metaKind names the single-letter meta lines that are recognised but carry
// no parsed data yet.
type metaKind byte

const (
	metaSpecial metaKind = 'S'
	metaProgram metaKind = 'X'
	metaO       metaKind = 'O'
	metaQ       metaKind = 'Q'
	metaB       metaKind = 'B'
	metaZ       metaKind = 'Z'
	metaY       metaKind = 'Y'
	metaR       metaKind = 'R'
	metaT       metaKind = 'T'
	metaV       metaKind = 'V'
	metaP       metaKind = 'P'
)

var inertMeta = map[byte]metaKind{
	'S': metaSpecial,
	'X': metaProgram,
	'O': metaO,
	'Q': metaQ,
	'B': metaB,
	'Z': metaZ,
	'Y': metaY,
	'R': metaR,
	'T': metaT,
	'V': metaV,
	'P': metaP,
}

func (k metaKind) String() string {
	switch k {
	case metaSpecial:
		return "special"
	case metaProgram:
		return "mobprog"
	default:
		return string(rune(k))
	}
}

// roomBuilder stages a Room until its record ends.
type roomBuilder struct {
	id          string
	vnum        string
	areaVnum    string
	name        string
	description []string
	extras      map[string]importer.ExtraDescription
	exits       map[importer.Direction]importer.Exit
	rawFlags1   string
	rawFlags2   string
	rawManaHeal string
	clanID      *string
}

func (b *roomBuilder) build() *importer.Room {
	return &importer.Room{
		ID:                b.id,
		Vnum:              b.vnum,
		AreaVnum:          b.areaVnum,
		Name:              b.name,
		Description:       b.description,
		ExtraDescriptions: b.extras,
		Exits:             b.exits,
		RawFlags1:         b.rawFlags1,
		RawFlags2:         b.rawFlags2,
		RawManaHeal:       b.rawManaHeal,
		ClanID:            b.clanID,
	}
}

// roomParser is the state machine for one room record. exit is only valid in
// the exit states, extra only in the extra description states.
type roomParser struct {
	fc       *fileContext
	state    roomState
	room     *roomBuilder
	exit     *importer.Exit
	exitName []string
	extra    *importer.ExtraDescription
}

func parseRoom(fc *fileContext, lines []string) error {
	p := &roomParser{
		fc: fc,
		room: &roomBuilder{
			id:          fc.newID(),
			areaVnum:    fc.vnum,
			description: []string{},
			extras:      map[string]importer.ExtraDescription{},
			exits:       map[importer.Direction]importer.Exit{},
		},
	}
	for i, line := range lines {
		if err := p.step(i, line); err != nil {
			return &lineError{index: i, state: p.state.String(), err: err}
		}
	}
	p.finish()
	return nil
}

func (p *roomParser) step(i int, line string) error {
	switch p.state {
	case roomVnum:
		if strings.TrimSpace(line) == "" {
			return nil
		}
		vnum := strings.TrimSpace(strings.TrimPrefix(line, "#"))
		if !strings.HasPrefix(line, "#") || vnum == "" {
			return fmt.Errorf("%w: %q", ErrInvalidHeader, line)
		}
		p.room.vnum = vnum
		p.state = roomName

	case roomName:
		p.room.name = trimTerminator(line)
		p.state = roomUnknown

	case roomUnknown:
		p.state = roomDescription

	case roomDescription:
		if appendText(&p.room.description, line) {
			p.state = roomFlags1
		}

	case roomFlags1:
		p.room.rawFlags1 = line
		p.state = roomFlags2

	case roomFlags2:
		p.room.rawFlags2 = line
		p.state = roomMeta

	case roomMeta:
		return p.meta(i, line)

	case roomExitName:
		text, done := splitTerminator(line)
		if text = strings.TrimSpace(text); text != "" {
			p.exitName = append(p.exitName, text)
		}
		if done {
			p.exit.Name = strings.Join(p.exitName, " ")
			p.state = roomExitDescription
		}

	case roomExitDescription:
		if appendText(&p.exit.Description, line) {
			p.state = roomExitFlags
		}

	case roomExitFlags:
		p.exit.RawFlags = line
		dir := p.exit.DirectionID
		if _, dup := p.room.exits[dir]; dup {
			p.fc.report(zapcore.WarnLevel, i, line, fmt.Sprintf("room %s: duplicate %s exit; later exit wins", p.room.vnum, dir))
		}
		p.room.exits[dir] = *p.exit
		p.exit, p.exitName = nil, nil
		p.state = roomMeta

	case roomExtraName:
		text, done := splitTerminator(line)
		p.extra.Keywords += text
		if done {
			p.state = roomExtraDescription
		}

	case roomExtraDescription:
		if appendText(&p.extra.Description, line) {
			p.room.extras[p.extra.Keywords] = *p.extra
			p.extra = nil
			p.state = roomMeta
		}
	}
	return nil
}

// meta dispatches one line of the block that follows the room flags.
func (p *roomParser) meta(i int, line string) error {
	if strings.TrimSpace(line) == "" {
		return nil
	}

	switch line[0] {
	case 'D':
		if len(line) < 2 || line[1] < '0' || line[1] > '9' {
			return fmt.Errorf("%w: exit line needs a direction digit: %q", ErrInvalidMeta, line)
		}
		dir, ok := importer.DirectionForIndex(int(line[1] - '0'))
		if !ok {
			return fmt.Errorf("%w: exit direction %c out of range", ErrInvalidMeta, line[1])
		}
		p.exit = &importer.Exit{DirectionID: dir, Description: []string{}}
		p.exitName = nil
		p.state = roomExitName

	case 'E':
		p.extra = &importer.ExtraDescription{Description: []string{}}
		p.state = roomExtraName

	case 'C':
		clan := parseClan(line)
		p.room.clanID = &clan

	case 'M':
		// TODO: split mana and hp heal rates once the game model has fields for them.
		p.room.rawManaHeal = line

	default:
		kind, ok := inertMeta[line[0]]
		if !ok {
			return fmt.Errorf("%w: unknown leading character %q", ErrInvalidMeta, line[0])
		}
		p.fc.report(zapcore.DebugLevel, i, line, fmt.Sprintf("room %s: unparsed %s meta line", p.room.vnum, kind))
	}
	return nil
}

// finish stores the room unless the record held nothing but blank lines.
func (p *roomParser) finish() {
	switch {
	case p.state == roomVnum:
		return
	case p.state > roomMeta:
		p.fc.report(zapcore.WarnLevel, -1, "", fmt.Sprintf("room %s ended inside %s; dropping the partial block", p.room.vnum, p.state))
	case p.state < roomMeta:
		p.fc.report(zapcore.WarnLevel, -1, "", fmt.Sprintf("room %s ended early in state %s", p.room.vnum, p.state))
	}
	if p.fc.store.PutRoom(p.room.build()) {
		p.fc.report(zapcore.WarnLevel, -1, "", fmt.Sprintf("duplicate room vnum %s; later record wins", p.room.vnum))
	}
}

// parseClan extracts the clan id from a "C <clan>~" line. A numeric token in
// front of the name is dropped.
func parseClan(line string) string {
	clan := trimTerminator(line[1:])
	fields := strings.Fields(clan)
	if len(fields) > 1 {
		if _, err := strconv.Atoi(fields[0]); err == nil {
			clan = strings.Join(fields[1:], " ")
		}
	}
	return clan
}

// appendText adds one line of a '~'-terminated text block to dst and reports
// whether the block is complete. Text in front of the terminator is kept as
// the final line.
func appendText(dst *[]string, line string) bool {
	text, done := splitTerminator(line)
	if !done {
		*dst = append(*dst, line)
		return false
	}
	if text != "" {
		*dst = append(*dst, text)
	}
	return true
}
