package rot

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap/zapcore"

	"github.com/cory-johannsen/rotimport/internal/importer"
)

type mobileState int

const (
	mobileVnum mobileState = iota
	mobileKeywords
	mobileName
	mobileRoomName
	mobileSomething1
	mobileDescription
	mobileRace
	mobileFlags1
	mobileLevelAndDamage
	mobileArmors
	mobileFlags2
	mobilePositionAndGender
	mobileFlags3
	mobileExtra
)

var mobileStateNames = [...]string{
	mobileVnum:              "vnum",
	mobileKeywords:          "keywords",
	mobileName:              "name",
	mobileRoomName:          "room_name",
	mobileSomething1:        "something1",
	mobileDescription:       "description",
	mobileRace:              "race",
	mobileFlags1:            "flags1",
	mobileLevelAndDamage:    "level_and_damage",
	mobileArmors:            "armors",
	mobileFlags2:            "flags2",
	mobilePositionAndGender: "position_and_gender",
	mobileFlags3:            "flags3",
	mobileExtra:             "extra",
}

func (s mobileState) String() string { return mobileStateNames[s] }

type mobileParser struct {
	fc    *fileContext
	state mobileState
	mob   *importer.Mobile
}

// parseMobile reads one #MOBILES record. The section header itself is
// buffered with the first record and is skipped here.
func parseMobile(fc *fileContext, lines []string) error {
	p := &mobileParser{
		fc: fc,
		mob: &importer.Mobile{
			ID:          fc.newID(),
			AreaVnum:    fc.vnum,
			Description: []string{},
			RawExtra:    []string{},
		},
	}
	for i, line := range lines {
		if err := p.step(i, line); err != nil {
			return &lineError{index: i, state: p.state.String(), err: err}
		}
	}

	switch {
	case p.state == mobileVnum:
		return nil
	case p.state <= mobileKeywords:
		fc.report(zapcore.WarnLevel, -1, "", fmt.Sprintf("mobile %d has no keywords; dropping it", p.mob.Vnum))
		return nil
	case p.state < mobileExtra:
		fc.report(zapcore.WarnLevel, -1, "", fmt.Sprintf("mobile %d ended early in state %s", p.mob.Vnum, p.state))
	}
	if fc.store.PutMobile(p.mob) {
		fc.report(zapcore.WarnLevel, -1, "", fmt.Sprintf("duplicate mobile vnum %d; later record wins", p.mob.Vnum))
	}
	return nil
}

func (p *mobileParser) step(i int, line string) error {
	cleaned, terminated := splitTerminator(line)

	switch p.state {
	case mobileVnum:
		trimmed := strings.TrimRight(line, " \t")
		if trimmed == "#MOBILES" || trimmed == "" {
			return nil
		}
		if !strings.HasPrefix(line, "#") {
			return fmt.Errorf("%w: %q", ErrInvalidHeader, line)
		}
		// Vnums are stored as 32-bit integers by every sink.
		vnum, err := strconv.ParseInt(strings.TrimSpace(line[1:]), 10, 32)
		if err != nil {
			return fmt.Errorf("%w: mobile vnum %q", ErrInvalidValue, line[1:])
		}
		p.mob.Vnum = int(vnum)
		p.state = mobileKeywords

	case mobileKeywords:
		p.mob.Keywords = strings.Fields(cleaned)
		p.state = mobileName

	case mobileName:
		p.mob.Name = strings.TrimSpace(cleaned)
		p.state = mobileRoomName

	case mobileRoomName:
		p.mob.RoomName = strings.TrimSpace(cleaned)
		p.state = mobileSomething1

	case mobileSomething1:
		if terminated {
			s := cleaned
			p.mob.Something1 = &s
		}
		p.state = mobileDescription

	case mobileDescription:
		if appendText(&p.mob.Description, line) {
			p.state = mobileRace
		}

	case mobileRace:
		p.mob.RaceID = strings.TrimSpace(cleaned)
		p.state = mobileFlags1

	case mobileFlags1:
		p.mob.RawFlags1 = line
		p.state = mobileLevelAndDamage

	case mobileLevelAndDamage:
		p.mob.RawLevelAndDamage = line
		p.state = mobileArmors

	case mobileArmors:
		p.mob.RawArmors = line
		p.state = mobileFlags2

	case mobileFlags2:
		p.mob.RawFlags2 = line
		p.state = mobilePositionAndGender

	case mobilePositionAndGender:
		p.mob.RawPositionAndGender = line
		p.state = mobileFlags3

	case mobileFlags3:
		p.mob.RawFlags3 = line
		p.state = mobileExtra

	case mobileExtra:
		// Inventory, shop and program attachments are not parsed yet.
		p.mob.RawExtra = []string{}
		if strings.TrimSpace(line) != "" {
			p.fc.report(zapcore.InfoLevel, i, line, fmt.Sprintf("mobile %d: unhandled line", p.mob.Vnum))
		}
	}
	return nil
}
