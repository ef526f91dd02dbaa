package rot

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap/zapcore"

	"github.com/cory-johannsen/rotimport/internal/importer"
)

// areaBuilder stages an Area while its "Key value" lines are read in any order.
type areaBuilder struct {
	id              string
	vnum            string
	name            string
	builders        []string
	vnums           [2]int
	credits         string
	security        int
	recallVnum      int
	factionID       *string
	areaQuestPoints int
	realmID         int
	zoneID          int
}

func (b *areaBuilder) build() *importer.Area {
	builders := b.builders
	if builders == nil {
		builders = []string{}
	}
	return &importer.Area{
		ID:              b.id,
		Vnum:            b.vnum,
		Name:            b.name,
		Builders:        builders,
		Vnums:           b.vnums,
		Credits:         b.credits,
		Security:        b.security,
		RecallVnum:      b.recallVnum,
		FactionID:       b.factionID,
		AreaQuestPoints: b.areaQuestPoints,
		RealmID:         b.realmID,
		ZoneID:          b.zoneID,
	}
}

// parseArea reads an #AREADATA block. The area vnum is the file's vnum, not a
// value from the block.
func parseArea(fc *fileContext, lines []string) error {
	b := &areaBuilder{id: fc.newID(), vnum: fc.vnum}

	for i, line := range lines {
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		key, args := parts[0], parts[1:]

		var err error
		switch key {
		case "Name":
			b.name = trimTerminator(strings.Join(args, " "))
		case "Builders":
			b.builders = parseBuilders(args)
		case "VNUMs":
			b.vnums, err = parseRange(key, args)
		case "Credits":
			b.credits = trimTerminator(strings.Join(args, " "))
		case "Security":
			b.security, err = parseInt(key, args)
		case "Recall":
			b.recallVnum, err = parseInt(key, args)
		case "Faction":
			if len(args) == 0 {
				err = fmt.Errorf("%w: Faction has no value", ErrInvalidValue)
				break
			}
			faction := trimTerminator(strings.Join(args, " "))
			b.factionID = &faction
		case "AQpoints":
			b.areaQuestPoints, err = parseInt(key, args)
		case "Realm":
			b.realmID, err = parseInt(key, args)
		case "Zone":
			b.zoneID, err = parseInt(key, args)
		case "End":
			// Closes the block; nothing follows it.
		default:
			fc.report(zapcore.WarnLevel, i, line, "unhandled area line")
		}
		if err != nil {
			return &lineError{index: i, state: "area", err: err}
		}
	}

	if fc.store.PutArea(b.build()) {
		fc.report(zapcore.WarnLevel, -1, "", fmt.Sprintf("duplicate #AREADATA for area %q; later block wins", b.vnum))
	}
	return nil
}

// parseBuilders returns the builder list. A lone "None" means no builders.
func parseBuilders(args []string) []string {
	builders := make([]string, 0, len(args))
	for i, a := range args {
		if i == len(args)-1 {
			a = strings.TrimSuffix(a, "~")
		}
		if a != "" {
			builders = append(builders, a)
		}
	}
	if len(builders) > 0 && builders[0] == "None" {
		return []string{}
	}
	return builders
}

func parseInt(key string, args []string) (int, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("%w: %s has no value", ErrInvalidValue, key)
	}
	n, err := strconv.Atoi(strings.TrimSuffix(args[0], "~"))
	if err != nil {
		return 0, fmt.Errorf("%w: %s expects an integer, got %q", ErrInvalidValue, key, args[0])
	}
	return n, nil
}

func parseRange(key string, args []string) ([2]int, error) {
	if len(args) < 2 {
		return [2]int{}, fmt.Errorf("%w: %s expects two integers", ErrInvalidValue, key)
	}
	low, err := parseInt(key, args[:1])
	if err != nil {
		return [2]int{}, err
	}
	high, err := parseInt(key, args[1:2])
	if err != nil {
		return [2]int{}, err
	}
	return [2]int{low, high}, nil
}
