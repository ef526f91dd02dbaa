package importer_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cory-johannsen/rotimport/internal/importer"
)

type fakeSource struct {
	batch *importer.Batch
	err   error
}

func (f *fakeSource) Load(context.Context, string) (*importer.Batch, error) {
	return f.batch, f.err
}

type memSink struct {
	areas   []*importer.Area
	mobiles []*importer.Mobile
	failOn  string
}

func (m *memSink) WriteArea(_ context.Context, a *importer.Area) error {
	if a.Vnum == m.failOn {
		return errors.New("disk full")
	}
	m.areas = append(m.areas, a)
	return nil
}

func (m *memSink) WriteMobile(_ context.Context, mob *importer.Mobile) error {
	m.mobiles = append(m.mobiles, mob)
	return nil
}

func (m *memSink) Close() error { return nil }

func makeArea(vnum string, rooms ...string) *importer.Area {
	a := &importer.Area{ID: "id-" + vnum, Vnum: vnum, Name: vnum, Builders: []string{}, Rooms: []*importer.Room{}}
	for _, r := range rooms {
		a.Rooms = append(a.Rooms, &importer.Room{
			ID:                "room-" + r,
			Vnum:              r,
			AreaVnum:          vnum,
			Description:       []string{},
			ExtraDescriptions: map[string]importer.ExtraDescription{},
			Exits:             map[importer.Direction]importer.Exit{},
		})
	}
	return a
}

func TestImporter_Run_WritesEverything(t *testing.T) {
	src := &fakeSource{batch: &importer.Batch{
		Areas:   []*importer.Area{makeArea("a", "1", "2"), makeArea("b")},
		Mobiles: []*importer.Mobile{{Vnum: 10, AreaVnum: "a", Keywords: []string{"rat"}}},
		Diagnostics: []importer.Diagnostic{
			{Level: zapcore.DebugLevel, File: "a.are", Section: "room", Index: 3, Line: "S", Message: "unparsed"},
		},
	}}
	sink := &memSink{}
	core, logs := observer.New(zap.DebugLevel)

	report, err := importer.New(src, sink, zap.New(core), importer.Options{}).Run(context.Background(), "area")
	require.NoError(t, err)
	assert.Equal(t, 2, report.Areas)
	assert.Equal(t, 2, report.Rooms)
	assert.Equal(t, 1, report.Mobiles)
	assert.Len(t, report.Diagnostics, 1)
	assert.Len(t, sink.areas, 2)
	assert.Len(t, sink.mobiles, 1)

	assert.Equal(t, 1, logs.FilterMessage("unparsed").Len())
	assert.Equal(t, 1, logs.FilterMessage("import complete").Len())
}

func TestImporter_Run_NilLogger(t *testing.T) {
	src := &fakeSource{batch: &importer.Batch{}}
	report, err := importer.New(src, &memSink{}, nil, importer.Options{}).Run(context.Background(), "area")
	require.NoError(t, err)
	assert.Equal(t, 0, report.Areas)
}

func TestImporter_Run_SourceError(t *testing.T) {
	src := &fakeSource{err: errors.New("boom")}
	sink := &memSink{}
	_, err := importer.New(src, sink, nil, importer.Options{}).Run(context.Background(), "area")
	assert.ErrorContains(t, err, "boom")
	assert.Empty(t, sink.areas)
}

func TestImporter_Run_FailOnWarning(t *testing.T) {
	src := &fakeSource{batch: &importer.Batch{
		Areas: []*importer.Area{makeArea("a")},
		Diagnostics: []importer.Diagnostic{
			{Level: zapcore.InfoLevel, Index: -1, Message: "fine"},
			{Level: zapcore.WarnLevel, Index: -1, Message: "suspicious"},
		},
	}}
	sink := &memSink{}
	report, err := importer.New(src, sink, nil, importer.Options{FailOnWarning: true}).Run(context.Background(), "area")
	assert.ErrorIs(t, err, importer.ErrWarnings)
	require.NotNil(t, report)
	assert.Len(t, report.Diagnostics, 2)
	assert.Empty(t, sink.areas)
}

func TestImporter_Run_FailOnWarningIgnoresInfo(t *testing.T) {
	src := &fakeSource{batch: &importer.Batch{
		Areas:       []*importer.Area{makeArea("a")},
		Diagnostics: []importer.Diagnostic{{Level: zapcore.InfoLevel, Index: -1, Message: "fine"}},
	}}
	sink := &memSink{}
	_, err := importer.New(src, sink, nil, importer.Options{FailOnWarning: true}).Run(context.Background(), "area")
	require.NoError(t, err)
	assert.Len(t, sink.areas, 1)
}

func TestImporter_Run_InvalidAreaStops(t *testing.T) {
	bad := makeArea("bad", "1")
	bad.Rooms[0].AreaVnum = "elsewhere"
	src := &fakeSource{batch: &importer.Batch{Areas: []*importer.Area{makeArea("a"), bad}}}
	sink := &memSink{}

	report, err := importer.New(src, sink, nil, importer.Options{}).Run(context.Background(), "area")
	assert.ErrorContains(t, err, `area "bad" failed validation`)
	assert.Equal(t, 1, report.Areas)
}

func TestImporter_Run_SinkError(t *testing.T) {
	src := &fakeSource{batch: &importer.Batch{Areas: []*importer.Area{makeArea("a")}}}
	_, err := importer.New(src, &memSink{failOn: "a"}, nil, importer.Options{}).Run(context.Background(), "area")
	assert.ErrorContains(t, err, "disk full")
}

func TestImporter_Run_InvalidMobile(t *testing.T) {
	src := &fakeSource{batch: &importer.Batch{Mobiles: []*importer.Mobile{{Vnum: 5}}}}
	_, err := importer.New(src, &memSink{}, nil, importer.Options{}).Run(context.Background(), "area")
	assert.ErrorContains(t, err, "mobile 5 failed validation")
}

func TestImporter_Run_CancelledContext(t *testing.T) {
	src := &fakeSource{batch: &importer.Batch{Areas: []*importer.Area{makeArea("a")}}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sink := &memSink{}
	_, err := importer.New(src, sink, nil, importer.Options{}).Run(ctx, "area")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, sink.areas)
}

func TestFileSink_WritesDocuments(t *testing.T) {
	root := filepath.Join(t.TempDir(), "data")
	sink, err := importer.NewFileSink(root, true)
	require.NoError(t, err)

	area := makeArea("midgaard", "3001")
	faction := ""
	area.FactionID = &faction
	require.NoError(t, sink.WriteArea(context.Background(), area))
	require.NoError(t, sink.WriteMobile(context.Background(), &importer.Mobile{Vnum: 3000, AreaVnum: "midgaard", Keywords: []string{"wizard"}}))
	require.NoError(t, sink.Close())

	assert.Equal(t, filepath.Join(root, "areas", "midgaard.json"), sink.AreaPath("midgaard"))
	data, err := os.ReadFile(sink.AreaPath("midgaard"))
	require.NoError(t, err)
	got, err := importer.DecodeArea(data)
	require.NoError(t, err)
	assert.Equal(t, area, got)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "", raw["faction_id"])
	assert.Contains(t, raw, "rooms")

	data, err = os.ReadFile(sink.MobilePath(3000))
	require.NoError(t, err)
	var mob importer.Mobile
	require.NoError(t, json.Unmarshal(data, &mob))
	assert.Equal(t, []string{"wizard"}, mob.Keywords)
}

func TestMarshalArea_NullFaction(t *testing.T) {
	data, err := importer.MarshalArea(makeArea("a"), false)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"faction_id":null`)
	assert.Contains(t, string(data), `"builders":[]`)
}

func TestDecodeArea_Invalid(t *testing.T) {
	_, err := importer.DecodeArea([]byte("{not json"))
	assert.Error(t, err)

	_, err = importer.DecodeArea([]byte(`{"vnum":"","vnums":[5,1]}`))
	require.Error(t, err)
	assert.ErrorContains(t, err, "area vnum is required")
	assert.ErrorContains(t, err, "inverted")
}

func TestArea_ValidateRooms(t *testing.T) {
	a := makeArea("a", "1", "1")
	a.Rooms[0].Exits[importer.North] = importer.Exit{DirectionID: importer.South}
	a.Rooms[1].ExtraDescriptions["altar"] = importer.ExtraDescription{Keywords: "statue"}

	err := a.Validate()
	require.Error(t, err)
	assert.ErrorContains(t, err, "duplicate room vnum")
	assert.ErrorContains(t, err, "direction_id")
	assert.ErrorContains(t, err, "extra description")
}

func TestDiagnostic_StringAndCount(t *testing.T) {
	d := importer.Diagnostic{Level: zapcore.WarnLevel, File: "a.are", Section: "room", Index: 2, Line: "X", Message: "odd"}
	assert.Equal(t, `WARN a.are [room] 2: odd: "X"`, d.String())
	d.Index = -1
	assert.Equal(t, "WARN a.are [room]: odd", d.String())

	diags := []importer.Diagnostic{
		{Level: zapcore.DebugLevel}, {Level: zapcore.WarnLevel}, {Level: zapcore.ErrorLevel},
	}
	assert.Equal(t, 2, importer.CountAtLeast(diags, zapcore.WarnLevel))
	assert.Equal(t, 3, importer.CountAtLeast(diags, zapcore.DebugLevel))
}
