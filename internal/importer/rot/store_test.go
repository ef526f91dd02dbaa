package rot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/rotimport/internal/importer"
)

func TestStore_AreasAttachesRoomsInOrder(t *testing.T) {
	s := NewStore()
	s.PutArea(&importer.Area{Vnum: "b"})
	s.PutArea(&importer.Area{Vnum: "a"})
	s.PutRoom(&importer.Room{Vnum: "2", AreaVnum: "a"})
	s.PutRoom(&importer.Room{Vnum: "1", AreaVnum: "a"})
	s.PutRoom(&importer.Room{Vnum: "9", AreaVnum: "ghost"})

	areas, orphans := s.Areas()
	require.Len(t, areas, 2)
	assert.Equal(t, "b", areas[0].Vnum)
	assert.Equal(t, []*importer.Room{}, areas[0].Rooms)
	assert.Equal(t, "a", areas[1].Vnum)
	require.Len(t, areas[1].Rooms, 2)
	assert.Equal(t, "2", areas[1].Rooms[0].Vnum)
	assert.Equal(t, "1", areas[1].Rooms[1].Vnum)

	require.Len(t, orphans, 1)
	assert.Equal(t, "ghost", orphans[0].AreaVnum)
}

func TestStore_AreasDoesNotMutateStoredAreas(t *testing.T) {
	s := NewStore()
	s.PutArea(&importer.Area{Vnum: "a"})
	s.PutRoom(&importer.Room{Vnum: "1", AreaVnum: "a"})

	first, _ := s.Areas()
	second, _ := s.Areas()
	assert.Len(t, second[0].Rooms, 1)
	assert.Equal(t, first[0].Rooms, second[0].Rooms)

	stored, _ := s.Area("a")
	assert.Nil(t, stored.Rooms)
}

func TestStore_RoomsKeyedByArea(t *testing.T) {
	s := NewStore()
	assert.False(t, s.PutRoom(&importer.Room{Vnum: "1", AreaVnum: "a"}))
	assert.False(t, s.PutRoom(&importer.Room{Vnum: "1", AreaVnum: "b"}))
	assert.True(t, s.PutRoom(&importer.Room{Vnum: "1", AreaVnum: "a", Name: "again"}))
	assert.Equal(t, 2, s.RoomCount())

	r, ok := s.Room("a", "1")
	require.True(t, ok)
	assert.Equal(t, "again", r.Name)
}

func TestStore_Merge(t *testing.T) {
	dst := NewStore()
	dst.PutArea(&importer.Area{Vnum: "a", Name: "old"})
	dst.PutMobile(&importer.Mobile{Vnum: 1})

	src := NewStore()
	src.PutArea(&importer.Area{Vnum: "c"})
	src.PutArea(&importer.Area{Vnum: "a", Name: "new"})
	src.PutRoom(&importer.Room{Vnum: "5", AreaVnum: "c"})
	src.PutMobile(&importer.Mobile{Vnum: 2})

	replaced := dst.Merge(src)
	assert.Equal(t, []string{"area a"}, replaced)

	assert.Equal(t, 2, dst.AreaCount())
	assert.Equal(t, 1, dst.RoomCount())
	assert.Equal(t, 2, dst.MobileCount())
	a, _ := dst.Area("a")
	assert.Equal(t, "new", a.Name)

	areas, _ := dst.Areas()
	assert.Equal(t, "a", areas[0].Vnum)
	assert.Equal(t, "c", areas[1].Vnum)

	mobs := dst.Mobiles()
	require.Len(t, mobs, 2)
	assert.Equal(t, 1, mobs[0].Vnum)
	assert.Equal(t, 2, mobs[1].Vnum)

	assert.Equal(t, 2, src.AreaCount())
}

func TestStore_MergeReportsEveryReplacement(t *testing.T) {
	dst := NewStore()
	dst.PutArea(&importer.Area{Vnum: "a"})
	dst.PutRoom(&importer.Room{Vnum: "1", AreaVnum: "a"})
	dst.PutMobile(&importer.Mobile{Vnum: 100, AreaVnum: "a"})

	src := NewStore()
	src.PutRoom(&importer.Room{Vnum: "1", AreaVnum: "a"})
	src.PutRoom(&importer.Room{Vnum: "1", AreaVnum: "b"})
	src.PutMobile(&importer.Mobile{Vnum: 100, AreaVnum: "b"})
	src.PutMobile(&importer.Mobile{Vnum: 101, AreaVnum: "b"})

	assert.Equal(t, []string{"room a/1", "mobile 100"}, dst.Merge(src))
	m, _ := dst.Mobile(100)
	assert.Equal(t, "b", m.AreaVnum)
	assert.Empty(t, NewStore().Merge(src))
}
