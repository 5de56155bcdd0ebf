package rooms

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flagrooms/models"
)

func testSettings() models.RoomSettings {
	return models.RoomSettings{
		Difficulty:      models.DifficultyEasy,
		MaxRoomSize:     4,
		TimePerQuestion: 15,
		GameMode:        models.GameModeClassic,
	}
}

func TestCreate_AssignsUniqueIDAndInviteCode(t *testing.T) {
	s := NewStore()
	r1, err := s.Create("room1", "host1", "Host", testSettings())
	require.NoError(t, err)
	r2, err := s.Create("room2", "host2", "Host2", testSettings())
	require.NoError(t, err)

	assert.NotEqual(t, r1.ID, r2.ID)
	assert.NotEqual(t, r1.InviteCode, r2.InviteCode)
	assert.Len(t, r1.Members, 1)
	assert.Equal(t, "host1", r1.Host)
}

func TestWithRoom_NotFound(t *testing.T) {
	s := NewStore()
	err := s.WithRoom("missing", func(r *models.Room) error { return nil })
	assert.Error(t, err)
}

func TestWithRoomByInviteCode_CaseInsensitive(t *testing.T) {
	s := NewStore()
	room, err := s.Create("room1", "host1", "Host", testSettings())
	require.NoError(t, err)

	var found string
	err = s.WithRoomByInviteCode(strings.ToLower(room.InviteCode), func(r *models.Room) error {
		found = r.ID
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, room.ID, found)
}

func TestDelete_RemovesBothIndexes(t *testing.T) {
	s := NewStore()
	room, err := s.Create("room1", "host1", "Host", testSettings())
	require.NoError(t, err)

	s.Delete(room.ID)

	assert.Equal(t, 0, s.Count())
	err = s.WithRoomByInviteCode(room.InviteCode, func(r *models.Room) error { return nil })
	assert.Error(t, err)
}

func TestSnapshot_IsACopy(t *testing.T) {
	s := NewStore()
	room, err := s.Create("room1", "host1", "Host", testSettings())
	require.NoError(t, err)

	snap, ok := s.Snapshot(room.ID)
	require.True(t, ok)
	snap.Name = "mutated"

	err = s.WithRoom(room.ID, func(r *models.Room) error {
		assert.Equal(t, "room1", r.Name)
		return nil
	})
	require.NoError(t, err)
}
