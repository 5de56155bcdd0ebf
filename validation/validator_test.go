package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flagrooms/models"
)

func TestUsername(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"valid", "Alice_99", false},
		{"too short", "a", true},
		{"too long", strings.Repeat("a", 31), true},
		{"reserved", "Admin", true},
		{"html stripped then valid", "<b>Bob</b>", false},
		{"invalid characters", "bob@bad!", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Username(tc.raw)
			if tc.wantErr {
				assert.NotNil(t, err)
			} else {
				assert.Nil(t, err)
			}
		})
	}
}

func TestUsername_Sanitizes(t *testing.T) {
	got, err := Username("  <i>Bob</i>  ")
	require.Nil(t, err)
	assert.Equal(t, "Bob", got)
}

func TestInviteCode(t *testing.T) {
	got, err := InviteCode("ab12cd")
	require.Nil(t, err)
	assert.Equal(t, "AB12CD", got)

	_, err = InviteCode("short")
	assert.NotNil(t, err)
}

func TestAnswer(t *testing.T) {
	got, err := Answer("  US<script>  ")
	require.Nil(t, err)
	assert.Equal(t, "USscript", got)

	_, err = Answer("   ")
	assert.NotNil(t, err)
}

func TestRoomSettings(t *testing.T) {
	valid := models.RoomSettings{
		Difficulty:      models.DifficultyMedium,
		MaxRoomSize:     4,
		TimePerQuestion: 15,
		GameMode:        models.GameModeClassic,
	}
	assert.Nil(t, RoomSettings(&valid))

	invalid := valid
	invalid.MaxRoomSize = 0
	assert.NotNil(t, RoomSettings(&invalid))

	invalid2 := valid
	invalid2.TimePerQuestion = 7
	assert.NotNil(t, RoomSettings(&invalid2))
}
