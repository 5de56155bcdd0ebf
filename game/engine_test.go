package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flagrooms/countries"
	"flagrooms/models"
	"flagrooms/realtime"
	"flagrooms/rooms"
)

func testSettings() models.RoomSettings {
	return models.RoomSettings{
		Difficulty:      models.DifficultyEasy,
		MaxRoomSize:     4,
		TimePerQuestion: 10,
		GameMode:        models.GameModeClassic,
	}
}

// newTestEngine wires an Engine against a fresh room/broadcaster pair. No
// connections are ever registered, so every broadcast silently evicts
// instead of touching a socket — exactly what an engine-only scenario
// needs.
func newTestEngine() (*Engine, *rooms.Store) {
	roomStore := rooms.NewStore()
	registry := realtime.NewRegistry()
	broadcaster := realtime.NewBroadcaster(registry, func(roomID string) []string {
		var ids []string
		if snap, ok := roomStore.Snapshot(roomID); ok {
			for _, m := range snap.Members {
				ids = append(ids, m.UserID)
			}
		}
		return ids
	})
	engine := NewEngine(roomStore, broadcaster, countries.NewProvider(), nil)
	return engine, roomStore
}

func joinRoom(t *testing.T, store *rooms.Store, roomID, userID, username string) {
	t.Helper()
	err := store.WithRoom(roomID, func(r *models.Room) error {
		r.Members = append(r.Members, &models.Member{UserID: userID, Username: username})
		return nil
	})
	require.NoError(t, err)
}

func TestStartGame_RejectsNonHost(t *testing.T) {
	engine, store := newTestEngine()
	room, err := store.Create("room", "host", "Host", testSettings())
	require.NoError(t, err)
	joinRoom(t, store, room.ID, "other", "Other")

	err = engine.StartGame(room.ID, "other")
	assert.Error(t, err)
}

func TestStartGame_RejectsBelowTwoMembers(t *testing.T) {
	engine, store := newTestEngine()
	room, err := store.Create("room", "host", "Host", testSettings())
	require.NoError(t, err)

	err = engine.StartGame(room.ID, "host")
	assert.Error(t, err)
}

func TestStartGame_EntersStartingPhase(t *testing.T) {
	engine, store := newTestEngine()
	room, err := store.Create("room", "host", "Host", testSettings())
	require.NoError(t, err)
	joinRoom(t, store, room.ID, "p2", "P2")

	require.NoError(t, engine.StartGame(room.ID, "host"))

	snap, ok := store.Snapshot(room.ID)
	require.True(t, ok)
	assert.True(t, snap.Game.IsActive)
	assert.Equal(t, models.PhaseStarting, snap.Game.Phase)
	engine.StopGame(room.ID, "host") // cancel the pending countdown timer
}

func TestNextQuestion_AdvancesToQuestionPhase(t *testing.T) {
	engine, store := newTestEngine()
	room, err := store.Create("room", "host", "Host", testSettings())
	require.NoError(t, err)
	joinRoom(t, store, room.ID, "p2", "P2")

	require.NoError(t, engine.StartGame(room.ID, "host"))
	engine.timers.cancel(room.ID) // replace the 5s countdown with a direct call
	engine.nextQuestion(room.ID)

	snap, ok := store.Snapshot(room.ID)
	require.True(t, ok)
	assert.Equal(t, models.PhaseQuestion, snap.Game.Phase)
	require.NotNil(t, snap.Game.CurrentQuestion)
	assert.Len(t, snap.Game.CurrentQuestion.Options, 4)
	engine.StopGame(room.ID, "host")
}

func TestSubmitAnswer_AwardsPointsAndEndsEarlyWhenAllAnswered(t *testing.T) {
	engine, store := newTestEngine()
	room, err := store.Create("room", "host", "Host", testSettings())
	require.NoError(t, err)
	joinRoom(t, store, room.ID, "p2", "P2")

	require.NoError(t, engine.StartGame(room.ID, "host"))
	engine.timers.cancel(room.ID)
	engine.nextQuestion(room.ID)

	var correctAnswer string
	require.NoError(t, store.WithRoom(room.ID, func(r *models.Room) error {
		correctAnswer = r.Game.CurrentQuestion.CorrectAnswer
		return nil
	}))

	require.NoError(t, engine.SubmitAnswer(room.ID, "host", correctAnswer))

	snap, ok := store.Snapshot(room.ID)
	require.True(t, ok)
	assert.Equal(t, models.PhaseQuestion, snap.Game.Phase) // one of two still owed

	require.NoError(t, engine.SubmitAnswer(room.ID, "p2", "ZZ"))

	snap, ok = store.Snapshot(room.ID)
	require.True(t, ok)
	assert.Equal(t, models.PhaseResults, snap.Game.Phase) // both answered, ends early

	var hostScore int
	for _, e := range snap.Game.Leaderboard {
		if e.UserID == "host" {
			hostScore = e.Score
		}
	}
	assert.Equal(t, CorrectPointCost, hostScore)
	engine.StopGame(room.ID, "host")
}

func TestSubmitAnswer_SecondSubmissionIsNoop(t *testing.T) {
	engine, store := newTestEngine()
	room, err := store.Create("room", "host", "Host", testSettings())
	require.NoError(t, err)
	joinRoom(t, store, room.ID, "p2", "P2")

	require.NoError(t, engine.StartGame(room.ID, "host"))
	engine.timers.cancel(room.ID)
	engine.nextQuestion(room.ID)

	require.NoError(t, engine.SubmitAnswer(room.ID, "host", "XX"))
	require.NoError(t, engine.SubmitAnswer(room.ID, "host", "YY"))

	snap, ok := store.Snapshot(room.ID)
	require.True(t, ok)
	assert.Len(t, snap.Game.Answers, 1)
	engine.StopGame(room.ID, "host")
}

func TestSubmitAnswer_RejectsWhenNoQuestionActive(t *testing.T) {
	engine, store := newTestEngine()
	room, err := store.Create("room", "host", "Host", testSettings())
	require.NoError(t, err)
	joinRoom(t, store, room.ID, "p2", "P2")

	err = engine.SubmitAnswer(room.ID, "host", "XX")
	assert.Error(t, err)
}

func TestStopGame_ReturnsRoomToWaiting(t *testing.T) {
	engine, store := newTestEngine()
	room, err := store.Create("room", "host", "Host", testSettings())
	require.NoError(t, err)
	joinRoom(t, store, room.ID, "p2", "P2")

	require.NoError(t, engine.StartGame(room.ID, "host"))
	require.NoError(t, engine.StopGame(room.ID, "host"))

	snap, ok := store.Snapshot(room.ID)
	require.True(t, ok)
	assert.False(t, snap.Game.IsActive)
	assert.Equal(t, models.PhaseWaiting, snap.Game.Phase)
}

func TestStopGame_RejectsNonHost(t *testing.T) {
	engine, store := newTestEngine()
	room, err := store.Create("room", "host", "Host", testSettings())
	require.NoError(t, err)
	joinRoom(t, store, room.ID, "p2", "P2")
	require.NoError(t, engine.StartGame(room.ID, "host"))

	err = engine.StopGame(room.ID, "p2")
	assert.Error(t, err)
	engine.StopGame(room.ID, "host")
}

func TestRestartGame_RequiresFinishedGame(t *testing.T) {
	engine, store := newTestEngine()
	room, err := store.Create("room", "host", "Host", testSettings())
	require.NoError(t, err)
	joinRoom(t, store, room.ID, "p2", "P2")

	err = engine.RestartGame(room.ID, "host")
	assert.Error(t, err)
}

func TestEndGameLocked_ComputesLeaderboardAndFinishes(t *testing.T) {
	engine, store := newTestEngine()
	room, err := store.Create("room", "host", "Host", testSettings())
	require.NoError(t, err)
	joinRoom(t, store, room.ID, "p2", "P2")

	require.NoError(t, store.WithRoom(room.ID, func(r *models.Room) error {
		r.Game.IsActive = true
		r.Game.AnswerHistory = []models.GameAnswer{
			{UserID: "host", IsCorrect: true, PointsAwarded: CorrectPointCost},
			{UserID: "p2", IsCorrect: false},
		}
		engine.endGameLocked(r)
		return nil
	}))

	snap, ok := store.Snapshot(room.ID)
	require.True(t, ok)
	assert.Equal(t, models.PhaseFinished, snap.Game.Phase)
	assert.False(t, snap.Game.IsActive)
	require.Len(t, snap.Game.Leaderboard, 2)
	assert.Equal(t, "host", snap.Game.Leaderboard[0].UserID)
	assert.Equal(t, CorrectPointCost, snap.Game.Leaderboard[0].Score)
}
