// Package game implements the Game Engine: the per-room round state
// machine. A timer goroutine ticks, broadcasts, and calls the next
// transition; SubmitAnswer can also pre-empt the timer once every
// member has answered.
package game

import (
	"log"
	"sort"
	"time"

	apperr "flagrooms/errors"
	"flagrooms/countries"
	"flagrooms/models"
	"flagrooms/realtime"
	"flagrooms/rooms"
)

// CorrectPointCost is the flat per-correct-answer score. There is no
// speed bonus, keeping scoring deterministic for tests.
const CorrectPointCost = 1

const (
	startingCountdown = 5 * time.Second
	resultsInterval   = 3 * time.Second
)

// Archiver persists a finished game's summary for analytics. Satisfied
// by history.Store; kept as an interface here so the engine never
// imports GORM/Postgres directly.
type Archiver interface {
	SaveGame(summary GameSummary)
}

// GameSummary is everything the history archive needs after a game ends.
type GameSummary struct {
	RoomID         string
	Difficulty     models.Difficulty
	TotalQuestions int
	Leaderboard    []models.LeaderboardEntry
	Answers        []models.GameAnswer
	StartedAt      time.Time
	EndedAt        time.Time
}

// Engine drives every room's independent state machine.
type Engine struct {
	rooms       *rooms.Store
	broadcaster *realtime.Broadcaster
	provider    countries.Provider
	timers      *timerSet
	archiver    Archiver
}

func NewEngine(roomStore *rooms.Store, broadcaster *realtime.Broadcaster, provider countries.Provider, archiver Archiver) *Engine {
	return &Engine{
		rooms:       roomStore,
		broadcaster: broadcaster,
		provider:    provider,
		timers:      newTimerSet(),
		archiver:    archiver,
	}
}

func memberIDs(r *models.Room) []string {
	ids := make([]string, 0, len(r.Members))
	for _, m := range r.Members {
		ids = append(ids, m.UserID)
	}
	return ids
}

// StartGame starts a fresh game in roomID, if the caller is host.
func (e *Engine) StartGame(roomID, userID string) error {
	return e.rooms.WithRoom(roomID, func(r *models.Room) error {
		if r.Host != userID {
			return apperr.New(apperr.PermissionDenied, "only the host can start the game")
		}
		if len(r.Members) < 2 {
			return apperr.New(apperr.InvalidGameState, "need at least 2 members to start")
		}
		if r.Game.IsActive {
			return apperr.New(apperr.InvalidGameState, "game already active")
		}
		e.resetAndStart(r)
		e.broadcaster.ToMembers(memberIDs(r), MsgGameStarting, gameStartingPayload{Countdown: 5})
		rid := r.ID
		e.timers.schedule(rid, startingCountdown, func() { e.nextQuestion(rid) })
		return nil
	})
}

// RestartGame starts a new game in a finished room, if the caller is host.
func (e *Engine) RestartGame(roomID, userID string) error {
	return e.rooms.WithRoom(roomID, func(r *models.Room) error {
		if r.Host != userID {
			return apperr.New(apperr.PermissionDenied, "only the host can restart the game")
		}
		if r.Game.Phase != models.PhaseFinished {
			return apperr.New(apperr.InvalidGameState, "game is not finished")
		}
		e.resetAndStart(r)
		e.broadcaster.ToMembers(memberIDs(r), MsgGameRestarted, gameStartingPayload{Countdown: 5})
		rid := r.ID
		e.timers.schedule(rid, startingCountdown, func() { e.nextQuestion(rid) })
		return nil
	})
}

// resetAndStart applies the shared startGame/restartGame reset:
// per-member score/hasAnswered, empties answers/history/usedCountries/
// leaderboard, phase=starting, isActive=true.
func (e *Engine) resetAndStart(r *models.Room) {
	for _, m := range r.Members {
		m.Score = 0
		m.HasAnswered = false
	}
	r.Game.Answers = []models.GameAnswer{}
	r.Game.AnswerHistory = []models.GameAnswer{}
	r.Game.UsedCountries = make(map[string]bool)
	r.Game.Leaderboard = []models.LeaderboardEntry{}
	r.Game.CurrentQuestionIndex = 0
	r.Game.TotalQuestions = models.QuestionCountFor(r.Settings.Difficulty)
	r.Game.Difficulty = r.Settings.Difficulty
	r.Game.CurrentQuestion = nil
	r.Game.Phase = models.PhaseStarting
	r.Game.IsActive = true
	r.Game.GameStartTime = time.Now()
}

// StopGame halts an active game in roomID, if the caller is host.
func (e *Engine) StopGame(roomID, userID string) error {
	return e.rooms.WithRoom(roomID, func(r *models.Room) error {
		if r.Host != userID {
			return apperr.New(apperr.PermissionDenied, "only the host can stop the game")
		}
		e.timers.cancel(roomID)
		r.Game.Phase = models.PhaseWaiting
		r.Game.IsActive = false
		r.Game.CurrentQuestion = nil
		e.broadcaster.ToMembers(memberIDs(r), MsgGameStopped, nil)
		return nil
	})
}

// nextQuestion advances to the next round, triggered by the starting
// countdown timer or the results interval timer.
func (e *Engine) nextQuestion(roomID string) {
	err := e.rooms.WithRoom(roomID, func(r *models.Room) error {
		if !r.Game.IsActive {
			return nil
		}
		if r.Game.CurrentQuestionIndex >= r.Game.TotalQuestions {
			e.endGameLocked(r)
			return nil
		}

		q, ok := e.provider.Next(r.Game.Difficulty, r.Game.UsedCountries)
		if !ok {
			e.endGameLocked(r)
			return nil
		}

		r.Game.UsedCountries[q.Country.Code] = true

		now := time.Now()
		endTime := now.Add(time.Duration(r.Settings.TimePerQuestion) * time.Second)
		options := make([]string, 0, len(q.Options))
		publicOptions := make([]PublicOption, 0, len(q.Options))
		for _, o := range q.Options {
			options = append(options, o.Code)
			publicOptions = append(publicOptions, PublicOption{Code: o.Code, Name: o.Name, Flag: o.Flag})
		}

		r.Game.CurrentQuestion = &models.GameQuestion{
			Index:         r.Game.CurrentQuestionIndex,
			Country:       q.Country.Name,
			Options:       options,
			CorrectAnswer: q.Country.Code,
			StartTime:     now,
			EndTime:       endTime,
		}
		r.Game.Phase = models.PhaseQuestion
		r.Game.Answers = []models.GameAnswer{}
		r.Game.CurrentQuestionIndex++
		for _, m := range r.Members {
			m.HasAnswered = false
		}

		e.broadcaster.ToMembers(memberIDs(r), MsgNewQuestion, newQuestionPayload{
			Question: PublicQuestion{
				Index:   r.Game.CurrentQuestion.Index,
				Flag:    q.Country.Flag,
				Options: publicOptions,
				EndTime: endTime.UnixMilli(),
			},
			TotalQuestions: r.Game.TotalQuestions,
		})

		e.timers.schedule(roomID, time.Until(endTime), func() { e.endQuestion(roomID) })
		return nil
	})
	if err != nil {
		log.Printf("game: nextQuestion(%s): %v", roomID, err)
	}
}

// SubmitAnswer records userID's answer to the active question.
func (e *Engine) SubmitAnswer(roomID, userID, answer string) error {
	return e.rooms.WithRoom(roomID, func(r *models.Room) error {
		if r.Game.Phase != models.PhaseQuestion || r.Game.CurrentQuestion == nil {
			return apperr.New(apperr.InvalidGameState, "no question is active")
		}
		member := r.MemberByID(userID)
		if member == nil {
			return apperr.New(apperr.PermissionDenied, "not a member of this room")
		}
		if r.Game.HasAnswered(userID) {
			// Idempotent: second submission is a silent no-op (spec laws).
			return nil
		}

		q := r.Game.CurrentQuestion
		timeToAnswer := time.Since(q.StartTime).Milliseconds()
		isCorrect := answer == q.CorrectAnswer
		points := 0
		if isCorrect {
			points = CorrectPointCost
		}

		ga := models.GameAnswer{
			UserID:        userID,
			Username:      member.Username,
			Answer:        answer,
			TimeToAnswer:  timeToAnswer,
			IsCorrect:     isCorrect,
			PointsAwarded: points,
			Timestamp:     time.Now(),
		}
		r.Game.Answers = append(r.Game.Answers, ga)
		r.Game.AnswerHistory = append(r.Game.AnswerHistory, ga)
		member.HasAnswered = true
		r.Game.Leaderboard = computeLeaderboard(r)

		score := 0
		for _, entry := range r.Game.Leaderboard {
			if entry.UserID == userID {
				score = entry.Score
				break
			}
		}

		e.broadcaster.ToMembers(memberIDs(r), MsgAnswerSubmitted, answerSubmittedPayload{
			UserID:        userID,
			Username:      member.Username,
			HasAnswered:   true,
			TotalAnswers:  len(r.Game.Answers),
			TotalPlayers:  len(r.Members),
			PointsAwarded: points,
			Score:         score,
		})

		if len(r.Game.Answers) == len(r.Members) {
			e.endQuestionLocked(r)
		}
		return nil
	})
}

// endQuestion is the timer-triggered entrypoint for closing a round.
func (e *Engine) endQuestion(roomID string) {
	err := e.rooms.WithRoom(roomID, func(r *models.Room) error {
		e.endQuestionLocked(r)
		return nil
	})
	if err != nil {
		log.Printf("game: endQuestion(%s): %v", roomID, err)
	}
}

// endQuestionLocked assumes the caller already holds r's mutex (either
// the standalone timer entrypoint above, or submitAnswer pre-empting the
// timer once every member has answered).
func (e *Engine) endQuestionLocked(r *models.Room) {
	e.timers.cancel(r.ID)
	if !r.Game.IsActive || r.Game.Phase != models.PhaseQuestion || r.Game.CurrentQuestion == nil {
		return
	}

	r.Game.Phase = models.PhaseResults
	q := r.Game.CurrentQuestion
	r.Game.Leaderboard = computeLeaderboard(r)

	e.broadcaster.ToMembers(memberIDs(r), MsgQuestionResults, questionResultsPayload{
		CorrectAnswer:  q.CorrectAnswer,
		CorrectCountry: q.Country,
		PlayerAnswers:  append([]models.GameAnswer{}, r.Game.Answers...),
		Leaderboard:    r.Game.Leaderboard,
	})

	roomID := r.ID
	e.timers.schedule(roomID, resultsInterval, func() { e.nextQuestion(roomID) })
}

// endGameLocked finishes the game, called from within an already-held
// room lock (nextQuestion's pool-exhausted/finished path).
func (e *Engine) endGameLocked(r *models.Room) {
	e.timers.cancel(r.ID)

	r.Game.Leaderboard = computeLeaderboard(r)
	r.Game.Phase = models.PhaseFinished
	r.Game.IsActive = false
	r.Game.CurrentQuestion = nil
	r.Game.GameEndTime = time.Now()

	for _, entry := range r.Game.Leaderboard {
		if m := r.MemberByID(entry.UserID); m != nil {
			m.Score = entry.Score
		}
	}

	stats := computeGameStats(r)
	e.broadcaster.ToMembers(memberIDs(r), MsgGameEnded, gameEndedPayload{
		Leaderboard: r.Game.Leaderboard,
		GameStats:   stats,
	})

	if e.archiver != nil {
		summary := GameSummary{
			RoomID:         r.ID,
			Difficulty:     r.Game.Difficulty,
			TotalQuestions: r.Game.TotalQuestions,
			Leaderboard:    append([]models.LeaderboardEntry{}, r.Game.Leaderboard...),
			Answers:        append([]models.GameAnswer{}, r.Game.AnswerHistory...),
			StartedAt:      r.Game.GameStartTime,
			EndedAt:        r.Game.GameEndTime,
		}
		go e.archiver.SaveGame(summary)
	}
}

func computeGameStats(r *models.Room) gameStatsPayload {
	total := len(r.Game.AnswerHistory)
	correct := 0
	var timeSum int64
	for _, a := range r.Game.AnswerHistory {
		if a.IsCorrect {
			correct++
		}
		timeSum += a.TimeToAnswer
	}
	accuracy := 0.0
	avgTime := 0.0
	if total > 0 {
		accuracy = float64(correct) / float64(total)
		avgTime = float64(timeSum) / float64(total)
	}
	return gameStatsPayload{
		TotalQuestions: r.Game.TotalQuestions,
		TotalAnswers:   total,
		CorrectAnswers: correct,
		Accuracy:       accuracy,
		AverageTime:    avgTime,
		Difficulty:     r.Game.Difficulty,
		DurationMs:     r.Game.GameEndTime.Sub(r.Game.GameStartTime).Milliseconds(),
	}
}

// computeLeaderboard aggregates answerHistory into per-user
// {score, correctAnswers, averageTime}, members with no answers
// included at zero, sorted by score descending, stable.
func computeLeaderboard(r *models.Room) []models.LeaderboardEntry {
	type agg struct {
		score, correct int
		timeSum        int64
		count          int
	}
	byUser := make(map[string]*agg)
	for _, m := range r.Members {
		byUser[m.UserID] = &agg{}
	}
	for _, a := range r.Game.AnswerHistory {
		entry, ok := byUser[a.UserID]
		if !ok {
			continue
		}
		entry.score += a.PointsAwarded
		if a.IsCorrect {
			entry.correct++
		}
		entry.timeSum += a.TimeToAnswer
		entry.count++
	}

	out := make([]models.LeaderboardEntry, 0, len(r.Members))
	for _, m := range r.Members {
		a := byUser[m.UserID]
		avg := 0.0
		if a.count > 0 {
			avg = float64(a.timeSum) / float64(a.count)
		}
		out = append(out, models.LeaderboardEntry{
			UserID:         m.UserID,
			Username:       m.Username,
			Score:          a.score,
			CorrectAnswers: a.correct,
			AverageTime:    avg,
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}
