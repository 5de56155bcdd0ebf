package models

import "time"

// Phase is a Room's game-state-machine position.
type Phase string

const (
	PhaseWaiting  Phase = "waiting"
	PhaseStarting Phase = "starting"
	PhaseQuestion Phase = "question"
	PhaseResults  Phase = "results"
	PhaseFinished Phase = "finished"
)

// GameQuestion is one round's flag-recognition challenge.
type GameQuestion struct {
	Index         int       `json:"index"`
	Country       string    `json:"country"`
	Options       []string  `json:"options"`
	CorrectAnswer string    `json:"correctAnswer"`
	StartTime     time.Time `json:"startTime"`
	EndTime       time.Time `json:"endTime"`
}

// GameAnswer is one member's response to one question.
type GameAnswer struct {
	UserID        string    `json:"userId"`
	Username      string    `json:"username"`
	Answer        string    `json:"answer"`
	TimeToAnswer  int64     `json:"timeToAnswer"`
	IsCorrect     bool      `json:"isCorrect"`
	PointsAwarded int       `json:"pointsAwarded"`
	Timestamp     time.Time `json:"timestamp"`
}

// LeaderboardEntry is one derived leaderboard row.
type LeaderboardEntry struct {
	UserID         string  `json:"userId"`
	Username       string  `json:"username"`
	Score          int     `json:"score"`
	CorrectAnswers int     `json:"correctAnswers"`
	AverageTime    float64 `json:"averageTime"`
}

// GameState is a Room's per-round scheduler state. Timers exist only
// while Phase is Starting, Question or Results; Answers is reset at every
// Question entry; AnswerHistory is append-only within a game.
type GameState struct {
	IsActive             bool               `json:"isActive"`
	Phase                Phase              `json:"phase"`
	CurrentQuestion      *GameQuestion      `json:"currentQuestion,omitempty"`
	Answers              []GameAnswer       `json:"answers"`
	AnswerHistory        []GameAnswer       `json:"answerHistory"`
	CurrentQuestionIndex int                `json:"currentQuestionIndex"`
	TotalQuestions       int                `json:"totalQuestions"`
	Difficulty           Difficulty         `json:"difficulty"`
	GameStartTime        time.Time          `json:"gameStartTime"`
	GameEndTime          time.Time          `json:"gameEndTime"`
	UsedCountries        map[string]bool    `json:"usedCountries"`
	Leaderboard          []LeaderboardEntry `json:"leaderboard"`
}

// NewGameState returns a fresh, waiting-phase game state.
func NewGameState() *GameState {
	return &GameState{
		Phase:         PhaseWaiting,
		Answers:       []GameAnswer{},
		AnswerHistory: []GameAnswer{},
		UsedCountries: make(map[string]bool),
		Leaderboard:   []LeaderboardEntry{},
	}
}

// HasAnswered reports whether userID already answered the current
// question. At most one GameAnswer is ever recorded per (user, question).
func (g *GameState) HasAnswered(userID string) bool {
	for _, a := range g.Answers {
		if a.UserID == userID {
			return true
		}
	}
	return false
}
