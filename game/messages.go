package game

import "flagrooms/models"

// Wire message type names.
const (
	MsgGameStarting    = "GAME_STARTING"
	MsgGameRestarted   = "GAME_RESTARTED"
	MsgNewQuestion     = "NEW_QUESTION"
	MsgAnswerSubmitted = "ANSWER_SUBMITTED"
	MsgQuestionResults = "QUESTION_RESULTS"
	MsgGameEnded       = "GAME_ENDED"
	MsgGameStopped     = "GAME_STOPPED"
)

// PublicOption is a question option with no hint of correctness; the
// correct answer is never sent to clients while a question is active.
type PublicOption struct {
	Code string `json:"code"`
	Name string `json:"name"`
	Flag string `json:"flag"`
}

// PublicQuestion is the NEW_QUESTION payload shape: everything a client
// needs to render the round except the correct answer.
type PublicQuestion struct {
	Index     int            `json:"index"`
	Flag      string         `json:"flag"`
	Options   []PublicOption `json:"options"`
	EndTime   int64          `json:"endTime"`
}

type gameStartingPayload struct {
	Countdown int `json:"countdown"`
}

type newQuestionPayload struct {
	Question       PublicQuestion `json:"question"`
	TotalQuestions int            `json:"totalQuestions"`
}

type answerSubmittedPayload struct {
	UserID        string `json:"userId"`
	Username      string `json:"username"`
	HasAnswered   bool   `json:"hasAnswered"`
	TotalAnswers  int    `json:"totalAnswers"`
	TotalPlayers  int    `json:"totalPlayers"`
	PointsAwarded int    `json:"pointsAwarded"`
	Score         int    `json:"score"`
}

type questionResultsPayload struct {
	CorrectAnswer  string                    `json:"correctAnswer"`
	CorrectCountry string                    `json:"correctCountry"`
	PlayerAnswers  []models.GameAnswer       `json:"playerAnswers"`
	Leaderboard    []models.LeaderboardEntry `json:"leaderboard"`
}

type gameStatsPayload struct {
	TotalQuestions int        `json:"totalQuestions"`
	TotalAnswers   int        `json:"totalAnswers"`
	CorrectAnswers int        `json:"correctAnswers"`
	Accuracy       float64    `json:"accuracy"`
	AverageTime    float64    `json:"averageTime"`
	Difficulty     models.Difficulty `json:"difficulty"`
	DurationMs     int64      `json:"duration"`
}

type gameEndedPayload struct {
	Leaderboard []models.LeaderboardEntry `json:"leaderboard"`
	GameStats   gameStatsPayload          `json:"gameStats"`
}
