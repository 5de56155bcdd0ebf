package history

import (
	"log"

	"gorm.io/gorm"

	"flagrooms/game"
)

// Store satisfies game.Archiver, writing each finished game to Postgres
// asynchronously (see game.Engine.endGameLocked).
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate runs AutoMigrate for the archive tables.
func (s *Store) Migrate() error {
	return s.db.AutoMigrate(&GameRecord{}, &LeaderboardRecord{}, &AnswerRecord{})
}

// SaveGame persists a finished game's leaderboard and answer log. Errors
// are logged, not returned: a failed archive write must never affect a
// live room. This is a best-effort analytics record, not a restore path.
func (s *Store) SaveGame(summary game.GameSummary) {
	record := GameRecord{
		RoomID:         summary.RoomID,
		Difficulty:     string(summary.Difficulty),
		TotalQuestions: summary.TotalQuestions,
		StartedAt:      summary.StartedAt,
		EndedAt:        summary.EndedAt,
	}
	for _, e := range summary.Leaderboard {
		record.Leaderboard = append(record.Leaderboard, LeaderboardRecord{
			UserID:         e.UserID,
			Username:       e.Username,
			Score:          e.Score,
			CorrectAnswers: e.CorrectAnswers,
			AverageTime:    e.AverageTime,
		})
	}
	for _, a := range summary.Answers {
		record.Answers = append(record.Answers, AnswerRecord{
			UserID:        a.UserID,
			Username:      a.Username,
			Answer:        a.Answer,
			IsCorrect:     a.IsCorrect,
			TimeToAnswer:  a.TimeToAnswer,
			PointsAwarded: a.PointsAwarded,
			Timestamp:     a.Timestamp,
		})
	}

	if err := s.db.Create(&record).Error; err != nil {
		log.Printf("history: failed to archive game %s: %v", summary.RoomID, err)
	}
}
