// Package history archives finished games for analytics. It is not a
// restore path: rooms and game state are never reconstructed from it,
// so nothing here is read back into a live room.
package history

import (
	"time"

	"gorm.io/gorm"
)

// GameRecord is one archived game.
type GameRecord struct {
	ID             uint           `gorm:"primaryKey"`
	RoomID         string         `gorm:"index;not null"`
	Difficulty     string         `gorm:"not null"`
	TotalQuestions int            `gorm:"not null"`
	StartedAt      time.Time      `gorm:"not null"`
	EndedAt        time.Time      `gorm:"not null"`
	CreatedAt      time.Time
	DeletedAt      gorm.DeletedAt `gorm:"index"`

	Leaderboard []LeaderboardRecord `gorm:"foreignKey:GameRecordID"`
	Answers     []AnswerRecord      `gorm:"foreignKey:GameRecordID"`
}

// LeaderboardRecord is one member's final standing in an archived game.
type LeaderboardRecord struct {
	ID             uint `gorm:"primaryKey"`
	GameRecordID   uint `gorm:"index;not null"`
	UserID         string `gorm:"not null"`
	Username       string `gorm:"not null"`
	Score          int    `gorm:"not null"`
	CorrectAnswers int    `gorm:"not null"`
	AverageTime    float64
}

// AnswerRecord is one submitted answer within an archived game.
type AnswerRecord struct {
	ID            uint      `gorm:"primaryKey"`
	GameRecordID  uint      `gorm:"index;not null"`
	UserID        string    `gorm:"not null"`
	Username      string    `gorm:"not null"`
	Answer        string    `gorm:"not null"`
	IsCorrect     bool      `gorm:"not null"`
	TimeToAnswer  int64     `gorm:"not null"` // milliseconds
	PointsAwarded int       `gorm:"not null"`
	Timestamp     time.Time `gorm:"not null"`
}
