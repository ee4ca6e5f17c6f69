package models

import (
	"time"
)

// GroupGame is the durable summary of one finished group quiz.
type GroupGame struct {
	ID                uint      `gorm:"primaryKey"`
	ChatID            int64     `gorm:"not null;index"`
	ChatTitle         string    `gorm:"type:varchar(255)"`
	TotalQuestions    int       `gorm:"default:0"`
	ParticipantsCount int       `gorm:"default:0"`
	WinnerUserID      *int64    `gorm:"index"`
	WinnerUsername    string    `gorm:"type:varchar(255)"`
	WinnerScore       int       `gorm:"default:0"`
	PlayedAt          time.Time `gorm:"autoCreateTime"`
}

func (GroupGame) TableName() string {
	return "group_games"
}

// GroupGameParticipant is one player's line in a stored group game, with
// their final place on the leaderboard.
type GroupGameParticipant struct {
	ID             uint      `gorm:"primaryKey"`
	GameID         uint      `gorm:"not null;index"`
	Game           GroupGame `gorm:"foreignKey:GameID;constraint:OnDelete:CASCADE"`
	UserID         int64     `gorm:"not null;index"`
	Username       string    `gorm:"type:varchar(255)"`
	FirstName      string    `gorm:"type:varchar(255)"`
	CorrectAnswers int       `gorm:"default:0"`
	TotalAnswered  int       `gorm:"default:0"`
	Place          int       `gorm:"default:0"`
}

func (GroupGameParticipant) TableName() string {
	return "group_game_participants"
}
