package models

import (
	"time"
)

// User is a player's cumulative stats row, updated at session boundaries.
type User struct {
	UserID           int64     `gorm:"primaryKey"`
	Username         string    `gorm:"type:varchar(255)"`
	FirstName        string    `gorm:"type:varchar(255)"`
	TotalQuestions   int       `gorm:"default:0"`
	CorrectAnswers   int       `gorm:"default:0"`
	QuizzesCompleted int       `gorm:"default:0"`
	FirstSeen        time.Time `gorm:"autoCreateTime"`
	LastActive       time.Time `gorm:"autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}

// SuccessRate is the user's lifetime accuracy percentage.
func (u *User) SuccessRate() float64 {
	if u.TotalQuestions == 0 {
		return 0
	}
	return float64(u.CorrectAnswers) * 100 / float64(u.TotalQuestions)
}
