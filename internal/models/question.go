package models

import (
	"time"
)

// Question is one row of the trivia bank. Options are stored in fixed
// columns a-d; CorrectOption holds the winning label.
type Question struct {
	ID            uint      `gorm:"primaryKey"`
	Category      string    `gorm:"type:varchar(50);index"`
	Region        string    `gorm:"type:varchar(50);index"`
	QuestionText  string    `gorm:"type:text;not null"`
	OptionA       string    `gorm:"type:text"`
	OptionB       string    `gorm:"type:text"`
	OptionC       string    `gorm:"type:text"`
	OptionD       string    `gorm:"type:text"`
	CorrectOption string    `gorm:"type:varchar(1);not null"`
	Explanation   string    `gorm:"type:text"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`
}

func (Question) TableName() string {
	return "questions"
}
