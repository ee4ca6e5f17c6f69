package models

// Setting is a runtime-tunable key/value pair (admin overrides such as
// time_per_question).
type Setting struct {
	Key   string `gorm:"primaryKey;type:varchar(100)"`
	Value string `gorm:"type:varchar(255)"`
}

func (Setting) TableName() string {
	return "settings"
}

// Setting keys
const (
	SettingTimePerQuestion = "time_per_question"
)
