package repositories

import (
	"time"

	"github.com/winequiz/quiz_bot/internal/models"
	"github.com/winequiz/quiz_bot/pkg/errors"
	"gorm.io/gorm"
)

// StatsRepository is the durable sink for end-of-session aggregates. It is
// consulted only at session boundaries; the in-memory session never depends
// on these writes succeeding.
type StatsRepository struct {
	db *gorm.DB
}

func NewStatsRepository(db *gorm.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// GroupResult is one participant's line in a stored group game.
type GroupResult struct {
	UserID        int64
	Username      string
	FirstName     string
	CorrectCount  int
	TotalAnswered int
}

// WinnerResult identifies the winner of a group game.
type WinnerResult struct {
	UserID       int64
	Username     string
	CorrectCount int
}

// RecordPersonalResult folds one finished (or stopped) session into the
// user's cumulative stats, creating the user row on first sight.
func (r *StatsRepository) RecordPersonalResult(userID int64, username, firstName string, totalAnswered, correctCount int) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		err := tx.Where("user_id = ?", userID).First(&user).Error

		if err == gorm.ErrRecordNotFound {
			user = models.User{
				UserID:    userID,
				Username:  username,
				FirstName: firstName,
			}
			if err := tx.Create(&user).Error; err != nil {
				return errors.Wrap(err, errors.ErrCodeInternalError, "failed to create user")
			}
		} else if err != nil {
			return errors.Wrap(err, errors.ErrCodeInternalError, "failed to load user")
		}

		result := tx.Model(&models.User{}).
			Where("user_id = ?", userID).
			Updates(map[string]interface{}{
				"username":          username,
				"first_name":        firstName,
				"total_questions":   gorm.Expr("total_questions + ?", totalAnswered),
				"correct_answers":   gorm.Expr("correct_answers + ?", correctCount),
				"quizzes_completed": gorm.Expr("quizzes_completed + 1"),
				"last_active":       time.Now(),
			})

		if result.Error != nil {
			return errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to update user stats")
		}
		return nil
	})
}

// RecordGroupGame stores one group game summary with every participant's
// final place.
func (r *StatsRepository) RecordGroupGame(chatID int64, chatTitle string, totalQuestions int, participants []GroupResult, winner *WinnerResult) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		game := models.GroupGame{
			ChatID:            chatID,
			ChatTitle:         chatTitle,
			TotalQuestions:    totalQuestions,
			ParticipantsCount: len(participants),
		}
		if winner != nil {
			winnerID := winner.UserID
			game.WinnerUserID = &winnerID
			game.WinnerUsername = winner.Username
			game.WinnerScore = winner.CorrectCount
		}

		if err := tx.Create(&game).Error; err != nil {
			return errors.Wrap(err, errors.ErrCodeInternalError, "failed to store group game")
		}

		for i, p := range participants {
			row := models.GroupGameParticipant{
				GameID:         game.ID,
				UserID:         p.UserID,
				Username:       p.Username,
				FirstName:      p.FirstName,
				CorrectAnswers: p.CorrectCount,
				TotalAnswered:  p.TotalAnswered,
				Place:          i + 1,
			}
			if err := tx.Create(&row).Error; err != nil {
				return errors.Wrap(err, errors.ErrCodeInternalError, "failed to store game participant")
			}
		}
		return nil
	})
}

// GetUserStats loads one user's cumulative stats.
func (r *StatsRepository) GetUserStats(userID int64) (*models.User, error) {
	var user models.User
	result := r.db.Where("user_id = ?", userID).First(&user)

	if result.Error == gorm.ErrRecordNotFound {
		return nil, errors.New(errors.ErrCodeNotFound, "user not found")
	}
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to get user stats")
	}
	return &user, nil
}

// GetTopUsers returns the best players by lifetime accuracy, most active
// first among equals. Users who never answered are excluded.
func (r *StatsRepository) GetTopUsers(limit int) ([]models.User, error) {
	var users []models.User
	result := r.db.Where("total_questions > 0").
		Order("correct_answers * 100.0 / total_questions DESC, total_questions DESC").
		Limit(limit).
		Find(&users)

	if result.Error != nil {
		return nil, errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to get top users")
	}
	return users, nil
}

// AllUsers returns every stats row, for the admin CSV export.
func (r *StatsRepository) AllUsers() ([]models.User, error) {
	var users []models.User
	result := r.db.Order("correct_answers DESC, total_questions DESC").Find(&users)

	if result.Error != nil {
		return nil, errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to list users")
	}
	return users, nil
}

// TotalStats returns the number of known users and the sum of questions
// they have answered.
func (r *StatsRepository) TotalStats() (int64, int64, error) {
	var totalUsers int64
	if err := r.db.Model(&models.User{}).Count(&totalUsers).Error; err != nil {
		return 0, 0, errors.Wrap(err, errors.ErrCodeInternalError, "failed to count users")
	}

	var totalAnswers int64
	err := r.db.Model(&models.User{}).
		Select("COALESCE(SUM(total_questions), 0)").
		Scan(&totalAnswers).Error
	if err != nil {
		return 0, 0, errors.Wrap(err, errors.ErrCodeInternalError, "failed to sum answers")
	}

	return totalUsers, totalAnswers, nil
}
