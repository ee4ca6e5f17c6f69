package repositories

import (
	"github.com/winequiz/quiz_bot/internal/models"
	"github.com/winequiz/quiz_bot/internal/quiz"
	"github.com/winequiz/quiz_bot/pkg/errors"
	"gorm.io/gorm"
)

// QuestionRepository serves randomized question sets from the postgres bank.
// Empty category or region means "no filter".
type QuestionRepository struct {
	db *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{db: db}
}

func (r *QuestionRepository) filtered(category, region string) *gorm.DB {
	q := r.db.Model(&models.Question{})
	if category != "" {
		q = q.Where("category = ?", category)
	}
	if region != "" {
		q = q.Where("region = ?", region)
	}
	return q
}

// RandomQuestions returns up to count questions matching the filter, in
// random order. Fewer than count come back when the pool is smaller.
func (r *QuestionRepository) RandomQuestions(count int, category, region string) ([]quiz.Question, error) {
	var rows []models.Question
	result := r.filtered(category, region).
		Order("RANDOM()").
		Limit(count).
		Find(&rows)

	if result.Error != nil {
		return nil, errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to load questions")
	}

	questions := make([]quiz.Question, 0, len(rows))
	for _, row := range rows {
		questions = append(questions, toQuizQuestion(row))
	}
	return questions, nil
}

// PoolSize counts questions matching the filter.
func (r *QuestionRepository) PoolSize(category, region string) (int, error) {
	var count int64
	result := r.filtered(category, region).Count(&count)
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to count questions")
	}
	return int(count), nil
}

// Categories lists the distinct categories present in the bank.
func (r *QuestionRepository) Categories() ([]string, error) {
	var categories []string
	result := r.db.Model(&models.Question{}).
		Distinct("category").
		Order("category").
		Pluck("category", &categories)

	if result.Error != nil {
		return nil, errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to list categories")
	}
	return categories, nil
}

// Regions lists the distinct regions within a category.
func (r *QuestionRepository) Regions(category string) ([]string, error) {
	var regions []string
	result := r.db.Model(&models.Question{}).
		Where("category = ?", category).
		Distinct("region").
		Order("region").
		Pluck("region", &regions)

	if result.Error != nil {
		return nil, errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to list regions")
	}
	return regions, nil
}

func toQuizQuestion(row models.Question) quiz.Question {
	return quiz.Question{
		Text: row.QuestionText,
		Options: map[string]string{
			"a": row.OptionA,
			"b": row.OptionB,
			"c": row.OptionC,
			"d": row.OptionD,
		},
		CorrectOption: row.CorrectOption,
		Explanation:   row.Explanation,
		Category:      row.Category,
		Region:        row.Region,
	}
}
