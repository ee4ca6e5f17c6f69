package database

import (
	"fmt"
	"time"

	"github.com/winequiz/quiz_bot/internal/config"
	"github.com/winequiz/quiz_bot/internal/models"
	"github.com/winequiz/quiz_bot/pkg/logger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func Connect(cfg *config.Config) (*gorm.DB, error) {
	dsn := cfg.GetDSN()

	var logLevel gormlogger.LogLevel
	if cfg.AppEnv == "development" {
		logLevel = gormlogger.Info
	} else {
		logLevel = gormlogger.Error
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	// Stats writes happen only at session boundaries; a modest pool is plenty.
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	logger.Info("Database connected successfully")
	return db, nil
}

func AutoMigrate(db *gorm.DB) error {
	logger.Info("Running database migrations...")

	err := db.AutoMigrate(
		&models.User{},
		&models.GroupGame{},
		&models.GroupGameParticipant{},
		&models.Question{},
		&models.Setting{},
	)

	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	logger.Info("Database migrations completed successfully")
	return nil
}

// SeedQuestions inserts a small starter bank when the table is empty, so a
// fresh install can run a game before any import.
func SeedQuestions(db *gorm.DB) error {
	var count int64
	db.Model(&models.Question{}).Count(&count)
	if count > 0 {
		return nil
	}

	logger.Info("Seeding starter questions...")

	questions := []models.Question{
		{
			Category:      "france",
			Region:        "bordeaux",
			QuestionText:  "Which grape variety dominates the Left Bank of Bordeaux?",
			OptionA:       "Merlot",
			OptionB:       "Cabernet Sauvignon",
			OptionC:       "Cabernet Franc",
			OptionD:       "Petit Verdot",
			CorrectOption: "b",
			Explanation:   "Gravelly Left Bank soils favour Cabernet Sauvignon; Merlot leads on the Right Bank.",
		},
		{
			Category:      "france",
			Region:        "burgundy",
			QuestionText:  "What is the principal red grape of Burgundy?",
			OptionA:       "Pinot Noir",
			OptionB:       "Gamay",
			OptionC:       "Syrah",
			OptionD:       "Malbec",
			CorrectOption: "a",
			Explanation:   "Red Burgundy is Pinot Noir; Gamay belongs to Beaujolais.",
		},
		{
			Category:      "france",
			Region:        "champagne",
			QuestionText:  "Which of these grapes is NOT permitted in most Champagne blends?",
			OptionA:       "Chardonnay",
			OptionB:       "Pinot Noir",
			OptionC:       "Pinot Meunier",
			OptionD:       "Riesling",
			CorrectOption: "d",
			Explanation:   "Champagne rests on Chardonnay, Pinot Noir and Pinot Meunier; Riesling is not allowed.",
		},
		{
			Category:      "italy",
			Region:        "tuscany",
			QuestionText:  "Chianti Classico is based on which grape?",
			OptionA:       "Nebbiolo",
			OptionB:       "Barbera",
			OptionC:       "Sangiovese",
			OptionD:       "Montepulciano",
			CorrectOption: "c",
			Explanation:   "Sangiovese is the backbone of Chianti Classico.",
		},
		{
			Category:      "italy",
			Region:        "piedmont",
			QuestionText:  "Barolo and Barbaresco are made from which variety?",
			OptionA:       "Nebbiolo",
			OptionB:       "Dolcetto",
			OptionC:       "Sangiovese",
			OptionD:       "Corvina",
			CorrectOption: "a",
			Explanation:   "Both of Piedmont's great names are 100% Nebbiolo.",
		},
		{
			Category:      "spain",
			Region:        "rioja",
			QuestionText:  "Which grape leads most Rioja reds?",
			OptionA:       "Garnacha",
			OptionB:       "Tempranillo",
			OptionC:       "Monastrell",
			OptionD:       "Mencía",
			CorrectOption: "b",
			Explanation:   "Tempranillo anchors Rioja, often blended with Garnacha and Graciano.",
		},
		{
			Category:      "germany",
			Region:        "all",
			QuestionText:  "Germany is best known for which white grape?",
			OptionA:       "Sauvignon Blanc",
			OptionB:       "Chardonnay",
			OptionC:       "Riesling",
			OptionD:       "Viognier",
			CorrectOption: "c",
			Explanation:   "Riesling is Germany's flagship, from bone dry to nobly sweet.",
		},
	}

	if err := db.Create(&questions).Error; err != nil {
		return fmt.Errorf("failed to seed questions: %w", err)
	}

	logger.Info("Seeded starter questions", "count", len(questions))
	return nil
}
