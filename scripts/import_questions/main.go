package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/winequiz/quiz_bot/internal/models"
	"github.com/winequiz/quiz_bot/internal/security"
	"github.com/xuri/excelize/v2"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Imports a question bank from an xlsx file into postgres. One sheet per
// category; each row: region, question, option a, b, c, d, correct label,
// explanation. First row is the header.
//
// Usage: go run ./scripts/import_questions questions.xlsx

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	if len(os.Args) < 2 {
		log.Fatal("usage: import_questions <file.xlsx>")
	}

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"), os.Getenv("DB_USER"), os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"), os.Getenv("DB_PORT"))

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect database:", err)
	}

	f, err := excelize.OpenFile(os.Args[1])
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	totalImported := 0
	totalSkipped := 0

	for _, sheetName := range f.GetSheetList() {
		fmt.Printf("Importing sheet: %s\n", sheetName)
		rows, err := f.GetRows(sheetName)
		if err != nil {
			fmt.Printf("Error reading sheet %s: %v\n", sheetName, err)
			continue
		}

		category := strings.ToLower(strings.TrimSpace(sheetName))

		for i, row := range rows {
			if i == 0 || len(row) < 7 {
				continue
			}

			// row[0]: region
			// row[1]: question text
			// row[2..5]: options a-d
			// row[6]: correct option label (a/b/c/d)
			// row[7]: explanation (optional)

			correct := strings.ToLower(strings.TrimSpace(row[6]))
			if !security.ValidateOptionKey(correct) {
				fmt.Printf("Invalid correct option %q in row %d, skipping\n", row[6], i+1)
				totalSkipped++
				continue
			}

			explanation := ""
			if len(row) > 7 {
				explanation = clean(row[7])
			}

			question := models.Question{
				Category:      category,
				Region:        strings.ToLower(clean(row[0])),
				QuestionText:  clean(row[1]),
				OptionA:       clean(row[2]),
				OptionB:       clean(row[3]),
				OptionC:       clean(row[4]),
				OptionD:       clean(row[5]),
				CorrectOption: correct,
				Explanation:   explanation,
			}

			if question.QuestionText == "" {
				totalSkipped++
				continue
			}

			if err := db.Create(&question).Error; err != nil {
				fmt.Printf("Failed to insert row %d: %v\n", i+1, err)
				totalSkipped++
				continue
			}
			totalImported++
		}
	}

	fmt.Printf("Done. Imported %d questions, skipped %d rows.\n", totalImported, totalSkipped)
}

func clean(s string) string {
	return security.SanitizeString(security.SanitizeHTML(s))
}
