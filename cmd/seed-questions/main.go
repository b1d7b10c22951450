package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prepstack/prepcore-backend/internal/config"
	"github.com/prepstack/prepcore-backend/internal/database"
	"github.com/prepstack/prepcore-backend/internal/logger"
)

// Seeds a small course/subject/chapter hierarchy with sample questions so
// the submission API can be exercised locally. Chapter and question rows are
// normally written by the content administration service.
func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	courseID := uuid.New()
	subjectID := uuid.New()
	chapterID := uuid.New()
	attemptLimit := 3

	_, err = pool.Exec(ctx,
		`INSERT INTO chapters (id, course_id, subject_id, title, attempt_limit)
		 VALUES ($1, $2, $3, $4, $5)`,
		chapterID, courseID, subjectID, "Sample Chapter", attemptLimit,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to insert chapter")
	}

	fmt.Println("=== Seeding 20 Questions ===")

	for i := 1; i <= 20; i++ {
		options := []string{"Option A", "Option B", "Option C", "Option D"}
		correct := i % 4

		_, err := pool.Exec(ctx,
			`INSERT INTO questions (course_id, subject_id, chapter_id, question_text, options, correct_answer)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			courseID, subjectID, chapterID, fmt.Sprintf("Sample question %d?", i), options, correct,
		)
		if err != nil {
			log.Fatal().Err(err).Int("question", i).Msg("Failed to insert question")
		}
	}

	fmt.Println("Seed complete.")
	fmt.Printf("  course_id:  %s\n", courseID)
	fmt.Printf("  subject_id: %s\n", subjectID)
	fmt.Printf("  chapter_id: %s (attempt_limit %d)\n", chapterID, attemptLimit)
}
