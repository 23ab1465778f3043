package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/interview-tracker/internal/answers"
	"github.com/jonathan/interview-tracker/internal/db"
)

var (
	seedFile    string
	seedWorkers int
)

var seedCmd = &cobra.Command{
	Use:   "seed-questions",
	Short: "Load a question bank file into the database",
	Long:  `Validate a JSON question bank file and upsert its questions. Existing questions matching on text, stage, and round are updated in place.`,
	RunE:  runSeed,
}

func init() {
	seedCmd.Flags().StringVar(&seedFile, "file", "questions.json", "Path to the question bank JSON file")
	seedCmd.Flags().IntVar(&seedWorkers, "workers", 4, "Number of concurrent upserts")
	rootCmd.AddCommand(seedCmd)
}

// seedQuestion mirrors one entry of the question bank file.
type seedQuestion struct {
	Text         string          `json:"text"`
	Type         string          `json:"type"`
	Stage        int             `json:"stage"`
	Options      []string        `json:"options,omitempty"`
	RoutingLogic json.RawMessage `json:"routing_logic,omitempty"`
	Required     bool            `json:"required"`
	Order        int             `json:"order"`
	Round        *int            `json:"round,omitempty"`
}

func runSeed(_ *cobra.Command, _ []string) error {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required")
	}

	data, err := os.ReadFile(seedFile)
	if err != nil {
		return fmt.Errorf("failed to read question bank file: %w", err)
	}

	if err := answers.ValidateQuestionBank(data); err != nil {
		return fmt.Errorf("question bank file is invalid: %w", err)
	}

	var questions []seedQuestion
	if err := json.Unmarshal(data, &questions); err != nil {
		return fmt.Errorf("failed to parse question bank file: %w", err)
	}

	ctx := context.Background()
	database, err := db.Connect(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(seedWorkers)

	for _, sq := range questions {
		sq := sq
		g.Go(func() error {
			q := &db.Question{
				Text:         sq.Text,
				Type:         sq.Type,
				Stage:        sq.Stage,
				Options:      db.StringArray(sq.Options),
				RoutingLogic: sq.RoutingLogic,
				Required:     sq.Required,
				Order:        sq.Order,
				Round:        sq.Round,
			}
			if _, err := database.UpsertQuestion(gCtx, q); err != nil {
				return fmt.Errorf("failed to upsert question %q: %w", sq.Text, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	log.Printf("Seeded %d questions from %s", len(questions), seedFile)
	return nil
}
