// Package main provides the entry point for the Interview Tracker HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "interview_tracker",
	Short: "Interview Tracker HTTP API Server",
	Long:  "Interview Tracker manages contacts through four sequential interview rounds, scheduling each round ninety days after the last and exposing the interview workflow via REST API.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
