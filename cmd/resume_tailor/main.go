// Package main provides the entry point for the Resume Tailor client.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "resume_tailor",
	Short: "Job application tracker and resume builder",
	Long:  "Resume Tailor tracks job applications and builds tailored resumes through a step-by-step generation pipeline, exporting the result as DOCX or PDF.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
