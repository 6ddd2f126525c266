// Package main provides the entry point for the LinkedIn auto-apply CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "autoapply",
	Short: "Automated multi-step job application form filler",
	Long:  "Autoapply walks multi-step application forms in a real browser, classifies each question, answers it from a candidate profile via an LLM oracle, and memoizes answers so repeated questions are never asked twice.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
