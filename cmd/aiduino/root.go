package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile  string
	verbose  bool
	provider string
)

var rootCmd = &cobra.Command{
	Use:   "aiduino",
	Short: "AI.duino - AI assistant for Arduino development",
	Long: `AI.duino brings AI providers to Arduino development from the command line.

It provides:
  - One unified client for Claude, ChatGPT, Gemini, Mistral, and Groq
  - Automatic retries with linear backoff and clear failure reporting
  - Per-provider token and cost metering with durable daily history
  - Inline code completion driven by cursor-context triggers`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default <data-dir>/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&provider, "provider", "p", "", "provider id, overriding the selected one")
}
