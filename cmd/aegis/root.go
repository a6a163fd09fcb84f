package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "aegis",
	Short: "Aegis - AI model governance service",
	Long: `Aegis is an AI model governance service that keeps a registry of AI
models, versions, and evaluation metrics, and enforces governance policies on
every compliance status transition.

It provides:
  - A model registry with risk classification and EU AI Act documentation
  - Policy-gated compliance status transitions
  - An append-only violation log and audit trail
  - Declarative policy seeding from YAML with hot reload
  - CSV and JSON export of audit records`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
