package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var configPath string

var rootCmd = &cobra.Command{
	Use:           "leafdoc",
	Short:         "Plant leaf disease classifier",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	Long: `leafdoc classifies a photo of a plant leaf into one of the model's
disease categories and reports symptoms and treatment in English or Hindi.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"config file (YAML, default config/config.yaml if present); LEAFDOC_* environment variables override it")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
