package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Mahaveer86619/mindguide/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "mindguide",
	Short: "MindGuide runs short mental-health self-assessments over chat",
	Long: `MindGuide walks a user through a five-question yes/no screening for
depression, anxiety or stress and returns a scored, non-diagnostic report.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file (env vars override it)")
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	return config.Load(path)
}
