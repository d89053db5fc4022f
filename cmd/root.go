package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/xiaotaozi1127/story-teller-backend/pkg/config"
	"github.com/xiaotaozi1127/story-teller-backend/pkg/logger"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "story-teller",
	Short: "Story Teller API server",
	Long: `Story Teller API - turns long text into narrated audio

The server splits submitted stories into chunks, synthesizes every chunk
with a cloned reference voice in the background and serves each chunk
as soon as it is ready.

Features:
  • Sentence aware text segmentation
  • Reference voice upload and registration
  • Background synthesis with per chunk progress
  • Pluggable TTS backends (tone, exec, http)`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// NewRootCmd returns the root command (exported for testing)
func NewRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("json-logs", false, "enable JSON formatted logs")
}

// loadConfig initializes the configuration for commands that need it and
// applies the logging flags on top of it
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if err := config.Init(); err != nil {
		return nil, fmt.Errorf("error initializing config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		level, _ := flags.GetString("log-level")
		config.Set("logging.level", level)
	}
	if flags.Changed("json-logs") {
		if jsonLogs, _ := flags.GetBool("json-logs"); jsonLogs {
			config.Set("logging.format", "json")
		}
	}

	cfg, err := config.GetConfig()
	if err != nil {
		return nil, err
	}

	logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	logger.SetVersion(Version)

	return cfg, nil
}
