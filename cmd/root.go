package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"reelcut/infrastructure/config"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "reelcut",
	Short: "Edit and export short vertical video clips",
	Long: `reelcut is a timeline editor for short vertical video clips:

  - Arrange, trim, split, and reorder clips on a timeline
  - Layer a narration or music track with its own offset and volume
  - Preview playback with per-frame A/V synchronization and transitions
  - Auto-save editing drafts and resume them later
  - Export the composition through ffmpeg and publish it to a gallery

Example:
  reelcut edit --project travel clip1.mp4 clip2.mp4`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config/config.yaml)")
}

func initConfig() {
	if cfgFile == "" {
		cfgFile = "config/config.yaml"
	}

	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		// Config file is optional for some commands (like help)
		// Commands that need config will check and error appropriately
		cfg = nil
	}

	logger = newLogger(cfg)
}

// newLogger builds the process logger from the configured level
func newLogger(cfg *config.Config) zerolog.Logger {
	level := zerolog.InfoLevel
	if cfg != nil {
		if parsed, err := zerolog.ParseLevel(cfg.Logging.Level); err == nil && parsed != zerolog.NoLevel {
			level = parsed
		}
	}
	out := zerolog.ConsoleWriter{Out: os.Stderr}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// GetConfig returns the loaded configuration
func GetConfig() *config.Config {
	return cfg
}
