package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"reelcut/infrastructure/config"
)

// Prompter interface for interactive prompts (allows mocking in tests)
type Prompter interface {
	Input(message string, defaultValue string) (string, error)
	Confirm(message string, defaultValue bool) (bool, error)
}

// SurveyPrompter implements Prompter using the survey library
type SurveyPrompter struct{}

func (p *SurveyPrompter) Input(message string, defaultValue string) (string, error) {
	result := ""
	prompt := &survey.Input{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return "", err
	}
	return result, nil
}

func (p *SurveyPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	result := defaultValue
	prompt := &survey.Confirm{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return false, err
	}
	return result, nil
}

// DefaultPrompter is the prompter used in production
var DefaultPrompter Prompter = &SurveyPrompter{}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create configuration file interactively",
	Long: `Prompts for configuration values and creates config.yaml.

This command guides you through setting up media directories, draft
storage, export defaults, and Google Drive gallery settings.`,
	RunE: runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	return RunSetupWithPrompter(DefaultPrompter, "config/config.yaml")
}

// RunSetupWithPrompter runs the setup with a given prompter (for testing)
func RunSetupWithPrompter(prompter Prompter, configPath string) error {
	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil {
		overwrite, err := prompter.Confirm("config.yaml already exists. Overwrite?", false)
		if err != nil {
			return fmt.Errorf("prompt cancelled")
		}
		if !overwrite {
			fmt.Println("Setup cancelled.")
			return nil
		}
	}

	fmt.Println("Welcome to reelcut setup!")
	fmt.Println()

	cfg := config.Default()

	if err := promptPaths(prompter, cfg); err != nil {
		return err
	}
	if err := promptDrafts(prompter, cfg); err != nil {
		return err
	}
	if err := promptExport(prompter, cfg); err != nil {
		return err
	}
	if err := promptGoogle(prompter, cfg); err != nil {
		return err
	}

	// Ensure config directory exists
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := config.Save(cfg, configPath); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	fmt.Println()
	fmt.Printf("Configuration saved to %s\n", configPath)
	return nil
}

func promptPaths(prompter Prompter, cfg *config.Config) error {
	media, err := prompter.Input("Where do your source clips live?", "")
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if media == "" {
		return fmt.Errorf("media directory is required")
	}
	cfg.Paths.MediaDirectory = media

	work, err := prompter.Input("Where should render scratch files go?", os.TempDir())
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	cfg.Paths.WorkDirectory = work

	return nil
}

func promptDrafts(prompter Prompter, cfg *config.Config) error {
	dir, err := prompter.Input("Where should editing drafts be stored?", cfg.Drafts.Directory)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if dir != "" {
		cfg.Drafts.Directory = dir
	}

	debounce, err := prompter.Input("Draft save debounce in milliseconds?", strconv.Itoa(cfg.Drafts.DebounceMilliseconds))
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if debounce != "" {
		ms, err := strconv.Atoi(debounce)
		if err != nil || ms <= 0 {
			return fmt.Errorf("debounce must be a positive number of milliseconds")
		}
		cfg.Drafts.DebounceMilliseconds = ms
	}

	return nil
}

func promptExport(prompter Prompter, cfg *config.Config) error {
	format, err := prompter.Input("Default export container format?", cfg.Export.OutputFormat)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if format != "" {
		cfg.Export.OutputFormat = format
	}

	removeSilence, err := prompter.Confirm("Strip silent stretches from exported audio by default?", false)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	cfg.Export.RemoveSilence = removeSilence

	return nil
}

func promptGoogle(prompter Prompter, cfg *config.Config) error {
	credentials, err := prompter.Input("Path to Google credentials file?", "credentials.json")
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if credentials == "" {
		credentials = "credentials.json"
	}
	cfg.Google.CredentialsFile = credentials

	token, err := prompter.Input("Path to store the OAuth token?", "token.json")
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if token == "" {
		token = "token.json"
	}
	cfg.Google.TokenFile = token

	folder, err := prompter.Input("Google Drive folder ID for the gallery?", "")
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if folder == "" {
		return fmt.Errorf("gallery folder ID is required")
	}
	cfg.Google.GalleryFolderID = folder

	return nil
}
