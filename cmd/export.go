package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"reelcut/application/export"
	"reelcut/domain/draft"
	"reelcut/domain/render"
	"reelcut/domain/timeline"
	"reelcut/infrastructure/config"
	"reelcut/infrastructure/draftstore"
	"reelcut/infrastructure/ffmpeg"
	"reelcut/infrastructure/gallery"
)

var (
	exportProjectKey    string
	exportFormat        string
	exportRemoveSilence bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Render a project's draft and publish it to the gallery",
	Long: `Render the saved draft of a project through ffmpeg and upload the
result to the Google Drive gallery. The draft is cleared once the
composition is registered; a failed export leaves it untouched.

Example:
  reelcut export --project travel`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVar(&exportProjectKey, "project", "", "Project config key (required)")
	exportCmd.Flags().StringVar(&exportFormat, "format", "", "Output container format (defaults to config)")
	exportCmd.Flags().BoolVar(&exportRemoveSilence, "remove-silence", false, "Strip silent stretches from the audio")
	exportCmd.MarkFlagRequired("project")
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	if cfg == nil {
		return fmt.Errorf("configuration not loaded; run reelcut setup first")
	}

	ctx := cmd.Context()

	projects := config.NewProjectManager(cfg, cfgFile)
	project, err := projects.GetProject(exportProjectKey)
	if err != nil {
		return fmt.Errorf("%w\nAdd it with: %s", err, config.SuggestAddProjectCommand(exportProjectKey))
	}

	store, err := draftstore.Open(cfg.Drafts.Directory)
	if err != nil {
		return err
	}
	defer store.Close()

	engine := ffmpeg.NewEngine(
		ffmpeg.WithFFmpegPath(cfg.Export.FFmpegPath),
		ffmpeg.WithWorkDir(cfg.Paths.WorkDirectory),
		ffmpeg.WithLogger(logger),
	)
	registrar, err := gallery.NewRegistrar(ctx, gallery.Config{
		CredentialsFile: cfg.Google.CredentialsFile,
		TokenFile:       cfg.Google.TokenFile,
		FolderID:        cfg.Google.GalleryFolderID,
	}, gallery.WithRegistrarLogger(logger))
	if err != nil {
		return err
	}

	format := exportFormat
	if format == "" {
		format = cfg.Export.OutputFormat
	}
	removeSilence := exportRemoveSilence || cfg.Export.RemoveSilence

	return RunExportWithDependencies(ctx, engine, registrar, store, project, format, removeSilence)
}

// RunExportWithDependencies runs the export with injected dependencies (for testing)
func RunExportWithDependencies(
	ctx context.Context,
	engine render.Engine,
	registrar render.Registrar,
	store draft.Store,
	project config.Project,
	format string,
	removeSilence bool,
) error {
	d, err := store.Load(ctx, project.Key)
	if err != nil {
		if errors.Is(err, draft.ErrNotFound) {
			return fmt.Errorf("no draft for project %q; edit it first", project.Key)
		}
		return err
	}
	state := d.Restore()

	svc := export.NewService(engine, registrar, store, os.Stdout, logger)
	result, err := svc.Export(ctx, state, export.Input{
		ProjectID:     project.Key,
		AspectRatio:   project.AspectRatio,
		RemoveSilence: removeSilence,
		OutputFormat:  format,
		Progress:      newProgressPrinter(),
	})
	if err != nil {
		return err
	}

	fmt.Printf("Exported %s (%s, %d bytes)\n", result.URL, timeline.FormatTimecode(result.DurationSeconds), result.Size)
	return nil
}

// newProgressPrinter returns a progress callback that writes each phase
// transition to the terminal once
func newProgressPrinter() render.ProgressFunc {
	var lastPhase render.Phase
	return func(phase render.Phase, fraction float64) {
		if phase != lastPhase {
			fmt.Printf("%s...\n", phase)
			lastPhase = phase
		}
	}
}
