package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"reelcut/application/autosave"
	"reelcut/application/editor"
	"reelcut/application/export"
	"reelcut/application/playback"
	"reelcut/domain/draft"
	"reelcut/domain/media"
	"reelcut/domain/timeline"
	"reelcut/infrastructure/config"
	"reelcut/infrastructure/cvprobe"
	"reelcut/infrastructure/draftstore"
	"reelcut/infrastructure/ffmpeg"
	"reelcut/infrastructure/ffprobe"
	"reelcut/infrastructure/filesystem"
	"reelcut/infrastructure/gallery"
	"reelcut/infrastructure/player"
)

var editProjectKey string

var editCmd = &cobra.Command{
	Use:   "edit [clips...]",
	Short: "Open an interactive editing session",
	Long: `Open an interactive editing session for a project.

Any clips given as arguments are appended to the timeline. If the project
has an auto-saved draft you are offered to resume it. The session auto-saves
after every change and the draft survives until the project is exported.

Example:
  reelcut edit --project travel clip1.mp4 clip2.mp4`,
	RunE: runEdit,
}

func init() {
	rootCmd.AddCommand(editCmd)
	editCmd.Flags().StringVar(&editProjectKey, "project", "", "Project config key (required)")
	editCmd.MarkFlagRequired("project")
}

func runEdit(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	if cfg == nil {
		return fmt.Errorf("configuration not loaded; run reelcut setup first")
	}

	ctx := cmd.Context()

	projects := config.NewProjectManager(cfg, cfgFile)
	project, err := projects.GetProject(editProjectKey)
	if err != nil {
		return fmt.Errorf("%w\nAdd it with: %s", err, config.SuggestAddProjectCommand(editProjectKey))
	}

	prober := cvprobe.NewProber(
		ffprobe.NewProber(ffprobe.WithFFprobePath(cfg.Export.FFprobePath), ffprobe.WithLogger(logger)),
		cvprobe.WithLogger(logger),
	)
	checker := filesystem.NewChecker()

	store, err := draftstore.Open(cfg.Drafts.Directory)
	if err != nil {
		return err
	}
	defer store.Close()

	return RunEditSession(ctx, cfg, project, prober, checker, store, DefaultPrompter, os.Stdin, args)
}

// RunEditSession wires an editing session with injected dependencies
// (for testing) and drives it from stdin.
func RunEditSession(
	ctx context.Context,
	cfg *config.Config,
	project config.Project,
	prober media.Prober,
	checker media.SourceChecker,
	store draft.Store,
	prompter Prompter,
	input io.Reader,
	clips []string,
) error {
	video := player.NewClockElement(prober, media.KindVideo, player.WithLogger(logger))
	audio := player.NewClockElement(prober, media.KindAudio, player.WithLogger(logger))
	preload := player.NewClockElement(prober, media.KindVideo, player.WithLogger(logger))
	defer video.Close()
	defer audio.Close()
	defer preload.Close()

	ed := editor.New(prober,
		editor.WithPixelsPerSecond(cfg.Editor.PixelsPerSecond),
		editor.WithPreviewElement(video),
		editor.WithLogger(logger),
	)

	// Resume a previous draft if the user wants it.
	if d, err := store.Load(ctx, project.Key); err == nil {
		resume, perr := prompter.Confirm(
			fmt.Sprintf("Found a draft for %s saved %s. Resume it?", project.Name, d.SavedAt.Format(time.RFC822)),
			true,
		)
		if perr == nil && resume {
			ed.Adopt(d.Restore())
		} else if perr == nil {
			// Starting fresh abandons the stale draft.
			if derr := store.Delete(ctx, project.Key); derr != nil {
				logger.Warn().Err(derr).Msg("could not discard the declined draft")
			}
		}
	} else if !errors.Is(err, draft.ErrNotFound) {
		logger.Warn().Err(err).Msg("could not check for a draft")
	}

	engine := playback.New(ed, video, audio, preload,
		playback.WithTick(time.Duration(cfg.Playback.TickMilliseconds)*time.Millisecond),
		playback.WithLogger(logger),
	)
	ed.SetOnSeek(engine.HandleSeek)

	loopCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go engine.Run(loopCtx)

	saver := autosave.New(draftstore.NewLoggingStore(store, logger), func() *draft.Draft {
		var d *draft.Draft
		ed.Update(func(s *timeline.State) { d = draft.Snapshot(s) })
		return d
	}, project.Key,
		autosave.WithDebounce(time.Duration(cfg.Drafts.DebounceMilliseconds)*time.Millisecond),
		autosave.WithLogger(logger),
	)
	ed.SetOnChange(saver.Changed)
	defer saver.Close(context.Background())

	session := NewEditSession(ed, engine, saver, cfg.Editor.PixelsPerSecond, os.Stdout)
	session.SetExporter(func(ctx context.Context) error {
		return exportFromSession(ctx, cfg, project, ed, store)
	})

	for _, ref := range clips {
		if !checker.Exists(ref) {
			return fmt.Errorf("source not found: %s", ref)
		}
		if err := session.Dispatch(ctx, "add "+ref); err != nil {
			return err
		}
	}

	fmt.Printf("Editing %s. Type help for commands.\n", project.Name)
	scanner := bufio.NewScanner(input)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		if err := session.Dispatch(ctx, scanner.Text()); err != nil {
			if errors.Is(err, ErrQuit) {
				break
			}
			fmt.Fprintln(os.Stderr, err)
		}
	}
	return scanner.Err()
}

// exportFromSession renders the current timeline without leaving the session
func exportFromSession(ctx context.Context, cfg *config.Config, project config.Project, ed *editor.Editor, store draft.Store) error {
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

	svc := export.NewService(engine, registrar, store, os.Stdout, logger)

	var state *timeline.State
	ed.Update(func(s *timeline.State) { state = cloneState(s) })

	result, err := svc.Export(ctx, state, export.Input{
		ProjectID:     project.Key,
		AspectRatio:   project.AspectRatio,
		RemoveSilence: cfg.Export.RemoveSilence,
		OutputFormat:  cfg.Export.OutputFormat,
		Progress:      newProgressPrinter(),
	})
	if err != nil {
		return err
	}

	fmt.Printf("Exported %s (%s, %d bytes)\n", result.URL, timeline.FormatTimecode(result.DurationSeconds), result.Size)
	return nil
}

// cloneState copies the timeline so the render can read it outside the
// editor lock while the playback loop keeps running
func cloneState(s *timeline.State) *timeline.State {
	out := timeline.NewState()
	out.CurrentTime = s.CurrentTime
	out.SelectedClipID = s.SelectedClipID
	out.SelectedAudioID = s.SelectedAudioID
	for _, c := range s.Clips {
		cc := *c
		if c.TransitionOut != nil {
			t := *c.TransitionOut
			cc.TransitionOut = &t
		}
		out.Clips = append(out.Clips, &cc)
	}
	for _, t := range s.AudioTracks {
		tt := *t
		out.AudioTracks = append(out.AudioTracks, &tt)
	}
	return out
}
