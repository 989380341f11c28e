package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"reelcut/application/autosave"
	"reelcut/application/editor"
	"reelcut/application/playback"
	"reelcut/domain/timeline"
)

// EditSession dispatches interactive editing commands against the editor
// and playback engine. It exists separately from the cobra command so the
// command grammar can be tested without a terminal.
type EditSession struct {
	editor          *editor.Editor
	engine          *playback.Engine
	saver           *autosave.Saver
	pixelsPerSecond float64
	out             io.Writer
	exportFn        func(ctx context.Context) error
}

// NewEditSession creates a session over the given collaborators.
// saver and exportFn may be nil.
func NewEditSession(ed *editor.Editor, engine *playback.Engine, saver *autosave.Saver, pixelsPerSecond float64, out io.Writer) *EditSession {
	if pixelsPerSecond <= 0 {
		pixelsPerSecond = editor.DefaultPixelsPerSecond
	}
	return &EditSession{
		editor:          ed,
		engine:          engine,
		saver:           saver,
		pixelsPerSecond: pixelsPerSecond,
		out:             out,
	}
}

// SetExporter installs the callback run by the export command
func (s *EditSession) SetExporter(fn func(ctx context.Context) error) {
	s.exportFn = fn
}

// ErrQuit signals that the user asked to end the session
var ErrQuit = fmt.Errorf("session ended")

// Dispatch executes one command line. It returns ErrQuit when the session
// should end; all other errors are recoverable.
func (s *EditSession) Dispatch(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "add":
		return s.addClips(ctx, args)
	case "audio":
		return s.addAudio(ctx, args)
	case "ls", "status":
		s.printStatus()
		return nil
	case "select":
		return s.selectTarget(args)
	case "delete", "del":
		return s.deleteSelected()
	case "mute":
		return s.muteSelected()
	case "split":
		return s.editor.SplitAtPlayhead()
	case "seek":
		return s.seek(args)
	case "play":
		return s.play(args)
	case "stop":
		s.engine.Stop()
		return nil
	case "transition":
		return s.setTransition(args)
	case "cut":
		return s.clearTransition(args)
	case "trim":
		return s.trimSelected(args)
	case "move":
		return s.moveSelectedAudio(args)
	case "reorder":
		return s.reorderSelected(args)
	case "save":
		if s.saver != nil {
			s.saver.Flush(ctx)
			fmt.Fprintln(s.out, "Draft saved.")
		}
		return nil
	case "export":
		if s.exportFn == nil {
			return fmt.Errorf("export is not available in this session")
		}
		if err := s.exportFn(ctx); err != nil {
			return err
		}
		// The export cleared the stored draft; suppress the close-time
		// flush so it stays cleared until the next edit.
		if s.saver != nil {
			s.saver.Exported()
		}
		return nil
	case "help":
		s.printHelp()
		return nil
	case "quit", "exit", "q":
		return ErrQuit
	default:
		return fmt.Errorf("unknown command %q (try help)", cmd)
	}
}

func (s *EditSession) addClips(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: add <file>...")
	}
	for _, ref := range args {
		clip, err := s.editor.AddClip(ctx, ref)
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "Added clip %s (%s)\n", shortID(clip.ID), timeline.FormatTimecode(clip.Seconds()))
	}
	return nil
}

func (s *EditSession) addAudio(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: audio <file>")
	}
	track, err := s.editor.AddAudioTrack(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Added audio %s (%s)\n", shortID(track.ID), timeline.FormatTimecode(track.Seconds()))
	return nil
}

// selectTarget selects "3" (clip index) or "a2" (audio track index)
func (s *EditSession) selectTarget(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: select <clip#|a<track#>>")
	}
	arg := args[0]

	if rest, ok := strings.CutPrefix(arg, "a"); ok {
		n, err := strconv.Atoi(rest)
		if err != nil {
			return fmt.Errorf("bad audio track number %q", rest)
		}
		id, err := s.audioIDAt(n)
		if err != nil {
			return err
		}
		return s.editor.SelectAudio(id)
	}

	n, err := strconv.Atoi(arg)
	if err != nil {
		return fmt.Errorf("bad clip number %q", arg)
	}
	id, err := s.clipIDAt(n)
	if err != nil {
		return err
	}
	return s.editor.SelectClip(id)
}

func (s *EditSession) deleteSelected() error {
	clipID, audioID := s.selection()
	switch {
	case audioID != "":
		return s.editor.DeleteAudio(audioID)
	case clipID != "":
		return s.editor.DeleteClip(clipID)
	default:
		return fmt.Errorf("nothing selected")
	}
}

func (s *EditSession) muteSelected() error {
	clipID, _ := s.selection()
	if clipID == "" {
		return fmt.Errorf("select a clip first")
	}
	return s.editor.ToggleMute(clipID)
}

func (s *EditSession) seek(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: seek <timecode>")
	}
	to, err := timeline.ParseTimecode(args[0])
	if err != nil {
		return err
	}
	landed := s.editor.Scrub(to)
	fmt.Fprintf(s.out, "Playhead at %s\n", timeline.FormatTimecode(landed))
	return nil
}

func (s *EditSession) play(args []string) error {
	mode := timeline.PlayAll
	if len(args) > 0 {
		switch args[0] {
		case "video":
			mode = timeline.PlayVideo
		case "audio":
			mode = timeline.PlayAudio
		case "all":
			mode = timeline.PlayAll
		default:
			return fmt.Errorf("usage: play [video|audio|all]")
		}
	}
	s.engine.Play(mode)
	return nil
}

func (s *EditSession) setTransition(args []string) error {
	if len(args) < 2 || len(args) > 3 {
		return fmt.Errorf("usage: transition <seam#> <type> [duration]")
	}
	seam, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("bad seam number %q", args[0])
	}
	typ, err := timeline.ParseTransitionType(args[1])
	if err != nil {
		return err
	}
	duration := 0.5
	if len(args) == 3 {
		duration, err = strconv.ParseFloat(args[2], 64)
		if err != nil {
			return fmt.Errorf("bad duration %q", args[2])
		}
	}
	return s.editor.SetTransition(seam, typ, duration)
}

func (s *EditSession) clearTransition(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: cut <seam#>")
	}
	seam, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("bad seam number %q", args[0])
	}
	return s.editor.ClearTransition(seam)
}

// trimSelected nudges a trim handle of the selected clip or track by a
// signed number of seconds, through the same drag path the UI uses.
func (s *EditSession) trimSelected(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: trim <start|end> <seconds>")
	}
	var side editor.Side
	switch args[0] {
	case "start":
		side = editor.SideStart
	case "end":
		side = editor.SideEnd
	default:
		return fmt.Errorf("usage: trim <start|end> <seconds>")
	}
	delta, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("bad seconds %q", args[1])
	}

	clipID, audioID := s.selection()
	var session *editor.DragSession
	switch {
	case audioID != "":
		session, err = s.editor.BeginAudioTrim(audioID, side)
	case clipID != "":
		session, err = s.editor.BeginClipTrim(clipID, side)
	default:
		return fmt.Errorf("select a clip or audio track first")
	}
	if err != nil {
		return err
	}
	defer session.End()

	landed := session.Drag(delta * s.pixelsPerSecond)
	fmt.Fprintf(s.out, "Trim %s at %s\n", args[0], timeline.FormatTimecode(landed))
	return nil
}

func (s *EditSession) moveSelectedAudio(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: move <seconds>")
	}
	delta, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("bad seconds %q", args[0])
	}
	_, audioID := s.selection()
	if audioID == "" {
		return fmt.Errorf("select an audio track first")
	}
	session, err := s.editor.BeginAudioMove(audioID)
	if err != nil {
		return err
	}
	defer session.End()

	landed := session.Drag(delta * s.pixelsPerSecond)
	fmt.Fprintf(s.out, "Audio starts at %s\n", timeline.FormatTimecode(landed))
	return nil
}

func (s *EditSession) reorderSelected(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: reorder <clip#>")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("bad clip number %q", args[0])
	}
	targetID, err := s.clipIDAt(n)
	if err != nil {
		return err
	}
	clipID, _ := s.selection()
	if clipID == "" {
		return fmt.Errorf("select a clip first")
	}

	session, err := s.editor.BeginReorder(clipID)
	if err != nil {
		return err
	}
	defer session.End()

	return session.DragOver(targetID)
}

func (s *EditSession) printStatus() {
	s.editor.Update(func(st *timeline.State) {
		w := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "#\tID\tSOURCE\tLENGTH\tFLAGS")
		for i, c := range st.Clips {
			flags := ""
			if c.Muted {
				flags += "muted "
			}
			if c.TransitionOut != nil {
				flags += fmt.Sprintf("%s/%.1fs", c.TransitionOut.Type, c.TransitionOut.Duration)
			}
			marker := " "
			if c.ID == st.SelectedClipID {
				marker = "*"
			}
			fmt.Fprintf(w, "%s%d\t%s\t%s\t%s\t%s\n", marker, i, shortID(c.ID), c.SourceRef, timeline.FormatTimecode(c.Seconds()), flags)
		}
		for i, t := range st.AudioTracks {
			marker := " "
			if t.ID == st.SelectedAudioID {
				marker = "*"
			}
			fmt.Fprintf(w, "%sa%d\t%s\t%s\t%s\t+%s vol %.2f\n", marker, i, shortID(t.ID), t.SourceRef, timeline.FormatTimecode(t.Seconds()), timeline.FormatTimecode(t.Offset), t.Volume)
		}
		w.Flush()
		fmt.Fprintf(s.out, "Playhead %s / %s\n", timeline.FormatTimecode(st.CurrentTime), timeline.FormatTimecode(st.TotalDuration()))
	})
}

func (s *EditSession) printHelp() {
	fmt.Fprint(s.out, `Commands:
  add <file>...              append clips to the timeline
  audio <file>               set the audio track
  ls                         show the timeline
  select <n> | select a<n>   select a clip or audio track
  delete                     delete the selection
  mute                       toggle mute on the selected clip
  split                      split the media under the playhead
  seek <m:ss.s>              move the playhead
  play [video|audio|all]     start playback
  stop                       pause playback
  transition <seam> <type> [dur]   set a transition after clip <seam>
  cut <seam>                 remove a transition
  trim <start|end> <secs>    nudge a trim handle of the selection
  move <secs>                shift the selected audio track
  reorder <n>                move the selected clip to position <n>
  save                       flush the draft now
  export                     render and publish the composition
  quit                       end the session
`)
}

// selection returns the selected clip and audio IDs
func (s *EditSession) selection() (clipID, audioID string) {
	s.editor.Update(func(st *timeline.State) {
		clipID, audioID = st.SelectedClipID, st.SelectedAudioID
	})
	return clipID, audioID
}

func (s *EditSession) clipIDAt(n int) (string, error) {
	var id string
	var count int
	s.editor.Update(func(st *timeline.State) {
		count = len(st.Clips)
		if n >= 0 && n < count {
			id = st.Clips[n].ID
		}
	})
	if id == "" {
		return "", fmt.Errorf("no clip %d (timeline has %d)", n, count)
	}
	return id, nil
}

func (s *EditSession) audioIDAt(n int) (string, error) {
	var id string
	var count int
	s.editor.Update(func(st *timeline.State) {
		count = len(st.AudioTracks)
		if n >= 0 && n < count {
			id = st.AudioTracks[n].ID
		}
	})
	if id == "" {
		return "", fmt.Errorf("no audio track %d (timeline has %d)", n, count)
	}
	return id, nil
}

// shortID abbreviates a uuid for display
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
