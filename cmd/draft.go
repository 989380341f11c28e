package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"reelcut/domain/timeline"
	"reelcut/infrastructure/draftstore"
)

var draftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Manage auto-saved editing drafts",
	Long: `List, inspect, and discard auto-saved editing drafts.

Examples:
  reelcut draft list
  reelcut draft show travel
  reelcut draft discard travel`,
}

var draftListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects with saved drafts",
	RunE:  runDraftList,
}

var draftShowCmd = &cobra.Command{
	Use:   "show [project]",
	Short: "Show a draft's timeline summary",
	Args:  cobra.ExactArgs(1),
	RunE:  runDraftShow,
}

var draftDiscardCmd = &cobra.Command{
	Use:   "discard [project]",
	Short: "Delete a project's draft",
	Args:  cobra.ExactArgs(1),
	RunE:  runDraftDiscard,
}

func init() {
	rootCmd.AddCommand(draftCmd)
	draftCmd.AddCommand(draftListCmd)
	draftCmd.AddCommand(draftShowCmd)
	draftCmd.AddCommand(draftDiscardCmd)
}

func openDraftStore() (*draftstore.BadgerStore, error) {
	cfg := GetConfig()
	if cfg == nil {
		return nil, fmt.Errorf("configuration not loaded; run reelcut setup first")
	}
	return draftstore.Open(cfg.Drafts.Directory)
}

func runDraftList(cmd *cobra.Command, args []string) error {
	store, err := openDraftStore()
	if err != nil {
		return err
	}
	defer store.Close()

	ids, err := store.List(cmd.Context())
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		fmt.Println("No drafts.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PROJECT\tCLIPS\tLENGTH\tSAVED")
	for _, id := range ids {
		d, err := store.Load(cmd.Context(), id)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", id, len(d.Clips), timeline.FormatTimecode(d.TotalDuration), d.SavedAt.Local().Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

func runDraftShow(cmd *cobra.Command, args []string) error {
	store, err := openDraftStore()
	if err != nil {
		return err
	}
	defer store.Close()

	d, err := store.Load(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	state := d.Restore()

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tSOURCE\tLENGTH\tFLAGS")
	for i, c := range state.Clips {
		flags := ""
		if c.Muted {
			flags += "muted "
		}
		if c.TransitionOut != nil {
			flags += fmt.Sprintf("%s/%.1fs", c.TransitionOut.Type, c.TransitionOut.Duration)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", i, c.SourceRef, timeline.FormatTimecode(c.Seconds()), flags)
	}
	for i, t := range state.AudioTracks {
		fmt.Fprintf(w, "a%d\t%s\t%s\t+%s vol %.2f\n", i, t.SourceRef, timeline.FormatTimecode(t.Seconds()), timeline.FormatTimecode(t.Offset), t.Volume)
	}
	w.Flush()
	fmt.Printf("Playhead %s / %s, saved %s\n",
		timeline.FormatTimecode(state.CurrentTime),
		timeline.FormatTimecode(state.TotalDuration()),
		d.SavedAt.Local().Format("2006-01-02 15:04"))
	return nil
}

func runDraftDiscard(cmd *cobra.Command, args []string) error {
	store, err := openDraftStore()
	if err != nil {
		return err
	}
	defer store.Close()

	confirm, err := DefaultPrompter.Confirm(fmt.Sprintf("Discard the draft for %q?", args[0]), false)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if !confirm {
		fmt.Println("Kept.")
		return nil
	}

	if err := store.Delete(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Println("Draft discarded.")
	return nil
}
