package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"reelcut/domain/media"
	"reelcut/domain/timeline"
	"reelcut/infrastructure/cvprobe"
	"reelcut/infrastructure/ffprobe"
	"reelcut/infrastructure/filesystem"
)

var probeAudio bool

var probeCmd = &cobra.Command{
	Use:   "probe [files...]",
	Short: "Show the playable duration of media files",
	Long: `Probe media files and print the duration the editor would use.
Files that cannot be probed fall back to a conservative default, the same
way they do when added to a timeline.

Example:
  reelcut probe clip1.mp4 clip2.mp4`,
	Args: cobra.MinimumNArgs(1),
	RunE: runProbe,
}

func init() {
	rootCmd.AddCommand(probeCmd)
	probeCmd.Flags().BoolVar(&probeAudio, "audio", false, "Probe as audio instead of video")
}

func runProbe(cmd *cobra.Command, args []string) error {
	ffprobePath := "ffprobe"
	if cfg := GetConfig(); cfg != nil {
		ffprobePath = cfg.Export.FFprobePath
	}

	prober := cvprobe.NewProber(
		ffprobe.NewProber(ffprobe.WithFFprobePath(ffprobePath), ffprobe.WithLogger(logger)),
		cvprobe.WithLogger(logger),
	)
	checker := filesystem.NewChecker()

	kind := media.KindVideo
	if probeAudio {
		kind = media.KindAudio
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "FILE\tDURATION\tSIZE")
	for _, ref := range args {
		if !checker.Exists(ref) {
			return fmt.Errorf("source not found: %s", ref)
		}
		seconds := prober.Probe(cmd.Context(), ref, kind)
		fmt.Fprintf(w, "%s\t%s\t%d\n", ref, timeline.FormatTimecode(seconds), checker.Size(ref))
	}
	return w.Flush()
}
