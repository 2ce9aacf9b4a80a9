package cmd

import (
	"context"
	"fmt"

	"github.com/cuewatch/cue/color"
	"github.com/cuewatch/cue/icon"
	"github.com/cuewatch/cue/library"
	"github.com/cuewatch/cue/player"
	"github.com/cuewatch/cue/style"
	"github.com/cuewatch/cue/util"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(playCmd)
}

var playCmd = &cobra.Command{
	Use:   "play <path>",
	Short: "Play a file or a series directory and remember where you stopped",
	Long: `Play a file or a series directory and remember where you stopped.

Every media file in the directory becomes part of the playlist. Playback resumes
from the saved position, or from the next episode when the last one was finished.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := absPath(args[0])
		if err != nil {
			return err
		}

		repo, err := openRepository()
		if err != nil {
			return err
		}
		defer repo.Close()

		lib := newLibrary(repo)
		ctx, stop := interruptible()
		defer stop()

		session, err := lib.GetOrCreate(ctx, path)
		if err != nil {
			return err
		}
		return watch(ctx, cmd, lib, session)
	},
}

// watch plays session until the player is closed and reports where it ended.
func watch(ctx context.Context, cmd *cobra.Command, lib *library.Service, session *library.Session) error {
	files, err := lib.SeriesFiles(session)
	if err != nil {
		return err
	}

	svc, err := newPlayback(lib.Repository())
	if err != nil {
		return err
	}

	cmd.Printf("%s %s %s\n",
		style.Fg(color.Cyan)(icon.Get(icon.Play)),
		style.Bold(session.Metadata.CleanTitle),
		style.Faint(util.Quantify(len(files), "file", "files")),
	)

	state, err := svc.LaunchMedia(ctx, session, files)
	if err != nil {
		return err
	}

	cmd.Println(describeState(state, len(files)))
	if next, name, ok := lib.NextEpisode(session, files); ok && state.IsFinished {
		cmd.Printf("%s next up: %s %s\n", icon.Get(icon.Resume), style.Fg(color.Yellow)(name), style.Faint(fmt.Sprintf("(#%d)", next+1)))
	}
	return nil
}

// describeState renders a one-line summary of a playback state.
func describeState(state player.PlaybackState, files int) string {
	episode := style.Faint(fmt.Sprintf("%d/%d", state.LastPlayedIndex+1, files))

	if state.IsFinished {
		return fmt.Sprintf("%s %s finished", style.Fg(color.Green)(icon.Get(icon.Finished)), episode)
	}

	if state.Duration <= 0 {
		return fmt.Sprintf("%s stopped at %s", episode, util.Clock(state.Position))
	}

	return fmt.Sprintf("%s %s %s / %s",
		episode,
		style.Bar(state.Position/state.Duration, 20),
		util.Clock(state.Position),
		util.Clock(state.Duration),
	)
}
