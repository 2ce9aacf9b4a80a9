package cmd

import (
	"errors"
	"path/filepath"

	"github.com/cuewatch/cue/color"
	"github.com/cuewatch/cue/icon"
	"github.com/cuewatch/cue/library"
	"github.com/cuewatch/cue/style"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(resumeCmd)
}

var resumeCmd = &cobra.Command{
	Use:     "resume",
	Aliases: []string{"continue"},
	Short:   "Resume the most recently watched session",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return resumeLatest(cmd)
	},
}

func resumeLatest(cmd *cobra.Command) error {
	repo, err := openRepository()
	if err != nil {
		return err
	}
	defer repo.Close()

	lib := newLibrary(repo)
	ctx, stop := interruptible()
	defer stop()

	latest, err := lib.MostRecent(ctx)
	if err != nil {
		return err
	}

	session, ok := latest.Get()
	if !ok {
		return errors.New("nothing to resume yet, start with cue play <path>")
	}

	switch lib.ResumeAction(session) {
	case library.ActionShowRecap:
		cmd.Printf("%s last watched %s, you were at %s\n",
			style.Fg(color.Yellow)(icon.Get(icon.Recap)),
			humanize.Time(session.Playback.Timestamp),
			style.Bold(lastFile(session)),
		)
	case library.ActionRestartOrNext:
		cmd.Printf("%s %s was finished, moving on\n",
			style.Fg(color.Green)(icon.Get(icon.Finished)),
			style.Bold(lastFile(session)),
		)
	}

	return watch(ctx, cmd, lib, session)
}

// lastFile names the last played file, or the session title before anything was played.
func lastFile(session *library.Session) string {
	if session.Playback.LastPlayedFile == "" {
		return session.Metadata.CleanTitle
	}
	return filepath.Base(session.Playback.LastPlayedFile)
}
