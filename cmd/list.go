package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/cuewatch/cue/color"
	"github.com/cuewatch/cue/icon"
	"github.com/cuewatch/cue/library"
	"github.com/cuewatch/cue/style"
	"github.com/cuewatch/cue/util"
	"github.com/dustin/go-humanize"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolP("archived", "a", false, "List archived sessions instead of active ones")
	listCmd.Flags().BoolP("json", "j", false, "Format the output as JSON")
}

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List watch sessions, most recently played first",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			archived = lo.Must(cmd.Flags().GetBool("archived"))
			asJson   = lo.Must(cmd.Flags().GetBool("json"))
		)

		repo, err := openRepository()
		if err != nil {
			return err
		}
		defer repo.Close()

		lib := newLibrary(repo)
		sessions, err := lib.List(cmd.Context(), archived)
		if err != nil {
			return err
		}

		if asJson {
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(sessions)
		}

		if len(sessions) == 0 {
			cmd.Println(style.Faint("no sessions"))
			return nil
		}

		for _, session := range sessions {
			cmd.Println(sessionLine(lib, session))
		}
		return nil
	},
}

func sessionLine(lib *library.Service, session *library.Session) string {
	var marker string
	switch lib.ResumeAction(session) {
	case library.ActionRestartOrNext:
		marker = style.Fg(color.Green)(icon.Get(icon.Finished))
	case library.ActionShowRecap:
		marker = style.Fg(color.Yellow)(icon.Get(icon.Recap))
	default:
		marker = style.Fg(color.Cyan)(icon.Get(icon.Resume))
	}
	if session.Archived {
		marker = style.Faint(icon.Get(icon.Archived))
	}

	title := style.Bold(session.Metadata.CleanTitle)
	if season, ok := session.Metadata.SeasonNumber.Get(); ok {
		title += style.Faint(fmt.Sprintf(" S%02d", season))
	}

	p := session.Playback
	progress := util.Clock(p.Position)
	if p.Duration > 0 {
		progress = style.Bar(p.Position/p.Duration, 12) + " " + progress
	}

	return fmt.Sprintf("%s %s %s %s %s",
		marker,
		title,
		style.Faint(fmt.Sprintf("ep %d", p.LastPlayedIndex+1)),
		progress,
		style.Faint(humanize.Time(p.Timestamp)),
	)
}
