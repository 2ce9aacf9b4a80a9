package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/cuewatch/cue/key"
	"github.com/cuewatch/cue/library"
	"github.com/cuewatch/cue/style"
	"github.com/cuewatch/cue/util"
	"github.com/dustin/go-humanize"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 0, "Number of entries to show")
	historyCmd.Flags().BoolP("json", "j", false, "Format the output as JSON")
	lo.Must0(viper.BindPFlag(key.StatsHistoryLimit, historyCmd.Flags().Lookup("limit")))
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent viewing, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepository()
		if err != nil {
			return err
		}
		defer repo.Close()

		ctx := cmd.Context()
		events, err := repo.WatchHistory(ctx, viper.GetInt(key.StatsHistoryLimit))
		if err != nil {
			return err
		}

		if lo.Must(cmd.Flags().GetBool("json")) {
			return json.NewEncoder(cmd.OutOrStdout()).Encode(events)
		}

		sessions, err := repo.LoadAll(ctx)
		if err != nil {
			return err
		}
		titles := lo.SliceToMap(sessions, func(s *library.Session) (string, string) {
			return s.ID, s.Metadata.CleanTitle
		})

		if len(events) == 0 {
			cmd.Println(style.Faint("no viewing recorded"))
			return nil
		}

		for _, event := range events {
			title, ok := titles[event.SessionID]
			if !ok {
				title = style.Faint("(deleted)")
			}
			cmd.Printf("%s %s %s %s\n",
				style.Faint(fmt.Sprintf("%-14s", humanize.Time(event.StartedAt))),
				style.Bold(title),
				style.Faint(fmt.Sprintf("ep %d", event.EpisodeIndex+1)),
				fmt.Sprintf("%s → %s (%s)",
					util.Clock(event.PositionStart),
					util.Clock(event.PositionEnd),
					formatWatchTime(event.WallClock()),
				),
			)
		}
		return nil
	},
}
