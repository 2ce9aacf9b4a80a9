package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cuewatch/cue/color"
	"github.com/cuewatch/cue/key"
	"github.com/cuewatch/cue/store"
	"github.com/cuewatch/cue/style"
	"github.com/cuewatch/cue/util"
	"github.com/dustin/go-humanize"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var errStatsUnsupported = errors.New("statistics need the sqlite store backend")

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().IntP("limit", "n", 0, "Number of titles in the most watched list")
	lo.Must0(viper.BindPFlag(key.StatsMostWatchedLimit, statsCmd.Flags().Lookup("limit")))
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show total watch time, most watched titles, streaks and viewing hours",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepository()
		if err != nil {
			return err
		}
		defer repo.Close()

		db, ok := repo.(*store.Store)
		if !ok {
			return errStatsUnsupported
		}

		ctx := cmd.Context()
		days := viper.GetInt(key.StatsStreakDays)

		total, err := db.TotalWatchTime(ctx)
		if err != nil {
			return err
		}
		streak, err := db.CurrentStreak(ctx, days)
		if err != nil {
			return err
		}
		ranked, err := db.MostWatched(ctx, viper.GetInt(key.StatsMostWatchedLimit))
		if err != nil {
			return err
		}
		calendar, err := db.StreakCalendar(ctx, days)
		if err != nil {
			return err
		}
		patterns, err := db.ViewingPatterns(ctx)
		if err != nil {
			return err
		}

		cmd.Println(style.Title("Overview"))
		cmd.Printf("%s %s\n", style.Faint("Total watch time"), style.Bold(formatWatchTime(total)))
		cmd.Printf("%s %s\n", style.Faint("Current streak  "), style.Bold(util.Quantify(streak, "day", "days")))
		cmd.Printf("%s %s\n", style.Faint("Active days     "), style.Bold(humanize.Comma(int64(len(calendar)))))
		cmd.Println()

		cmd.Println(style.Title("Most watched"))
		ranked = lo.Filter(ranked, func(t store.TitleWatchTime, _ int) bool { return t.WatchTime > 0 })
		if len(ranked) == 0 {
			cmd.Println(style.Faint("nothing yet"))
		}
		for i, t := range ranked {
			cmd.Printf("%s %s %s\n",
				style.Faint(humanize.Ordinal(i+1)),
				t.Title,
				style.Fg(color.Yellow)(formatWatchTime(t.WatchTime)),
			)
		}
		cmd.Println()

		cmd.Println(style.Title("Viewing hours"))
		cmd.Print(renderPatterns(patterns))
		return nil
	},
}

func formatWatchTime(d time.Duration) string {
	d = d.Round(time.Minute)
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	return fmt.Sprintf("%dh %02dm", int(d.Hours()), int(d.Minutes())%60)
}

// renderPatterns draws one bar per hour that saw any viewing, scaled to the busiest hour.
func renderPatterns(patterns map[int]float64) string {
	if len(patterns) == 0 {
		return style.Faint("nothing yet") + "\n"
	}

	busiest := lo.Max(lo.Values(patterns))
	var b strings.Builder
	for hour := 0; hour < 24; hour++ {
		minutes, ok := patterns[hour]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "%02d:00 %s %s\n", hour, style.Bar(minutes/busiest, 24), style.Faint(fmt.Sprintf("%.0fm", minutes)))
	}
	return b.String()
}
