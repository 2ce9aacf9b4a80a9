package cmd

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/cuewatch/cue/color"
	"github.com/cuewatch/cue/icon"
	"github.com/cuewatch/cue/style"
	"github.com/cuewatch/cue/util"
	"github.com/cuewatch/cue/where"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
)

type clearTarget struct {
	name     string
	argLong  string
	argShort mo.Option[string]
	location func() string
}

// Sockets are removed by every player run; clearing them only matters after a crash.
var clearTargets = []clearTarget{
	{"watch database", "database", mo.None[string](), where.Database},
	{"json history", "history", mo.Some("s"), where.History},
	{"player sockets", "sockets", mo.Some("p"), where.Sockets},
	{"logs", "logs", mo.Some("l"), where.Logs},
}

func init() {
	rootCmd.AddCommand(clearCmd)

	for _, target := range clearTargets {
		help := fmt.Sprintf("clear %s", target.name)
		if short, ok := target.argShort.Get(); ok {
			clearCmd.Flags().BoolP(target.argLong, short, false, help)
		} else {
			clearCmd.Flags().Bool(target.argLong, false, help)
		}
	}
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete stored watch data, logs or leftover player sockets",
	Run: func(cmd *cobra.Command, args []string) {
		selected := lo.Filter(clearTargets, func(target clearTarget, _ int) bool {
			return lo.Must(cmd.Flags().GetBool(target.argLong))
		})

		if len(selected) == 0 {
			handleErr(cmd.Help())
			return
		}

		for _, target := range selected {
			err := util.Delete(target.location())
			if err != nil && !errors.Is(err, fs.ErrNotExist) {
				handleErr(err)
			}
			cmd.Printf("%s %s cleared\n", style.Fg(color.Green)(icon.Get(icon.Success)), util.Capitalize(target.name))
		}
	},
}
