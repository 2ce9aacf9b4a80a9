package cmd

import (
	"os"
	"slices"
	"strings"

	"github.com/cuewatch/cue/color"
	"github.com/cuewatch/cue/config"
	"github.com/cuewatch/cue/constant"
	"github.com/cuewatch/cue/style"
	"github.com/cuewatch/cue/where"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(envCmd)
	envCmd.Flags().BoolP("set-only", "s", false, "Only show variables that are set")
	envCmd.Flags().BoolP("unset-only", "u", false, "Only show variables that are not set")

	envCmd.MarkFlagsMutuallyExclusive("set-only", "unset-only")
}

// envNames lists every environment variable cue reads, sorted.
func envNames() []string {
	names := lo.Map(config.EnvExposed, func(key string, _ int) string {
		return strings.ToUpper(constant.Cue + "_" + config.EnvKeyReplacer.Replace(key))
	})
	names = append(names, where.EnvConfigPath, where.EnvDataPath)
	slices.Sort(names)
	return names
}

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "List the environment variables cue reads",
	Run: func(cmd *cobra.Command, args []string) {
		setOnly := lo.Must(cmd.Flags().GetBool("set-only"))
		unsetOnly := lo.Must(cmd.Flags().GetBool("unset-only"))

		for _, env := range envNames() {
			value, present := os.LookupEnv(env)

			if (setOnly && !present) || (unsetOnly && present) {
				continue
			}

			cmd.Print(style.New().Bold(true).Foreground(color.Purple).Render(env))
			cmd.Print("=")

			if present {
				cmd.Println(style.Fg(color.Green)(value))
			} else {
				cmd.Println(style.Fg(color.Red)("unset"))
			}
		}
	},
}
