// Package cmd implements the cue command line.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/cuewatch/cue/color"
	"github.com/cuewatch/cue/constant"
	"github.com/cuewatch/cue/icon"
	"github.com/cuewatch/cue/key"
	"github.com/cuewatch/cue/log"
	"github.com/cuewatch/cue/player"
	"github.com/cuewatch/cue/style"
	cc "github.com/ivanpirog/coloredcobra"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print the version")
	rootCmd.Flags().BoolP("continue", "c", false, "Resume the most recently watched session")

	rootCmd.PersistentFlags().StringP("icons", "I", "", "Icons variant (emoji, nerd, plain)")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("icons", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return icon.AvailableVariants(), cobra.ShellCompDirectiveDefault
	}))
	lo.Must0(viper.BindPFlag(key.IconsVariant, rootCmd.PersistentFlags().Lookup("icons")))

	rootCmd.PersistentFlags().StringP("player", "p", "", "Player backend (mpv, celluloid, iina, vlc)")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("player", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{
			string(player.FlavorMPV),
			string(player.FlavorCelluloid),
			string(player.FlavorIINA),
			player.BackendVLC,
		}, cobra.ShellCompDirectiveNoFileComp
	}))
	lo.Must0(viper.BindPFlag(key.PlayerBackend, rootCmd.PersistentFlags().Lookup("player")))
}

var rootCmd = &cobra.Command{
	Use:   constant.Cue,
	Short: "Watch local series and pick up exactly where you left off",
	Long: style.Bold(constant.Cue) + "\n" +
		style.New().Italic(true).Foreground(color.HiRed).Render("    - Watch local series and pick up exactly where you left off"),
	Args: cobra.NoArgs,
	// Errors are reported once, by Execute, after every deferred cleanup ran.
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if lo.Must(cmd.Flags().GetBool("version")) {
			versionCmd.Run(versionCmd, args)
			return nil
		}

		if lo.Must(cmd.Flags().GetBool("continue")) {
			return resumeLatest(cmd)
		}

		return cmd.Help()
	},
}

// Execute runs the command line.
func Execute() {
	if viper.GetBool(key.CliColored) {
		cc.Init(&cc.Config{
			RootCmd:       rootCmd,
			Headings:      cc.HiCyan + cc.Bold + cc.Underline,
			Commands:      cc.HiYellow + cc.Bold,
			Example:       cc.Italic,
			ExecName:      cc.Bold,
			Flags:         cc.Bold,
			FlagsDataType: cc.Italic + cc.HiBlue,
		})
	}

	if err := rootCmd.Execute(); err != nil {
		reportErr(err)
		os.Exit(1)
	}
}

// reportErr logs err and prints it to stderr.
func reportErr(err error) {
	log.Error(err)
	_, _ = fmt.Fprintf(os.Stderr, "%s %s\n", style.Fg(color.Red)(icon.Get(icon.Fail)), strings.Trim(err.Error(), " \n"))
}

// handleErr exits on err. Commands that hold the store open return their
// errors through RunE instead, so their deferred Close runs first.
func handleErr(err error) {
	if err != nil {
		reportErr(err)
		os.Exit(1)
	}
}
