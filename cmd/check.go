package cmd

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/cuewatch/cue/color"
	"github.com/cuewatch/cue/constant"
	"github.com/cuewatch/cue/icon"
	"github.com/cuewatch/cue/player"
	"github.com/cuewatch/cue/style"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that the configured player can be found",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		opts := player.OptionsFromConfig()
		exe, err := player.Executable(opts)
		if err != nil {
			cmd.Println(missingPlayerBox(opts.Backend, err))
			handleErr(errors.New("player not available"))
		}

		cmd.Println(style.Box(color.Green,
			style.Fg(color.Green)(icon.Get(icon.Success)+" "+style.Bold(opts.Backend)),
			style.Faint(exe),
		))
	},
}

func missingPlayerBox(backend string, err error) string {
	lines := []string{
		style.New().Bold(true).Foreground(color.HiRed).Render(icon.Get(icon.Fail) + " Player not found"),
		"",
		err.Error(),
	}
	if hint := installHint(backend); hint != "" {
		lines = append(lines, "", "To install it, try running:", "  "+style.Fg(color.Purple)(hint))
	}
	return style.Box(color.HiRed, lines...)
}

func installHint(backend string) string {
	pkg := strings.ToLower(backend)
	if pkg == "" {
		pkg = string(player.FlavorMPV)
	}
	if pkg == string(player.FlavorIINA) {
		if runtime.GOOS != constant.Darwin {
			return ""
		}
		return "brew install --cask iina"
	}

	switch runtime.GOOS {
	case constant.Darwin:
		return fmt.Sprintf("brew install %s", pkg)
	case constant.Linux:
		return fmt.Sprintf("sudo apt install %s", pkg)
	case constant.Windows:
		return fmt.Sprintf("scoop install %s", pkg)
	default:
		return ""
	}
}
