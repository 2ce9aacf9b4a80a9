package cmd

import (
	"github.com/cuewatch/cue/color"
	"github.com/cuewatch/cue/icon"
	"github.com/cuewatch/cue/style"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(archiveCmd)
	archiveCmd.Flags().BoolP("undo", "u", false, "Restore an archived session")
}

var archiveCmd = &cobra.Command{
	Use:   "archive <path>",
	Short: "Hide a session from the list and from resume",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		undo := lo.Must(cmd.Flags().GetBool("undo"))

		path, err := absPath(args[0])
		if err != nil {
			return err
		}

		repo, err := openRepository()
		if err != nil {
			return err
		}
		defer repo.Close()

		session, err := newLibrary(repo).SetArchived(cmd.Context(), path, !undo)
		if err != nil {
			return err
		}

		verb := "archived"
		if undo {
			verb = "restored"
		}
		cmd.Printf("%s %s %s\n",
			style.Fg(color.Green)(icon.Get(icon.Success)),
			verb,
			style.Fg(color.Purple)(session.Metadata.CleanTitle),
		)
		return nil
	},
}
