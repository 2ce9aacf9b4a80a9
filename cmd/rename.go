package cmd

import (
	"errors"
	"fmt"

	"github.com/cuewatch/cue/color"
	"github.com/cuewatch/cue/icon"
	"github.com/cuewatch/cue/style"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(renameCmd)
	renameCmd.Flags().StringP("title", "t", "", "New title")
	renameCmd.Flags().IntP("season", "s", 0, "Season number")
	renameCmd.Flags().Bool("lock", false, "Protect the title from later changes until --unlock")
	renameCmd.Flags().Bool("unlock", false, "Allow the title to be replaced again")
	renameCmd.MarkFlagsMutuallyExclusive("lock", "unlock")
}

var renameCmd = &cobra.Command{
	Use:   "rename <path>",
	Short: "Change the title or season of a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		if !flags.Changed("title") && !flags.Changed("season") && !flags.Changed("lock") && !flags.Changed("unlock") {
			return errors.New("nothing to change, pass --title, --season, --lock or --unlock")
		}

		title := mo.None[string]()
		if flags.Changed("title") {
			title = mo.Some(lo.Must(flags.GetString("title")))
		}
		season := mo.None[int]()
		if flags.Changed("season") {
			season = mo.Some(lo.Must(flags.GetInt("season")))
		}
		locked := mo.None[bool]()
		switch {
		case flags.Changed("lock"):
			locked = mo.Some(true)
		case flags.Changed("unlock"):
			locked = mo.Some(false)
		}

		path, err := absPath(args[0])
		if err != nil {
			return err
		}

		repo, err := openRepository()
		if err != nil {
			return err
		}
		defer repo.Close()

		session, err := newLibrary(repo).UpdateMetadata(cmd.Context(), path, title, season, locked)
		if err != nil {
			return err
		}

		suffix := ""
		if n, ok := session.Metadata.SeasonNumber.Get(); ok {
			suffix = fmt.Sprintf(" S%02d", n)
		}
		if session.Metadata.UserLockedTitle {
			suffix += " (locked)"
		}
		cmd.Printf("%s %s%s\n",
			style.Fg(color.Green)(icon.Get(icon.Success)),
			style.Fg(color.Purple)(session.Metadata.CleanTitle),
			style.Faint(suffix),
		)
		return nil
	},
}
