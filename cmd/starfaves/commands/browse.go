package commands

import (
	"context"
	"errors"
	"os"

	"github.com/marshallshelly/starfaves/cmd/starfaves/tui"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var browseUserID int

// browseCmd opens the interactive favorites browser
var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse a user's favorites interactively",
	Long: `Open a terminal UI listing a user's favorites. Press d to remove the
selected favorite after confirmation, / to filter, r to reload, q to quit.

Example:
  starfaves browse --user 1`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBrowse(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(browseCmd)
	browseCmd.Flags().IntVar(&browseUserID, "user", 0, "User id (required)")
	_ = browseCmd.MarkFlagRequired("user")
}

func runBrowse(ctx context.Context) error {
	if browseUserID < 1 {
		return errors.New("--user must be a positive user id")
	}
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		return errors.New("browse needs a terminal; use \"favorite list\" instead")
	}

	store, closeDB, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeDB()

	return tui.RunBrowseUI(ctx, store, browseUserID)
}
