package main

import (
	"github.com/spf13/cobra"

	"github.com/bitfantasy/nimo-inspect/internal/inspect/review"
)

var reviewCmd = &cobra.Command{
	Use:   "review [reference-no]",
	Short: "Open the interactive review screen",
	Long: `Open the interactive review screen for a reference number.

Controls:
  ←/h, →/l  - Previous / next image
  ↑/k, ↓/j  - Select saved annotation
  d         - Delete selected annotation
  r         - Reload
  q         - Quit`,
	Args: cobra.ExactArgs(1),
	RunE: runReview,
}

func init() {
	rootCmd.AddCommand(reviewCmd)
}

func runReview(cmd *cobra.Command, args []string) error {
	return review.Run(cmd.Context(), newClient(), args[0])
}
