// Package rainccmd builds raincore's cobra CLI.
package rainccmd

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root cobra command with all subcommands.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "raincore",
		Short: "Terminal core devtools",
		Long:  "raincore exercises the terminal core (parser, grid, PTY session, tmux control mode) outside of a GUI.",
	}

	rootCmd.AddCommand(
		newRunCmd(),
		newTmuxCmd(),
	)

	return rootCmd
}
