package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "frameloom",
	Short: "FrameLoom is a clip-based timeline editing and preview engine.",
	Run: func(cmd *cobra.Command, args []string) {
		// Default to the server, same as `frameloom server`.
		runServer()
	},
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
