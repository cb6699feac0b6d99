package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version and BuildDate are set via ldflags at build time.
var (
	Version   = "dev"
	BuildDate = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of markerd",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("markerd %s (built %s)\n", Version, BuildDate)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
