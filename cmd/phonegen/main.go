package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/telforge/phonegen/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "phonegen",
	Short: "Constrained phone number generator",
	Long: `phonegen enumerates Chinese mobile numbers from the carrier allocation
table: pick a prefix, province and city, optionally narrow the carriers
and the trailing digits, and the service writes every matching number
to downloadable text files.`,
	Version: fmt.Sprintf("%s (commit %s, built %s)", version.Version, version.Commit, version.Date),
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(checkCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
