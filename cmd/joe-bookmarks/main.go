package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joestump/joe-bookmarks/internal/build"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "joe-bookmarks",
		Short:   "A self-hosted bookmark service",
		Long:    "Joe Bookmarks: save links and share them under short URLs.",
		Version: fmt.Sprintf("%s (%s, %s)", build.Version, build.Commit, build.Branch),
	}

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newMigrateCmd())
	rootCmd.AddCommand(newCheckCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
