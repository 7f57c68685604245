// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "jobboard",
	Short: "JobBoard is a job board web application",
	Long: `JobBoard is a job board web application: browse and search job
postings, create an account and manage your own postings through the
dashboard. Authentication is delegated to an external identity provider.`,
	Args: cobra.OnlyValidArgs,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
