package cli

import (
	"github.com/spf13/cobra"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var (
	configPath  string
	projectFlag string
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:     "leadmate",
	Version: Version,
	Short:   "Project dashboard client for team leads",
	Long: `LeadMate is a client for the project management backend.
It keeps a local cache of projects, tasks, documents and team members,
applies your changes optimistically, and talks to the AI agents that
generate tasks and analyze documents.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() error {
	return RootCmd.Execute()
}

func init() {
	RootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.leadmate/config.yaml)")
	RootCmd.PersistentFlags().StringVarP(&projectFlag, "project", "p", "", "Project ID scoping the command")
}
