package commands

import (
	"context"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Persistent flags
var (
	configPath   string
	loginUser    string
	loginPass    string
	debugLogging bool
)

var rootCmd = &cobra.Command{
	Use:   "punch",
	Short: "A CLI attendance tracker",
	Long: `punch records when employees log in and out and what they are doing in between:
work, breaks, lunch, bathroom trips and meetings. Administrators can watch
open sessions live, manage users and export historical reports.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Annotations[annotationNoStore] == "true" {
			return nil
		}
		return openApp(cmd.Context())
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeApp()
	},
}

// SetVersion sets the version information
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the root command
func Execute(ctx context.Context) error {
	defer closeApp()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ./punch.yaml or ~/.punch/punch.yaml)")
	rootCmd.PersistentFlags().StringVarP(&loginUser, "user", "u", "", "Username to sign in as (prompted when empty)")
	rootCmd.PersistentFlags().StringVar(&loginPass, "password", "", "Password (or set PUNCH_PASSWORD; prompted when empty)")
	rootCmd.PersistentFlags().BoolVar(&debugLogging, "debug", false, "Log debug output including SQL")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(switchCmd)
	rootCmd.AddCommand(pauseCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(adminCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.SetHelpCommand(helpCmd)
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
