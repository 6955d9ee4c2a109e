package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var helpCmd = &cobra.Command{
	Use:         "help",
	Short:       "Show comprehensive help for punch",
	Long:        `Display detailed help for all punch commands and flags.`,
	Annotations: map[string]string{annotationNoStore: "true"},
	Run: func(cmd *cobra.Command, args []string) {
		showCustomHelp(cmd.OutOrStdout())
	},
}

var versionCmd = &cobra.Command{
	Use:         "version",
	Short:       "Print version information",
	Annotations: map[string]string{annotationNoStore: "true"},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "punch %s (commit %s, built %s)\n", version, commit, date)
	},
}

func showCustomHelp(out io.Writer) {
	fmt.Fprint(out, `
██████╗ ██╗   ██╗███╗   ██╗ ██████╗██╗  ██╗
██╔══██╗██║   ██║████╗  ██║██╔════╝██║  ██║
██████╔╝██║   ██║██╔██╗ ██║██║     ███████║
██╔═══╝ ██║   ██║██║╚██╗██║██║     ██╔══██║
██║     ╚██████╔╝██║ ╚████║╚██████╗██║  ██║
╚═╝      ╚═════╝ ╚═╝  ╚═══╝ ╚═════╝╚═╝  ╚═╝

punch - CLI Attendance Tracker

GLOBAL FLAGS:
  -u, --user              Username to sign in as
  --password              Password (or PUNCH_PASSWORD, prompted when empty)
  --config                Config file path
  --debug                 Debug logging including SQL

EMPLOYEE COMMANDS:

  start                   Log in for today (resumes an open session)
    -a, --activity        Activity to start in (default work)
    --no-ui               Skip the interactive timer

    Timer keys:
      w/b/l/t/m     Work, break, lunch, bathroom, meeting
      i             Pause the current activity
      s             End the session (log out)
      q/esc         Leave the timer, session stays open

  switch <activity>       Change activity: work|break|lunch|bathroom|meeting
  pause                   Stop the current activity, stay logged in
  stop                    Log out and show today's totals
  status                  Show the current session
    --json                JSON output

ADMIN COMMANDS:

  admin monitor           Live view of every open session
    --employee            Only one employee (username or ID)
    --no-ui               Print once and exit
    --json                JSON output

  admin report            Historical report, newest first
    --employee            Only one employee
    --from, --to          Dates: 2024-03-01, 01/03/2024, today, "7 days ago"
    --json                JSON output
    --xlsx <file>         Export to Excel

  admin users ls          List users
  admin users add         Create a user (interactive form when fields are missing)
    --username, --name, --new-password, --role
  admin users edit <u>    Change --name, --role or --new-password
  admin users rm <u>      Delete a user and all of their sessions
    -y, --yes             Skip confirmation
  admin users import <f>  Bulk create from .csv or .xlsx
                          Columns: username, password, full name, role

SETUP:

  init                    Write ~/.punch/punch.yaml and create the database
    --force               Overwrite an existing config
  version                 Print version information
  help                    Show this help

Settings can also come from PUNCH_* environment variables, e.g.
PUNCH_DATABASE_TYPE=postgres PUNCH_DATABASE_POSTGRES_DSN=...

`)
}
