package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/balkashynov/punch/internal/db"
	"github.com/balkashynov/punch/internal/models"
	"github.com/balkashynov/punch/internal/parser"
	"github.com/balkashynov/punch/internal/tui"
)

var (
	startActivity models.ActivityType
	startNoUI     bool
	statusJSON    bool
)

var errNoOpenSession = errors.New("you have no open session; run 'punch start' first")

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start or resume today's session",
	Long: `Log in for today. Opens the interactive timer by default, use --no-ui for a simple start.
Running start again while today's session is open resumes it.

Examples:
  punch start -u alice            # Start with the interactive timer
  punch start -u alice --no-ui    # Start without UI
  punch start -u alice -a meeting # Start straight into a meeting`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		identity, err := signIn(ctx)
		if err != nil {
			return err
		}

		store := current.store
		today := store.Today()
		_, openErr := store.OpenSessionFor(ctx, identity.ID, today)
		resumed := openErr == nil

		sessionID, err := store.StartSession(ctx, identity.ID, today)
		if err != nil {
			return err
		}

		if cmd.Flags().Changed("activity") {
			_, err := store.ChangeActivity(ctx, sessionID, startActivity)
			if err != nil && !errors.Is(err, db.ErrState) {
				return err
			}
		}

		if resumed {
			fmt.Fprintf(out, "▶️  Resumed session #%d for %s\n", sessionID, identity.FullName)
		} else {
			fmt.Fprintf(out, "⏱️  Started session #%d for %s\n", sessionID, identity.FullName)
		}

		if startNoUI {
			stats, err := store.CurrentStatistics(ctx, sessionID)
			if err != nil {
				return err
			}
			printStats(out, stats, current.clock.Now())
			return nil
		}

		ended, err := tui.RunSessionTUI(ctx, store, current.clock, sessionID, identity.FullName)
		if err != nil {
			return err
		}
		if ended != nil {
			fmt.Fprintf(out, "⏹️  Session #%d closed\n", ended.ID)
			printSessionTotals(out, ended)
		} else {
			fmt.Fprintln(out, "💡 Your session is still open.")
			fmt.Fprintln(out, "   Use 'punch status' to check it or 'punch stop' to log out.")
		}
		return nil
	},
}

var switchCmd = &cobra.Command{
	Use:   "switch <activity>",
	Short: "Switch to another activity",
	Long: `Close the current activity and start another one at the same instant.

Activities: work (w), break (b), lunch (l), bathroom (wc, t), meeting (m)`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		activity, err := parser.ParseActivityType(args[0])
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		session, err := openSession(ctx)
		if err != nil {
			return err
		}

		log, err := current.store.ChangeActivity(ctx, session.SessionID, activity)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "🔁 %s since %s\n", log.ActivityType.Label(), log.StartTime.Local().Format("15:04:05"))
		return nil
	},
}

var pauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Stop the current activity without logging out",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		session, err := openSession(ctx)
		if err != nil {
			return err
		}

		log, err := current.store.EndActivity(ctx, session.SessionID)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "⏸️  Paused %s after %s\n", log.ActivityType, parser.FormatSeconds(log.Duration))
		return nil
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "End your session (log out)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		session, err := openSession(ctx)
		if err != nil {
			return err
		}

		ended, err := current.store.EndSession(ctx, session.SessionID)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "⏹️  Logged out of session #%d\n", ended.ID)
		printSessionTotals(out, ended)
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show your current session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		session, err := openSession(ctx)
		if errors.Is(err, errNoOpenSession) && !statusJSON {
			fmt.Fprintln(out, "No open session")
			return nil
		}
		if err != nil {
			return err
		}

		stats, err := current.store.CurrentStatistics(ctx, session.SessionID)
		if err != nil {
			return err
		}

		if statusJSON {
			return printJSON(out, stats)
		}
		printStats(out, stats, current.clock.Now())
		return nil
	},
}

// openSession signs the caller in and finds their newest open session
func openSession(ctx context.Context) (*models.SessionView, error) {
	identity, err := signIn(ctx)
	if err != nil {
		return nil, err
	}

	views, err := current.store.ListActiveSessions(ctx, &identity.ID)
	if err != nil {
		return nil, err
	}
	if len(views) == 0 {
		return nil, errNoOpenSession
	}
	return &views[0], nil
}

func init() {
	startCmd.Flags().BoolVar(&startNoUI, "no-ui", false, "Start without the interactive timer")
	startCmd.Flags().VarP(newActivityValue(models.ActivityWork, &startActivity), "activity", "a",
		"Activity to start in: "+strings.Join(activityNames(), ", "))

	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Output as JSON")
}

func activityNames() []string {
	var names []string
	for _, t := range models.ActivityTypes() {
		names = append(names, string(t))
	}
	return names
}
