package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/balkashynov/punch/internal/db"
	"github.com/balkashynov/punch/internal/export"
	"github.com/balkashynov/punch/internal/parser"
	"github.com/balkashynov/punch/internal/tui"
)

var (
	monitorEmployee string
	monitorNoUI     bool
	monitorJSON     bool

	reportEmployee string
	reportFrom     string
	reportTo       string
	reportJSON     bool
	reportXLSX     string
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Administrator commands: monitor, report, users",
}

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Watch every open session live",
	Long: `Show every session that is still open, refreshed periodically
(monitor.refresh_interval, 30s by default).

Examples:
  punch admin monitor -u admin
  punch admin monitor -u admin --employee alice
  punch admin monitor -u admin --no-ui --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if _, err := signInAdmin(ctx); err != nil {
			return err
		}

		userID, err := resolveEmployee(ctx, monitorEmployee)
		if err != nil {
			return err
		}

		if !monitorNoUI && !monitorJSON {
			return tui.RunMonitorTUI(ctx, current.store, current.clock, userID, current.cfg.Monitor.RefreshInterval)
		}

		views, err := current.store.ListActiveSessions(ctx, userID)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if monitorJSON {
			return printJSON(out, views)
		}
		if len(views) == 0 {
			fmt.Fprintln(out, "No open sessions")
			return nil
		}
		printSessionTable(out, views)
		return nil
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Historical attendance report",
	Long: `List sessions, newest date first, optionally filtered by employee and date range.
Dates accept YYYY-MM-DD, dd/mm/yyyy, today, yesterday or "7 days ago".

Examples:
  punch admin report -u admin --from "7 days ago"
  punch admin report -u admin --employee alice --from 2024-03-01 --to 2024-03-31
  punch admin report -u admin --from 01/03/2024 --xlsx march.xlsx`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if _, err := signInAdmin(ctx); err != nil {
			return err
		}

		now := current.clock.Now()
		from, err := parser.ParseReportDate(reportFrom, now)
		if err != nil {
			return fmt.Errorf("--from: %w", err)
		}
		to, err := parser.ParseReportDate(reportTo, now)
		if err != nil {
			return fmt.Errorf("--to: %w", err)
		}

		userID, err := resolveEmployee(ctx, reportEmployee)
		if err != nil {
			return err
		}

		views, err := current.store.HistoricalReport(ctx, db.ReportFilter{
			UserID: userID,
			From:   from,
			To:     to,
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if reportXLSX != "" {
			title := export.ReportTitle(from, to, now)
			if err := export.ReportXLSXFile(reportXLSX, title, views); err != nil {
				current.logger.Error("report export failed", zap.String("path", reportXLSX), zap.Error(err))
				return fmt.Errorf("failed to write %s: %w", reportXLSX, err)
			}
			fmt.Fprintf(out, "📊 Exported %d sessions to %s\n", len(views), reportXLSX)
			return nil
		}

		if reportJSON {
			return printJSON(out, views)
		}
		if len(views) == 0 {
			fmt.Fprintln(out, "No sessions found")
			return nil
		}
		printSessionTable(out, views)
		fmt.Fprintf(out, "\n%d sessions\n", len(views))
		return nil
	},
}

// resolveEmployee turns a username or numeric ID into a user ID filter.
// An empty reference means no filter.
func resolveEmployee(ctx context.Context, ref string) (*uint, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, nil
	}

	if id, err := strconv.ParseUint(ref, 10, 32); err == nil {
		user, err := current.store.GetUser(ctx, uint(id))
		if err != nil {
			return nil, err
		}
		return &user.ID, nil
	}

	user, err := findUser(ctx, ref)
	if err != nil {
		return nil, err
	}
	return &user.ID, nil
}

func init() {
	monitorCmd.Flags().StringVar(&monitorEmployee, "employee", "", "Only show this employee (username or ID)")
	monitorCmd.Flags().BoolVar(&monitorNoUI, "no-ui", false, "Print the open sessions once and exit")
	monitorCmd.Flags().BoolVar(&monitorJSON, "json", false, "Output as JSON (implies --no-ui)")

	reportCmd.Flags().StringVar(&reportEmployee, "employee", "", "Only this employee (username or ID)")
	reportCmd.Flags().StringVar(&reportFrom, "from", "", "First date to include")
	reportCmd.Flags().StringVar(&reportTo, "to", "", "Last date to include")
	reportCmd.Flags().BoolVar(&reportJSON, "json", false, "Output as JSON")
	reportCmd.Flags().StringVar(&reportXLSX, "xlsx", "", "Write the report to an Excel file")
	reportCmd.MarkFlagsMutuallyExclusive("json", "xlsx")

	adminCmd.AddCommand(monitorCmd)
	adminCmd.AddCommand(reportCmd)
	adminCmd.AddCommand(usersCmd)
}

var errUnknownEmployee = errors.New("no such employee")
