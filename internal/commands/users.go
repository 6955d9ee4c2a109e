package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/balkashynov/punch/internal/db"
	"github.com/balkashynov/punch/internal/models"
	"github.com/balkashynov/punch/internal/parser"
	"github.com/balkashynov/punch/internal/tui"
)

var (
	usersJSON bool

	addUsername string
	addFullName string
	addPassword string
	addRole     models.Role
	addNoUI     bool

	editFullName string
	editPassword string
	editRole     models.Role

	removeYes bool
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage employee and administrator accounts",
}

var usersListCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List users",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if _, err := signInAdmin(ctx); err != nil {
			return err
		}

		users, err := current.store.ListUsers(ctx)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if usersJSON {
			return printJSON(out, users)
		}

		now := current.clock.Now()
		fmt.Fprintf(out, "%-4s %-16s %-28s %-9s %s\n", "ID", "USERNAME", "NAME", "ROLE", "CREATED")
		fmt.Fprintln(out, strings.Repeat("-", 72))
		for _, u := range users {
			fmt.Fprintf(out, "%-4d %-16s %-28s %-9s %s\n",
				u.ID,
				truncate(u.Username, 16),
				truncate(u.FullName, 28),
				u.Role,
				humanize.RelTime(u.CreatedAt, now, "ago", "from now"))
		}
		return nil
	},
}

var usersAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a user",
	Long: `Create a user. Missing fields open an interactive form unless --no-ui is set.

Examples:
  punch admin users add -u admin
  punch admin users add -u admin --username bob --name "Bob Smith" --new-password s3cret --role employee`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if _, err := signInAdmin(ctx); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		req := db.NewUser{
			Username: addUsername,
			FullName: addFullName,
			Password: addPassword,
			Role:     addRole,
		}

		complete := req.Username != "" && req.FullName != "" && req.Password != ""
		if !complete && !addNoUI && term.IsTerminal(int(os.Stdin.Fd())) {
			id, err := tui.RunUserFormTUI(ctx, current.store, map[string]string{
				"username":  req.Username,
				"full_name": req.FullName,
				"role":      string(req.Role),
			})
			if errors.Is(err, tui.ErrCancelled) {
				fmt.Fprintln(out, "Cancelled")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "✅ Created user #%d\n", id)
			return nil
		}

		id, err := current.store.AddUser(ctx, req)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "✅ Created user #%d: %s (%s)\n", id, strings.TrimSpace(req.Username), req.Role)
		return nil
	},
}

var usersEditCmd = &cobra.Command{
	Use:   "edit <username>",
	Short: "Change a user's name, role or password",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if _, err := signInAdmin(ctx); err != nil {
			return err
		}

		user, err := findUser(ctx, args[0])
		if err != nil {
			return err
		}

		flags := cmd.Flags()
		if !flags.Changed("name") && !flags.Changed("role") && !flags.Changed("new-password") {
			return errors.New("nothing to change; use --name, --role or --new-password")
		}

		update := db.UserUpdate{
			FullName: user.FullName,
			Role:     user.Role,
		}
		if flags.Changed("name") {
			update.FullName = editFullName
		}
		if flags.Changed("role") {
			update.Role = editRole
		}
		if flags.Changed("new-password") {
			update.Password = &editPassword
		}

		if err := current.store.UpdateUser(ctx, user.ID, update); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✏️  Updated %s\n", user.Username)
		return nil
	},
}

var usersRemoveCmd = &cobra.Command{
	Use:     "rm <username>",
	Aliases: []string{"delete"},
	Short:   "Delete a user with all of their sessions",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		admin, err := signInAdmin(ctx)
		if err != nil {
			return err
		}

		user, err := findUser(ctx, args[0])
		if err != nil {
			return err
		}
		if user.ID == admin.ID {
			return errors.New("you cannot delete the account you are signed in with")
		}

		out := cmd.OutOrStdout()
		if !removeYes {
			ok, err := confirm(cmd, fmt.Sprintf("Delete %s (%s) and all of their sessions?", user.Username, user.FullName))
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(out, "Cancelled")
				return nil
			}
		}

		if err := current.store.DeleteUser(ctx, user.ID); err != nil {
			return err
		}
		fmt.Fprintf(out, "🗑️  Deleted %s\n", user.Username)
		return nil
	},
}

var usersImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Bulk create users from a CSV or XLSX file",
	Long: `Create users from a .csv or .xlsx file with the columns
username, password, full name, role. A header row is optional.
Nothing is imported when any row is invalid; existing usernames are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if _, err := signInAdmin(ctx); err != nil {
			return err
		}

		rows, err := parser.ParseUsersFile(args[0])
		if err != nil {
			return err
		}

		result, err := current.store.ImportUsers(ctx, importRows(rows))
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "📥 Imported %d users", len(result.Added))
		if len(result.Skipped) > 0 {
			fmt.Fprintf(out, ", skipped %d existing: %s", len(result.Skipped), strings.Join(result.Skipped, ", "))
		}
		fmt.Fprintln(out)
		return nil
	},
}

// findUser looks a user up by username. Case is ignored only when
// that still names a single account.
func findUser(ctx context.Context, username string) (*models.User, error) {
	user, err := current.store.ResolveUsername(ctx, username)
	if errors.Is(err, db.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", errUnknownEmployee, strings.TrimSpace(username))
	}
	return user, err
}

// importRows maps parsed file rows onto store requests
func importRows(rows []parser.UserRow) []db.NewUser {
	users := make([]db.NewUser, 0, len(rows))
	for _, r := range rows {
		users = append(users, db.NewUser{
			Username: r.Username,
			Password: r.Password,
			FullName: r.FullName,
			Role:     r.Role,
		})
	}
	return users
}

// confirm asks a yes/no question on the command's input
func confirm(cmd *cobra.Command, question string) (bool, error) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N]: ", question)
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return false, nil
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

func init() {
	usersListCmd.Flags().BoolVar(&usersJSON, "json", false, "Output as JSON")

	usersAddCmd.Flags().StringVar(&addUsername, "username", "", "Login name")
	usersAddCmd.Flags().StringVar(&addFullName, "name", "", "Full name")
	usersAddCmd.Flags().StringVar(&addPassword, "new-password", "", "Password for the new user")
	usersAddCmd.Flags().Var(newRoleValue(models.RoleEmployee, &addRole), "role", "employee or admin")
	usersAddCmd.Flags().BoolVar(&addNoUI, "no-ui", false, "Never open the interactive form")

	usersEditCmd.Flags().StringVar(&editFullName, "name", "", "New full name")
	usersEditCmd.Flags().StringVar(&editPassword, "new-password", "", "New password")
	usersEditCmd.Flags().Var(newRoleValue(models.RoleEmployee, &editRole), "role", "employee or admin")

	usersRemoveCmd.Flags().BoolVarP(&removeYes, "yes", "y", false, "Do not ask for confirmation")

	usersCmd.AddCommand(usersListCmd)
	usersCmd.AddCommand(usersAddCmd)
	usersCmd.AddCommand(usersEditCmd)
	usersCmd.AddCommand(usersRemoveCmd)
	usersCmd.AddCommand(usersImportCmd)
}
