package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/balkashynov/punch/internal/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config and create the database",
	Long: `Write the built-in configuration to --config (default ~/.punch/punch.yaml),
create the schema and seed the administrator account.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationNoStore: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		path := configPath
		if path == "" {
			dir, err := config.Dir()
			if err != nil {
				return fmt.Errorf("failed to locate home directory: %w", err)
			}
			path = filepath.Join(dir, "punch.yaml")
		}

		if initForce {
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("failed to remove %s: %w", path, err)
			}
		}

		if err := config.WriteDefault(path); err != nil {
			return err
		}
		fmt.Fprintf(out, "📝 Wrote %s\n", path)

		configPath = path
		if err := openApp(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintf(out, "✅ Database ready (%s)\n", current.cfg.Database.Type)
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config file")
}
