package commands

import (
	"fmt"

	"github.com/cmlabs-hris/hrm-attendance-go/internal/pkg/database"
	"github.com/spf13/cobra"
)

// MigrateCmd creates the migrate command
func MigrateCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := database.RunMigrations(app.Cfg.DatabaseURL(), app.Logger); err != nil {
				return err
			}
			fmt.Println("✓ Database is up to date")
			return nil
		},
	}
}
