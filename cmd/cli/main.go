package main

import (
	"context"
	"fmt"
	"os"

	"github.com/cmlabs-hris/hrm-attendance-go/cmd/cli/commands"
	"github.com/cmlabs-hris/hrm-attendance-go/internal/config"
	"github.com/cmlabs-hris/hrm-attendance-go/internal/pkg/logger"
	"github.com/spf13/cobra"
)

func main() {
	app := &commands.AppContext{Ctx: context.Background()}

	rootCmd := &cobra.Command{
		Use:           "hrm",
		Short:         "HRM attendance operations",
		Long:          `Operational commands for the attendance service: schema migrations, shift seeding and access tokens.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			app.Cfg = cfg

			app.Logger, err = logger.New(logger.Options{Env: cfg.App.Env, Level: cfg.App.LogLevel})
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			app.Close()
		},
	}

	rootCmd.AddCommand(commands.MigrateCmd(app))
	rootCmd.AddCommand(commands.SeedShiftsCmd(app))
	rootCmd.AddCommand(commands.TokenCmd(app))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		app.Close()
		os.Exit(1)
	}
}
