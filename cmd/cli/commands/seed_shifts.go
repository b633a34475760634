package commands

import (
	"fmt"

	"github.com/cmlabs-hris/hrm-attendance-go/internal/repository/postgresql"
	shiftService "github.com/cmlabs-hris/hrm-attendance-go/internal/service/shift"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// SeedShiftsCmd creates the seed-shifts command
func SeedShiftsCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed-shifts [file]",
		Short: "Create or update shifts from a YAML file (default configs/shifts.yaml)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "configs/shifts.yaml"
			if len(args) > 0 {
				path = args[0]
			}
			dryRun, _ := cmd.Flags().GetBool("dry-run")

			defs, err := shiftService.LoadSeedFile(path)
			if err != nil {
				return err
			}
			for i := range defs {
				if err := defs[i].Validate(); err != nil {
					return fmt.Errorf("shift %q: %w", defs[i].Name, err)
				}
			}

			if dryRun {
				fmt.Printf("\n%s is valid, %d shifts:\n\n", path, len(defs))
				for _, d := range defs {
					fmt.Printf("  - %-20s %s-%s\n", d.Name, d.StartTime, d.EndTime)
				}
				return nil
			}

			db, err := app.DB()
			if err != nil {
				return err
			}
			svc := shiftService.NewShiftService(postgresql.NewShiftRepository(db), postgresql.NewTransactor(db), app.Logger)

			app.Logger.Info("seeding shifts", zap.String("file", path), zap.Int("count", len(defs)))
			seeded, err := svc.Seed(app.Ctx, defs)
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Seeded %d shifts:\n\n", len(seeded))
			for _, s := range seeded {
				fmt.Printf("  %s  %-20s %s-%s\n", s.ID, s.Name, s.StartTime, s.EndTime)
			}
			return nil
		},
	}

	cmd.Flags().Bool("dry-run", false, "Validate the file without writing")

	return cmd
}
