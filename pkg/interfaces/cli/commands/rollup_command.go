package commands

import (
	"github.com/spf13/cobra"

	"github.com/vsinha/supplyplan/pkg/application/services/planning"
	"github.com/vsinha/supplyplan/pkg/domain/entities"
	"github.com/vsinha/supplyplan/pkg/interfaces/cli/output"
)

func newRollupCommand(app *App) *cobra.Command {
	var (
		mode    string
		horizon int
	)

	cmd := &cobra.Command{
		Use:   "rollup",
		Short: "Roll time-phased records up per product and location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			viewMode, err := entities.ParseViewMode(mode)
			if err != nil {
				return err
			}

			report, err := app.Service.Rollups(cmd.Context(), planning.RollupRequest{
				Mode:    viewMode,
				Horizon: horizon,
			})
			if err != nil {
				return err
			}
			return app.print(func(p *output.Printer) error { return p.Rollups(report) })
		},
	}

	cmd.Flags().StringVarP(&mode, "mode", "m", "inventory", "View mode: demand, supply, inventory, orders")
	cmd.Flags().IntVar(&horizon, "horizon", 0, "Number of weeks to show (0 uses planning.horizon_weeks)")
	return cmd
}
