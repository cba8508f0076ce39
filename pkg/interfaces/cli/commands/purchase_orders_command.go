package commands

import (
	"github.com/spf13/cobra"

	"github.com/vsinha/supplyplan/pkg/interfaces/cli/output"
)

func newPurchaseOrdersCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "purchase-orders",
		Aliases: []string{"pos"},
		Short:   "Classify purchase order recommendations by urgency and cost",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			now, err := app.now()
			if err != nil {
				return err
			}

			report, err := app.Service.ClassifiedPurchaseOrders(cmd.Context(), now)
			if err != nil {
				return err
			}
			return app.print(func(p *output.Printer) error { return p.PurchaseOrders(report) })
		},
	}
}
