package commands

import (
	"github.com/spf13/cobra"

	"github.com/vsinha/supplyplan/pkg/domain/entities"
	"github.com/vsinha/supplyplan/pkg/interfaces/cli/output"
)

func newForecastCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Show or edit collaborative forecasts",
	}
	cmd.AddCommand(newForecastShowCommand(app), newForecastSetCommand(app))
	return cmd
}

func newForecastShowCommand(app *App) *cobra.Command {
	var product, location string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show customer forecasts with their all-customers totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			grid, err := app.Service.ForecastGrid(cmd.Context(), entities.ProductID(product), entities.LocationID(location))
			if err != nil {
				return err
			}
			return app.print(func(p *output.Printer) error { return p.ForecastGrid(grid) })
		},
	}

	cmd.Flags().StringVar(&product, "product", "", "Product ID")
	cmd.Flags().StringVar(&location, "location", "", "Location ID")
	cmd.MarkFlagRequired("product")
	cmd.MarkFlagRequired("location")
	return cmd
}

func newForecastSetCommand(app *App) *cobra.Command {
	var (
		product, location, month, customer string
		value                              float64
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Set the KAM correction of a customer, or of ALL to redistribute",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := entities.ParseMonth(month)
			if err != nil {
				return err
			}

			key := entities.ForecastKey{
				ProductID:  entities.ProductID(product),
				CustomerID: entities.CustomerID(customer),
				LocationID: entities.LocationID(location),
				Month:      m,
			}
			result, err := app.Service.UpdateCustomerForecast(cmd.Context(), key, value)
			if err != nil {
				return err
			}
			return app.print(func(p *output.Printer) error { return p.Redistribution(result) })
		},
	}

	cmd.Flags().StringVar(&product, "product", "", "Product ID")
	cmd.Flags().StringVar(&location, "location", "", "Location ID")
	cmd.Flags().StringVar(&month, "month", "", "Month as YYYY-MM")
	cmd.Flags().StringVar(&customer, "customer", string(entities.AllCustomers), "Customer ID, ALL spreads the value across customers")
	cmd.Flags().Float64Var(&value, "value", 0, "New value")
	for _, name := range []string{"product", "location", "month", "value"} {
		cmd.MarkFlagRequired(name)
	}
	return cmd
}
