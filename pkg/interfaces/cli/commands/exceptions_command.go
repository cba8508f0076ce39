package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vsinha/supplyplan/pkg/domain/entities"
	"github.com/vsinha/supplyplan/pkg/interfaces/cli/output"
)

func newExceptionsCommand(app *App) *cobra.Command {
	var includeResolved bool

	cmd := &cobra.Command{
		Use:   "exceptions",
		Short: "Rank planning exceptions by priority score",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			now, err := app.now()
			if err != nil {
				return err
			}

			report, err := app.Service.PrioritizedExceptions(cmd.Context(), now, includeResolved)
			if err != nil {
				return err
			}
			return app.print(func(p *output.Printer) error { return p.Exceptions(report) })
		},
	}
	cmd.Flags().BoolVar(&includeResolved, "include-resolved", false, "Include resolved and ignored exceptions")

	cmd.AddCommand(newResolveExceptionCommand(app))
	return cmd
}

func newResolveExceptionCommand(app *App) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "resolve ID",
		Short: "Change the resolution status of an exception",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resolution, err := entities.ParseResolutionStatusStrict(status)
			if err != nil {
				return err
			}
			if err := app.Service.ResolveException(cmd.Context(), args[0], resolution); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exception %s is now %s\n", args[0], resolution)
			return nil
		},
	}
	cmd.Flags().StringVar(&status, "status", "resolved", "New status: open, in_progress, resolved, ignored")
	return cmd
}
