package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/vsinha/supplyplan/pkg/application/services/planning"
	"github.com/vsinha/supplyplan/pkg/config"
	"github.com/vsinha/supplyplan/pkg/domain/services"
	"github.com/vsinha/supplyplan/pkg/infrastructure/logging"
	"github.com/vsinha/supplyplan/pkg/infrastructure/storage"
	"github.com/vsinha/supplyplan/pkg/interfaces/cli/output"
)

// Options holds the global flags shared by every subcommand
type Options struct {
	ConfigFile string
	Format     string
	Output     string
	Now        string
}

// App is the state a subcommand runs with, built once per invocation
type App struct {
	opts    Options
	stdout  io.Writer
	Config  *config.Config
	Logger  *logrus.Logger
	Store   *storage.Store
	Service *planning.PlanningService
}

// NewRootCommand creates the planner command tree writing reports to stdout
func NewRootCommand(stdout io.Writer) *cobra.Command {
	app := &App{stdout: stdout}

	root := &cobra.Command{
		Use:           "planner",
		Short:         "Supply planning rollups, exception ranking, PO triage and forecast edits",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.init(cmd.Context())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return app.close()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&app.opts.ConfigFile, "config", "", "Path to config file (default ./planner.yaml)")
	flags.StringVarP(&app.opts.Format, "format", "f", "text", "Output format: text, json, csv")
	flags.StringVarP(&app.opts.Output, "output", "o", "", "Write the report to this file instead of stdout")
	flags.StringVar(&app.opts.Now, "now", "", "Evaluate as of this RFC3339 time instead of the clock")

	root.AddCommand(
		newRollupCommand(app),
		newExceptionsCommand(app),
		newPurchaseOrdersCommand(app),
		newForecastCommand(app),
		newServeCommand(app),
	)
	return root
}

// Execute runs the command tree against os.Args
func Execute(ctx context.Context) error {
	return NewRootCommand(os.Stdout).ExecuteContext(ctx)
}

func (a *App) init(ctx context.Context) error {
	if _, err := output.ParseFormat(a.opts.Format); err != nil {
		return err
	}

	cfg, err := config.Load(a.opts.ConfigFile)
	if err != nil {
		return err
	}
	a.Config = cfg
	a.Logger = logging.New(cfg.Log)

	policy, err := services.ParseUrgencyPolicy(cfg.Planning.UrgencyPolicy)
	if err != nil {
		return err
	}

	store, err := storage.Open(ctx, cfg.Storage, a.Logger)
	if err != nil {
		return err
	}
	a.Store = store

	a.Service = planning.NewPlanningService(planning.Repositories{
		TimePhased:     store.TimePhased,
		Exceptions:     store.Exceptions,
		PurchaseOrders: store.PurchaseOrders,
		Forecasts:      store.Forecasts,
	},
		planning.WithUrgencyPolicy(policy),
		planning.WithDefaultHorizon(cfg.Planning.HorizonWeeks),
		planning.WithLogger(a.Logger),
	)
	return nil
}

func (a *App) close() error {
	if a.Store == nil {
		return nil
	}
	return a.Store.Close()
}

// now returns the evaluation time from --now or the clock
func (a *App) now() (time.Time, error) {
	if a.opts.Now == "" {
		return time.Now().UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, a.opts.Now)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --now %q: %w", a.opts.Now, err)
	}
	return t.UTC(), nil
}

// print renders through a printer bound to stdout or the --output file
func (a *App) print(render func(*output.Printer) error) error {
	format, err := output.ParseFormat(a.opts.Format)
	if err != nil {
		return err
	}

	w := a.stdout
	if a.opts.Output != "" {
		file, err := os.Create(a.opts.Output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer file.Close()
		w = file
	}

	if err := render(output.NewPrinter(w, format)); err != nil {
		return err
	}
	if a.opts.Output != "" {
		a.Logger.WithField("path", a.opts.Output).Info("report written")
	}
	return nil
}
