package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/vsinha/supplyplan/pkg/config"
	"github.com/vsinha/supplyplan/pkg/domain/repositories"
	"github.com/vsinha/supplyplan/pkg/infrastructure/repositories/bolt"
	csvrepo "github.com/vsinha/supplyplan/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/supplyplan/pkg/infrastructure/repositories/memory"
	"github.com/vsinha/supplyplan/pkg/infrastructure/repositories/postgres"
)

// Store is the set of repositories selected by the storage configuration
type Store struct {
	TimePhased     repositories.TimePhasedRepository
	Exceptions     repositories.ExceptionRepository
	PurchaseOrders repositories.PurchaseOrderRepository
	Forecasts      repositories.ForecastRepository

	closers []func() error
}

// Close releases every resource held by the store
func (s *Store) Close() error {
	var errs []error
	for _, closeFn := range s.closers {
		errs = append(errs, closeFn())
	}
	return errors.Join(errs...)
}

// Open builds the repositories for cfg.Driver:
//
//	memory   in-process, seeded from scenario_dir when set
//	csv      in-process, seeded from scenario_dir (required)
//	postgres gorm over dsn, scenario_dir imported when set
//	bolt     forecasts in bolt_path, everything else as memory
func Open(ctx context.Context, cfg config.StorageConfig, logger logrus.FieldLogger) (*Store, error) {
	var scenario *csvrepo.Scenario
	if cfg.ScenarioDir != "" {
		var err error
		scenario, err = csvrepo.NewLoader(logger).LoadScenario(cfg.ScenarioDir)
		if err != nil {
			return nil, fmt.Errorf("failed to load scenario: %w", err)
		}
	}

	log := logger.WithField("driver", cfg.Driver)

	switch cfg.Driver {
	case config.DriverMemory:
		log.Info("using in-memory storage")
		return openMemory(scenario), nil

	case config.DriverCSV:
		if scenario == nil {
			return nil, errors.New("storage.scenario_dir is required for the csv driver")
		}
		log.WithField("dir", cfg.ScenarioDir).Info("using csv scenario storage")
		return openMemory(scenario), nil

	case config.DriverPostgres:
		log.Info("using postgres storage")
		return openPostgres(ctx, cfg.DSN, scenario)

	case config.DriverBolt:
		log.WithField("path", cfg.BoltPath).Info("using bolt forecast storage")
		return openBolt(ctx, cfg.BoltPath, scenario)

	default:
		return nil, fmt.Errorf("unknown storage driver: %q", cfg.Driver)
	}
}

func openMemory(scenario *csvrepo.Scenario) *Store {
	timePhased := memory.NewTimePhasedRepository(0)
	exceptions := memory.NewExceptionRepository()
	purchaseOrders := memory.NewPurchaseOrderRepository()
	forecasts := memory.NewForecastRepository()

	if scenario != nil {
		timePhased.LoadRecords(scenario.TimePhased)
		for product, days := range scenario.LeadTimes {
			timePhased.SetLeadTime(product, days)
		}
		exceptions.LoadExceptions(scenario.Exceptions)
		purchaseOrders.LoadRecommendations(scenario.PurchaseOrders)
		forecasts.LoadCells(scenario.Forecasts)
	}

	return &Store{
		TimePhased:     timePhased,
		Exceptions:     exceptions,
		PurchaseOrders: purchaseOrders,
		Forecasts:      forecasts,
	}
}

func openPostgres(ctx context.Context, dsn string, scenario *csvrepo.Scenario) (*Store, error) {
	db, err := postgres.Open(dsn)
	if err != nil {
		return nil, err
	}
	return openGorm(ctx, db, scenario)
}

// openGorm builds the gorm repositories over an already migrated db. A
// scenario is re-imported on every open; planner edits survive because the
// upserts never touch corrections or resolution status.
func openGorm(ctx context.Context, db *gorm.DB, scenario *csvrepo.Scenario) (*Store, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	timePhased := postgres.NewTimePhasedRepository(db)
	exceptions := postgres.NewExceptionRepository(db)
	purchaseOrders := postgres.NewPurchaseOrderRepository(db)
	forecasts := postgres.NewForecastRepository(db)

	if scenario != nil {
		steps := []func() error{
			func() error { return timePhased.ReplaceRecords(ctx, scenario.TimePhased) },
			func() error { return timePhased.SaveLeadTimes(ctx, scenario.LeadTimes) },
			func() error { return exceptions.SaveExceptions(ctx, scenario.Exceptions) },
			func() error { return purchaseOrders.SaveRecommendations(ctx, scenario.PurchaseOrders) },
			func() error { return forecasts.SaveCells(ctx, scenario.Forecasts) },
		}
		for _, step := range steps {
			if err := step(); err != nil {
				sqlDB.Close()
				return nil, fmt.Errorf("failed to import scenario: %w", err)
			}
		}
	}

	return &Store{
		TimePhased:     timePhased,
		Exceptions:     exceptions,
		PurchaseOrders: purchaseOrders,
		Forecasts:      forecasts,
		closers:        []func() error{sqlDB.Close},
	}, nil
}

func openBolt(ctx context.Context, path string, scenario *csvrepo.Scenario) (*Store, error) {
	forecasts, err := bolt.NewForecastRepository(path)
	if err != nil {
		return nil, err
	}

	store := openMemory(scenario)
	store.Forecasts = forecasts
	store.closers = append(store.closers, forecasts.Close)

	// the bolt file owns forecast edits; the scenario only seeds a new file
	if scenario != nil {
		empty, err := forecasts.IsEmpty()
		if err == nil && empty {
			err = forecasts.SaveCells(ctx, scenario.Forecasts)
		}
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("failed to seed bolt forecasts: %w", err)
		}
	}

	return store, nil
}
