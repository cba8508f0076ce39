package bolt

import (
	"bytes"
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"go.etcd.io/bbolt"

	"github.com/vsinha/supplyplan/pkg/domain/entities"
	"github.com/vsinha/supplyplan/pkg/domain/repositories"
)

var forecastsBucket = []byte("forecasts")

// ForecastRepository keeps collaborative forecast cells in a local bbolt file.
// Keys are "product|location|YYYY-MM|customer" so one item's month is a
// contiguous key range.
type ForecastRepository struct {
	db *bbolt.DB
}

// NewForecastRepository opens (or creates) the bolt file at dbPath
func NewForecastRepository(dbPath string) (*ForecastRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create parent directory for bolt db: %w", err)
	}

	db, err := bbolt.Open(dbPath, 0o600, &bbolt.Options{
		Timeout:      time.Second,
		FreelistType: bbolt.FreelistMapType,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(forecastsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bucket %s: %w", forecastsBucket, err)
	}

	return &ForecastRepository{db: db}, nil
}

var _ repositories.ForecastRepository = (*ForecastRepository)(nil)

// Close closes the database file
func (r *ForecastRepository) Close() error {
	return r.db.Close()
}

func itemPrefix(productID entities.ProductID, locationID entities.LocationID) []byte {
	return []byte(string(productID) + "|" + string(locationID) + "|")
}

func monthPrefix(productID entities.ProductID, locationID entities.LocationID, month time.Time) []byte {
	return append(itemPrefix(productID, locationID), []byte(entities.MonthStart(month).Format("2006-01")+"|")...)
}

func cellKey(key entities.ForecastKey) []byte {
	return append(monthPrefix(key.ProductID, key.LocationID, key.Month), []byte(key.CustomerID)...)
}

// IsEmpty reports whether no cell has been stored yet
func (r *ForecastRepository) IsEmpty() (bool, error) {
	empty := true
	err := r.db.View(func(tx *bbolt.Tx) error {
		k, _ := tx.Bucket(forecastsBucket).Cursor().First()
		empty = k == nil
		return nil
	})
	return empty, err
}

// SaveCells stores whole cells, replacing existing ones with the same key
func (r *ForecastRepository) SaveCells(ctx context.Context, cells []entities.CollaborativeForecastCell) error {
	return r.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(forecastsBucket)
		for _, cell := range cells {
			if cell.CustomerID == entities.AllCustomers {
				continue
			}
			cell.Month = entities.MonthStart(cell.Month)
			if err := putCell(bucket, cell); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *ForecastRepository) GetCells(
	ctx context.Context,
	productID entities.ProductID,
	locationID entities.LocationID,
) ([]entities.CollaborativeForecastCell, error) {
	var cells []entities.CollaborativeForecastCell
	err := r.scan(itemPrefix(productID, locationID), func(cell entities.CollaborativeForecastCell) {
		cells = append(cells, cell)
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(cells, func(a, b entities.CollaborativeForecastCell) int {
		return cmp.Or(cmp.Compare(a.CustomerID, b.CustomerID), a.Month.Compare(b.Month))
	})
	return cells, nil
}

func (r *ForecastRepository) GetMonthForecasts(
	ctx context.Context,
	productID entities.ProductID,
	locationID entities.LocationID,
	month time.Time,
) (map[entities.CustomerID]float64, error) {
	forecasts := make(map[entities.CustomerID]float64)
	err := r.scan(monthPrefix(productID, locationID, month), func(cell entities.CollaborativeForecastCell) {
		forecasts[cell.CustomerID] += cell.EffectiveForecast
	})
	if err != nil {
		return nil, err
	}
	return forecasts, nil
}

func (r *ForecastRepository) UpsertCorrection(ctx context.Context, key entities.ForecastKey, value float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key.Month = entities.MonthStart(key.Month)

	return r.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(forecastsBucket)

		cell := entities.CollaborativeForecastCell{
			ProductID:  key.ProductID,
			CustomerID: key.CustomerID,
			LocationID: key.LocationID,
			Month:      key.Month,
		}
		if data := bucket.Get(cellKey(key)); data != nil {
			if err := json.Unmarshal(data, &cell); err != nil {
				return fmt.Errorf("failed to unmarshal forecast cell %s: %w", key, err)
			}
		}
		cell.KAMForecastCorrection = value
		return putCell(bucket, cell)
	})
}

func (r *ForecastRepository) scan(prefix []byte, fn func(entities.CollaborativeForecastCell)) error {
	return r.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(forecastsBucket).Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			var cell entities.CollaborativeForecastCell
			if err := json.Unmarshal(v, &cell); err != nil {
				return fmt.Errorf("failed to unmarshal forecast cell %s: %w", k, err)
			}
			fn(cell)
		}
		return nil
	})
}

func putCell(bucket *bbolt.Bucket, cell entities.CollaborativeForecastCell) error {
	if strings.Contains(string(cell.ProductID)+string(cell.LocationID), "|") {
		return fmt.Errorf("forecast key %s: ids cannot contain '|'", cell.Key())
	}
	data, err := json.Marshal(cell)
	if err != nil {
		return fmt.Errorf("failed to marshal forecast cell: %w", err)
	}
	return bucket.Put(cellKey(cell.Key()), data)
}
