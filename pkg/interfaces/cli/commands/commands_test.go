package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/supplyplan/pkg/application/services/planning"
)

const timePhasedCSV = `product_id,location_id,week_number,beginning_inventory,gross_requirements,scheduled_receipts,projected_available,net_requirements,planned_order_receipts,planned_order_releases,safety_stock,reorder_point
WIDGET,DC1,1,110,60,0,50,0,0,0,20,30
WIDGET,DC1,2,50,60,0,-10,10,0,0,20,30
GADGET,DC1,1,160,40,0,120,0,0,0,20,60
`

const forecastsCSV = `product_id,customer_id,location_id,month,last_year,forecast_sales_gap,calculated_forecast,xamview,kam_forecast_correction,sales_manager_view,effective_forecast
WIDGET,ACME,DC1,2025-07-01,0,0,300,0,0,0,300
WIDGET,BOLT,DC1,2025-07-01,0,0,100,0,0,0,100
WIDGET,CORE,DC1,2025-07-01,0,0,600,0,0,0,600
`

func writeScenario(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	scenario := filepath.Join(dir, "scenario")
	require.NoError(t, os.MkdirAll(scenario, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(scenario, "time_phased.csv"), []byte(timePhasedCSV), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(scenario, "forecasts.csv"), []byte(forecastsCSV), 0o644))

	cfg := "storage:\n  driver: csv\n  scenario_dir: " + scenario + "\nlog:\n  level: error\n"
	path := filepath.Join(dir, "planner.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout bytes.Buffer
	root := NewRootCommand(&stdout)
	root.SetArgs(args)
	root.SetOut(&stdout)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), err
}

func TestRollupCommand_Text(t *testing.T) {
	cfg := writeScenario(t)

	out, err := run(t, "--config", cfg, "rollup")
	require.NoError(t, err)
	assert.Contains(t, out, "Inventory Rollup (inventory view)")
	assert.Contains(t, out, "stockout")
	assert.Contains(t, out, "2 items: 1 stockout")
}

func TestRollupCommand_JSON(t *testing.T) {
	cfg := writeScenario(t)

	out, err := run(t, "--config", cfg, "--format", "json", "rollup", "--mode", "demand")
	require.NoError(t, err)

	var report struct {
		Mode    string `json:"mode"`
		Rollups []struct {
			ProductID string `json:"product_id"`
		} `json:"rollups"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "demand", report.Mode)
	assert.Len(t, report.Rollups, 2)
}

func TestRollupCommand_InvalidMode(t *testing.T) {
	cfg := writeScenario(t)

	_, err := run(t, "--config", cfg, "rollup", "--mode", "sideways")
	assert.Error(t, err)
}

func TestForecastSetCommand_Redistributes(t *testing.T) {
	cfg := writeScenario(t)

	out, err := run(t, "--config", cfg, "forecast", "set",
		"--product", "WIDGET", "--location", "DC1", "--month", "2025-07", "--value", "2000")
	require.NoError(t, err)
	assert.Contains(t, out, "Redistributed 2000 across 3 customers")
	assert.Contains(t, out, "Allocated total 2000")
}

func TestForecastSetCommand_WritesOutputFile(t *testing.T) {
	cfg := writeScenario(t)
	target := filepath.Join(t.TempDir(), "allocation.csv")

	out, err := run(t, "--config", cfg, "--format", "csv", "--output", target, "forecast", "set",
		"--product", "WIDGET", "--location", "DC1", "--month", "2025-07", "--value", "2000")
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "WIDGET,DC1,CORE,1200", lines[3])
}

func TestForecastSetCommand_RejectsNonFiniteValue(t *testing.T) {
	cfg := writeScenario(t)

	for _, value := range []string{"NaN", "+Inf", "-Inf"} {
		for _, customer := range []string{"ALL", "ACME"} {
			out, err := run(t, "--config", cfg, "forecast", "set", "--customer", customer,
				"--product", "WIDGET", "--location", "DC1", "--month", "2025-07", "--value="+value)
			require.Error(t, err, value)
			assert.ErrorIs(t, err, planning.ErrInvalidValue)
			assert.NotContains(t, out, "Redistributed")
		}
	}
}

func TestExceptionsResolveCommand_RejectsUnknownStatus(t *testing.T) {
	cfg := writeScenario(t)

	out, err := run(t, "--config", cfg, "exceptions", "resolve", "EX-1", "--status", "resolvd")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown resolution status")
	assert.NotContains(t, out, "is now")
}

func TestRootCommand_RejectsUnknownFormat(t *testing.T) {
	cfg := writeScenario(t)

	_, err := run(t, "--config", cfg, "--format", "xml", "rollup")
	assert.Error(t, err)
}

func TestRootCommand_InvalidNow(t *testing.T) {
	cfg := writeScenario(t)

	_, err := run(t, "--config", cfg, "--now", "tomorrow", "exceptions")
	assert.Error(t, err)
}
