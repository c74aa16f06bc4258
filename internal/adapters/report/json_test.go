package report_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/levery-org/levery-market-simulation/internal/adapters/report"
	"github.com/levery-org/levery-market-simulation/internal/domain"
)

func TestJSONSink_Write(t *testing.T) {
	dir := t.TempDir()
	sink, err := report.NewJSONSink(dir)
	require.NoError(t, err)

	r := domain.BuildReport("run-json", 1700000000, 1699913600, 1700000000, nil)
	path, err := sink.Write(context.Background(), r)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "report_1700000000.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "run-json", decoded["run_id"])
}

func TestJSONSink_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "reports")
	_, err := report.NewJSONSink(dir)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
