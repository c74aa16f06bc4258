package simulation_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/levery-org/levery-market-simulation/internal/domain"
	"github.com/levery-org/levery-market-simulation/internal/ports"
	"github.com/levery-org/levery-market-simulation/internal/simulation"
)

// fakeSwapSource devuelve páginas preparadas y registra los cursores con
// los que se le llamó.
type fakeSwapSource struct {
	pages   [][]domain.Swap
	err     error
	cursors []string
	from    []int64
}

func (f *fakeSwapSource) FetchSwapPage(_ context.Context, fromTimestamp int64, beforeID string, _ int) ([]domain.Swap, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.cursors = append(f.cursors, beforeID)
	f.from = append(f.from, fromTimestamp)

	page := len(f.cursors) - 1
	if page >= len(f.pages) {
		return nil, fmt.Errorf("unexpected page %d", page)
	}
	return f.pages[page], nil
}

func testSwap(id string, ts int64) domain.Swap {
	return domain.Swap{
		ID:        id,
		Amount0:   decimal.NewFromInt(-3000),
		Amount1:   decimal.NewFromInt(1),
		Timestamp: ts,
		TxHash:    "0xtx_" + id,
	}
}

func TestSwapIngestor_PaginatesUntilShortPage(t *testing.T) {
	source := &fakeSwapSource{pages: [][]domain.Swap{
		{testSwap("s5", 500), testSwap("s4", 400)},
		{testSwap("s3", 300), testSwap("s2", 200)},
		{testSwap("s1", 100)},
	}}
	ingestor := simulation.NewSwapIngestor(source, 2)

	swaps, err := ingestor.FetchAll(context.Background(), 50)
	require.NoError(t, err)

	require.Len(t, swaps, 5)
	assert.Equal(t, "s5", swaps[0].ID)
	assert.Equal(t, "s1", swaps[4].ID)

	// Cursor de cada página: vacío, luego el último id de la anterior
	assert.Equal(t, []string{"", "s4", "s2"}, source.cursors)
	// El límite de timestamp se repite en todas las páginas
	assert.Equal(t, []int64{50, 50, 50}, source.from)
}

func TestSwapIngestor_EmptyFirstPage(t *testing.T) {
	source := &fakeSwapSource{pages: [][]domain.Swap{{}}}
	ingestor := simulation.NewSwapIngestor(source, 2)

	swaps, err := ingestor.FetchAll(context.Background(), 50)
	require.NoError(t, err)
	assert.Empty(t, swaps)
	assert.Equal(t, []string{""}, source.cursors)
}

func TestSwapIngestor_PoolNotFoundIsFatal(t *testing.T) {
	source := &fakeSwapSource{err: fmt.Errorf("subgraph: %w", ports.ErrPoolNotFound)}
	ingestor := simulation.NewSwapIngestor(source, 2)

	_, err := ingestor.FetchAll(context.Background(), 50)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ports.ErrPoolNotFound))
}

func TestSwapIngestor_InvalidSwapFailsRun(t *testing.T) {
	bad := testSwap("bad", 100)
	bad.Amount1 = decimal.Zero

	source := &fakeSwapSource{pages: [][]domain.Swap{{bad}}}
	ingestor := simulation.NewSwapIngestor(source, 2)

	_, err := ingestor.FetchAll(context.Background(), 50)
	assert.Error(t, err)
}
