package notify_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/levery-org/levery-market-simulation/internal/adapters/notify"
	"github.com/levery-org/levery-market-simulation/internal/domain"
)

func makeReport(t *testing.T) domain.Report {
	t.Helper()
	fm := domain.DefaultFeeModel()
	round := domain.OracleRound{RoundID: 7, Timestamp: 900, Price: decimal.NewFromInt(3000)}

	buy, err := fm.Compute(domain.MatchedSwap{
		Swap: domain.Swap{
			ID:        "0xswap_buy_000000000000",
			Amount0:   decimal.NewFromInt(-3100),
			Amount1:   decimal.NewFromInt(1),
			Timestamp: 1000,
		},
		Round: &round, TimeGapSeconds: 100,
	})
	require.NoError(t, err)

	unmatched, err := fm.Compute(domain.MatchedSwap{
		Swap: domain.Swap{
			ID:        "0xswap_unmatched",
			Amount0:   decimal.NewFromInt(2900),
			Amount1:   decimal.NewFromInt(-1),
			Timestamp: 500,
		},
	})
	require.NoError(t, err)

	return domain.BuildReport("run-abc", 5000, 0, 5000, []domain.FeeOutcome{buy, unmatched})
}

func TestConsole_Compact(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf, false)

	err := n.Notify(context.Background(), makeReport(t))
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "2 swaps")
	assert.Contains(t, out, "1 matched")
	assert.Contains(t, out, "run-abc")
	// Compacto: una sola línea
	assert.Equal(t, 1, strings.Count(out, "\n"))
}

func TestConsole_FullTable(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf, true)

	err := n.Notify(context.Background(), makeReport(t))
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "LEVERY SIMULATION")
	assert.Contains(t, out, "BUY")
	assert.Contains(t, out, "SELL")
	// El swap sin ronda muestra N/A, no ceros
	assert.Contains(t, out, "N/A")
	assert.Contains(t, out, "Avg efficiency")
}

func TestConsole_EmptyReport(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf, true)

	err := n.Notify(context.Background(), domain.BuildReport("run-x", 100, 0, 100, nil))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "no swaps")
}
