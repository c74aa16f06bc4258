package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/levery-org/levery-market-simulation/internal/domain"
)

func matchedAt(swap domain.Swap, round domain.OracleRound) domain.MatchedSwap {
	gap := swap.Timestamp - round.Timestamp
	if gap < 0 {
		gap = -gap
	}
	return domain.MatchedSwap{Swap: swap, Round: &round, TimeGapSeconds: gap}
}

// El caso de referencia: compra de 1 base por 3000 quote con el oráculo
// exactamente en 3000 → desviación cero, fee dinámica en la tasa base.
func TestCompute_RoundTripZeroDeviation(t *testing.T) {
	fm := domain.DefaultFeeModel()
	swap := makeSwap("s1", "-3000", "1", 1000)
	round := makeRound(7, 900, "3000")

	out, err := fm.Compute(matchedAt(swap, round))
	require.NoError(t, err)

	assert.Equal(t, domain.BuyBase, out.Direction)
	assert.True(t, out.TradedPrice.Equal(decimal.NewFromInt(3000)), "traded=%s", out.TradedPrice)

	require.True(t, out.DeviationPct.Valid)
	assert.True(t, out.DeviationPct.Decimal.IsZero())

	require.True(t, out.DynamicFeePct.Valid)
	assert.True(t, out.DynamicFeePct.Decimal.Equal(fm.BaseFeePct),
		"dyn=%s base=%s", out.DynamicFeePct.Decimal, fm.BaseFeePct)

	// standard fee = notional × base / 100 = 3000 × 0.05% = 1.5
	assert.True(t, out.StandardFee.Equal(decimal.RequireFromString("1.5")),
		"std=%s", out.StandardFee)
	require.True(t, out.DynamicFee.Valid)
	assert.True(t, out.DynamicFee.Decimal.Equal(decimal.RequireFromString("1.5")))
}

func TestCompute_Direction(t *testing.T) {
	fm := domain.DefaultFeeModel()
	round := makeRound(7, 900, "3000")

	buy, err := fm.Compute(matchedAt(makeSwap("b", "-3000", "1", 1000), round))
	require.NoError(t, err)
	assert.Equal(t, domain.BuyBase, buy.Direction)
	assert.Equal(t, "BUY", buy.Side)

	sell, err := fm.Compute(matchedAt(makeSwap("v", "3000", "-1", 1000), round))
	require.NoError(t, err)
	assert.Equal(t, domain.SellBase, sell.Direction)
	assert.Equal(t, "SELL", sell.Side)
}

func TestCompute_DynamicFeeNeverBelowBase(t *testing.T) {
	fm := domain.DefaultFeeModel()
	round := makeRound(7, 900, "3000")

	cases := []domain.Swap{
		makeSwap("a", "-3000", "1", 1000),  // sin desviación
		makeSwap("b", "-3300", "1", 1000),  // +10%
		makeSwap("c", "2700", "-1", 1000),  // -10%
		makeSwap("d", "-6000", "1", 1000),  // +100%
		makeSwap("e", "300", "-1", 1000),   // -90%
		makeSwap("f", "-30000", "1", 1000), // +900%, sin tope
	}
	for _, swap := range cases {
		out, err := fm.Compute(matchedAt(swap, round))
		require.NoError(t, err, "swap %s", swap.ID)
		require.True(t, out.DynamicFeePct.Valid, "swap %s", swap.ID)
		assert.True(t, out.DynamicFeePct.Decimal.GreaterThanOrEqual(fm.BaseFeePct),
			"swap %s: dyn=%s", swap.ID, out.DynamicFeePct.Decimal)
		// La fee estándar no depende de la desviación
		assert.True(t, out.StandardFeePct.Equal(fm.StandardFeePct))
	}
}

func TestCompute_DeviationScaling(t *testing.T) {
	fm := domain.DefaultFeeModel()
	// traded 3300 vs oracle 3000 → +10% de desviación
	out, err := fm.Compute(matchedAt(makeSwap("s", "-3300", "1", 1000), makeRound(7, 900, "3000")))
	require.NoError(t, err)

	require.True(t, out.DeviationPct.Valid)
	assert.InDelta(t, 10.0, out.DeviationPct.Decimal.InexactFloat64(), 1e-9)
	assert.InDelta(t, 10.0, out.AbsDeviationPct.Decimal.InexactFloat64(), 1e-9)

	// dyn = 0.05 + 70 × 10 / 100 = 7.05
	require.True(t, out.DynamicFeePct.Valid)
	assert.InDelta(t, 7.05, out.DynamicFeePct.Decimal.InexactFloat64(), 1e-9)

	// notional = max(3300, 1) = 3300; dynFee = 7.05% × 3300 = 232.65
	require.True(t, out.DynamicFee.Valid)
	assert.InDelta(t, 232.65, out.DynamicFee.Decimal.InexactFloat64(), 1e-9)
}

func TestCompute_HookPriceMovesAgainstTrader(t *testing.T) {
	fm := domain.DefaultFeeModel()
	round := makeRound(7, 900, "3000")

	buy, err := fm.Compute(matchedAt(makeSwap("b", "-3000", "1", 1000), round))
	require.NoError(t, err)
	require.True(t, buy.HookPrice.Valid)
	// Comprando, el hook encarece: 3000 × (1 + 0.05%) = 3001.5
	assert.InDelta(t, 3001.5, buy.HookPrice.Decimal.InexactFloat64(), 1e-9)
	// Eficiencia del comprador: (3000 − 3001.5) / 3000 × 100 = −0.05%
	require.True(t, buy.EfficiencyPct.Valid)
	assert.InDelta(t, -0.05, buy.EfficiencyPct.Decimal.InexactFloat64(), 1e-9)

	sell, err := fm.Compute(matchedAt(makeSwap("v", "3000", "-1", 1000), round))
	require.NoError(t, err)
	require.True(t, sell.HookPrice.Valid)
	// Vendiendo, el hook abarata lo recibido: 3000 × (1 − 0.05%) = 2998.5
	assert.InDelta(t, 2998.5, sell.HookPrice.Decimal.InexactFloat64(), 1e-9)
	require.True(t, sell.EfficiencyPct.Valid)
	assert.InDelta(t, -0.05, sell.EfficiencyPct.Decimal.InexactFloat64(), 1e-9)
}

func TestCompute_UnmatchedSwap(t *testing.T) {
	fm := domain.DefaultFeeModel()
	out, err := fm.Compute(domain.MatchedSwap{Swap: makeSwap("s", "-3000", "1", 1000)})
	require.NoError(t, err)

	// Lo independiente del oráculo se calcula siempre
	assert.False(t, out.Matched)
	assert.Equal(t, domain.BuyBase, out.Direction)
	assert.True(t, out.TradedPrice.Equal(decimal.NewFromInt(3000)))
	assert.True(t, out.StandardFee.Equal(decimal.RequireFromString("1.5")))

	// Lo dependiente queda explícitamente no disponible — no cero
	assert.False(t, out.OraclePrice.Valid)
	assert.False(t, out.DeviationPct.Valid)
	assert.False(t, out.DynamicFeePct.Valid)
	assert.False(t, out.DynamicFee.Valid)
	assert.False(t, out.HookPrice.Valid)
	assert.False(t, out.EfficiencyPct.Valid)
}

func TestCompute_NonPositiveOraclePrice(t *testing.T) {
	fm := domain.DefaultFeeModel()

	for _, price := range []string{"0", "-1"} {
		out, err := fm.Compute(matchedAt(makeSwap("s", "-3000", "1", 1000), makeRound(7, 900, price)))
		require.NoError(t, err, "price %s", price)

		// La ronda existe pero el answer no sirve: nada de NaN/Inf
		assert.True(t, out.Matched, "price %s", price)
		assert.False(t, out.OraclePrice.Valid, "price %s", price)
		assert.False(t, out.DeviationPct.Valid, "price %s", price)
		assert.False(t, out.EfficiencyPct.Valid, "price %s", price)
	}
}

func TestCompute_InvalidSwap(t *testing.T) {
	fm := domain.DefaultFeeModel()
	_, err := fm.Compute(domain.MatchedSwap{Swap: makeSwap("s", "0", "1", 1000)})
	assert.Error(t, err)
}

func TestCompute_NotionalIsLargerDelta(t *testing.T) {
	fm := domain.DefaultFeeModel()
	out, err := fm.Compute(domain.MatchedSwap{Swap: makeSwap("s", "-3000", "2", 1000)})
	require.NoError(t, err)
	assert.True(t, out.NotionalSize.Equal(decimal.NewFromInt(3000)))

	out, err = fm.Compute(domain.MatchedSwap{Swap: makeSwap("s2", "-1", "5000", 1000)})
	require.NoError(t, err)
	assert.True(t, out.NotionalSize.Equal(decimal.NewFromInt(5000)))
}
