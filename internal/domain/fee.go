package domain

// fee.go — simulación del hook de fee dinámico de Levery.
//
// La fee dinámica crece linealmente con la desviación del precio negociado
// respecto al oráculo: dynPct = basePct + multiplier × |devPct| / 100.
// No hay tope configurado: una desviación extrema produce una fee extrema,
// que se reporta tal cual en vez de recortarse en silencio.

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Direction indica qué lado del pool tomó el trader respecto al asset base.
type Direction int

const (
	// BuyBase: el trader entregó quote (amount0 < 0) y recibió base.
	BuyBase Direction = iota + 1
	// SellBase: el trader entregó base (amount1 < 0) y recibió quote.
	SellBase
)

// String devuelve la etiqueta legible de la dirección.
func (d Direction) String() string {
	switch d {
	case BuyBase:
		return "BUY"
	case SellBase:
		return "SELL"
	default:
		return "UNKNOWN"
	}
}

var (
	oneHundred = decimal.NewFromInt(100)
	one        = decimal.NewFromInt(1)
)

// FeeModel contiene las constantes del modelo de fees. Todos los
// porcentajes se expresan en puntos porcentuales (0.05 = 0.05%).
type FeeModel struct {
	BaseFeePct          decimal.Decimal // tasa base de la fee dinámica
	DeviationMultiplier decimal.Decimal // factor lineal sobre |desviación|/100
	StandardFeePct      decimal.Decimal // fee fija del baseline
}

// DefaultFeeModel devuelve las constantes canónicas del hook.
func DefaultFeeModel() FeeModel {
	return FeeModel{
		BaseFeePct:          decimal.RequireFromString("0.05"),
		DeviationMultiplier: decimal.NewFromInt(70),
		StandardFeePct:      decimal.RequireFromString("0.05"),
	}
}

// FeeOutcome es el resultado del cálculo de fees para un swap. Los campos
// que dependen del oráculo usan decimal.NullDecimal: Valid == false es el
// marcador explícito de "no disponible" (nunca cero, nunca NaN).
type FeeOutcome struct {
	SwapID    string          `json:"swap_id"`
	TxHash    string          `json:"tx_hash"`
	Timestamp int64           `json:"timestamp"`
	Direction Direction       `json:"-"`
	Side      string          `json:"side"`
	Volume0   decimal.Decimal `json:"volume0"` // |amount0|
	Volume1   decimal.Decimal `json:"volume1"` // |amount1|

	TradedPrice  decimal.Decimal `json:"traded_price"` // quote por unidad de base
	NotionalSize decimal.Decimal `json:"notional_size"`

	Matched        bool                `json:"matched"`
	TimeGapSeconds int64               `json:"time_gap_seconds,omitempty"`
	OracleRoundID  uint64              `json:"oracle_round_id,omitempty"`
	OraclePrice    decimal.NullDecimal `json:"oracle_price"`

	DeviationPct    decimal.NullDecimal `json:"deviation_pct"`
	AbsDeviationPct decimal.NullDecimal `json:"abs_deviation_pct"`
	DynamicFeePct   decimal.NullDecimal `json:"dynamic_fee_pct"`
	StandardFeePct  decimal.Decimal     `json:"standard_fee_pct"`

	StandardFee decimal.Decimal     `json:"standard_fee"` // en términos del notional
	DynamicFee  decimal.NullDecimal `json:"dynamic_fee"`

	HookPrice     decimal.NullDecimal `json:"hook_price"`
	EfficiencyPct decimal.NullDecimal `json:"efficiency_pct"`
}

// Compute deriva el FeeOutcome de un swap emparejado. Es una función pura:
// sin I/O, sin reintentos. Un precio de oráculo no positivo o la ausencia
// de ronda propagan NullDecimals inválidos en los campos dependientes del
// oráculo; la fee estándar, el precio negociado y la dirección se calculan
// siempre.
func (fm FeeModel) Compute(m MatchedSwap) (FeeOutcome, error) {
	if err := m.Swap.Validate(); err != nil {
		return FeeOutcome{}, fmt.Errorf("domain.FeeModel.Compute: %w", err)
	}

	abs0 := m.Swap.Amount0.Abs()
	abs1 := m.Swap.Amount1.Abs()

	direction := SellBase
	if m.Swap.Amount0.IsNegative() {
		direction = BuyBase
	}

	// Precio de una unidad de base (token1) en quote (token0), siempre positivo.
	tradedPrice := abs0.Div(abs1)

	notional := abs0
	if abs1.GreaterThan(abs0) {
		notional = abs1
	}

	out := FeeOutcome{
		SwapID:         m.Swap.ID,
		TxHash:         m.Swap.TxHash,
		Timestamp:      m.Swap.Timestamp,
		Direction:      direction,
		Side:           direction.String(),
		Volume0:        abs0,
		Volume1:        abs1,
		TradedPrice:    tradedPrice,
		NotionalSize:   notional,
		StandardFeePct: fm.StandardFeePct,
		StandardFee:    fm.StandardFeePct.Div(oneHundred).Mul(notional),
	}

	if !m.Matched() {
		return out, nil
	}

	out.Matched = true
	out.TimeGapSeconds = m.TimeGapSeconds
	out.OracleRoundID = m.Round.RoundID

	oracle := m.Round.Price
	if !oracle.IsPositive() {
		// Ronda presente pero con answer inservible: los campos derivados
		// quedan marcados como no disponibles en vez de dividir por cero.
		return out, nil
	}
	out.OraclePrice = decimal.NewNullDecimal(oracle)

	deviation := tradedPrice.Sub(oracle).Div(oracle).Mul(oneHundred)
	absDeviation := deviation.Abs()
	out.DeviationPct = decimal.NewNullDecimal(deviation)
	out.AbsDeviationPct = decimal.NewNullDecimal(absDeviation)

	dynPct := fm.BaseFeePct.Add(fm.DeviationMultiplier.Mul(absDeviation).Div(oneHundred))
	out.DynamicFeePct = decimal.NewNullDecimal(dynPct)
	out.DynamicFee = decimal.NewNullDecimal(dynPct.Div(oneHundred).Mul(notional))

	// El hook mueve el precio efectivo en contra del trader: más caro al
	// comprar, más barato al vender.
	feeFactor := dynPct.Div(oneHundred)
	var hookPrice, efficiency decimal.Decimal
	if direction == BuyBase {
		hookPrice = tradedPrice.Mul(one.Add(feeFactor))
		efficiency = oracle.Sub(hookPrice).Div(oracle).Mul(oneHundred)
	} else {
		hookPrice = tradedPrice.Mul(one.Sub(feeFactor))
		efficiency = hookPrice.Sub(oracle).Div(oracle).Mul(oneHundred)
	}
	out.HookPrice = decimal.NewNullDecimal(hookPrice)
	out.EfficiencyPct = decimal.NewNullDecimal(efficiency)

	return out, nil
}
