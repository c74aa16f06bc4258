package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Swap es un intercambio histórico recuperado del subgraph del pool.
// Los deltas están firmados desde la perspectiva del trader: el asset con
// delta negativo es el que el trader entregó al pool. Por convención del
// pool, token1 es el asset base y token0 el asset quote.
type Swap struct {
	ID        string
	Amount0   decimal.Decimal // delta firmado de token0 (quote)
	Amount1   decimal.Decimal // delta firmado de token1 (base)
	Timestamp int64           // unix seconds
	TxHash    string
}

// Validate comprueba que el swap es un intercambio bien formado:
// exactamente un delta negativo y ninguno en cero.
func (s Swap) Validate() error {
	if s.Amount0.IsZero() || s.Amount1.IsZero() {
		return fmt.Errorf("domain.Swap.Validate: swap %s: zero amount delta", s.ID)
	}
	if s.Amount0.IsNegative() == s.Amount1.IsNegative() {
		return fmt.Errorf("domain.Swap.Validate: swap %s: both deltas have the same sign", s.ID)
	}
	return nil
}

// MatchedSwap es un swap emparejado con la ronda de oráculo más reciente
// cuyo timestamp no supera el del swap. Round == nil significa que no hay
// ninguna ronda elegible (sentinel explícito, nunca un valor cero).
type MatchedSwap struct {
	Swap  Swap
	Round *OracleRound
	// TimeGapSeconds es la distancia absoluta entre ambos timestamps.
	// Solo es significativo cuando Round != nil.
	TimeGapSeconds int64
}

// Matched indica si el swap tiene ronda de oráculo asignada.
func (m MatchedSwap) Matched() bool {
	return m.Round != nil
}
