package ports

import (
	"context"

	"github.com/levery-org/levery-market-simulation/internal/domain"
)

// OracleFeed expone el histórico de rondas del feed de precios. Las rondas
// devueltas ya traen el precio escalado por los decimales del feed.
type OracleFeed interface {
	// LatestRoundID devuelve el id de la ronda más reciente publicada.
	LatestRoundID(ctx context.Context) (uint64, error)

	// RoundData devuelve la ronda con el id dado.
	RoundData(ctx context.Context, roundID uint64) (domain.OracleRound, error)
}
