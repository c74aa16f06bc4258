package ports

import (
	"context"

	"github.com/levery-org/levery-market-simulation/internal/domain"
)

// RoundStore persiste rondas de oráculo entre corridas, con clave el id de
// ronda. La regla de merge es estricta: un guardado nunca duplica ids ya
// presentes.
type RoundStore interface {
	// LoadRounds devuelve todas las rondas cacheadas.
	LoadRounds(ctx context.Context) ([]domain.OracleRound, error)

	// SaveRounds añade las rondas dadas, ignorando ids ya presentes.
	SaveRounds(ctx context.Context, rounds []domain.OracleRound) error

	// Close cierra el store limpiamente.
	Close() error
}
