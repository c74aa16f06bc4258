package ports

import (
	"context"
	"errors"

	"github.com/levery-org/levery-market-simulation/internal/domain"
)

// ErrPoolNotFound indica que la fuente no conoce el pool consultado.
// Es una condición fatal, distinta de una página vacía (fin del histórico).
var ErrPoolNotFound = errors.New("pool not found")

// SwapSource recupera páginas de swaps del pool, ordenadas por timestamp
// descendente, mediante paginación por cursor.
type SwapSource interface {
	// FetchSwapPage devuelve hasta limit swaps con timestamp >= fromTimestamp.
	// beforeID es el cursor exclusivo (id del último swap de la página
	// anterior); vacío en la primera página. Una página corta señala el
	// final del histórico. Un pool inexistente devuelve ErrPoolNotFound.
	FetchSwapPage(ctx context.Context, fromTimestamp int64, beforeID string, limit int) ([]domain.Swap, error)
}
