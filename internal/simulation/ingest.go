package simulation

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/levery-org/levery-market-simulation/internal/domain"
	"github.com/levery-org/levery-market-simulation/internal/ports"
)

const defaultPageSize = 1000

// SwapIngestor recupera el histórico completo de swaps de la ventana vía
// paginación por cursor: cada página lleva el límite inferior de timestamp
// y el id del último swap visto como cota exclusiva; una página corta
// señala que el histórico se agotó.
type SwapIngestor struct {
	source   ports.SwapSource
	pageSize int
}

// NewSwapIngestor crea el ingestor. pageSize <= 0 usa el tamaño por defecto.
func NewSwapIngestor(source ports.SwapSource, pageSize int) *SwapIngestor {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &SwapIngestor{source: source, pageSize: pageSize}
}

// FetchAll devuelve todos los swaps con timestamp >= fromTimestamp en el
// orden de llegada (timestamp descendente), sin huecos ni duplicados.
// Un swap malformado aborta la corrida: coaccionar a cero corrompería los
// agregados del reporte.
func (ing *SwapIngestor) FetchAll(ctx context.Context, fromTimestamp int64) ([]domain.Swap, error) {
	var all []domain.Swap
	cursor := ""

	for page := 0; ; page++ {
		swaps, err := ing.source.FetchSwapPage(ctx, fromTimestamp, cursor, ing.pageSize)
		if err != nil {
			return nil, fmt.Errorf("simulation.SwapIngestor.FetchAll: page %d: %w", page, err)
		}

		for _, s := range swaps {
			if err := s.Validate(); err != nil {
				return nil, fmt.Errorf("simulation.SwapIngestor.FetchAll: %w", err)
			}
		}
		all = append(all, swaps...)

		slog.Debug("ingested swaps page",
			"page", page,
			"count", len(swaps),
			"total", len(all),
		)

		if len(swaps) < ing.pageSize {
			break
		}
		cursor = swaps[len(swaps)-1].ID
	}

	slog.Info("swap ingestion complete", "swaps", len(all))
	return all, nil
}
