package ports

import (
	"context"

	"github.com/levery-org/levery-market-simulation/internal/domain"
)

// ReportSink escribe el reporte final de una corrida en un medio durable.
type ReportSink interface {
	// Write persiste el reporte y devuelve la ruta o clave del documento.
	Write(ctx context.Context, report domain.Report) (string, error)
}
