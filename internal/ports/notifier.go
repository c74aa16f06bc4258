package ports

import (
	"context"

	"github.com/levery-org/levery-market-simulation/internal/domain"
)

// Notifier presenta el resultado de una corrida al operador.
type Notifier interface {
	// Notify muestra el reporte por el canal configurado.
	// En la implementación de consola, imprime una tabla formateada.
	Notify(ctx context.Context, report domain.Report) error
}
