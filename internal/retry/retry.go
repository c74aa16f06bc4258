// Package retry implementa la política común de reintentos de las dos
// fuentes de datos: intentos acotados, espera fija entre intentos y un
// timeout de reloj por intento que compite con la llamada.
package retry

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Policy es la configuración de reintentos compartida por ambos clientes.
type Policy struct {
	Attempts int           // intentos totales (>= 1)
	Delay    time.Duration // espera fija entre intentos
	Timeout  time.Duration // tope de reloj por intento
}

// DefaultPolicy devuelve la política usada en producción.
func DefaultPolicy() Policy {
	return Policy{
		Attempts: 3,
		Delay:    500 * time.Millisecond,
		Timeout:  10 * time.Second,
	}
}

// Do ejecuta fn hasta que tenga éxito o se agoten los intentos. Cada
// intento corre bajo un contexto con deadline Timeout; un intento que no
// resuelve antes del deadline cuenta como fallo y es elegible para
// reintento. Si los intentos se agotan el error del último intento se
// devuelve envuelto — el llamante decide si eso aborta la corrida.
func (p Policy) Do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		attemptCtx := ctx
		var cancel context.CancelFunc
		if p.Timeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, p.Timeout)
		}
		err := fn(attemptCtx)
		if cancel != nil {
			cancel()
		}
		if err == nil {
			return nil
		}
		lastErr = err

		if attempt < attempts {
			slog.Warn("retrying after transient failure",
				"op", op,
				"attempt", attempt,
				"err", err,
			)
			select {
			case <-time.After(p.Delay):
			case <-ctx.Done():
				return fmt.Errorf("retry.Do: %s: %w", op, ctx.Err())
			}
		}
	}

	return fmt.Errorf("retry.Do: %s: exhausted %d attempts: %w", op, attempts, lastErr)
}
