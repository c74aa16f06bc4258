// Package report implementa el ReportSink que escribe el documento JSON
// de la corrida, nombrado por el timestamp de la corrida.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/levery-org/levery-market-simulation/internal/domain"
)

// JSONSink escribe un reporte por corrida en el directorio configurado.
type JSONSink struct {
	dir string
}

// NewJSONSink crea el sink sobre el directorio dado, creándolo si no existe.
func NewJSONSink(dir string) (*JSONSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("report.NewJSONSink: mkdir %q: %w", dir, err)
	}
	return &JSONSink{dir: dir}, nil
}

// Write implementa ports.ReportSink.
func (s *JSONSink) Write(_ context.Context, r domain.Report) (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("report.Write: marshal: %w", err)
	}

	path := filepath.Join(s.dir, fmt.Sprintf("report_%d.json", r.GeneratedAt))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("report.Write: write %q: %w", path, err)
	}
	return path, nil
}
