package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/shopspring/decimal"

	"github.com/levery-org/levery-market-simulation/internal/domain"
)

// Cuántos swaps se muestran en la tabla completa.
const tableTopN = 20

// Console implementa ports.Notifier.
type Console struct {
	out   io.Writer
	table bool
}

// NewConsole crea un notificador que escribe a stdout.
func NewConsole(table bool) *Console {
	return &Console{out: os.Stdout, table: table}
}

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer, table bool) *Console {
	return &Console{out: w, table: table}
}

// Notify imprime el reporte en el modo configurado.
func (c *Console) Notify(_ context.Context, report domain.Report) error {
	if report.SwapCount == 0 {
		fmt.Fprintf(c.out, "[%s] no swaps in window — nothing to simulate\n",
			time.Now().Format("15:04:05"))
		return nil
	}

	if c.table {
		c.printFull(report)
	} else {
		c.printCompact(report)
	}
	return nil
}

// printCompact imprime lo esencial en una línea.
func (c *Console) printCompact(r domain.Report) {
	fmt.Fprintf(c.out,
		"[%s] run %s — %d swaps (%d matched) | std fee %s | dyn fee %s | avg eff %s%%\n",
		time.Now().Format("15:04:05"),
		shortID(r.RunID),
		r.SwapCount,
		r.MatchedCount,
		r.TotalStandardFee.StringFixed(6),
		r.TotalDynamicFee.StringFixed(6),
		r.AvgEfficiencyPct.StringFixed(4),
	)
}

// printFull imprime la tabla de los primeros swaps más el resumen agregado.
func (c *Console) printFull(r domain.Report) {
	fmt.Fprintf(c.out, "\n=== LEVERY SIMULATION — run %s ===\n", r.RunID)
	fmt.Fprintf(c.out, "window: %s → %s\n",
		time.Unix(r.WindowStart, 0).UTC().Format(time.RFC3339),
		time.Unix(r.WindowEnd, 0).UTC().Format(time.RFC3339),
	)

	table := tablewriter.NewWriter(c.out)
	table.Header("#", "Swap", "Side", "Traded", "Oracle", "Dev%", "DynFee%", "StdFee", "DynFee", "Eff%")

	shown := r.Outcomes
	if len(shown) > tableTopN {
		shown = shown[:tableTopN]
	}
	for i, out := range shown {
		table.Append(
			fmt.Sprintf("%d", i+1),
			shortID(out.SwapID),
			out.Side,
			out.TradedPrice.StringFixed(4),
			nullLabel(out.OraclePrice, 4),
			nullLabel(out.DeviationPct, 4),
			nullLabel(out.DynamicFeePct, 4),
			out.StandardFee.StringFixed(6),
			nullLabel(out.DynamicFee, 6),
			nullLabel(out.EfficiencyPct, 4),
		)
	}
	table.Render()

	if len(r.Outcomes) > tableTopN {
		fmt.Fprintf(c.out, "  ... %d more swaps in the JSON report\n", len(r.Outcomes)-tableTopN)
	}

	fmt.Fprintf(c.out, "\n  Swaps: %d (matched: %d)\n", r.SwapCount, r.MatchedCount)
	fmt.Fprintf(c.out, "  Volume token0: %s | token1: %s\n",
		r.TotalVolume0.StringFixed(4), r.TotalVolume1.StringFixed(4))
	fmt.Fprintf(c.out, "  Total standard fee: %s | total dynamic fee: %s\n",
		r.TotalStandardFee.StringFixed(6), r.TotalDynamicFee.StringFixed(6))
	fmt.Fprintf(c.out, "  Avg efficiency: %s%%\n\n", r.AvgEfficiencyPct.StringFixed(4))
}

// nullLabel formatea un NullDecimal, con "N/A" explícito cuando el valor
// no está disponible.
func nullLabel(v decimal.NullDecimal, places int32) string {
	if !v.Valid {
		return "N/A"
	}
	return v.Decimal.StringFixed(places)
}

// shortID recorta un id largo para la tabla.
func shortID(id string) string {
	if len(id) <= 12 {
		return id
	}
	return id[:12] + "..."
}
