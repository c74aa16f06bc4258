package domain

import "github.com/shopspring/decimal"

// Report es el documento final de una corrida: agregados más la secuencia
// ordenada de resultados por swap. Inmutable una vez construido.
type Report struct {
	RunID       string `json:"run_id"`
	GeneratedAt int64  `json:"generated_at"`
	WindowStart int64  `json:"window_start"`
	WindowEnd   int64  `json:"window_end"`

	SwapCount    int `json:"swap_count"`
	MatchedCount int `json:"matched_count"` // swaps con eficiencia calculable

	TotalVolume0     decimal.Decimal `json:"total_volume0"`
	TotalVolume1     decimal.Decimal `json:"total_volume1"`
	TotalStandardFee decimal.Decimal `json:"total_standard_fee"`
	TotalDynamicFee  decimal.Decimal `json:"total_dynamic_fee"`

	// AvgEfficiencyPct es la media sobre los swaps con eficiencia
	// disponible. Cero (no NaN) cuando MatchedCount == 0.
	AvgEfficiencyPct decimal.Decimal `json:"avg_efficiency_pct"`

	Outcomes []FeeOutcome `json:"outcomes"`
}

// BuildReport pliega la secuencia de resultados en los agregados del
// reporte. Los swaps sin ronda de oráculo cuentan en SwapCount y en los
// volúmenes; solo quedan fuera de los agregados dependientes del oráculo.
func BuildReport(runID string, generatedAt, windowStart, windowEnd int64, outcomes []FeeOutcome) Report {
	r := Report{
		RunID:       runID,
		GeneratedAt: generatedAt,
		WindowStart: windowStart,
		WindowEnd:   windowEnd,
		Outcomes:    outcomes,
	}

	var effSum decimal.Decimal
	for _, out := range outcomes {
		r.SwapCount++
		r.TotalVolume0 = r.TotalVolume0.Add(out.Volume0)
		r.TotalVolume1 = r.TotalVolume1.Add(out.Volume1)
		r.TotalStandardFee = r.TotalStandardFee.Add(out.StandardFee)

		if out.DynamicFee.Valid {
			r.TotalDynamicFee = r.TotalDynamicFee.Add(out.DynamicFee.Decimal)
		}
		if out.EfficiencyPct.Valid {
			effSum = effSum.Add(out.EfficiencyPct.Decimal)
			r.MatchedCount++
		}
	}

	if r.MatchedCount > 0 {
		r.AvgEfficiencyPct = effSum.Div(decimal.NewFromInt(int64(r.MatchedCount)))
	}
	return r
}
