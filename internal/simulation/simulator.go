package simulation

// simulator.go — orquestación de una corrida completa.
//
// Las dos recuperaciones (rondas del oráculo y swaps del pool) no comparten
// estado y corren en paralelo; el resto del pipeline — join temporal,
// cálculo de fees y agregación — es síncrono sobre datos ya recuperados.

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/levery-org/levery-market-simulation/internal/domain"
	"github.com/levery-org/levery-market-simulation/internal/ports"
)

// Config contiene la configuración de una corrida.
type Config struct {
	WindowHours   int
	HistoryMargin int
	PageSize      int
	Fees          domain.FeeModel

	// Now permite inyectar el reloj en tests. nil → time.Now.
	Now func() time.Time
}

// DefaultConfig devuelve una configuración sensata para producción.
func DefaultConfig() Config {
	return Config{
		WindowHours:   24,
		HistoryMargin: 5,
		PageSize:      defaultPageSize,
		Fees:          domain.DefaultFeeModel(),
	}
}

// Simulator es el orquestador de la simulación.
type Simulator struct {
	cfg      Config
	swaps    ports.SwapSource
	feed     ports.OracleFeed
	store    ports.RoundStore
	sink     ports.ReportSink
	notifier ports.Notifier
}

// New crea un Simulator con todas las dependencias inyectadas.
// store, sink y notifier pueden ser nil (sin caché / sin salida).
func New(
	cfg Config,
	swaps ports.SwapSource,
	feed ports.OracleFeed,
	store ports.RoundStore,
	sink ports.ReportSink,
	notifier ports.Notifier,
) *Simulator {
	return &Simulator{
		cfg:      cfg,
		swaps:    swaps,
		feed:     feed,
		store:    store,
		sink:     sink,
		notifier: notifier,
	}
}

// Run ejecuta una corrida completa y devuelve el reporte. Un fallo de
// recuperación (reintentos agotados, pool inexistente) aborta la corrida
// sin emitir reporte parcial; el caché de rondas persistido hasta entonces
// sigue siendo válido para la siguiente corrida.
func (s *Simulator) Run(ctx context.Context) (domain.Report, error) {
	now := time.Now
	if s.cfg.Now != nil {
		now = s.cfg.Now
	}
	windowEnd := now().Unix()
	windowStart := windowEnd - int64(s.cfg.WindowHours)*3600

	slog.Info("simulation starting",
		"window_start", windowStart,
		"window_end", windowEnd,
		"window_hours", s.cfg.WindowHours,
	)

	builder := NewHistoryBuilder(s.feed, s.store, s.cfg.HistoryMargin)
	ingestor := NewSwapIngestor(s.swaps, s.cfg.PageSize)

	var (
		wg        sync.WaitGroup
		rounds    []domain.OracleRound
		roundsErr error
		swaps     []domain.Swap
		swapsErr  error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		rounds, roundsErr = builder.Build(ctx, windowStart, windowEnd)
	}()
	go func() {
		defer wg.Done()
		swaps, swapsErr = ingestor.FetchAll(ctx, windowStart)
	}()
	wg.Wait()

	if roundsErr != nil {
		return domain.Report{}, fmt.Errorf("simulation.Run: oracle history: %w", roundsErr)
	}
	if swapsErr != nil {
		return domain.Report{}, fmt.Errorf("simulation.Run: swap ingestion: %w", swapsErr)
	}

	matcher := domain.NewMatcher(rounds)
	outcomes := make([]domain.FeeOutcome, 0, len(swaps))
	for _, matched := range matcher.MatchAll(swaps) {
		outcome, err := s.cfg.Fees.Compute(matched)
		if err != nil {
			return domain.Report{}, fmt.Errorf("simulation.Run: %w", err)
		}
		outcomes = append(outcomes, outcome)
	}

	report := domain.BuildReport(uuid.NewString(), windowEnd, windowStart, windowEnd, outcomes)

	if s.sink != nil {
		path, err := s.sink.Write(ctx, report)
		if err != nil {
			return domain.Report{}, fmt.Errorf("simulation.Run: write report: %w", err)
		}
		slog.Info("report written", "path", path)
	}

	if s.notifier != nil {
		if err := s.notifier.Notify(ctx, report); err != nil {
			slog.Warn("notifier error", "err", err)
		}
	}

	slog.Info("simulation complete",
		"swaps", report.SwapCount,
		"matched", report.MatchedCount,
		"avg_efficiency_pct", report.AvgEfficiencyPct,
	)
	return report, nil
}
