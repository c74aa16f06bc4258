package simulation

// history.go — reconstrucción del histórico de rondas del oráculo.
//
// Camina hacia atrás desde la ronda más reciente decrementando el id hasta
// que el timestamp cae en o por debajo del inicio de la ventana, y añade
// un margen fijo de rondas más antiguas: así todo swap dentro de la
// ventana encuentra alguna observación anterior o igual a su timestamp.

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/levery-org/levery-market-simulation/internal/domain"
	"github.com/levery-org/levery-market-simulation/internal/ports"
)

// HistoryBuilder reconstruye el histórico de rondas para una ventana.
type HistoryBuilder struct {
	feed   ports.OracleFeed
	store  ports.RoundStore // nil → sin caché durable
	margin int
}

// NewHistoryBuilder crea el builder. margin <= 0 usa el margen por defecto (5).
func NewHistoryBuilder(feed ports.OracleFeed, store ports.RoundStore, margin int) *HistoryBuilder {
	if margin <= 0 {
		margin = 5
	}
	return &HistoryBuilder{feed: feed, store: store, margin: margin}
}

// Build devuelve las rondas que cubren [windowStart, windowEnd] más el
// margen, ordenadas por id de ronda descendente. Las rondas ya cacheadas
// se reutilizan sin re-fetch; las nuevas se persisten al final de una
// caminata exitosa. La caminata siempre arranca desde la ronda más
// reciente del feed, aunque el caché esté caliente, para capturar
// actividad nueva.
func (b *HistoryBuilder) Build(ctx context.Context, windowStart, windowEnd int64) ([]domain.OracleRound, error) {
	cached := make(map[uint64]domain.OracleRound)
	if b.store != nil {
		loaded, err := b.store.LoadRounds(ctx)
		if err != nil {
			return nil, fmt.Errorf("simulation.HistoryBuilder.Build: load cache: %w", err)
		}
		for _, r := range loaded {
			cached[r.RoundID] = r
		}
		slog.Info("round cache loaded", "rounds", len(loaded))
	}

	latest, err := b.feed.LatestRoundID(ctx)
	if err != nil {
		return nil, fmt.Errorf("simulation.HistoryBuilder.Build: latest round: %w", err)
	}

	var (
		rounds  []domain.OracleRound
		fetched []domain.OracleRound
		hits    int
	)
	round := func(id uint64) (domain.OracleRound, error) {
		if r, ok := cached[id]; ok {
			hits++
			return r, nil
		}
		r, err := b.feed.RoundData(ctx, id)
		if err != nil {
			return domain.OracleRound{}, err
		}
		fetched = append(fetched, r)
		cached[id] = r
		return r, nil
	}

	id := latest
	for {
		r, err := round(id)
		if err != nil {
			return nil, fmt.Errorf("simulation.HistoryBuilder.Build: round %d: %w", id, err)
		}

		switch {
		case r.Timestamp >= windowStart && r.Timestamp <= windowEnd:
			rounds = append(rounds, r)
		case r.Timestamp < windowStart:
			// La ronda frontera queda fuera de la ventana pero es la
			// observación más reciente anterior al inicio: se conserva
			// para el join temporal de los primeros swaps.
			rounds = append(rounds, r)
		}

		// El corte por id == 0 garantiza terminación aunque los
		// timestamps del feed decaigan de forma patológica.
		if r.Timestamp <= windowStart || id == 0 {
			break
		}
		id--
	}

	for i := 0; i < b.margin && id > 0; i++ {
		id--
		r, err := round(id)
		if err != nil {
			return nil, fmt.Errorf("simulation.HistoryBuilder.Build: margin round %d: %w", id, err)
		}
		rounds = append(rounds, r)
	}

	if b.store != nil && len(fetched) > 0 {
		if err := b.store.SaveRounds(ctx, fetched); err != nil {
			return nil, fmt.Errorf("simulation.HistoryBuilder.Build: persist cache: %w", err)
		}
	}

	slog.Info("oracle history built",
		"rounds", len(rounds),
		"fetched", len(fetched),
		"cache_hits", hits,
		"latest_round", latest,
	)
	return rounds, nil
}
