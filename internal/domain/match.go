package domain

import "sort"

// Matcher resuelve el join temporal entre swaps y rondas de oráculo:
// para cada swap elige la ronda con mayor timestamp que no supere el del
// swap (last observation carried backward).
//
// Las rondas se ordenan una sola vez de forma ascendente al construir el
// Matcher, de modo que cada lookup es una búsqueda binaria O(log m) en vez
// de un filter+sort por swap. La selección es idéntica a la regla lineal.
type Matcher struct {
	rounds []OracleRound // ordenadas por timestamp ascendente
}

// NewMatcher construye el matcher a partir de las rondas recuperadas,
// en cualquier orden. Trabaja sobre una copia para no mutar la entrada.
func NewMatcher(rounds []OracleRound) *Matcher {
	sorted := make([]OracleRound, len(rounds))
	copy(sorted, rounds)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Timestamp < sorted[j].Timestamp
	})
	return &Matcher{rounds: sorted}
}

// Match devuelve el swap emparejado con su ronda elegida, o con el
// sentinel Round == nil si ninguna ronda tiene timestamp <= swap.Timestamp.
func (m *Matcher) Match(s Swap) MatchedSwap {
	// Primer índice con timestamp > s.Timestamp; la ronda elegida es la anterior.
	idx := sort.Search(len(m.rounds), func(i int) bool {
		return m.rounds[i].Timestamp > s.Timestamp
	})
	if idx == 0 {
		return MatchedSwap{Swap: s}
	}

	round := m.rounds[idx-1]
	gap := s.Timestamp - round.Timestamp
	if gap < 0 {
		gap = -gap
	}
	return MatchedSwap{Swap: s, Round: &round, TimeGapSeconds: gap}
}

// MatchAll empareja todos los swaps en su orden de llegada.
func (m *Matcher) MatchAll(swaps []Swap) []MatchedSwap {
	matched := make([]MatchedSwap, 0, len(swaps))
	for _, s := range swaps {
		matched = append(matched, m.Match(s))
	}
	return matched
}
