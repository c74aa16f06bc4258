package domain

import "github.com/shopspring/decimal"

// OracleRound es una actualización de precio publicada por el feed.
// Los ids de ronda son estrictamente decrecientes al caminar el histórico
// hacia atrás; cada ronda es inmutable una vez recuperada.
type OracleRound struct {
	RoundID   uint64
	Timestamp int64           // unix seconds (updatedAt del feed)
	Price     decimal.Decimal // answer escalado por los decimales del feed
}
