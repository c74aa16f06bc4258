package subgraph

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/levery-org/levery-market-simulation/internal/domain"
	"github.com/levery-org/levery-market-simulation/internal/ports"
)

// La primera página no lleva cursor; las siguientes acotan por id_lt
// (exclusivo) además del límite inferior de timestamp.
const (
	swapsFirstPageQuery = `query ($pool: ID!, $from: BigInt!, $first: Int!) {
  pool(id: $pool) { id }
  swaps(first: $first, orderBy: timestamp, orderDirection: desc,
        where: { pool: $pool, timestamp_gte: $from }) {
    id
    amount0
    amount1
    timestamp
    transaction { id }
  }
}`

	swapsNextPageQuery = `query ($pool: ID!, $from: BigInt!, $before: ID!, $first: Int!) {
  pool(id: $pool) { id }
  swaps(first: $first, orderBy: timestamp, orderDirection: desc,
        where: { pool: $pool, timestamp_gte: $from, id_lt: $before }) {
    id
    amount0
    amount1
    timestamp
    transaction { id }
  }
}`
)

type rawSwap struct {
	ID          string `json:"id"`
	Amount0     string `json:"amount0"`
	Amount1     string `json:"amount1"`
	Timestamp   string `json:"timestamp"`
	Transaction struct {
		ID string `json:"id"`
	} `json:"transaction"`
}

type swapsPageData struct {
	Pool *struct {
		ID string `json:"id"`
	} `json:"pool"`
	Swaps []rawSwap `json:"swaps"`
}

// FetchSwapPage implementa ports.SwapSource. Un pool null en la respuesta
// es fatal (ports.ErrPoolNotFound); una lista vacía de swaps es el final
// normal del histórico.
func (c *Client) FetchSwapPage(ctx context.Context, fromTimestamp int64, beforeID string, limit int) ([]domain.Swap, error) {
	query := swapsFirstPageQuery
	variables := map[string]any{
		"pool":  c.poolID,
		"from":  strconv.FormatInt(fromTimestamp, 10),
		"first": limit,
	}
	if beforeID != "" {
		query = swapsNextPageQuery
		variables["before"] = beforeID
	}

	var data swapsPageData
	if err := c.query(ctx, "subgraph.FetchSwapPage", query, variables, &data); err != nil {
		return nil, fmt.Errorf("subgraph.FetchSwapPage: %w", err)
	}

	if data.Pool == nil {
		return nil, fmt.Errorf("subgraph.FetchSwapPage: pool %s: %w", c.poolID, ports.ErrPoolNotFound)
	}

	swaps := make([]domain.Swap, 0, len(data.Swaps))
	for _, rs := range data.Swaps {
		swap, err := mapSwap(rs)
		if err != nil {
			// Campos numéricos malformados corrompen los agregados:
			// la corrida falla en vez de coaccionar a cero.
			return nil, fmt.Errorf("subgraph.FetchSwapPage: %w", err)
		}
		swaps = append(swaps, swap)
	}

	slog.Debug("fetched swaps page",
		"pool", c.poolID,
		"cursor", beforeID,
		"count", len(swaps),
	)
	return swaps, nil
}

// mapSwap convierte el swap crudo del subgraph al modelo de dominio.
func mapSwap(rs rawSwap) (domain.Swap, error) {
	amount0, err := decimal.NewFromString(rs.Amount0)
	if err != nil {
		return domain.Swap{}, fmt.Errorf("swap %s: amount0 %q: %w", rs.ID, rs.Amount0, err)
	}
	amount1, err := decimal.NewFromString(rs.Amount1)
	if err != nil {
		return domain.Swap{}, fmt.Errorf("swap %s: amount1 %q: %w", rs.ID, rs.Amount1, err)
	}
	ts, err := strconv.ParseInt(rs.Timestamp, 10, 64)
	if err != nil {
		return domain.Swap{}, fmt.Errorf("swap %s: timestamp %q: %w", rs.ID, rs.Timestamp, err)
	}

	return domain.Swap{
		ID:        rs.ID,
		Amount0:   amount0,
		Amount1:   amount1,
		Timestamp: ts,
		TxHash:    rs.Transaction.ID,
	}, nil
}
