// Package chainlink implementa el OracleFeed contra un agregador de
// Chainlink vía JSON-RPC eth_call.
//
// La dirección configurada debe ser la del agregador subyacente, no la del
// proxy: la caminata hacia atrás decrementa el id de ronda de uno en uno,
// y eso solo es secuencial dentro de un agregador (los ids del proxy
// llevan la fase codificada en los bits altos).
package chainlink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"github.com/levery-org/levery-market-simulation/internal/domain"
	"github.com/levery-org/levery-market-simulation/internal/retry"
)

// Selectores de 4 bytes del ABI del agregador.
const (
	selLatestRound  = "0x668a0f02" // latestRound()
	selGetRoundData = "0x9a6fc8f5" // getRoundData(uint80)
	selDecimals     = "0x313ce567" // decimals()

	// RPCs públicos suelen cortar en ~25-50 req/s; 20 deja margen.
	callsPerSec = 20
)

// Feed es el cliente del feed de precios.
type Feed struct {
	http       *http.Client
	rpcURL     string
	aggregator string
	limiter    *rate.Limiter
	retry      retry.Policy

	mu       sync.Mutex
	decimals int32
	scaled   bool
}

// NewFeed crea un Feed contra el RPC y agregador dados.
func NewFeed(rpcURL, aggregator string, policy retry.Policy) *Feed {
	return &Feed{
		http:       &http.Client{Timeout: policy.Timeout},
		rpcURL:     rpcURL,
		aggregator: aggregator,
		limiter:    rate.NewLimiter(callsPerSec, 5),
		retry:      policy,
	}
}

// LatestRoundID implementa ports.OracleFeed.
func (f *Feed) LatestRoundID(ctx context.Context) (uint64, error) {
	result, err := f.ethCall(ctx, "chainlink.LatestRoundID", selLatestRound)
	if err != nil {
		return 0, fmt.Errorf("chainlink.LatestRoundID: %w", err)
	}
	words, err := splitWords(result, 1)
	if err != nil {
		return 0, fmt.Errorf("chainlink.LatestRoundID: %w", err)
	}
	return words[0].Uint64(), nil
}

// RoundData implementa ports.OracleFeed: devuelve la ronda con el precio
// ya escalado por los decimales del feed (consultados una sola vez).
func (f *Feed) RoundData(ctx context.Context, roundID uint64) (domain.OracleRound, error) {
	dec, err := f.feedDecimals(ctx)
	if err != nil {
		return domain.OracleRound{}, fmt.Errorf("chainlink.RoundData: %w", err)
	}

	data := selGetRoundData + fmt.Sprintf("%064x", roundID)
	result, err := f.ethCall(ctx, "chainlink.RoundData", data)
	if err != nil {
		return domain.OracleRound{}, fmt.Errorf("chainlink.RoundData: round %d: %w", roundID, err)
	}

	// (roundId, answer, startedAt, updatedAt, answeredInRound)
	words, err := splitWords(result, 5)
	if err != nil {
		return domain.OracleRound{}, fmt.Errorf("chainlink.RoundData: round %d: %w", roundID, err)
	}

	answer := twosComplement(words[1])
	updatedAt := words[3].Int64()

	return domain.OracleRound{
		RoundID:   roundID,
		Timestamp: updatedAt,
		Price:     decimal.NewFromBigInt(answer, -dec),
	}, nil
}

// feedDecimals consulta decimals() la primera vez y cachea el resultado.
func (f *Feed) feedDecimals(ctx context.Context) (int32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.scaled {
		return f.decimals, nil
	}

	result, err := f.ethCall(ctx, "chainlink.Decimals", selDecimals)
	if err != nil {
		return 0, fmt.Errorf("decimals: %w", err)
	}
	words, err := splitWords(result, 1)
	if err != nil {
		return 0, fmt.Errorf("decimals: %w", err)
	}

	f.decimals = int32(words[0].Int64())
	f.scaled = true
	return f.decimals, nil
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcResponse struct {
	Result string `json:"result"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ethCall hace el eth_call con rate limiting y reintentos, devolviendo el
// resultado hex crudo.
func (f *Feed) ethCall(ctx context.Context, op, data string) (string, error) {
	var result string
	err := f.retry.Do(ctx, op, func(ctx context.Context) error {
		if err := f.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}

		body, err := json.Marshal(rpcRequest{
			JSONRPC: "2.0",
			ID:      1,
			Method:  "eth_call",
			Params: []any{
				map[string]string{"to": f.aggregator, "data": data},
				"latest",
			},
		})
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.rpcURL, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := f.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("status %d", resp.StatusCode)
		}

		var decoded rpcResponse
		if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		if decoded.Error != nil {
			return fmt.Errorf("rpc error %d: %s", decoded.Error.Code, decoded.Error.Message)
		}

		result = decoded.Result
		return nil
	})
	return result, err
}

// splitWords trocea un resultado hex en palabras de 32 bytes y exige al
// menos n.
func splitWords(result string, n int) ([]*big.Int, error) {
	hexStr := strings.TrimPrefix(result, "0x")
	if len(hexStr) < n*64 {
		return nil, fmt.Errorf("short result: %d hex chars, want >= %d", len(hexStr), n*64)
	}

	words := make([]*big.Int, n)
	for i := 0; i < n; i++ {
		word, ok := new(big.Int).SetString(hexStr[i*64:(i+1)*64], 16)
		if !ok {
			return nil, fmt.Errorf("malformed word %d in result", i)
		}
		words[i] = word
	}
	return words, nil
}

// twosComplement interpreta una palabra de 256 bits como int256.
func twosComplement(word *big.Int) *big.Int {
	if word.Bit(255) == 0 {
		return word
	}
	max := new(big.Int).Lsh(big.NewInt(1), 256)
	return new(big.Int).Sub(word, max)
}
