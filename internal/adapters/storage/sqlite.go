package storage

// sqlite.go — caché durable de rondas de oráculo.
//
// Estrategia:
//   - `rounds`: una fila por ronda, clave primaria el id de ronda.
//   - Merge por INSERT OR IGNORE: un guardado nunca duplica ids ya
//     presentes, así una corrida interrumpida deja un caché válido que la
//     siguiente corrida carga y salta en el re-fetch.
//   - El precio se guarda como texto decimal para no perder precisión.

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/levery-org/levery-market-simulation/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS rounds (
    round_id   INTEGER PRIMARY KEY,
    updated_at INTEGER NOT NULL,
    price      TEXT    NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_rounds_updated ON rounds(updated_at);
`

// SQLiteRoundStore implementa ports.RoundStore usando SQLite (pure Go, sin CGo).
type SQLiteRoundStore struct {
	db *sql.DB
}

// NewSQLiteRoundStore abre (o crea) la base de datos en la ruta dada y
// aplica el schema.
func NewSQLiteRoundStore(path string) (*SQLiteRoundStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteRoundStore: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteRoundStore: apply schema: %w", err)
	}

	return &SQLiteRoundStore{db: db}, nil
}

// LoadRounds devuelve todas las rondas cacheadas, ordenadas por id de
// ronda descendente (el mismo orden de la caminata hacia atrás).
func (s *SQLiteRoundStore) LoadRounds(ctx context.Context) ([]domain.OracleRound, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT round_id, updated_at, price FROM rounds ORDER BY round_id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage.LoadRounds: query: %w", err)
	}
	defer rows.Close()

	var rounds []domain.OracleRound
	for rows.Next() {
		var (
			roundID   int64
			updatedAt int64
			priceStr  string
		)
		if err := rows.Scan(&roundID, &updatedAt, &priceStr); err != nil {
			return nil, fmt.Errorf("storage.LoadRounds: scan row: %w", err)
		}

		price, err := decimal.NewFromString(priceStr)
		if err != nil {
			return nil, fmt.Errorf("storage.LoadRounds: round %d: price %q: %w", roundID, priceStr, err)
		}

		rounds = append(rounds, domain.OracleRound{
			RoundID:   uint64(roundID),
			Timestamp: updatedAt,
			Price:     price,
		})
	}

	return rounds, rows.Err()
}

// SaveRounds añade las rondas dadas al caché ignorando ids ya presentes.
func (s *SQLiteRoundStore) SaveRounds(ctx context.Context, rounds []domain.OracleRound) error {
	if len(rounds) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.SaveRounds: begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO rounds (round_id, updated_at, price) VALUES (?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("storage.SaveRounds: prepare: %w", err)
	}
	defer stmt.Close()

	for _, r := range rounds {
		if _, err := stmt.ExecContext(ctx, int64(r.RoundID), r.Timestamp, r.Price.String()); err != nil {
			return fmt.Errorf("storage.SaveRounds: insert round %d: %w", r.RoundID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.SaveRounds: commit: %w", err)
	}
	return nil
}

// Close cierra la conexión a la base de datos.
func (s *SQLiteRoundStore) Close() error {
	return s.db.Close()
}
