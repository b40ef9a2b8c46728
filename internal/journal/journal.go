// Package journal persists committed order transitions and fills to a
// local SQLite database. The journal is an audit trail, not the system of
// record: writes happen after the in-memory ledger commits and a write
// failure is logged, never surfaced to the trader.
package journal

import (
	"database/sql"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Dhanu0746/Zerodha-clone/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS orders (
	order_id        TEXT PRIMARY KEY,
	account_id      TEXT NOT NULL,
	symbol          TEXT NOT NULL,
	side            TEXT NOT NULL,
	kind            TEXT NOT NULL,
	status          TEXT NOT NULL,
	role            TEXT NOT NULL,
	quantity        INTEGER NOT NULL,
	filled_quantity INTEGER NOT NULL,
	limit_price     INTEGER NOT NULL,
	fees            INTEGER NOT NULL,
	created_at      TEXT NOT NULL,
	updated_at      TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_orders_account ON orders(account_id);

CREATE TABLE IF NOT EXISTS fills (
	fill_id     TEXT PRIMARY KEY,
	order_id    TEXT NOT NULL,
	price       INTEGER NOT NULL,
	quantity    INTEGER NOT NULL,
	fee         INTEGER NOT NULL,
	role        TEXT NOT NULL,
	executed_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_fills_order ON fills(order_id);
`

// SQLite is a journal backed by a single SQLite file.
type SQLite struct {
	db  *sql.DB
	log *slog.Logger
}

// Open opens (or creates) the journal database at path and ensures the
// schema exists.
func Open(path string, log *slog.Logger) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// SQLite allows one writer at a time.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLite{db: db, log: log}, nil
}

// RecordOrder upserts the order's current state.
func (j *SQLite) RecordOrder(o *domain.Order) {
	_, err := j.db.Exec(`
		INSERT INTO orders (
			order_id, account_id, symbol, side, kind, status, role,
			quantity, filled_quantity, limit_price, fees, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(order_id) DO UPDATE SET
			status = excluded.status,
			filled_quantity = excluded.filled_quantity,
			fees = excluded.fees,
			updated_at = excluded.updated_at`,
		o.OrderID, o.AccountID, o.Symbol, string(o.Side), string(o.Kind),
		string(o.Status), string(o.Role), o.Quantity, o.FilledQuantity,
		o.LimitPrice, o.Fees,
		o.CreatedAt.UTC().Format(time.RFC3339Nano),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		j.log.Warn("journal order write failed", "order_id", o.OrderID, "error", err)
	}
}

// RecordFill inserts a fill. Re-recording the same fill is a no-op.
func (j *SQLite) RecordFill(orderID string, f *domain.Fill) {
	_, err := j.db.Exec(`
		INSERT INTO fills (fill_id, order_id, price, quantity, fee, role, executed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(fill_id) DO NOTHING`,
		f.FillID, orderID, f.Price, f.Quantity, f.Fee, string(f.Role),
		f.ExecutedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		j.log.Warn("journal fill write failed", "order_id", orderID, "fill_id", f.FillID, "error", err)
	}
}

// Close closes the underlying database.
func (j *SQLite) Close() error {
	return j.db.Close()
}
