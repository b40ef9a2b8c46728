package journal

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dhanu0746/Zerodha-clone/internal/domain"
)

func openTestJournal(t *testing.T) *SQLite {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "journal.db"), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func TestRecordOrderUpserts(t *testing.T) {
	j := openTestJournal(t)

	o := &domain.Order{
		OrderID:   "o1",
		AccountID: "alice",
		Symbol:    "AAPL",
		Side:      domain.OrderSideBuy,
		Kind:      domain.OrderKindLimit,
		Status:    domain.OrderStatusOpen,
		Role:      domain.RoleMaker,
		Quantity:  3,
		LimitPrice: 15000,
		CreatedAt: time.Now(),
	}
	j.RecordOrder(o)

	var status string
	var filled int64
	row := j.db.QueryRow(`SELECT status, filled_quantity FROM orders WHERE order_id = ?`, "o1")
	require.NoError(t, row.Scan(&status, &filled))
	assert.Equal(t, "open", status)
	assert.Equal(t, int64(0), filled)

	o.Status = domain.OrderStatusFilled
	o.FilledQuantity = 3
	o.Fees = 68
	j.RecordOrder(o)

	var fees int64
	var count int
	row = j.db.QueryRow(`SELECT status, filled_quantity, fees FROM orders WHERE order_id = ?`, "o1")
	require.NoError(t, row.Scan(&status, &filled, &fees))
	assert.Equal(t, "filled", status)
	assert.Equal(t, int64(3), filled)
	assert.Equal(t, int64(68), fees)

	row = j.db.QueryRow(`SELECT COUNT(*) FROM orders`)
	require.NoError(t, row.Scan(&count))
	assert.Equal(t, 1, count)
}

func TestRecordFillIdempotent(t *testing.T) {
	j := openTestJournal(t)

	f := &domain.Fill{
		FillID:     "f1",
		OrderID:    "o1",
		Price:      15000,
		Quantity:   2,
		Fee:        45,
		Role:       domain.RoleTaker,
		ExecutedAt: time.Now(),
	}
	j.RecordFill("o1", f)
	j.RecordFill("o1", f)

	var count int
	row := j.db.QueryRow(`SELECT COUNT(*) FROM fills WHERE order_id = ?`, "o1")
	require.NoError(t, row.Scan(&count))
	assert.Equal(t, 1, count)

	var price int64
	row = j.db.QueryRow(`SELECT price FROM fills WHERE fill_id = ?`, "f1")
	require.NoError(t, row.Scan(&price))
	assert.Equal(t, int64(15000), price)
}

func TestOpenIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "journal.db")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	j, err := Open(path, logger)
	require.NoError(t, err)
	j.RecordOrder(&domain.Order{
		OrderID: "o1", AccountID: "alice", Symbol: "AAPL",
		Side: domain.OrderSideBuy, Kind: domain.OrderKindMarket,
		Status: domain.OrderStatusFilled, Role: domain.RoleTaker,
		Quantity: 1, FilledQuantity: 1, CreatedAt: time.Now(),
	})
	require.NoError(t, j.Close())

	// Records survive reopening.
	j, err = Open(path, logger)
	require.NoError(t, err)
	defer j.Close()

	var count int
	row := j.db.QueryRow(`SELECT COUNT(*) FROM orders`)
	require.NoError(t, row.Scan(&count))
	assert.Equal(t, 1, count)
}
