package recorder

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists economic events to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL so dashboards can read while the service writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.WithField("path", dbPath).Info("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS burn_events (
			id          TEXT PRIMARY KEY,
			timestamp   INTEGER NOT NULL,
			holder      TEXT,
			target      TEXT NOT NULL,
			amount      TEXT NOT NULL,
			total_after TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_burn_ts ON burn_events(timestamp)`,

		`CREATE TABLE IF NOT EXISTS purchase_events (
			id            TEXT PRIMARY KEY,
			timestamp     INTEGER NOT NULL,
			holder        TEXT NOT NULL,
			kind          TEXT NOT NULL,
			quantity      INTEGER,
			cost          TEXT NOT NULL,
			burn          TEXT NOT NULL,
			treasury      TEXT NOT NULL,
			balance_after TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_purchase_holder ON purchase_events(holder, timestamp)`,

		`CREATE TABLE IF NOT EXISTS spin_events (
			id           TEXT PRIMARY KEY,
			timestamp    INTEGER NOT NULL,
			holder       TEXT NOT NULL,
			reels        TEXT,
			outcome      TEXT NOT NULL,
			tickets_left INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_spin_ts ON spin_events(timestamp)`,

		`CREATE TABLE IF NOT EXISTS sale_events (
			id             TEXT PRIMARY KEY,
			timestamp      INTEGER NOT NULL,
			holder         TEXT NOT NULL,
			epoch          INTEGER NOT NULL,
			tokens         TEXT NOT NULL,
			price          TEXT NOT NULL,
			cost           TEXT NOT NULL,
			lifetime_after TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sale_epoch ON sale_events(epoch)`,

		`CREATE TABLE IF NOT EXISTS claim_events (
			id        TEXT PRIMARY KEY,
			timestamp INTEGER NOT NULL,
			holder    TEXT NOT NULL,
			kind      TEXT NOT NULL,
			amount    TEXT NOT NULL
		)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordBurn(evt *BurnEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO burn_events
		(id, timestamp, holder, target, amount, total_after)
		VALUES (?,?,?,?,?,?)`,
		uuid.NewString(), time.Now().Unix(), evt.Holder, evt.Target,
		evt.Amount.String(), evt.TotalAfter.String(),
	)
	return err
}

func (r *SQLiteRecorder) RecordPurchase(evt *PurchaseEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO purchase_events
		(id, timestamp, holder, kind, quantity, cost, burn, treasury, balance_after)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		uuid.NewString(), time.Now().Unix(), evt.Holder, evt.Kind, evt.Quantity,
		evt.Cost.String(), evt.Burn.String(), evt.Treasury.String(), evt.BalanceAfter.String(),
	)
	return err
}

func (r *SQLiteRecorder) RecordSpin(evt *SpinEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO spin_events
		(id, timestamp, holder, reels, outcome, tickets_left)
		VALUES (?,?,?,?,?,?)`,
		uuid.NewString(), time.Now().Unix(), evt.Holder, evt.Reels, evt.Outcome, evt.TicketsLeft,
	)
	return err
}

func (r *SQLiteRecorder) RecordSale(evt *SaleEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO sale_events
		(id, timestamp, holder, epoch, tokens, price, cost, lifetime_after)
		VALUES (?,?,?,?,?,?,?,?)`,
		uuid.NewString(), time.Now().Unix(), evt.Holder, evt.Epoch,
		evt.Tokens.String(), evt.Price.String(), evt.Cost.String(), evt.LifetimeAfter.String(),
	)
	return err
}

func (r *SQLiteRecorder) RecordClaim(evt *ClaimEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO claim_events
		(id, timestamp, holder, kind, amount)
		VALUES (?,?,?,?,?)`,
		uuid.NewString(), time.Now().Unix(), evt.Holder, evt.Kind, evt.Amount.String(),
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	log.Info("closing sqlite recorder")
	return r.db.Close()
}
