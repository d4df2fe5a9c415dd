// Package archive persists terminal orders to Postgres for reporting. The
// engine is the source of truth for live orders; archiving is fire-and-forget
// and never blocks or rolls back a committed transition.
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/lumina-pos/api/internal/domain"
)

// DB is the slice of pgx the archiver needs; *pgxpool.Pool satisfies it.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const schema = `
CREATE TABLE IF NOT EXISTS archived_orders (
	id          TEXT PRIMARY KEY,
	order_no    TEXT NOT NULL,
	status      TEXT NOT NULL,
	total       NUMERIC NOT NULL,
	payload     JSONB NOT NULL,
	archived_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS archived_audit_entries (
	id       TEXT PRIMARY KEY,
	order_id TEXT NOT NULL REFERENCES archived_orders(id) ON DELETE CASCADE,
	action   TEXT NOT NULL,
	note     TEXT NOT NULL,
	at       TIMESTAMPTZ NOT NULL
);`

type Archiver struct {
	db DB
}

func New(db DB) *Archiver {
	return &Archiver{db: db}
}

// EnsureSchema creates the archive tables if they do not exist.
func (a *Archiver) EnsureSchema(ctx context.Context) error {
	if _, err := a.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure archive schema: %w", err)
	}
	return nil
}

// ArchiveOrder upserts a terminal order and its audit ledger. Re-archiving
// the same order id overwrites the previous snapshot.
func (a *Archiver) ArchiveOrder(ctx context.Context, o *domain.Order) error {
	payload, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("marshal order %s: %w", o.ID, err)
	}

	_, err = a.db.Exec(ctx,
		`INSERT INTO archived_orders (id, order_no, status, total, payload)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO UPDATE
		 SET status = EXCLUDED.status, total = EXCLUDED.total, payload = EXCLUDED.payload, archived_at = now()`,
		o.ID, o.OrderNo, o.Status, o.Total, payload)
	if err != nil {
		return fmt.Errorf("archive order %s: %w", o.ID, err)
	}

	for _, entry := range o.AuditLog {
		_, err = a.db.Exec(ctx,
			`INSERT INTO archived_audit_entries (id, order_id, action, note, at)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (id) DO NOTHING`,
			entry.ID, o.ID, entry.Action, entry.Note, entry.At)
		if err != nil {
			return fmt.Errorf("archive audit entry %s: %w", entry.ID, err)
		}
	}
	return nil
}

// ArchiveAsync archives in the background. Failures are logged; the caller's
// committed transition is never affected.
func (a *Archiver) ArchiveAsync(o *domain.Order) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := a.ArchiveOrder(ctx, o); err != nil {
			log.Printf("ERROR: %v", err)
		}
	}()
}
