// Package snapshot persists a completed run's final router and ping state
// (switch snapshots are not stored) to Postgres for later inspection, mirroring the teacher's
// internal/history.Writer batch-insert-with-dedup shape and its
// zstd-compressed raw blob column.
package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/klauspost/compress/zstd"
	"go.uber.org/zap"

	"github.com/routesim/netsim/internal/controller"
)

var zstdEncoder *zstd.Encoder

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil)
	if err != nil {
		panic(fmt.Sprintf("snapshot: zstd encoder init: %v", err))
	}
}

type Writer struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewWriter(pool *pgxpool.Pool, logger *zap.Logger) *Writer {
	return &Writer{pool: pool, logger: logger}
}

// WriteResult persists one run's final router snapshots and ping outcomes
// under a freshly generated run id, returning that id. Switch snapshots in
// result are not written.
func (w *Writer) WriteResult(ctx context.Context, result *controller.Result) (uuid.UUID, error) {
	runID := uuid.New()
	runDate := time.Now().UTC().Truncate(24 * time.Hour)

	tx, err := w.pool.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := w.writeRouterSnapshots(ctx, tx, runID, runDate, result); err != nil {
		return uuid.Nil, err
	}
	if err := w.writePingOutcomes(ctx, tx, runID, result); err != nil {
		return uuid.Nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("commit tx: %w", err)
	}
	return runID, nil
}

func (w *Writer) writeRouterSnapshots(ctx context.Context, tx pgx.Tx, runID uuid.UUID, runDate time.Time, result *controller.Result) error {
	if len(result.Routers) == 0 {
		return nil
	}

	const insertSQL = `
		INSERT INTO run_snapshots (run_id, run_date, router_name, rib_entries, bgp_entries, snapshot)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (run_id, router_name) DO NOTHING`

	batch := &pgx.Batch{}
	for _, r := range result.Routers {
		raw, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("marshaling snapshot for %s: %w", r.Name, err)
		}
		compressed := zstdEncoder.EncodeAll(raw, nil)
		batch.Queue(insertSQL, runID, runDate, r.Name, len(r.Routes), len(r.BGP), compressed)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()
	for i, r := range result.Routers {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("insert run_snapshot[%d] (%s): %w", i, r.Name, err)
		}
	}
	return results.Close()
}

func (w *Writer) writePingOutcomes(ctx context.Context, tx pgx.Tx, runID uuid.UUID, result *controller.Result) error {
	if len(result.Pings) == 0 {
		return nil
	}

	const insertSQL = `
		INSERT INTO ping_outcomes (run_id, seq, from_name, target, outcome)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (run_id, seq) DO NOTHING`

	batch := &pgx.Batch{}
	for i, p := range result.Pings {
		batch.Queue(insertSQL, runID, i, p.From, p.Target, p.Result.Outcome.String())
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()
	for i := range result.Pings {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("insert ping_outcome[%d]: %w", i, err)
		}
	}
	return results.Close()
}
