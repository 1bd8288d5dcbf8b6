// Package store holds the small amount of dialect-aware SQL the pipeline
// needs on top of GORM: batched inserts with progress logging, table
// truncation and transaction-scoped advisory locks.
package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"github.com/zeebo/xxh3"
	"gorm.io/gorm"
)

// DefaultBatchSize is the insert chunk size used when none is configured.
const DefaultBatchSize = 500

const dialectPostgres = "postgres"

// IsPostgres reports whether db talks to Postgres. Everything else is
// treated as the single-writer SQLite used in tests.
func IsPostgres(db *gorm.DB) bool {
	return db.Dialector.Name() == dialectPostgres
}

// InsertBatches inserts rows in chunks of batchSize, flushing each chunk so
// later queries in the same transaction see it. Generated primary keys are
// written back into rows. It returns the number of rows inserted.
func InsertBatches[T any](ctx context.Context, db *gorm.DB, table string, rows []T, batchSize int, log logrus.FieldLogger) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	var (
		total   int
		batches int
		start   = time.Now()
	)
	for i := 0; i < len(rows); i += batchSize {
		end := min(i+batchSize, len(rows))
		chunk := rows[i:end]
		if err := db.WithContext(ctx).Create(&chunk).Error; err != nil {
			return total, fmt.Errorf("insert %s batch #%d: %w", table, batches+1, err)
		}
		batches++
		total += len(chunk)
		log.WithFields(logrus.Fields{
			"table":    table,
			"batch":    batches,
			"inserted": len(chunk),
			"total":    total,
			"elapsed":  time.Since(start).Truncate(time.Millisecond),
		}).Debug("batch flushed")
	}
	return total, nil
}

// Truncate empties the given tables, which must be listed in reverse
// dependency order. Postgres restarts identities and cascades; SQLite deletes
// table by table.
func Truncate(ctx context.Context, db *gorm.DB, tables ...string) error {
	if len(tables) == 0 {
		return nil
	}
	quoted := make([]string, len(tables))
	for i, t := range tables {
		quoted[i] = pq.QuoteIdentifier(t)
	}

	if IsPostgres(db) {
		stmt := "TRUNCATE " + strings.Join(quoted, ", ") + " RESTART IDENTITY CASCADE"
		if err := db.WithContext(ctx).Exec(stmt).Error; err != nil {
			return fmt.Errorf("truncate: %w", err)
		}
		return nil
	}
	for _, q := range quoted {
		if err := db.WithContext(ctx).Exec("DELETE FROM " + q).Error; err != nil {
			return fmt.Errorf("delete from %s: %w", q, err)
		}
	}
	return nil
}

// LockKey maps a lock name onto the int8 key space of pg advisory locks.
func LockKey(name string) int64 {
	return int64(xxh3.HashString(name))
}

// AdvisoryLock takes a transaction-scoped advisory lock named name; it is
// released on commit or rollback. db must be a transaction. No-op on SQLite.
func AdvisoryLock(ctx context.Context, db *gorm.DB, name string) error {
	if !IsPostgres(db) {
		return nil
	}
	if err := db.WithContext(ctx).Exec("SELECT pg_advisory_xact_lock(?)", LockKey(name)).Error; err != nil {
		return fmt.Errorf("advisory lock %q: %w", name, err)
	}
	return nil
}
