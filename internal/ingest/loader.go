// Package ingest loads the semicolon-separated planning extracts into the
// relational schema: master data first, then freight units and orders with
// their stops, items and stages.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"greentrack/internal/metrics"
	"greentrack/internal/store"
)

// LockName serializes concurrent ingestion runs.
const LockName = "greentrack:ingest"

// ErrDataDir is returned when the data directory does not exist.
var ErrDataDir = errors.New("data directory does not exist")

// Tables lists the core tables in load order.
var Tables = []string{
	"addresses",
	"transport_types",
	"vehicles",
	"vehicle_attributes",
	"freight_units",
	"freight_unit_stops",
	"freight_orders",
	"freight_order_items",
	"freight_order_stops",
	"freight_order_stages",
}

// Summary is the number of rows inserted per table.
type Summary map[string]int

// Total is the number of rows inserted across all tables.
func (s Summary) Total() int {
	n := 0
	for _, v := range s {
		n += v
	}
	return n
}

type Loader struct {
	db        *gorm.DB
	batchSize int
	log       logrus.FieldLogger
}

func NewLoader(db *gorm.DB, batchSize int, log logrus.FieldLogger) *Loader {
	if batchSize <= 0 {
		batchSize = store.DefaultBatchSize
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Loader{db: db, batchSize: batchSize, log: log}
}

// LoadAll ingests every extract found under dataDir in one transaction. With
// replace set, all core tables are emptied first, which makes repeated runs
// over the same input reproduce the same rows. Any error rolls back the
// whole run.
func (l *Loader) LoadAll(ctx context.Context, dataDir string, replace bool) (Summary, error) {
	fi, err := os.Stat(dataDir)
	if err != nil || !fi.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrDataDir, dataDir)
	}

	start := time.Now()
	log := l.log.WithField("data_dir", dataDir)
	var r *run

	err = l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := store.AdvisoryLock(ctx, tx, LockName); err != nil {
			return err
		}
		if replace {
			if err := store.Truncate(ctx, tx, reversed(Tables)...); err != nil {
				return err
			}
			log.Info("Truncated all core tables")
		}

		r = newRun(tx, dataDir, l.batchSize, log)
		steps := []func(context.Context) error{
			r.loadAddresses,
			r.loadTransportTypes,
			r.loadVehicles,
			r.loadVehicleAttributes,
			r.loadUnits,
			r.loadUnitStops,
			r.loadOrders,
			r.loadOrderItems,
			r.loadOrderStops,
			r.loadOrderStages,
		}
		for _, step := range steps {
			if err := step(ctx); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.WithError(err).Error("Ingestion failed, transaction rolled back")
		return nil, err
	}

	r.publish()
	log.WithFields(logrus.Fields{
		"rows":    r.summary.Total(),
		"elapsed": time.Since(start).Truncate(time.Millisecond),
	}).Info("All CSV files committed successfully")
	return r.summary, nil
}

func reversed(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[len(in)-1-i] = s
	}
	return out
}

type dropKey struct{ table, reason string }

// run carries the state of one ingestion transaction.
type run struct {
	tx        *gorm.DB
	dataDir   string
	batchSize int
	log       logrus.FieldLogger
	res       *Resolver

	summary Summary
	dropped map[dropKey]int
}

func newRun(tx *gorm.DB, dataDir string, batchSize int, log logrus.FieldLogger) *run {
	s := make(Summary, len(Tables))
	for _, t := range Tables {
		s[t] = 0
	}
	return &run{
		tx:        tx,
		dataDir:   dataDir,
		batchSize: batchSize,
		log:       log,
		res:       NewResolver(tx, batchSize, log),
		summary:   s,
		dropped:   make(map[dropKey]int),
	}
}

// open locates and reads the file for m. A missing file is not an error: it
// is logged and nil is returned.
func (r *run) open(m TableMapping) (*Table, error) {
	path := m.resolvePath(r.dataDir)
	if path == "" {
		r.log.WithField("file", m.Filename).Warn("File not found, skipping")
		return nil, nil
	}
	r.log.WithFields(logrus.Fields{"file": path, "table": m.Table}).Info("Loading")

	t, err := readTable(path, m, r.log)
	if err != nil {
		return nil, err
	}
	if len(t.Missing) > 0 {
		r.log.WithFields(logrus.Fields{
			"file":    path,
			"columns": strings.Join(t.Missing, ", "),
		}).Warn("CSV missing columns, they will be NULL")
	}
	return t, nil
}

func (r *run) drop(table, reason string, n int) {
	if n <= 0 {
		return
	}
	r.dropped[dropKey{table, reason}] += n
	r.log.WithFields(logrus.Fields{
		"table":  table,
		"reason": reason,
		"count":  n,
	}).Warn("Dropped rows")
}

// publish reports the committed run to prometheus.
func (r *run) publish() {
	for table, n := range r.summary {
		metrics.CounterIngestedRows.WithLabelValues(table).Add(float64(n))
	}
	for k, n := range r.dropped {
		metrics.CounterDroppedRows.WithLabelValues(k.table, k.reason).Add(float64(n))
	}
}

// insert writes rows into table and records the count in the summary.
func insert[T any](ctx context.Context, r *run, table string, rows []T) error {
	n, err := store.InsertBatches(ctx, r.tx, table, rows, r.batchSize, r.log)
	if err != nil {
		return err
	}
	r.summary[table] += n
	r.log.WithFields(logrus.Fields{"table": table, "count": n}).Info("Inserted rows")
	return nil
}

// firstWins keeps the first occurrence of every non-empty key and reports how
// many later duplicates were discarded.
type firstWins map[string]struct{}

func (f firstWins) add(key string) bool {
	if _, seen := f[key]; seen {
		return false
	}
	f[key] = struct{}{}
	return true
}
