// Package facts derives transport_stage_fact, one row per freight order
// stage with its load ratio and CO₂ emissions, and maintains the aggregate
// views over it.
package facts

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"greentrack/internal/metrics"
	"greentrack/internal/models"
	"greentrack/internal/store"
)

// LockName serializes concurrent fact builds.
const LockName = "greentrack:facts"

const factTable = "transport_stage_fact"

type Builder struct {
	db        *gorm.DB
	batchSize int
	log       logrus.FieldLogger
	now       func() time.Time
}

func NewBuilder(db *gorm.DB, batchSize int, log logrus.FieldLogger) *Builder {
	if batchSize <= 0 {
		batchSize = store.DefaultBatchSize
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Builder{db: db, batchSize: batchSize, log: log, now: time.Now}
}

// Build replaces the fact table content in one transaction and returns the
// number of rows inserted.
func (b *Builder) Build(ctx context.Context) (int, error) {
	return b.run(ctx, false)
}

// Rebuild is Build followed by ensuring and refreshing the aggregate views,
// all in the same transaction.
func (b *Builder) Rebuild(ctx context.Context) (int, error) {
	return b.run(ctx, true)
}

func (b *Builder) run(ctx context.Context, withViews bool) (int, error) {
	start := time.Now()
	var n int
	err := b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if n, err = b.build(ctx, tx); err != nil {
			return err
		}
		if !withViews {
			return nil
		}
		if err := EnsureViews(ctx, tx); err != nil {
			return err
		}
		if err := RefreshViews(ctx, tx); err != nil {
			return err
		}
		b.log.Info("Refreshed analytics views")
		return nil
	})
	if err != nil {
		b.log.WithError(err).Error("Fact build failed, transaction rolled back")
		return 0, err
	}
	metrics.GaugeFactRows.Set(float64(n))
	metrics.HistogramFactBuild.Observe(time.Since(start).Seconds())
	return n, nil
}

type orderWeight struct {
	OrderID uint
	Total   *float64
}

type stageRow struct {
	StageID          uint
	OrderID          uint
	FromStopID       uint
	ToStopID         uint
	Distance         *float64
	Duration         *float64
	VehicleID        uint
	TransportTypeID  uint
	TransportType    string
	OrderTotalWeight *float64
}

func (b *Builder) build(ctx context.Context, tx *gorm.DB) (int, error) {
	tx = tx.WithContext(ctx)
	if err := store.AdvisoryLock(ctx, tx, LockName); err != nil {
		return 0, err
	}
	b.log.Info("Building transport_stage_fact")
	if err := store.Truncate(ctx, tx, factTable); err != nil {
		return 0, err
	}

	// shipped weight per order from its items; NULL item weights count as 0
	var weights []orderWeight
	if err := tx.Model(&models.FreightOrderItem{}).
		Select("order_id, SUM(weight) AS total").
		Group("order_id").
		Scan(&weights).Error; err != nil {
		return 0, fmt.Errorf("sum order weights: %w", err)
	}
	orderWeights := make(map[uint]float64, len(weights))
	for _, w := range weights {
		if w.Total != nil {
			orderWeights[w.OrderID] = *w.Total
		} else {
			orderWeights[w.OrderID] = 0
		}
	}

	var attrs []models.VehicleAttributes
	if err := tx.Find(&attrs).Error; err != nil {
		return 0, fmt.Errorf("load vehicle attributes: %w", err)
	}
	byType := make(map[uint]models.VehicleAttributes, len(attrs))
	for _, a := range attrs {
		byType[a.TransportTypeID] = a
	}

	var stages []stageRow
	if err := tx.Table("freight_order_stages AS s").
		Select(`s.stage_id, s.order_id, s.from_stop_id, s.to_stop_id, s.distance, s.duration,
			o.vehicle_id, v.transport_type_id, t.name AS transport_type, o.total_weight AS order_total_weight`).
		Joins("JOIN freight_orders o ON o.order_id = s.order_id").
		Joins("JOIN vehicles v ON v.vehicle_id = o.vehicle_id").
		Joins("JOIN transport_types t ON t.transport_type_id = v.transport_type_id").
		Order("s.stage_id").
		Scan(&stages).Error; err != nil {
		return 0, fmt.Errorf("load stages: %w", err)
	}

	createdAt := b.now().UTC()
	facts := make([]models.TransportStageFact, 0, len(stages))
	noDistance, noAttrs := 0, 0
	for _, s := range stages {
		if s.Distance == nil || *s.Distance < 0 {
			noDistance++
			continue
		}
		a, ok := byType[s.TransportTypeID]
		if !ok {
			noAttrs++
			continue
		}

		weight, itemized := orderWeights[s.OrderID]
		if !itemized && s.OrderTotalWeight != nil {
			weight = *s.OrderTotalWeight
		}
		weight = math.Max(weight, 0)

		capacity := valueOrZero(a.CapacityKg)
		ratio := LoadRatio(weight, capacity)
		duration := valueOrZero(s.Duration)

		facts = append(facts, models.TransportStageFact{
			ID:                uuid.New(),
			OrderID:           s.OrderID,
			VehicleID:         s.VehicleID,
			TransportType:     s.TransportType,
			FromStopID:        s.FromStopID,
			ToStopID:          s.ToStopID,
			DistanceKm:        *s.Distance,
			DurationMin:       duration,
			TotalWeightKg:     weight,
			VehicleCapacityKg: capacity,
			LoadRatio:         ratio,
			Co2Kg:             math.Max(Co2Kg(*s.Distance, valueOrZero(a.Co2EmptyKgKm), valueOrZero(a.Co2LoadedKgKm), ratio), 0),
			CreatedAt:         createdAt,
		})
	}
	if noDistance > 0 || noAttrs > 0 {
		b.log.WithFields(logrus.Fields{
			"without_distance":   noDistance,
			"without_attributes": noAttrs,
		}).Info("Skipped stages")
	}

	if len(facts) == 0 {
		b.log.Warn("No stages found to build transport_stage_fact")
		return 0, nil
	}
	n, err := store.InsertBatches(ctx, tx, factTable, facts, b.batchSize, b.log)
	if err != nil {
		return 0, err
	}
	b.log.WithField("count", n).Info("Inserted rows into transport_stage_fact")
	return n, nil
}

// valueOrZero reads a nullable column; NULL counts as 0.
func valueOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
