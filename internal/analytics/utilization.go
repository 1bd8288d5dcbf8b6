// Package analytics computes fleet KPIs from transport_stage_fact.
package analytics

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"greentrack/internal/models"
)

// DefaultUnderutilizedThreshold is the average load ratio below which a
// vehicle counts as underutilized.
const DefaultUnderutilizedThreshold = 0.5

type UnderutilizedVehicle struct {
	VehicleID       uint    `json:"vehicle_id"`
	AvgLoadRatio    float64 `json:"avg_load_ratio"`
	TotalDistanceKm float64 `json:"total_distance_km"`
}

type HighEmissionOrder struct {
	OrderID         uint    `json:"order_id"`
	TotalCo2Kg      float64 `json:"total_co2_kg"`
	TotalDistanceKm float64 `json:"total_distance_km"`
}

type ElectricVehicleUsage struct {
	VehicleID       uint    `json:"vehicle_id"`
	TransportType   string  `json:"transport_type"`
	AvgLoadRatio    float64 `json:"avg_load_ratio"`
	TotalDistanceKm float64 `json:"total_distance_km"`
}

type Totals struct {
	Stages          int64   `json:"stages"`
	TotalCo2Kg      float64 `json:"total_co2_kg"`
	TotalDistanceKm float64 `json:"total_distance_km"`
	AvgLoadRatio    float64 `json:"avg_load_ratio"`
}

type Report struct {
	Totals        Totals                 `json:"totals"`
	HighEmission  []HighEmissionOrder    `json:"high_emission_orders"`
	Underutilized []UnderutilizedVehicle `json:"underutilized_vehicles"`
	Electric      []ElectricVehicleUsage `json:"electric_vehicles"`
}

type Analyzer struct {
	db         *gorm.DB
	classifier Classifier
	log        logrus.FieldLogger
}

func NewAnalyzer(db *gorm.DB, classifier Classifier, log logrus.FieldLogger) *Analyzer {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Analyzer{db: db, classifier: classifier, log: log}
}

func (a *Analyzer) facts(ctx context.Context) *gorm.DB {
	return a.db.WithContext(ctx).Model(&models.TransportStageFact{})
}

func (a *Analyzer) Totals(ctx context.Context) (Totals, error) {
	var t Totals
	err := a.facts(ctx).
		Select(`COUNT(*) AS stages,
			COALESCE(SUM(co2_kg), 0) AS total_co2_kg,
			COALESCE(SUM(distance_km), 0) AS total_distance_km,
			COALESCE(AVG(load_ratio), 0) AS avg_load_ratio`).
		Scan(&t).Error
	if err != nil {
		return Totals{}, fmt.Errorf("totals: %w", err)
	}
	return t, nil
}

// UnderutilizedVehicles returns vehicles whose average load ratio is below
// threshold, lowest first.
func (a *Analyzer) UnderutilizedVehicles(ctx context.Context, threshold float64) ([]UnderutilizedVehicle, error) {
	var out []UnderutilizedVehicle
	err := a.facts(ctx).
		Select("vehicle_id, AVG(load_ratio) AS avg_load_ratio, SUM(distance_km) AS total_distance_km").
		Group("vehicle_id").
		Having("AVG(load_ratio) < ?", threshold).
		Order("avg_load_ratio, vehicle_id").
		Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("underutilized vehicles: %w", err)
	}
	a.log.WithField("count", len(out)).Info("Found underutilized vehicles")
	return out, nil
}

// HighEmissionOrders returns the topN orders by total CO₂.
func (a *Analyzer) HighEmissionOrders(ctx context.Context, topN int) ([]HighEmissionOrder, error) {
	if topN <= 0 {
		return nil, nil
	}
	var out []HighEmissionOrder
	err := a.facts(ctx).
		Select("order_id, SUM(co2_kg) AS total_co2_kg, SUM(distance_km) AS total_distance_km").
		Group("order_id").
		Order("total_co2_kg DESC, order_id").
		Limit(topN).
		Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("high emission orders: %w", err)
	}
	a.log.WithField("count", len(out)).Info("Identified high emission orders")
	return out, nil
}

// ElectricUtilization lists electric vehicles with their tracked
// utilization.
func (a *Analyzer) ElectricUtilization(ctx context.Context) ([]ElectricVehicleUsage, error) {
	var rows []ElectricVehicleUsage
	err := a.facts(ctx).
		Select("vehicle_id, transport_type, AVG(load_ratio) AS avg_load_ratio, SUM(distance_km) AS total_distance_km").
		Group("vehicle_id, transport_type").
		Order("vehicle_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("electric utilization: %w", err)
	}
	out := rows[:0]
	for _, r := range rows {
		if a.classifier.IsElectric(r.TransportType) {
			out = append(out, r)
		}
	}
	a.log.WithField("count", len(out)).Info("Found electric vehicles with tracked utilization")
	return out, nil
}

func (a *Analyzer) Report(ctx context.Context, threshold float64, topN int) (*Report, error) {
	totals, err := a.Totals(ctx)
	if err != nil {
		return nil, err
	}
	high, err := a.HighEmissionOrders(ctx, topN)
	if err != nil {
		return nil, err
	}
	under, err := a.UnderutilizedVehicles(ctx, threshold)
	if err != nil {
		return nil, err
	}
	electric, err := a.ElectricUtilization(ctx)
	if err != nil {
		return nil, err
	}
	return &Report{Totals: totals, HighEmission: high, Underutilized: under, Electric: electric}, nil
}
