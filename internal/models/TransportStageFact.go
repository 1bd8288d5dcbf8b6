package models

import (
	"time"

	"github.com/google/uuid"
)

// TransportStageFact is the denormalized per-stage output of the fact
// builder. The table is rebuilt wholesale on every build.
type TransportStageFact struct {
	ID                uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	OrderID           uint      `gorm:"column:order_id;index" json:"order_id"`
	VehicleID         uint      `gorm:"column:vehicle_id;index" json:"vehicle_id"`
	TransportType     string    `gorm:"column:transport_type;index" json:"transport_type"`
	FromStopID        uint      `gorm:"column:from_stop_id" json:"from_stop_id"`
	ToStopID          uint      `gorm:"column:to_stop_id" json:"to_stop_id"`
	DistanceKm        float64   `gorm:"column:distance_km;type:numeric" json:"distance_km"`
	DurationMin       float64   `gorm:"column:duration_min;type:numeric" json:"duration_min"`
	TotalWeightKg     float64   `gorm:"column:total_weight_kg;type:numeric" json:"total_weight_kg"`
	VehicleCapacityKg float64   `gorm:"column:vehicle_capacity_kg;type:numeric" json:"vehicle_capacity_kg"`
	LoadRatio         float64   `gorm:"column:load_ratio;type:numeric" json:"load_ratio"`
	Co2Kg             float64   `gorm:"column:co2_kg;type:numeric" json:"co2_kg"`
	CreatedAt         time.Time `gorm:"column:created_at;not null" json:"created_at"`
}

func (TransportStageFact) TableName() string { return "transport_stage_fact" }

// All lists every model in foreign-key dependency order (leaves first).
func All() []any {
	return []any{
		&Address{},
		&TransportType{},
		&Vehicle{},
		&VehicleAttributes{},
		&FreightUnit{},
		&FreightUnitStop{},
		&FreightOrder{},
		&FreightOrderItem{},
		&FreightOrderStop{},
		&FreightOrderStage{},
		&TransportStageFact{},
	}
}
