// internal/models/vehicle.go
package models

// Vehicle is one resource of the fleet. Orders reference it; the slice only
// declares that constraint and is never loaded.
type Vehicle struct {
	VehicleID       uint    `gorm:"column:vehicle_id;primaryKey" json:"vehicle_id"`
	TransportTypeID uint    `gorm:"column:transport_type_id;not null;index:idx_vehicles_type" json:"transport_type_id"`
	LicensePlate    *string `gorm:"column:license_plate;size:32;uniqueIndex" json:"license_plate"`
	IsActive        bool    `gorm:"column:is_active;not null" json:"is_active"`

	Orders []FreightOrder `gorm:"foreignKey:VehicleID;references:VehicleID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}

func (Vehicle) TableName() string { return "vehicles" }

// VehicleAttributes holds the rated capacity and emission factors of a
// transport type. There is at most one row per type.
type VehicleAttributes struct {
	AttributeID     uint     `gorm:"column:attribute_id;primaryKey" json:"attribute_id"`
	TransportTypeID uint     `gorm:"column:transport_type_id;not null;uniqueIndex" json:"transport_type_id"`
	CapacityKg      *float64 `gorm:"column:capacity_kg" json:"capacity_kg"`
	CapacityVolume  *float64 `gorm:"column:capacity_volume" json:"capacity_volume"`
	Co2EmptyKgKm    *float64 `gorm:"column:co2_empty_kg_km" json:"co2_empty_kg_km"`
	Co2LoadedKgKm   *float64 `gorm:"column:co2_loaded_kg_km" json:"co2_loaded_kg_km"`
}

func (VehicleAttributes) TableName() string { return "vehicle_attributes" }
