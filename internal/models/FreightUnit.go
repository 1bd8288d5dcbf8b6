package models

import "time"

const (
	StopTypeOutbound = "Outbound"
	StopTypeInbound  = "Inbound"
)

// StopTypeFromCategory maps the extract's STOP CATEGORY ("O"/"I") to a stop
// type. ok is false for any other category.
func StopTypeFromCategory(category string) (string, bool) {
	switch category {
	case "O":
		return StopTypeOutbound, true
	case "I":
		return StopTypeInbound, true
	}
	return "", false
}

// FreightUnit is a shippable unit keyed by its extract KEY.
type FreightUnit struct {
	UnitID            uint       `gorm:"column:unit_id;primaryKey" json:"unit_id"`
	SourceKey         *string    `gorm:"column:source_key;uniqueIndex" json:"source_key"`
	Weight            *float64   `gorm:"column:weight" json:"weight"`
	Volume            *float64   `gorm:"column:volume" json:"volume"`
	DirectDistance    *float64   `gorm:"column:direct_distance" json:"direct_distance"`
	EstimatedDuration *float64   `gorm:"column:estimated_duration" json:"estimated_duration"`
	PlannedDate       *time.Time `gorm:"column:planned_date;type:date" json:"planned_date"`

	Stops []FreightUnitStop  `gorm:"foreignKey:UnitID;references:UnitID;constraint:OnDelete:CASCADE;" json:"-"`
	Items []FreightOrderItem `gorm:"foreignKey:UnitID;references:UnitID;constraint:OnDelete:CASCADE;" json:"-"`
}

func (FreightUnit) TableName() string { return "freight_units" }

// FreightUnitStop is an ordered stop of a freight unit.
type FreightUnitStop struct {
	StopID          uint    `gorm:"column:stop_id;primaryKey" json:"stop_id"`
	UnitID          uint    `gorm:"column:unit_id;not null;index:idx_fu_stops_unit" json:"unit_id"`
	AddressID       uint    `gorm:"column:address_id;not null" json:"address_id"`
	SourceKey       *string `gorm:"column:source_key;index:idx_fu_stops_source_key" json:"source_key"`
	ParentSourceKey *string `gorm:"column:parent_source_key" json:"parent_source_key"`
	StopType        string  `gorm:"column:stop_type;size:16;not null;check:ck_fu_stop_type,stop_type IN ('Outbound', 'Inbound')" json:"stop_type"`
	SequenceNumber  int     `gorm:"column:sequence_number;not null" json:"sequence_number"`
}

func (FreightUnitStop) TableName() string { return "freight_unit_stops" }
