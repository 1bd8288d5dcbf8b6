package models

import "time"

// FreightOrder is the execution of one or more freight units on a vehicle.
type FreightOrder struct {
	OrderID       uint       `gorm:"column:order_id;primaryKey" json:"order_id"`
	SourceKey     *string    `gorm:"column:source_key;uniqueIndex" json:"source_key"`
	VehicleID     uint       `gorm:"column:vehicle_id;not null;index:idx_freight_orders_vehicle" json:"vehicle_id"`
	TotalWeight   *float64   `gorm:"column:total_weight" json:"total_weight"`
	TotalVolume   *float64   `gorm:"column:total_volume" json:"total_volume"`
	TotalDistance *float64   `gorm:"column:total_distance" json:"total_distance"`
	TotalDuration *float64   `gorm:"column:total_duration" json:"total_duration"`
	PlannedDate   *time.Time `gorm:"column:planned_date;type:date;index:idx_freight_orders_date" json:"planned_date"`

	Items  []FreightOrderItem  `gorm:"foreignKey:OrderID;references:OrderID;constraint:OnDelete:CASCADE;" json:"-"`
	Stops  []FreightOrderStop  `gorm:"foreignKey:OrderID;references:OrderID;constraint:OnDelete:CASCADE;" json:"-"`
	Stages []FreightOrderStage `gorm:"foreignKey:OrderID;references:OrderID;constraint:OnDelete:CASCADE;" json:"-"`
}

func (FreightOrder) TableName() string { return "freight_orders" }

// FreightOrderItem links an order to a unit it carries.
type FreightOrderItem struct {
	ItemID          uint     `gorm:"column:item_id;primaryKey" json:"item_id"`
	OrderID         uint     `gorm:"column:order_id;not null;index:idx_fo_items_order" json:"order_id"`
	UnitID          uint     `gorm:"column:unit_id;not null" json:"unit_id"`
	SourceKey       *string  `gorm:"column:source_key;index:idx_fo_items_source_key" json:"source_key"`
	ParentSourceKey *string  `gorm:"column:parent_source_key" json:"parent_source_key"`
	Weight          *float64 `gorm:"column:weight" json:"weight"`
	Volume          *float64 `gorm:"column:volume" json:"volume"`
}

func (FreightOrderItem) TableName() string { return "freight_order_items" }

// FreightOrderStop is an ordered stop of a freight order.
type FreightOrderStop struct {
	StopID          uint    `gorm:"column:stop_id;primaryKey" json:"stop_id"`
	OrderID         uint    `gorm:"column:order_id;not null;index:idx_fo_stops_order" json:"order_id"`
	AddressID       uint    `gorm:"column:address_id;not null" json:"address_id"`
	SourceKey       *string `gorm:"column:source_key;index:idx_fo_stops_source_key" json:"source_key"`
	ParentSourceKey *string `gorm:"column:parent_source_key" json:"parent_source_key"`
	StopType        *string `gorm:"column:stop_type;size:16" json:"stop_type"`
	SequenceNumber  int     `gorm:"column:sequence_number;not null" json:"sequence_number"`

	Departures []FreightOrderStage `gorm:"foreignKey:FromStopID;references:StopID;constraint:OnDelete:CASCADE;" json:"-"`
	Arrivals   []FreightOrderStage `gorm:"foreignKey:ToStopID;references:StopID;constraint:OnDelete:CASCADE;" json:"-"`
}

func (FreightOrderStop) TableName() string { return "freight_order_stops" }
