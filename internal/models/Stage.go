package models

// FreightOrderStage is one directed leg between two stops of the same order,
// with the measured distance (km) and duration (minutes) of that leg.
type FreightOrderStage struct {
	StageID           uint     `gorm:"column:stage_id;primaryKey" json:"stage_id"`
	OrderID           uint     `gorm:"column:order_id;not null;index:idx_fo_stages_order" json:"order_id"`
	FromStopID        uint     `gorm:"column:from_stop_id;not null" json:"from_stop_id"`
	ToStopID          uint     `gorm:"column:to_stop_id;not null" json:"to_stop_id"`
	SourceKey         *string  `gorm:"column:source_key;index:idx_fo_stages_source_key" json:"source_key"`
	ParentSourceKey   *string  `gorm:"column:parent_source_key" json:"parent_source_key"`
	FromStopSourceKey *string  `gorm:"column:from_stop_source_key" json:"from_stop_source_key"`
	ToStopSourceKey   *string  `gorm:"column:to_stop_source_key" json:"to_stop_source_key"`
	Distance          *float64 `gorm:"column:distance" json:"distance"`
	Duration          *float64 `gorm:"column:duration" json:"duration"`
}

func (FreightOrderStage) TableName() string { return "freight_order_stages" }
