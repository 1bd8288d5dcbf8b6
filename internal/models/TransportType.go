package models

// TransportType is one "means of transport" code from the master data.
type TransportType struct {
	TransportTypeID uint    `gorm:"column:transport_type_id;primaryKey" json:"transport_type_id"`
	Name            string  `gorm:"column:name;size:128;not null;uniqueIndex" json:"name"`
	Description     *string `gorm:"column:description;type:text" json:"description"`

	Vehicles   []Vehicle           `gorm:"foreignKey:TransportTypeID;references:TransportTypeID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Attributes []VehicleAttributes `gorm:"foreignKey:TransportTypeID;references:TransportTypeID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}

func (TransportType) TableName() string { return "transport_types" }
