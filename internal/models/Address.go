package models

// Address is a master-data location. Rows are created on first reference by
// external code and never updated afterwards.
type Address struct {
	AddressID    uint     `gorm:"column:address_id;primaryKey" json:"address_id"`
	ExternalCode *string  `gorm:"column:external_code;uniqueIndex:idx_addresses_external_code" json:"external_code"`
	Name         *string  `gorm:"column:name;size:255" json:"name"`
	Street       *string  `gorm:"column:street;size:255" json:"street"`
	City         *string  `gorm:"column:city;size:128;index:idx_addresses_city" json:"city"`
	PostalCode   *string  `gorm:"column:postal_code;size:20" json:"postal_code"`
	Country      *string  `gorm:"column:country;size:64" json:"country"`
	Latitude     *float64 `gorm:"column:latitude" json:"latitude"`
	Longitude    *float64 `gorm:"column:longitude" json:"longitude"`

	// Location is a WKB point (lon, lat), set only when both coordinates parse.
	Location []byte `gorm:"column:location;type:bytea" json:"-"`

	UnitStops  []FreightUnitStop  `gorm:"foreignKey:AddressID;references:AddressID;constraint:OnDelete:CASCADE;" json:"-"`
	OrderStops []FreightOrderStop `gorm:"foreignKey:AddressID;references:AddressID;constraint:OnDelete:CASCADE;" json:"-"`
}

func (Address) TableName() string { return "addresses" }
