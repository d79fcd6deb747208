package model

type LocationType string

const (
	LocationWarehouse LocationType = "warehouse"
	LocationVehicle   LocationType = "vehicle"
)

type Location struct {
	BaseModel
	Name         string       `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Type         LocationType `gorm:"type:varchar(20);not null" json:"type" validate:"required,oneof=warehouse vehicle"`
	LicensePlate string       `gorm:"type:varchar(20)" json:"license_plate,omitempty"`
	Description  string       `gorm:"type:text" json:"description,omitempty"`
}
