package model

type Project struct {
	BaseModel
	Number string `gorm:"type:varchar(50);uniqueIndex;not null" json:"number" validate:"required"`
	Name   string `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Active bool   `gorm:"default:true" json:"active"`
}
