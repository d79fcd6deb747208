package model

import "github.com/google/uuid"

// FallbackWorkCode is the catch-all code that stays selectable under a
// project restriction.
const FallbackWorkCode = "999"

// WorkCode is a global bewakingscode.
type WorkCode struct {
	BaseModel
	Code        string `gorm:"type:varchar(20);uniqueIndex;not null" json:"code" validate:"required,max=20"`
	Name        string `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Description string `gorm:"type:text" json:"description"`
	Active      bool   `gorm:"default:true" json:"active"`
	SortOrder   int    `gorm:"default:0" json:"sort_order"`
}

// ProjectWorkCode links a project to a global WorkCode or carries a
// project-local custom code. Exactly one of WorkCodeID and CustomCode is set.
type ProjectWorkCode struct {
	BaseModel
	ProjectID         uuid.UUID  `gorm:"type:uuid;not null;index" json:"project_id"`
	WorkCodeID        *uuid.UUID `gorm:"type:uuid" json:"work_code_id,omitempty"`
	CustomCode        *string    `gorm:"type:varchar(20)" json:"custom_code,omitempty"`
	CustomName        string     `gorm:"type:varchar(255)" json:"custom_name,omitempty"`
	CustomDescription string     `gorm:"type:text" json:"custom_description,omitempty"`
}

func (p *ProjectWorkCode) IsCustom() bool {
	return p.CustomCode != nil
}

// AvailableCode is one entry of the resolved code list for a project.
type AvailableCode struct {
	ID          *uuid.UUID `json:"id,omitempty"`
	Code        string     `json:"code"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	IsCustom    bool       `json:"is_custom"`
}

func AvailableFromWorkCode(w WorkCode) AvailableCode {
	id := w.ID
	return AvailableCode{ID: &id, Code: w.Code, Name: w.Name, Description: w.Description}
}
