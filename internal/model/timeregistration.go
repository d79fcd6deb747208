package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// WorkLine is one line of a time-registration draft.
type WorkLine struct {
	WorkCode    string          `json:"work_code"`
	Description string          `json:"description"`
	Hours       decimal.Decimal `json:"hours"`
	Materials   MaterialLines   `json:"materials"`
}

type TimeRegistration struct {
	BaseModel
	UserID      uuid.UUID                           `gorm:"type:uuid;not null;index" json:"user_id"`
	ProjectID   uuid.UUID                           `gorm:"type:uuid;not null;index" json:"project_id"`
	Project     *Project                            `json:"project,omitempty"`
	Date        time.Time                           `gorm:"type:date;not null" json:"date"`
	WorkCode    string                              `gorm:"type:varchar(20);not null" json:"work_code"`
	Description string                              `gorm:"type:text" json:"description"`
	Hours       decimal.Decimal                     `gorm:"type:numeric(5,2);not null" json:"hours"`
	Materials   datatypes.JSONSlice[MaterialRecord] `gorm:"type:jsonb" json:"materials"`
}
