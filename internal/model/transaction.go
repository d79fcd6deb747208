package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TxIn  TransactionType = "in"
	TxOut TransactionType = "out"
)

// Transaction is an inventory ledger entry. Quantity is signed: outbound
// bookings are negative.
type Transaction struct {
	BaseModel
	ProductID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	Product    *Product        `json:"product,omitempty"`
	LocationID uuid.UUID       `gorm:"type:uuid;not null" json:"location_id"`
	Location   *Location       `json:"location,omitempty"`
	ProjectID  *uuid.UUID      `gorm:"type:uuid;index" json:"project_id,omitempty"`
	UserID     uuid.UUID       `gorm:"type:uuid;not null" json:"user_id"`
	User       *User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Quantity   decimal.Decimal `gorm:"type:numeric(14,3);not null" json:"quantity"`
	Type       TransactionType `gorm:"type:varchar(10);not null" json:"type"`
	Note       string          `gorm:"type:text" json:"note"`
}

// TransactionFilter narrows ListTransactions. Zero values mean no filter.
type TransactionFilter struct {
	ProductID  *uuid.UUID
	LocationID *uuid.UUID
	ProjectID  *uuid.UUID
	Limit      int
	Offset     int
}

// TransactionUpdate holds the editable fields of a ledger row. Nil fields are left unchanged.
type TransactionUpdate struct {
	ProductID  *uuid.UUID       `json:"product_id"`
	LocationID *uuid.UUID       `json:"location_id"`
	ProjectID  *uuid.UUID       `json:"project_id"`
	Quantity   *decimal.Decimal `json:"quantity"`
	Note       *string          `json:"note"`
}
