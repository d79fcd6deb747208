package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BookingLine is one confirmed (product, location, quantity) line.
type BookingLine struct {
	ProductID  uuid.UUID       `json:"product_id"`
	LocationID uuid.UUID       `json:"location_id"`
	Quantity   decimal.Decimal `json:"quantity"`
}

// StockWarning reports a line that asked for more than was on hand.
type StockWarning struct {
	ProductID    uuid.UUID       `json:"product_id"`
	ProductName  string          `json:"product_name"`
	LocationID   uuid.UUID       `json:"location_id"`
	LocationName string          `json:"location_name"`
	Available    decimal.Decimal `json:"available"`
	Requested    decimal.Decimal `json:"requested"`
}

type BookingResult struct {
	TransactionIDs []uuid.UUID    `json:"transaction_ids"`
	Warnings       []StockWarning `json:"warnings"`
}

// StockWarningRaised is published after a committed booking that produced warnings.
type StockWarningRaised struct {
	Warnings  []StockWarning
	ActorID   uuid.UUID
	ProjectID *uuid.UUID
}
