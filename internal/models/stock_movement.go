package models

import (
	"time"

	"github.com/google/uuid"
)

type MovementDirection string

const (
	MovementIn  MovementDirection = "IN"
	MovementOut MovementDirection = "OUT"
)

// StockMovement is one row of the append-only ledger. Rows are never updated;
// corrections soft-delete the wrong row and append a new one.
type StockMovement struct {
	ID         uuid.UUID         `json:"id" db:"id"`
	MaterialID uuid.UUID         `json:"material_id" db:"material_id"`
	Direction  MovementDirection `json:"direction" db:"direction"`
	Quantity   float64           `json:"quantity" db:"quantity"`
	MovedAt    time.Time         `json:"moved_at" db:"moved_at"`
	OriginRef  string            `json:"origin_ref" db:"origin_ref"`
	Deleted    bool              `json:"deleted" db:"deleted"`
	CreatedAt  time.Time         `json:"created_at" db:"created_at"`
}

// Signed returns the movement's contribution to current stock.
func (m *StockMovement) Signed() float64 {
	if m.Direction == MovementOut {
		return -m.Quantity
	}
	return m.Quantity
}

// Lot identifies a received batch of material, created during order reception.
type Lot struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	MaterialID  uuid.UUID  `json:"material_id" db:"material_id"`
	OrderLineID *uuid.UUID `json:"order_line_id" db:"order_line_id"`
	LotNumber   string     `json:"lot_number" db:"lot_number"`
	Quantity    float64    `json:"quantity" db:"quantity"`
	ExpiryDate  *time.Time `json:"expiry_date" db:"expiry_date"`
	ReceivedAt  time.Time  `json:"received_at" db:"received_at"`
}
