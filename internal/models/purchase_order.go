package models

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderDraft     OrderStatus = "DRAFT"
	OrderSent      OrderStatus = "SENT"
	OrderConfirmed OrderStatus = "CONFIRMED"
	OrderPartial   OrderStatus = "PARTIAL"
	OrderReceived  OrderStatus = "RECEIVED"
	OrderCancelled OrderStatus = "CANCELLED"
)

type SendChannel string

const (
	SendChannelEmail  SendChannel = "EMAIL"
	SendChannelManual SendChannel = "MANUAL"
)

// PurchaseOrder moves through DRAFT -> SENT -> CONFIRMED -> {PARTIAL <-> RECEIVED},
// with DRAFT/SENT/CONFIRMED -> CANCELLED. Mutations happen only through the
// guarded transitions; Version backs the optimistic-concurrency check.
type PurchaseOrder struct {
	ID            uuid.UUID   `json:"id" db:"id"`
	Reference     string      `json:"reference" db:"reference"`
	SupplierID    uuid.UUID   `json:"supplier_id" db:"supplier_id"`
	RequisitionID *uuid.UUID  `json:"requisition_id" db:"requisition_id"`
	Status        OrderStatus `json:"status" db:"status"`
	Version       int         `json:"version" db:"version"`
	CreatedBy     uuid.UUID   `json:"created_by" db:"created_by"`

	SentAt        *time.Time   `json:"sent_at" db:"sent_at"`
	SentBy        *uuid.UUID   `json:"sent_by" db:"sent_by"`
	SendChannel   *SendChannel `json:"send_channel" db:"send_channel"`
	SendRecipient *string      `json:"send_recipient" db:"send_recipient"`
	SendMessageID *string      `json:"send_message_id" db:"send_message_id"`
	ProofNote     *string      `json:"proof_note" db:"proof_note"`
	ProofDocument *string      `json:"proof_document" db:"proof_document"`

	ConfirmedAt  *time.Time `json:"confirmed_at" db:"confirmed_at"`
	ReceivedAt   *time.Time `json:"received_at" db:"received_at"`
	CancelledAt  *time.Time `json:"cancelled_at" db:"cancelled_at"`
	CancelledBy  *uuid.UUID `json:"cancelled_by" db:"cancelled_by"`
	CancelReason *string    `json:"cancel_reason" db:"cancel_reason"`

	LockHolder     *string    `json:"lock_holder" db:"lock_holder"`
	LockAcquiredAt *time.Time `json:"lock_acquired_at" db:"lock_acquired_at"`
	LockExpiresAt  *time.Time `json:"lock_expires_at" db:"lock_expires_at"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	Lines []*PurchaseOrderLine `json:"lines" db:"-"`
}

// CanReceive reports whether the order may accept a delivery.
func (o *PurchaseOrder) CanReceive() bool {
	switch o.Status {
	case OrderSent, OrderConfirmed, OrderPartial:
		return true
	}
	return false
}

// CanCancel reports whether the status permits cancellation.
func (o *PurchaseOrder) CanCancel() bool {
	switch o.Status {
	case OrderDraft, OrderSent, OrderConfirmed:
		return true
	}
	return false
}

// FullyReceived reports whether every line meets its ordered quantity.
func (o *PurchaseOrder) FullyReceived() bool {
	for _, line := range o.Lines {
		if line.QuantityReceived < line.Quantity {
			return false
		}
	}
	return len(o.Lines) > 0
}

// AnyQuantityReceived reports whether any line has received stock.
func (o *PurchaseOrder) AnyQuantityReceived() bool {
	for _, line := range o.Lines {
		if line.QuantityReceived > 0 {
			return true
		}
	}
	return false
}

type PurchaseOrderLine struct {
	ID               uuid.UUID `json:"id" db:"id"`
	OrderID          uuid.UUID `json:"order_id" db:"order_id"`
	MaterialID       uuid.UUID `json:"material_id" db:"material_id"`
	Quantity         float64   `json:"quantity" db:"quantity"`
	UnitPriceCents   int64     `json:"unit_price_cents" db:"unit_price_cents"`
	QuantityReceived float64   `json:"quantity_received" db:"quantity_received"`
}

// Reception records one delivered quantity against one order line.
type Reception struct {
	ID         uuid.UUID `json:"id" db:"id"`
	OrderID    uuid.UUID `json:"order_id" db:"order_id"`
	LineID     uuid.UUID `json:"line_id" db:"line_id"`
	Quantity   float64   `json:"quantity" db:"quantity"`
	LotID      uuid.UUID `json:"lot_id" db:"lot_id"`
	ReceivedAt time.Time `json:"received_at" db:"received_at"`
	ReceivedBy uuid.UUID `json:"received_by" db:"received_by"`
}

// OrderIdempotency replays a previously executed send/cancel call.
type OrderIdempotency struct {
	Key          string      `json:"key" db:"key"`
	Operation    string      `json:"operation" db:"operation"`
	OrderID      uuid.UUID   `json:"order_id" db:"order_id"`
	StatusAfter  OrderStatus `json:"status_after" db:"status_after"`
	VersionAfter int         `json:"version_after" db:"version_after"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
}

// LockStatus is the outcome of a TryAdvisoryLock call. When not granted it
// carries the competing holder and expiry.
type LockStatus struct {
	Granted   bool      `json:"granted"`
	Holder    string    `json:"holder"`
	ExpiresAt time.Time `json:"expires_at"`
}
