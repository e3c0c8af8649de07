package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"provender/internal/apperrors"
	"provender/internal/caching"
	"provender/internal/common"
	"provender/internal/models"
	"provender/internal/repositories"
)

type OrderLineInput struct {
	MaterialID     uuid.UUID `json:"material_id" validate:"required"`
	Quantity       float64   `json:"quantity" validate:"required,gt=0"`
	UnitPriceCents int64     `json:"unit_price_cents" validate:"gte=0"`
}

type SendOrderInput struct {
	Channel           models.SendChannel `json:"channel" validate:"required,oneof=EMAIL MANUAL"`
	RecipientOverride string             `json:"recipient_override" validate:"omitempty,email"`
	ProofNote         string             `json:"proof_note"`
	Version           int                `json:"version" validate:"required,gte=1"`
	IdempotencyKey    string             `json:"idempotency_key"`
}

type ReceiveLineInput struct {
	LineID     uuid.UUID  `json:"line_id" validate:"required"`
	Quantity   float64    `json:"quantity" validate:"required,gt=0"`
	LotNumber  string     `json:"lot_number" validate:"required"`
	ExpiryDate *time.Time `json:"expiry_date"`
}

type PurchaseOrderService interface {
	Create(ctx context.Context, supplierID uuid.UUID, lines []OrderLineInput, actor common.Actor) (*models.PurchaseOrder, error)
	// CreateFromRequisition splits the requisition's lines per primary
	// supplier into one draft order each.
	CreateFromRequisition(ctx context.Context, requisitionID uuid.UUID, actor common.Actor) ([]*models.PurchaseOrder, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.PurchaseOrder, error)
	List(ctx context.Context, limit, offset int) ([]*models.PurchaseOrder, error)
	Send(ctx context.Context, id uuid.UUID, input *SendOrderInput, actor common.Actor) (*models.PurchaseOrder, error)
	Confirm(ctx context.Context, id uuid.UUID, version int, actor common.Actor) (*models.PurchaseOrder, error)
	Receive(ctx context.Context, id uuid.UUID, version int, lines []ReceiveLineInput, actor common.Actor) (*models.PurchaseOrder, error)
	Cancel(ctx context.Context, id uuid.UUID, version int, reason, idempotencyKey string, actor common.Actor) (*models.PurchaseOrder, error)
	TryAdvisoryLock(ctx context.Context, id uuid.UUID, holder string) (*models.LockStatus, error)
	// AttachProof stores a proof-of-send document and records its object key
	// on the order.
	AttachProof(ctx context.Context, id uuid.UUID, reference, filename string, reader io.Reader, size int64) (string, error)
}

type purchaseOrderService struct {
	orderRepo       repositories.PurchaseOrderRepository
	materialRepo    repositories.MaterialRepository
	supplierRepo    repositories.SupplierRepository
	requisitionRepo repositories.RequisitionRepository
	notifier        NotifierService
	documents       DocumentService
	cache           caching.CacheService
	lockTTL         time.Duration
}

func NewPurchaseOrderService(
	orderRepo repositories.PurchaseOrderRepository,
	materialRepo repositories.MaterialRepository,
	supplierRepo repositories.SupplierRepository,
	requisitionRepo repositories.RequisitionRepository,
	notifier NotifierService,
	documents DocumentService,
	cache caching.CacheService,
	lockTTL time.Duration,
) PurchaseOrderService {
	return &purchaseOrderService{
		orderRepo:       orderRepo,
		materialRepo:    materialRepo,
		supplierRepo:    supplierRepo,
		requisitionRepo: requisitionRepo,
		notifier:        notifier,
		documents:       documents,
		cache:           cache,
		lockTTL:         lockTTL,
	}
}

func (s *purchaseOrderService) Create(ctx context.Context, supplierID uuid.UUID, lines []OrderLineInput, actor common.Actor) (*models.PurchaseOrder, error) {
	order, err := s.buildDraft(ctx, supplierID, nil, lines, actor)
	if err != nil {
		return nil, err
	}

	audit := s.transitionAudit(order, "", models.OrderDraft, actor)
	if err := s.orderRepo.Create(ctx, order, audit); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *purchaseOrderService) buildDraft(ctx context.Context, supplierID uuid.UUID, requisitionID *uuid.UUID, lines []OrderLineInput, actor common.Actor) (*models.PurchaseOrder, error) {
	if len(lines) == 0 {
		return nil, &apperrors.ValidationError{Field: "lines", Reason: "at least one line is required"}
	}

	supplier, err := s.supplierRepo.GetByID(ctx, supplierID)
	if err != nil {
		return nil, &apperrors.NotFoundError{Entity: "supplier", ID: supplierID.String()}
	}
	if !supplier.Active {
		return nil, &apperrors.ValidationError{Field: "supplier_id", Reason: "supplier is inactive"}
	}

	ids := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, &apperrors.ValidationError{Field: "quantity", Reason: "must be positive"}
		}
		ids = append(ids, line.MaterialID)
	}
	materials, err := s.materialRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	known := make(map[uuid.UUID]bool, len(materials))
	for _, m := range materials {
		known[m.ID] = true
	}
	for _, line := range lines {
		if !known[line.MaterialID] {
			return nil, &apperrors.NotFoundError{Entity: "material", ID: line.MaterialID.String()}
		}
	}

	order := &models.PurchaseOrder{
		ID:            uuid.New(),
		SupplierID:    supplierID,
		RequisitionID: requisitionID,
		Status:        models.OrderDraft,
		Version:       1,
		CreatedBy:     actor.ID,
	}
	for _, line := range lines {
		order.Lines = append(order.Lines, &models.PurchaseOrderLine{
			ID:             uuid.New(),
			OrderID:        order.ID,
			MaterialID:     line.MaterialID,
			Quantity:       line.Quantity,
			UnitPriceCents: line.UnitPriceCents,
		})
	}
	return order, nil
}

func (s *purchaseOrderService) CreateFromRequisition(ctx context.Context, requisitionID uuid.UUID, actor common.Actor) ([]*models.PurchaseOrder, error) {
	requisition, err := s.requisitionRepo.GetByID(ctx, requisitionID)
	if err != nil {
		return nil, &apperrors.NotFoundError{Entity: "requisition", ID: requisitionID.String()}
	}
	if requisition.Status != models.RequisitionOpen {
		return nil, &apperrors.StateConflictError{
			Entity:   "requisition",
			ID:       requisitionID.String(),
			Expected: string(models.RequisitionOpen),
			Actual:   string(requisition.Status),
		}
	}
	if len(requisition.Lines) == 0 {
		return nil, &apperrors.ValidationError{Field: "lines", Reason: "requisition has no lines"}
	}

	ids := make([]uuid.UUID, 0, len(requisition.Lines))
	for _, line := range requisition.Lines {
		ids = append(ids, line.MaterialID)
	}
	materials, err := s.materialRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*models.Material, len(materials))
	for _, m := range materials {
		byID[m.ID] = m
	}

	prices, err := s.orderRepo.LastUnitPrices(ctx, ids)
	if err != nil {
		return nil, err
	}

	// One order per primary supplier.
	bySupplier := make(map[uuid.UUID][]OrderLineInput)
	for _, line := range requisition.Lines {
		material, ok := byID[line.MaterialID]
		if !ok {
			return nil, &apperrors.NotFoundError{Entity: "material", ID: line.MaterialID.String()}
		}
		if material.SupplierID == nil {
			return nil, &apperrors.ValidationError{
				Field:  "material",
				Reason: fmt.Sprintf("%s has no primary supplier", material.Code),
			}
		}
		bySupplier[*material.SupplierID] = append(bySupplier[*material.SupplierID], OrderLineInput{
			MaterialID:     line.MaterialID,
			Quantity:       line.Quantity,
			UnitPriceCents: prices[line.MaterialID],
		})
	}

	var orders []*models.PurchaseOrder
	for supplierID, lines := range bySupplier {
		order, err := s.buildDraft(ctx, supplierID, &requisitionID, lines, actor)
		if err != nil {
			return nil, err
		}
		audit := s.transitionAudit(order, "", models.OrderDraft, actor)
		if err := s.orderRepo.Create(ctx, order, audit); err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, nil
}

func (s *purchaseOrderService) GetByID(ctx context.Context, id uuid.UUID) (*models.PurchaseOrder, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, &apperrors.NotFoundError{Entity: "purchase order", ID: id.String()}
	}
	return order, nil
}

func (s *purchaseOrderService) List(ctx context.Context, limit, offset int) ([]*models.PurchaseOrder, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.orderRepo.List(ctx, limit, offset)
}

// replayIdempotent returns the previously recorded outcome for the key, if any.
func (s *purchaseOrderService) replayIdempotent(ctx context.Context, key, operation string) (*models.PurchaseOrder, error) {
	if key == "" {
		return nil, nil
	}
	idem, err := s.orderRepo.GetIdempotency(ctx, key)
	if err != nil {
		return nil, err
	}
	if idem == nil || idem.Operation != operation {
		return nil, nil
	}
	return s.orderRepo.GetByID(ctx, idem.OrderID)
}

func (s *purchaseOrderService) Send(ctx context.Context, id uuid.UUID, input *SendOrderInput, actor common.Actor) (*models.PurchaseOrder, error) {
	if prior, err := s.replayIdempotent(ctx, input.IdempotencyKey, "send"); err != nil || prior != nil {
		return prior, err
	}

	order, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Status != models.OrderDraft {
		return nil, &apperrors.StateConflictError{
			Entity:   "purchase order",
			ID:       id.String(),
			Expected: string(models.OrderDraft),
			Actual:   string(order.Status),
		}
	}

	var recipient string
	switch input.Channel {
	case models.SendChannelEmail:
		recipient = input.RecipientOverride
		if recipient == "" {
			supplier, err := s.supplierRepo.GetByID(ctx, order.SupplierID)
			if err != nil {
				return nil, &apperrors.NotFoundError{Entity: "supplier", ID: order.SupplierID.String()}
			}
			if supplier.Email == nil || *supplier.Email == "" {
				return nil, &apperrors.ValidationError{Field: "recipient", Reason: "supplier has no email and no override was given"}
			}
			recipient = *supplier.Email
		}
	case models.SendChannelManual:
		if len(input.ProofNote) < 20 {
			return nil, &apperrors.ValidationError{Field: "proof_note", Reason: "must be at least 20 characters for manual sends"}
		}
	default:
		return nil, &apperrors.ValidationError{Field: "channel", Reason: "must be EMAIL or MANUAL"}
	}

	now := time.Now()
	oldStatus := order.Status
	order.Status = models.OrderSent
	order.Version++
	order.SentAt = &now
	order.SentBy = &actor.ID
	order.SendChannel = &input.Channel
	if recipient != "" {
		order.SendRecipient = &recipient
	}
	if input.ProofNote != "" {
		order.ProofNote = &input.ProofNote
	}

	rec := &repositories.TransitionRecord{
		Order:           order,
		ExpectedVersion: input.Version,
		Audit:           s.transitionAudit(order, oldStatus, order.Status, actor),
	}
	if input.IdempotencyKey != "" {
		rec.Idempotency = &models.OrderIdempotency{
			Key:          input.IdempotencyKey,
			Operation:    "send",
			OrderID:      order.ID,
			StatusAfter:  order.Status,
			VersionAfter: order.Version,
		}
	}
	if err := s.orderRepo.RecordTransition(ctx, rec); err != nil {
		return nil, s.mapTransitionError(err, order.ID, input.Version)
	}

	if input.Channel == models.SendChannelEmail {
		// Dispatch only after the version guard has passed, so a stale caller
		// never reaches the supplier's inbox. A failed dispatch still keeps
		// the transition: the notifier hands back a fallback id to record.
		messageID, err := s.notifier.SendOrderEmail(ctx, order, recipient)
		if err != nil {
			log.Warn().Err(err).Str("order", order.Reference).Msg("order email dispatch failed, recording fallback id")
		}
		if messageID != "" {
			if err := s.orderRepo.SetSendMessageID(ctx, order.ID, messageID); err != nil {
				log.Warn().Err(err).Str("order", order.Reference).Msg("send message id write failed")
			}
			order.SendMessageID = &messageID
		}
	}
	return order, nil
}

func (s *purchaseOrderService) Confirm(ctx context.Context, id uuid.UUID, version int, actor common.Actor) (*models.PurchaseOrder, error) {
	order, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Status != models.OrderSent {
		return nil, &apperrors.StateConflictError{
			Entity:   "purchase order",
			ID:       id.String(),
			Expected: string(models.OrderSent),
			Actual:   string(order.Status),
		}
	}

	now := time.Now()
	oldStatus := order.Status
	order.Status = models.OrderConfirmed
	order.Version++
	order.ConfirmedAt = &now

	rec := &repositories.TransitionRecord{
		Order:           order,
		ExpectedVersion: version,
		Audit:           s.transitionAudit(order, oldStatus, order.Status, actor),
	}
	if err := s.orderRepo.RecordTransition(ctx, rec); err != nil {
		return nil, s.mapTransitionError(err, order.ID, version)
	}
	return order, nil
}

func (s *purchaseOrderService) Receive(ctx context.Context, id uuid.UUID, version int, lines []ReceiveLineInput, actor common.Actor) (*models.PurchaseOrder, error) {
	if len(lines) == 0 {
		return nil, &apperrors.ValidationError{Field: "lines", Reason: "at least one line is required"}
	}

	order, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !order.CanReceive() {
		return nil, &apperrors.StateConflictError{
			Entity:   "purchase order",
			ID:       id.String(),
			Expected: "SENT, CONFIRMED or PARTIAL",
			Actual:   string(order.Status),
		}
	}

	byID := make(map[uuid.UUID]*models.PurchaseOrderLine, len(order.Lines))
	for _, line := range order.Lines {
		byID[line.ID] = line
	}

	now := time.Now()
	bundle := &repositories.ReceiptBundle{Order: order, ExpectedVersion: version}
	for _, input := range lines {
		line, ok := byID[input.LineID]
		if !ok {
			return nil, &apperrors.ValidationError{Field: "line_id", Reason: "line does not belong to this order"}
		}
		if input.Quantity <= 0 {
			return nil, &apperrors.ValidationError{Field: "quantity", Reason: "must be positive"}
		}
		if line.QuantityReceived+input.Quantity > line.Quantity {
			return nil, &apperrors.ValidationError{
				Field:  "quantity",
				Reason: fmt.Sprintf("line %s would exceed ordered quantity", input.LineID),
			}
		}

		line.QuantityReceived += input.Quantity

		lot := &models.Lot{
			ID:          uuid.New(),
			MaterialID:  line.MaterialID,
			OrderLineID: &line.ID,
			LotNumber:   input.LotNumber,
			Quantity:    input.Quantity,
			ExpiryDate:  input.ExpiryDate,
			ReceivedAt:  now,
		}
		bundle.Lots = append(bundle.Lots, lot)
		bundle.Movements = append(bundle.Movements, &models.StockMovement{
			ID:         uuid.New(),
			MaterialID: line.MaterialID,
			Direction:  models.MovementIn,
			Quantity:   input.Quantity,
			MovedAt:    now,
			OriginRef:  "po:" + order.Reference,
		})
		bundle.Receptions = append(bundle.Receptions, &models.Reception{
			ID:         uuid.New(),
			OrderID:    order.ID,
			LineID:     line.ID,
			Quantity:   input.Quantity,
			LotID:      lot.ID,
			ReceivedAt: now,
			ReceivedBy: actor.ID,
		})
	}

	oldStatus := order.Status
	if order.FullyReceived() {
		order.Status = models.OrderReceived
		order.ReceivedAt = &now
		late, err := s.deliveryWasLate(ctx, order, now)
		if err != nil {
			return nil, err
		}
		bundle.SupplierLate = &late
	} else {
		order.Status = models.OrderPartial
	}
	order.Version++
	bundle.Audit = s.transitionAudit(order, oldStatus, order.Status, actor)

	if err := s.orderRepo.ReceiveOrder(ctx, bundle); err != nil {
		return nil, s.mapTransitionError(err, order.ID, version)
	}

	if err := s.cache.InvalidateRisk(ctx); err != nil {
		log.Warn().Err(err).Msg("risk cache invalidation failed after reception")
	}
	return order, nil
}

// deliveryWasLate compares the final reception date against the supplier's
// lead time from order creation.
func (s *purchaseOrderService) deliveryWasLate(ctx context.Context, order *models.PurchaseOrder, receivedAt time.Time) (bool, error) {
	supplier, err := s.supplierRepo.GetByID(ctx, order.SupplierID)
	if err != nil {
		return false, err
	}
	due := order.CreatedAt.AddDate(0, 0, supplier.LeadTimeDays)
	return receivedAt.After(due), nil
}

func (s *purchaseOrderService) Cancel(ctx context.Context, id uuid.UUID, version int, reason, idempotencyKey string, actor common.Actor) (*models.PurchaseOrder, error) {
	if !actor.IsAdmin() {
		return nil, &apperrors.AuthorizationError{Action: "cancel purchase order", Role: actor.Role}
	}
	if len(reason) < 10 {
		return nil, &apperrors.ValidationError{Field: "reason", Reason: "must be at least 10 characters"}
	}

	if prior, err := s.replayIdempotent(ctx, idempotencyKey, "cancel"); err != nil || prior != nil {
		return prior, err
	}

	order, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !order.CanCancel() {
		return nil, &apperrors.StateConflictError{
			Entity:   "purchase order",
			ID:       id.String(),
			Expected: "DRAFT, SENT or CONFIRMED",
			Actual:   string(order.Status),
		}
	}
	if order.AnyQuantityReceived() {
		return nil, &apperrors.StateConflictError{
			Entity:   "purchase order",
			ID:       id.String(),
			Expected: "no received quantity",
			Actual:   "partial fulfillment",
		}
	}

	now := time.Now()
	oldStatus := order.Status
	order.Status = models.OrderCancelled
	order.Version++
	order.CancelledAt = &now
	order.CancelledBy = &actor.ID
	order.CancelReason = &reason

	rec := &repositories.TransitionRecord{
		Order:           order,
		ExpectedVersion: version,
		Audit:           s.transitionAudit(order, oldStatus, order.Status, actor),
	}
	if idempotencyKey != "" {
		rec.Idempotency = &models.OrderIdempotency{
			Key:          idempotencyKey,
			Operation:    "cancel",
			OrderID:      order.ID,
			StatusAfter:  order.Status,
			VersionAfter: order.Version,
		}
	}
	if err := s.orderRepo.RecordTransition(ctx, rec); err != nil {
		return nil, s.mapTransitionError(err, order.ID, version)
	}
	return order, nil
}

func (s *purchaseOrderService) TryAdvisoryLock(ctx context.Context, id uuid.UUID, holder string) (*models.LockStatus, error) {
	if holder == "" {
		return nil, &apperrors.ValidationError{Field: "holder", Reason: "is required"}
	}
	return s.orderRepo.TryAdvisoryLock(ctx, id, holder, s.lockTTL)
}

func (s *purchaseOrderService) AttachProof(ctx context.Context, id uuid.UUID, reference, filename string, reader io.Reader, size int64) (string, error) {
	if filename == "" {
		return "", &apperrors.ValidationError{Field: "filename", Reason: "is required"}
	}
	objectKey, err := s.documents.StoreProof(ctx, reference, filename, reader, size)
	if err != nil {
		return "", err
	}
	if err := s.orderRepo.SetProofDocument(ctx, id, objectKey); err != nil {
		return "", err
	}
	return objectKey, nil
}

func (s *purchaseOrderService) transitionAudit(order *models.PurchaseOrder, from, to models.OrderStatus, actor common.Actor) *models.AuditLog {
	audit := &models.AuditLog{
		ID:        uuid.New(),
		TableName: "purchase_orders",
		RecordID:  order.ID.String(),
		Action:    models.ActionTransition,
		NewValues: models.JSONB{"status": string(to), "version": order.Version},
		ChangedBy: &actor.ID,
	}
	if from != "" {
		audit.OldValues = models.JSONB{"status": string(from)}
	}
	return audit
}

func (s *purchaseOrderService) mapTransitionError(err error, id uuid.UUID, expectedVersion int) error {
	if errors.Is(err, repositories.ErrStaleVersion) {
		return &apperrors.StateConflictError{
			Entity:   "purchase order",
			ID:       id.String(),
			Expected: "version " + strconv.Itoa(expectedVersion),
			Actual:   "newer version",
		}
	}
	return err
}
