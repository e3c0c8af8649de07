package repositories

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"provender/internal/models"
)

// TransitionRecord bundles one guarded status transition with the writes that
// must commit alongside it.
type TransitionRecord struct {
	Order           *models.PurchaseOrder // already mutated, Version incremented
	ExpectedVersion int
	Audit           *models.AuditLog
	Idempotency     *models.OrderIdempotency
}

// ReceiptBundle is the atomic unit of an order reception: the guarded status
// update, line increments, lots, ledger movements and reception rows either
// all commit or none do. A line marked received without a matching movement
// must be impossible.
type ReceiptBundle struct {
	Order           *models.PurchaseOrder // lines and status already mutated
	ExpectedVersion int
	Lots            []*models.Lot
	Movements       []*models.StockMovement
	Receptions      []*models.Reception
	SupplierLate    *bool // delivery mark for the supplier stats; nil = no mark
	Audit           *models.AuditLog
}

type PurchaseOrderRepository interface {
	// Create allocates the year-scoped sequential reference and inserts the
	// order, its lines and the audit entry in one transaction.
	Create(ctx context.Context, order *models.PurchaseOrder, audit *models.AuditLog) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.PurchaseOrder, error)
	List(ctx context.Context, limit, offset int) ([]*models.PurchaseOrder, error)
	// ListOpenQuantities returns, per material, the ordered-but-not-received
	// quantity across open orders.
	ListOpenQuantities(ctx context.Context) (map[uuid.UUID]float64, error)
	RecordTransition(ctx context.Context, rec *TransitionRecord) error
	ReceiveOrder(ctx context.Context, bundle *ReceiptBundle) error
	GetIdempotency(ctx context.Context, key string) (*models.OrderIdempotency, error)
	SetProofDocument(ctx context.Context, orderID uuid.UUID, objectKey string) error
	SetSendMessageID(ctx context.Context, orderID uuid.UUID, messageID string) error
	// LastUnitPrices returns the most recently ordered unit price per material.
	LastUnitPrices(ctx context.Context, materialIDs []uuid.UUID) (map[uuid.UUID]int64, error)
	// TryAdvisoryLock grants or renews the cooperative edit lock. It never
	// blocks and never gates transitions; those rely on the version column.
	TryAdvisoryLock(ctx context.Context, id uuid.UUID, holder string, ttl time.Duration) (*models.LockStatus, error)
}

type purchaseOrderRepo struct {
	db TxDatabase
}

func NewPurchaseOrderRepo(db TxDatabase) PurchaseOrderRepository {
	return &purchaseOrderRepo{db: db}
}

const orderColumns = `id, reference, supplier_id, requisition_id, status, version, created_by,
		sent_at, sent_by, send_channel, send_recipient, send_message_id, proof_note, proof_document,
		confirmed_at, received_at, cancelled_at, cancelled_by, cancel_reason,
		lock_holder, lock_acquired_at, lock_expires_at, created_at, updated_at`

func scanOrder(row rowScanner, o *models.PurchaseOrder) error {
	return row.Scan(&o.ID, &o.Reference, &o.SupplierID, &o.RequisitionID, &o.Status, &o.Version,
		&o.CreatedBy, &o.SentAt, &o.SentBy, &o.SendChannel, &o.SendRecipient, &o.SendMessageID,
		&o.ProofNote, &o.ProofDocument, &o.ConfirmedAt, &o.ReceivedAt, &o.CancelledAt,
		&o.CancelledBy, &o.CancelReason, &o.LockHolder, &o.LockAcquiredAt, &o.LockExpiresAt,
		&o.CreatedAt, &o.UpdatedAt)
}

func (r *purchaseOrderRepo) Create(ctx context.Context, order *models.PurchaseOrder, audit *models.AuditLog) error {
	return inTx(ctx, r.db, func(tx pgx.Tx) error {
		reference, err := nextReference(ctx, tx, time.Now().Year())
		if err != nil {
			return err
		}
		order.Reference = reference

		query := `
			INSERT INTO purchase_orders (id, reference, supplier_id, requisition_id, status, version, created_by, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		`
		if _, err := tx.Exec(ctx, query, order.ID, order.Reference, order.SupplierID,
			order.RequisitionID, order.Status, order.Version, order.CreatedBy); err != nil {
			return err
		}

		lineQuery := `
			INSERT INTO purchase_order_lines (id, order_id, material_id, quantity, unit_price_cents, quantity_received)
			VALUES ($1, $2, $3, $4, $5, 0)
		`
		for _, line := range order.Lines {
			if _, err := tx.Exec(ctx, lineQuery, line.ID, line.OrderID, line.MaterialID,
				line.Quantity, line.UnitPriceCents); err != nil {
				return err
			}
		}

		audit.RecordID = order.ID.String()
		return insertAuditLog(ctx, tx, audit)
	})
}

// nextReference reads the last reference issued for the year under a row lock
// and increments it. The unique index on reference is the backstop for the
// empty-year window where there is no row to lock.
func nextReference(ctx context.Context, tx pgx.Tx, year int) (string, error) {
	prefix := fmt.Sprintf("PO-%d-", year)

	var last string
	err := tx.QueryRow(ctx, `
		SELECT reference FROM purchase_orders
		WHERE reference LIKE $1
		ORDER BY reference DESC
		LIMIT 1
		FOR UPDATE
	`, prefix+"%").Scan(&last)

	seq := 0
	switch {
	case err == nil:
		n, convErr := strconv.Atoi(strings.TrimPrefix(last, prefix))
		if convErr != nil {
			return "", fmt.Errorf("malformed order reference %q: %w", last, convErr)
		}
		seq = n
	case errors.Is(err, pgx.ErrNoRows):
		// first order of the year
	default:
		return "", err
	}

	return fmt.Sprintf("%s%04d", prefix, seq+1), nil
}

func (r *purchaseOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.PurchaseOrder, error) {
	order := &models.PurchaseOrder{}
	query := `SELECT ` + orderColumns + ` FROM purchase_orders WHERE id = $1`
	if err := scanOrder(r.db.QueryRow(ctx, query, id), order); err != nil {
		return nil, err
	}

	lines, err := r.linesForOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	order.Lines = lines
	return order, nil
}

func (r *purchaseOrderRepo) linesForOrder(ctx context.Context, orderID uuid.UUID) ([]*models.PurchaseOrderLine, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, order_id, material_id, quantity, unit_price_cents, quantity_received
		FROM purchase_order_lines
		WHERE order_id = $1
		ORDER BY id
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []*models.PurchaseOrderLine
	for rows.Next() {
		line := &models.PurchaseOrderLine{}
		if err := rows.Scan(&line.ID, &line.OrderID, &line.MaterialID, &line.Quantity,
			&line.UnitPriceCents, &line.QuantityReceived); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

func (r *purchaseOrderRepo) List(ctx context.Context, limit, offset int) ([]*models.PurchaseOrder, error) {
	query := `SELECT ` + orderColumns + ` FROM purchase_orders ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*models.PurchaseOrder
	for rows.Next() {
		order := &models.PurchaseOrder{}
		if err := scanOrder(rows, order); err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

func (r *purchaseOrderRepo) ListOpenQuantities(ctx context.Context) (map[uuid.UUID]float64, error) {
	rows, err := r.db.Query(ctx, `
		SELECT l.material_id, COALESCE(SUM(GREATEST(l.quantity - l.quantity_received, 0)), 0)
		FROM purchase_order_lines l
		JOIN purchase_orders o ON o.id = l.order_id
		WHERE o.status IN ('DRAFT', 'SENT', 'CONFIRMED', 'PARTIAL')
		GROUP BY l.material_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	quantities := make(map[uuid.UUID]float64)
	for rows.Next() {
		var id uuid.UUID
		var qty float64
		if err := rows.Scan(&id, &qty); err != nil {
			return nil, err
		}
		quantities[id] = qty
	}
	return quantities, rows.Err()
}

func (r *purchaseOrderRepo) RecordTransition(ctx context.Context, rec *TransitionRecord) error {
	return inTx(ctx, r.db, func(tx pgx.Tx) error {
		if err := updateOrderGuarded(ctx, tx, rec.Order, rec.ExpectedVersion); err != nil {
			return err
		}
		if err := insertAuditLog(ctx, tx, rec.Audit); err != nil {
			return err
		}
		if rec.Idempotency != nil {
			return insertIdempotency(ctx, tx, rec.Idempotency)
		}
		return nil
	})
}

// updateOrderGuarded writes every transition-mutable column; the WHERE clause
// on version rejects stale writers instead of blocking them.
func updateOrderGuarded(ctx context.Context, q Database, order *models.PurchaseOrder, expectedVersion int) error {
	tag, err := q.Exec(ctx, `
		UPDATE purchase_orders
		SET status = $1, version = $2,
			sent_at = $3, sent_by = $4, send_channel = $5, send_recipient = $6,
			send_message_id = $7, proof_note = $8, proof_document = $9,
			confirmed_at = $10, received_at = $11,
			cancelled_at = $12, cancelled_by = $13, cancel_reason = $14,
			updated_at = NOW()
		WHERE id = $15 AND version = $16
	`, order.Status, order.Version, order.SentAt, order.SentBy, order.SendChannel,
		order.SendRecipient, order.SendMessageID, order.ProofNote, order.ProofDocument,
		order.ConfirmedAt, order.ReceivedAt, order.CancelledAt, order.CancelledBy,
		order.CancelReason, order.ID, expectedVersion)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrStaleVersion
	}
	return nil
}

func insertIdempotency(ctx context.Context, q Database, idem *models.OrderIdempotency) error {
	_, err := q.Exec(ctx, `
		INSERT INTO purchase_order_idempotency (key, operation, order_id, status_after, version_after, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`, idem.Key, idem.Operation, idem.OrderID, idem.StatusAfter, idem.VersionAfter)
	return err
}

func (r *purchaseOrderRepo) GetIdempotency(ctx context.Context, key string) (*models.OrderIdempotency, error) {
	idem := &models.OrderIdempotency{}
	err := r.db.QueryRow(ctx, `
		SELECT key, operation, order_id, status_after, version_after, created_at
		FROM purchase_order_idempotency
		WHERE key = $1
	`, key).Scan(&idem.Key, &idem.Operation, &idem.OrderID, &idem.StatusAfter,
		&idem.VersionAfter, &idem.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return idem, nil
}

func (r *purchaseOrderRepo) SetProofDocument(ctx context.Context, orderID uuid.UUID, objectKey string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE purchase_orders SET proof_document = $1, updated_at = NOW() WHERE id = $2
	`, objectKey, orderID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *purchaseOrderRepo) SetSendMessageID(ctx context.Context, orderID uuid.UUID, messageID string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE purchase_orders SET send_message_id = $1, updated_at = NOW() WHERE id = $2
	`, messageID, orderID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *purchaseOrderRepo) LastUnitPrices(ctx context.Context, materialIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	rows, err := r.db.Query(ctx, `
		SELECT DISTINCT ON (l.material_id) l.material_id, l.unit_price_cents
		FROM purchase_order_lines l
		JOIN purchase_orders o ON o.id = l.order_id
		WHERE l.material_id = ANY($1)
		ORDER BY l.material_id, o.created_at DESC
	`, materialIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	prices := make(map[uuid.UUID]int64)
	for rows.Next() {
		var id uuid.UUID
		var cents int64
		if err := rows.Scan(&id, &cents); err != nil {
			return nil, err
		}
		prices[id] = cents
	}
	return prices, rows.Err()
}

func (r *purchaseOrderRepo) ReceiveOrder(ctx context.Context, bundle *ReceiptBundle) error {
	return inTx(ctx, r.db, func(tx pgx.Tx) error {
		order := bundle.Order
		if err := updateOrderGuarded(ctx, tx, order, bundle.ExpectedVersion); err != nil {
			return err
		}

		lineQuery := `UPDATE purchase_order_lines SET quantity_received = $1 WHERE id = $2 AND order_id = $3`
		for _, line := range order.Lines {
			if _, err := tx.Exec(ctx, lineQuery, line.QuantityReceived, line.ID, order.ID); err != nil {
				return err
			}
		}

		lotQuery := `
			INSERT INTO lots (id, material_id, order_line_id, lot_number, quantity, expiry_date, received_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`
		for _, lot := range bundle.Lots {
			if _, err := tx.Exec(ctx, lotQuery, lot.ID, lot.MaterialID, lot.OrderLineID,
				lot.LotNumber, lot.Quantity, lot.ExpiryDate, lot.ReceivedAt); err != nil {
				return err
			}
		}

		for _, movement := range bundle.Movements {
			if err := insertMovement(ctx, tx, movement); err != nil {
				return err
			}
		}

		receptionQuery := `
			INSERT INTO receptions (id, order_id, line_id, quantity, lot_id, received_at, received_by)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`
		for _, reception := range bundle.Receptions {
			if _, err := tx.Exec(ctx, receptionQuery, reception.ID, reception.OrderID, reception.LineID,
				reception.Quantity, reception.LotID, reception.ReceivedAt, reception.ReceivedBy); err != nil {
				return err
			}
		}

		if bundle.SupplierLate != nil {
			late := 0
			if *bundle.SupplierLate {
				late = 1
			}
			if _, err := tx.Exec(ctx, `
				UPDATE suppliers
				SET deliveries_total = deliveries_total + 1, deliveries_late = deliveries_late + $1, updated_at = NOW()
				WHERE id = $2
			`, late, order.SupplierID); err != nil {
				return err
			}
		}

		if order.Status == models.OrderReceived && order.RequisitionID != nil {
			if err := closeRequisitionIfComplete(ctx, tx, *order.RequisitionID); err != nil {
				return err
			}
		}

		return insertAuditLog(ctx, tx, bundle.Audit)
	})
}

// closeRequisitionIfComplete closes the requisition once no linked order
// remains unreceived; it runs after this order's row is updated, inside the
// same transaction.
func closeRequisitionIfComplete(ctx context.Context, q Database, requisitionID uuid.UUID) error {
	var pending int
	err := q.QueryRow(ctx, `
		SELECT COUNT(*) FROM purchase_orders
		WHERE requisition_id = $1 AND status <> 'RECEIVED'
	`, requisitionID).Scan(&pending)
	if err != nil {
		return err
	}
	if pending > 0 {
		return nil
	}
	_, err = q.Exec(ctx, `
		UPDATE requisitions SET status = 'CLOSED', closed_at = NOW()
		WHERE id = $1 AND status = 'OPEN'
	`, requisitionID)
	return err
}

func (r *purchaseOrderRepo) TryAdvisoryLock(ctx context.Context, id uuid.UUID, holder string, ttl time.Duration) (*models.LockStatus, error) {
	expiresAt := time.Now().Add(ttl)
	var granted time.Time
	err := r.db.QueryRow(ctx, `
		UPDATE purchase_orders
		SET lock_holder = $2, lock_acquired_at = NOW(), lock_expires_at = $3
		WHERE id = $1 AND (lock_holder IS NULL OR lock_expires_at < NOW() OR lock_holder = $2)
		RETURNING lock_expires_at
	`, id, holder, expiresAt).Scan(&granted)
	if err == nil {
		return &models.LockStatus{Granted: true, Holder: holder, ExpiresAt: granted}, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	// Refused or order missing: report the competing holder.
	var currentHolder *string
	var currentExpiry *time.Time
	err = r.db.QueryRow(ctx, `
		SELECT lock_holder, lock_expires_at FROM purchase_orders WHERE id = $1
	`, id).Scan(&currentHolder, &currentExpiry)
	if err != nil {
		return nil, err
	}

	status := &models.LockStatus{Granted: false}
	if currentHolder != nil {
		status.Holder = *currentHolder
	}
	if currentExpiry != nil {
		status.ExpiresAt = *currentExpiry
	}
	return status, nil
}
