package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"provender/internal/apperrors"
	"provender/internal/models"
	"provender/internal/repositories"
)

var allowedPostponeDurations = map[time.Duration]bool{
	4 * time.Hour:  true,
	12 * time.Hour: true,
	24 * time.Hour: true,
}

type AlertService interface {
	// Raise returns the existing active alert when one matches the same
	// (type, entity) pair; duplicates are a non-error.
	Raise(ctx context.Context, alertType models.AlertType, severity models.AlertSeverity, entityType, entityID, message string, metadata models.JSONB) (*models.Alert, error)
	Acknowledge(ctx context.Context, alertID, actorID uuid.UUID) error
	Postpone(ctx context.Context, materialID uuid.UUID, duration time.Duration, reason string, actorID uuid.UUID) error
	ListActive(ctx context.Context, limit, offset int) ([]*models.Alert, error)
	Counts(ctx context.Context) (*models.AlertCounts, error)
	// Scan sweeps tracked materials and suppliers, raising stockout,
	// rupture-imminent, below-safety and supplier-degraded alerts. Dedup makes
	// repeated scans idempotent.
	Scan(ctx context.Context) error
}

type alertService struct {
	alertsRepo        repositories.AlertsRepository
	materialRepo      repositories.MaterialRepository
	supplierRepo      repositories.SupplierRepository
	auditRepo         repositories.AuditLogsRepository
	ledger            StockLedgerService
	postponeWeeklyCap int
}

func NewAlertService(
	alertsRepo repositories.AlertsRepository,
	materialRepo repositories.MaterialRepository,
	supplierRepo repositories.SupplierRepository,
	auditRepo repositories.AuditLogsRepository,
	ledger StockLedgerService,
	postponeWeeklyCap int,
) AlertService {
	return &alertService{
		alertsRepo:        alertsRepo,
		materialRepo:      materialRepo,
		supplierRepo:      supplierRepo,
		auditRepo:         auditRepo,
		ledger:            ledger,
		postponeWeeklyCap: postponeWeeklyCap,
	}
}

func (s *alertService) Raise(ctx context.Context, alertType models.AlertType, severity models.AlertSeverity, entityType, entityID, message string, metadata models.JSONB) (*models.Alert, error) {
	alert := &models.Alert{
		ID:         uuid.New(),
		Type:       alertType,
		Severity:   severity,
		EntityType: entityType,
		EntityID:   entityID,
		Message:    message,
		Metadata:   metadata,
	}

	inserted, err := s.alertsRepo.Insert(ctx, alert)
	if err != nil {
		return nil, err
	}
	if inserted {
		return alert, nil
	}

	// The partial unique index swallowed the insert; hand back the winner.
	existing, err := s.alertsRepo.FindActive(ctx, alertType, entityType, entityID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}
	// Acknowledged between insert and re-read; retry once.
	if _, err := s.alertsRepo.Insert(ctx, alert); err != nil {
		return nil, err
	}
	return alert, nil
}

func (s *alertService) Acknowledge(ctx context.Context, alertID, actorID uuid.UUID) error {
	alert, err := s.alertsRepo.GetByID(ctx, alertID)
	if err != nil {
		return &apperrors.NotFoundError{Entity: "alert", ID: alertID.String()}
	}
	if !alert.Active() {
		return &apperrors.StateConflictError{
			Entity:   "alert",
			ID:       alertID.String(),
			Expected: "active",
			Actual:   "acknowledged",
		}
	}
	return s.alertsRepo.Acknowledge(ctx, alertID, actorID, time.Now())
}

func (s *alertService) Postpone(ctx context.Context, materialID uuid.UUID, duration time.Duration, reason string, actorID uuid.UUID) error {
	if !allowedPostponeDurations[duration] {
		return &apperrors.ValidationError{Field: "duration", Reason: "must be 4h, 12h or 24h"}
	}
	if len(reason) < 10 {
		return &apperrors.ValidationError{Field: "reason", Reason: "must be at least 10 characters"}
	}

	if _, err := s.materialRepo.GetByID(ctx, materialID); err != nil {
		return &apperrors.NotFoundError{Entity: "material", ID: materialID.String()}
	}

	// A true stockout can never be postponed; derive stock from the ledger,
	// not the cached column.
	stocks, err := s.ledger.CurrentStock(ctx, []uuid.UUID{materialID})
	if err != nil {
		return err
	}
	if stocks[materialID] <= 0 {
		return &apperrors.StateConflictError{
			Entity:   "material",
			ID:       materialID.String(),
			Expected: "stock above zero",
			Actual:   "stockout",
		}
	}

	since := time.Now().AddDate(0, 0, -7)
	count, err := s.alertsRepo.CountPostponementsSince(ctx, materialID, since)
	if err != nil {
		return err
	}
	if count >= s.postponeWeeklyCap {
		return &apperrors.RateLimitError{
			Entity: "material",
			ID:     materialID.String(),
			Reason: fmt.Sprintf("%d postponements in the trailing 7 days", count),
		}
	}

	until := time.Now().Add(duration)
	postponement := &models.AlertPostponement{
		ID:         uuid.New(),
		MaterialID: materialID,
		Duration:   duration,
		Reason:     reason,
		ActorID:    actorID,
	}
	audit := &models.AuditLog{
		ID:        uuid.New(),
		TableName: "alerts",
		RecordID:  materialID.String(),
		Action:    models.ActionUpdate,
		NewValues: models.JSONB{"postponed_until": until, "reason": reason},
		ChangedBy: &actorID,
	}
	return s.alertsRepo.StampPostponement(ctx, materialID, until, postponement, audit)
}

func (s *alertService) ListActive(ctx context.Context, limit, offset int) ([]*models.Alert, error) {
	return s.alertsRepo.ListActive(ctx, limit, offset)
}

func (s *alertService) Counts(ctx context.Context) (*models.AlertCounts, error) {
	return s.alertsRepo.Counts(ctx)
}

func (s *alertService) Scan(ctx context.Context) error {
	snapshots, err := s.ledger.RiskSnapshots(ctx)
	if err != nil {
		return err
	}

	raised := 0
	for _, snapshot := range snapshots {
		id := snapshot.MaterialID.String()

		if snapshot.CurrentStock <= 0 {
			msg := fmt.Sprintf("%s (%s) is out of stock", snapshot.Name, snapshot.Code)
			if _, err := s.Raise(ctx, models.AlertStockOut, models.SeverityCritical,
				models.AlertEntityMaterial, id, msg,
				models.JSONB{"stock": snapshot.CurrentStock}); err != nil {
				return err
			}
			raised++
		}

		if snapshot.CoverageDays != nil && *snapshot.CoverageDays < float64(snapshot.LeadTimeDays) {
			msg := fmt.Sprintf("%s (%s) covers %.1f days, below its %d day lead time",
				snapshot.Name, snapshot.Code, *snapshot.CoverageDays, snapshot.LeadTimeDays)
			if _, err := s.Raise(ctx, models.AlertRuptureImminent, models.SeverityCritical,
				models.AlertEntityMaterial, id, msg,
				models.JSONB{"coverage_days": *snapshot.CoverageDays, "lead_time_days": snapshot.LeadTimeDays}); err != nil {
				return err
			}
			raised++
		}

		if snapshot.RiskState == models.RiskBelowSafety {
			msg := fmt.Sprintf("%s (%s) fell below its safety threshold", snapshot.Name, snapshot.Code)
			if _, err := s.Raise(ctx, models.AlertBelowSafety, models.SeverityWarning,
				models.AlertEntityMaterial, id, msg,
				models.JSONB{"stock": snapshot.CurrentStock, "safety": snapshot.EffectiveSafety}); err != nil {
				return err
			}
			raised++
		}
	}

	if err := s.scanSuppliers(ctx, &raised); err != nil {
		return err
	}

	// Losing one scan's audit entry must not block future scans.
	audit := &models.AuditLog{
		ID:        uuid.New(),
		TableName: "alerts",
		RecordID:  "scan",
		Action:    models.ActionInsert,
		NewValues: models.JSONB{"raised": raised},
	}
	if err := s.auditRepo.Create(ctx, audit); err != nil {
		log.Warn().Err(err).Msg("scan audit write failed")
	}
	return nil
}

func (s *alertService) scanSuppliers(ctx context.Context, raised *int) error {
	suppliers, err := s.supplierRepo.ListActive(ctx)
	if err != nil {
		return err
	}

	for _, supplier := range suppliers {
		computed := ComputeSupplierGrade(supplier.DelayRate())
		if computed == supplier.Grade {
			continue
		}
		if err := s.supplierRepo.UpdateGrade(ctx, supplier.ID, computed); err != nil {
			return err
		}
		if computed.Rank() <= supplier.Grade.Rank() {
			continue // improvement, no alert
		}
		msg := fmt.Sprintf("supplier %s degraded from grade %s to %s", supplier.Name, supplier.Grade, computed)
		if _, err := s.Raise(ctx, models.AlertSupplierDegraded, models.SeverityWarning,
			models.AlertEntitySupplier, supplier.ID.String(), msg,
			models.JSONB{"delay_rate": supplier.DelayRate(), "grade": string(computed)}); err != nil {
			return err
		}
		*raised++
	}
	return nil
}
