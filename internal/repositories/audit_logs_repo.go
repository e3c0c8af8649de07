package repositories

import (
	"context"
	"fmt"

	"provender/internal/models"
)

type AuditLogsRepository interface {
	Create(ctx context.Context, log *models.AuditLog) error
	List(ctx context.Context, filters *models.AuditLogFilters) ([]*models.AuditLog, error)
}

type auditLogsRepo struct {
	db Database
}

func NewAuditLogsRepo(db Database) AuditLogsRepository {
	return &auditLogsRepo{db: db}
}

func (r *auditLogsRepo) Create(ctx context.Context, log *models.AuditLog) error {
	return insertAuditLog(ctx, r.db, log)
}

// insertAuditLog is shared with the lifecycle transactions so the audit entry
// commits or rolls back together with the transition it records.
func insertAuditLog(ctx context.Context, q Database, log *models.AuditLog) error {
	query := `
		INSERT INTO audit_logs (id, table_name, record_id, action, old_values, new_values, changed_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
	`
	_, err := q.Exec(ctx, query, log.ID, log.TableName, log.RecordID, log.Action,
		log.OldValues, log.NewValues, log.ChangedBy)
	return err
}

func (r *auditLogsRepo) List(ctx context.Context, filters *models.AuditLogFilters) ([]*models.AuditLog, error) {
	query := `
		SELECT id, table_name, record_id, action, old_values, new_values, changed_by, created_at
		FROM audit_logs
		WHERE 1=1
	`
	args := []interface{}{}
	n := 0

	if filters.TableName != nil {
		n++
		query += fmt.Sprintf(" AND table_name = $%d", n)
		args = append(args, *filters.TableName)
	}
	if filters.RecordID != nil {
		n++
		query += fmt.Sprintf(" AND record_id = $%d", n)
		args = append(args, *filters.RecordID)
	}
	if filters.Action != nil {
		n++
		query += fmt.Sprintf(" AND action = $%d", n)
		args = append(args, *filters.Action)
	}
	if filters.StartDate != nil {
		n++
		query += fmt.Sprintf(" AND created_at >= $%d", n)
		args = append(args, *filters.StartDate)
	}
	if filters.EndDate != nil {
		n++
		query += fmt.Sprintf(" AND created_at <= $%d", n)
		args = append(args, *filters.EndDate)
	}

	limit := filters.Limit
	if limit <= 0 || limit > 1000 {
		limit = 50
	}
	n++
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", n)
	args = append(args, limit)
	if filters.Offset > 0 {
		n++
		query += fmt.Sprintf(" OFFSET $%d", n)
		args = append(args, filters.Offset)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*models.AuditLog
	for rows.Next() {
		log := &models.AuditLog{}
		if err := rows.Scan(&log.ID, &log.TableName, &log.RecordID, &log.Action,
			&log.OldValues, &log.NewValues, &log.ChangedBy, &log.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, log)
	}
	return logs, rows.Err()
}
