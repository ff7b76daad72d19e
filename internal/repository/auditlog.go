package repository

import (
	"context"
	"fmt"

	"soccerpipe/internal/models"
)

// AuditLogRepository reads the append-only audit_log table populated by
// production-table triggers. The pipeline never writes to it directly; it
// exists purely as a forensic trail and is deliberately not consulted as
// rebuild input.
type AuditLogRepository struct {
	db *Database
}

// RecentForRecord returns the most recent audit entries for a given table/record,
// used by operator tooling to inspect what the pipeline changed.
func (r *AuditLogRepository) RecentForRecord(ctx context.Context, table string, recordID int64, limit int) ([]*models.AuditLog, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, table_name, action, record_id, old_data, new_data, changed_at
		FROM audit_log
		WHERE table_name = $1 AND record_id = $2
		ORDER BY changed_at DESC
		LIMIT $3
	`, table, recordID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch audit log entries: %w", err)
	}
	defer rows.Close()

	var out []*models.AuditLog
	for rows.Next() {
		var a models.AuditLog
		if err := rows.Scan(&a.ID, &a.TableName, &a.Action, &a.RecordID, &a.OldData, &a.NewData, &a.ChangedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit log entry: %w", err)
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}
