package repository

import (
	"database/sql"
	"fmt"

	"github.com/civicworks/infra-report/internal/models"
	"go.uber.org/zap"
)

// EntryRepository handles approval history database operations. Entries are
// append-only; there are no update or delete operations.
type EntryRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewEntryRepository creates a new entry repository
func NewEntryRepository(db *sql.DB, logger *zap.Logger) *EntryRepository {
	return &EntryRepository{
		db:     db,
		logger: logger,
	}
}

// Create appends a new approval entry
func (r *EntryRepository) Create(tx *sql.Tx, entry *models.ApprovalEntry) error {
	query := `
		INSERT INTO approval_entries (
			report_id, stage, approved_by, approver_name, approver_role,
			action, note, timestamp
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	args := []interface{}{
		entry.ReportID,
		entry.Stage.String(),
		entry.ApprovedBy,
		entry.ApproverName,
		string(entry.ApproverRole),
		string(entry.Action),
		entry.Note,
		entry.Timestamp,
	}

	var result sql.Result
	var err error
	if tx != nil {
		result, err = tx.Exec(query, args...)
	} else {
		result, err = r.db.Exec(query, args...)
	}
	if err != nil {
		r.logger.Error("Failed to create approval entry",
			zap.String("report_id", entry.ReportID), zap.Error(err))
		return fmt.Errorf("failed to create approval entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	entry.ID = id
	return nil
}

// ListByReportID retrieves all approval entries for a report in append order
func (r *EntryRepository) ListByReportID(reportID string) ([]*models.ApprovalEntry, error) {
	query := `
		SELECT id, report_id, stage, approved_by, approver_name, approver_role,
			action, note, timestamp
		FROM approval_entries
		WHERE report_id = ?
		ORDER BY timestamp ASC, id ASC
	`

	rows, err := r.db.Query(query, reportID)
	if err != nil {
		return nil, fmt.Errorf("failed to list approval entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.ApprovalEntry
	for rows.Next() {
		var entry models.ApprovalEntry
		var stage, role, action string
		if err := rows.Scan(
			&entry.ID,
			&entry.ReportID,
			&stage,
			&entry.ApprovedBy,
			&entry.ApproverName,
			&role,
			&action,
			&entry.Note,
			&entry.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("failed to scan approval entry: %w", err)
		}
		entry.Stage = models.Stage(stage)
		entry.ApproverRole = models.Role(role)
		entry.Action = models.HistoryAction(action)
		entries = append(entries, &entry)
	}
	return entries, rows.Err()
}
