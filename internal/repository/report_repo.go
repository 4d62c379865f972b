package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/civicworks/infra-report/internal/models"
	"go.uber.org/zap"
)

// ReportRepository handles report document database operations
type ReportRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *sql.DB, logger *zap.Logger) *ReportRepository {
	return &ReportRepository{
		db:     db,
		logger: logger,
	}
}

const reportColumns = `
	id, title, description, category, location, latitude, longitude,
	image_url, reporter_id, reporter_name, current_stage, status, version,
	assigned_city_manager, assigned_infra_manager, assigned_issue_resolver,
	assigned_contractor, resolved_at, work_completion_images,
	created_at, updated_at
`

// Create inserts a new report
func (r *ReportRepository) Create(tx *sql.Tx, report *models.Report) error {
	query := `
		INSERT INTO reports (
			id, title, description, category, location, latitude, longitude,
			image_url, reporter_id, reporter_name, current_stage, status, version,
			assigned_city_manager, assigned_infra_manager, assigned_issue_resolver,
			assigned_contractor, resolved_at, work_completion_images,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	images, err := marshalImages(report.WorkCompletionImages)
	if err != nil {
		return err
	}

	args := []interface{}{
		report.ID,
		report.Title,
		report.Description,
		report.Category,
		report.Location,
		report.Latitude,
		report.Longitude,
		report.ImageURL,
		report.ReporterID,
		report.ReporterName,
		report.CurrentStage.String(),
		report.Status.String(),
		report.Version,
		report.AssignedCityManager,
		report.AssignedInfraManager,
		report.AssignedIssueResolver,
		report.AssignedContractor,
		report.ResolvedAt,
		images,
		report.CreatedAt,
		report.UpdatedAt,
	}

	if tx != nil {
		_, err = tx.Exec(query, args...)
	} else {
		_, err = r.db.Exec(query, args...)
	}

	if err != nil {
		r.logger.Error("Failed to create report", zap.String("report_id", report.ID), zap.Error(err))
		return fmt.Errorf("failed to create report: %w", err)
	}

	return nil
}

// GetByID retrieves a report by id. Returns nil without error when the
// report does not exist.
func (r *ReportRepository) GetByID(id string) (*models.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports WHERE id = ?`

	report, err := scanReport(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return report, nil
}

// ReportFilter narrows a report listing
type ReportFilter struct {
	Status   models.Status
	Stage    models.Stage
	Category string
	Limit    int
	Offset   int
}

// List retrieves reports matching the filter, newest first
func (r *ReportRepository) List(filter ReportFilter) ([]*models.Report, error) {
	var conditions []string
	var args []interface{}

	if filter.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, filter.Status.String())
	}
	if filter.Stage != "" {
		conditions = append(conditions, "current_stage = ?")
		args = append(args, filter.Stage.String())
	}
	if filter.Category != "" {
		conditions = append(conditions, "category = ?")
		args = append(args, filter.Category)
	}

	query := `SELECT ` + reportColumns + ` FROM reports`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC"

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	query += " LIMIT ? OFFSET ?"
	args = append(args, limit, filter.Offset)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	var reports []*models.Report
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		reports = append(reports, report)
	}
	return reports, rows.Err()
}

// UpdateOnTransition persists the stage, status, assignee and resolution
// fields of a report, conditional on the version the caller read. Returns
// false when the version no longer matches, i.e. a concurrent transition won.
func (r *ReportRepository) UpdateOnTransition(tx *sql.Tx, report *models.Report, expectedVersion int64) (bool, error) {
	query := `
		UPDATE reports SET
			current_stage = ?, status = ?, version = version + 1,
			assigned_city_manager = ?, assigned_infra_manager = ?,
			assigned_issue_resolver = ?, assigned_contractor = ?,
			resolved_at = ?, work_completion_images = ?, updated_at = ?
		WHERE id = ? AND version = ?
	`

	images, err := marshalImages(report.WorkCompletionImages)
	if err != nil {
		return false, err
	}

	args := []interface{}{
		report.CurrentStage.String(),
		report.Status.String(),
		report.AssignedCityManager,
		report.AssignedInfraManager,
		report.AssignedIssueResolver,
		report.AssignedContractor,
		report.ResolvedAt,
		images,
		report.UpdatedAt,
		report.ID,
		expectedVersion,
	}

	var result sql.Result
	if tx != nil {
		result, err = tx.Exec(query, args...)
	} else {
		result, err = r.db.Exec(query, args...)
	}
	if err != nil {
		r.logger.Error("Failed to update report", zap.String("report_id", report.ID), zap.Error(err))
		return false, fmt.Errorf("failed to update report: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return false, nil
	}

	report.Version = expectedVersion + 1
	return true, nil
}

// CountByStatus returns the number of reports per status
func (r *ReportRepository) CountByStatus() (map[models.Status]int, error) {
	rows, err := r.db.Query("SELECT status, COUNT(*) FROM reports GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("failed to count reports: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.Status]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[models.Status(status)] = count
	}
	return counts, rows.Err()
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanReport(row rowScanner) (*models.Report, error) {
	var report models.Report
	var latitude, longitude sql.NullFloat64
	var resolvedAt sql.NullTime
	var stage, status, images string

	err := row.Scan(
		&report.ID,
		&report.Title,
		&report.Description,
		&report.Category,
		&report.Location,
		&latitude,
		&longitude,
		&report.ImageURL,
		&report.ReporterID,
		&report.ReporterName,
		&stage,
		&status,
		&report.Version,
		&report.AssignedCityManager,
		&report.AssignedInfraManager,
		&report.AssignedIssueResolver,
		&report.AssignedContractor,
		&resolvedAt,
		&images,
		&report.CreatedAt,
		&report.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	report.CurrentStage = models.Stage(stage)
	report.Status = models.Status(status)
	if latitude.Valid {
		report.Latitude = &latitude.Float64
	}
	if longitude.Valid {
		report.Longitude = &longitude.Float64
	}
	if resolvedAt.Valid {
		t := resolvedAt.Time
		report.ResolvedAt = &t
	}
	if err := json.Unmarshal([]byte(images), &report.WorkCompletionImages); err != nil {
		return nil, fmt.Errorf("failed to parse completion images: %w", err)
	}

	return &report, nil
}

func marshalImages(images []string) (string, error) {
	if images == nil {
		images = []string{}
	}
	data, err := json.Marshal(images)
	if err != nil {
		return "", fmt.Errorf("failed to marshal completion images: %w", err)
	}
	return string(data), nil
}
