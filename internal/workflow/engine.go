package workflow

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/civicworks/infra-report/internal/models"
	"github.com/civicworks/infra-report/internal/repository"
	"github.com/civicworks/infra-report/pkg/database"
	"go.uber.org/zap"
)

// TransitionRequest carries one workflow action against a report.
type TransitionRequest struct {
	Action           models.Action
	Note             string
	TargetStage      models.Stage
	CompletionImages []string
}

// Engine owns the report approval workflow: it validates stage transitions
// against the acting user's role, appends an immutable history record for
// every transition, and derives the citizen-visible status from the stage.
type Engine struct {
	db          *database.DB
	reportRepo  *repository.ReportRepository
	entryRepo   *repository.EntryRepository
	strictRoles bool
	now         func() time.Time
	logger      *zap.Logger
}

// NewEngine creates a new workflow engine. With strictRoles enabled, each
// stage may only be acted on by its owning role; disabled, any staff role may
// act (the legacy permissive behavior).
func NewEngine(
	db *database.DB,
	reportRepo *repository.ReportRepository,
	entryRepo *repository.EntryRepository,
	strictRoles bool,
	logger *zap.Logger,
) *Engine {
	return &Engine{
		db:          db,
		reportRepo:  reportRepo,
		entryRepo:   entryRepo,
		strictRoles: strictRoles,
		now:         time.Now,
		logger:      logger,
	}
}

// SubmitTransition validates and applies one workflow action. On success the
// stage change, the derived status and the new history entry are persisted
// atomically; on any error the report is left untouched.
func (e *Engine) SubmitTransition(reportID string, actor models.Actor, req TransitionRequest) (*models.Report, error) {
	report, err := e.reportRepo.GetByID(reportID)
	if err != nil {
		return nil, fmt.Errorf("failed to load report: %w", err)
	}
	if report == nil {
		return nil, fmt.Errorf("%w: %s", ErrReportNotFound, reportID)
	}

	if err := e.validateTransition(report, actor, req); err != nil {
		return nil, err
	}

	fromStage := report.CurrentStage
	expectedVersion := report.Version
	now := e.now()

	report.CurrentStage = req.TargetStage
	report.Status = deriveStatus(report.Status, fromStage, req.TargetStage, req.Action)
	report.UpdatedAt = now
	claimAssignee(report, actor)
	if req.TargetStage == models.StageCompleted {
		report.ResolvedAt = &now
		report.WorkCompletionImages = req.CompletionImages
	}

	entry := &models.ApprovalEntry{
		ReportID:     report.ID,
		Stage:        fromStage,
		ApprovedBy:   actor.ID,
		ApproverName: actor.Name,
		ApproverRole: actor.Role,
		Action:       req.Action.HistoryAction(),
		Note:         req.Note,
		Timestamp:    now,
	}

	err = e.db.WithTransaction(func(tx *sql.Tx) error {
		updated, err := e.reportRepo.UpdateOnTransition(tx, report, expectedVersion)
		if err != nil {
			return err
		}
		if !updated {
			return fmt.Errorf("%w: report %s changed underneath stage %s", ErrTransitionConflict, report.ID, fromStage)
		}
		return e.entryRepo.Create(tx, entry)
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("Report transitioned",
		zap.String("report_id", report.ID),
		zap.String("from_stage", fromStage.String()),
		zap.String("to_stage", report.CurrentStage.String()),
		zap.String("status", report.Status.String()),
		zap.String("actor_id", actor.ID),
		zap.String("actor_role", actor.Role.String()))

	return e.reload(report.ID)
}

// Close marks a resolved report as closed. Closure is status-only: it layers
// on top of the completed stage and does not move the stage graph. Citizens
// may only close their own reports.
func (e *Engine) Close(reportID string, actor models.Actor) (*models.Report, error) {
	report, err := e.reportRepo.GetByID(reportID)
	if err != nil {
		return nil, fmt.Errorf("failed to load report: %w", err)
	}
	if report == nil {
		return nil, fmt.Errorf("%w: %s", ErrReportNotFound, reportID)
	}

	if report.Status != models.StatusResolved {
		return nil, fmt.Errorf("%w: cannot close report with status %s", ErrInvalidTransition, report.Status)
	}
	if !actor.Role.IsStaff() && actor.ID != report.ReporterID {
		return nil, fmt.Errorf("%w: only the reporter or staff may close a report", ErrForbidden)
	}

	expectedVersion := report.Version
	report.Status = models.StatusClosed
	report.UpdatedAt = e.now()

	updated, err := e.reportRepo.UpdateOnTransition(nil, report, expectedVersion)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, fmt.Errorf("%w: report %s changed underneath close", ErrTransitionConflict, report.ID)
	}

	e.logger.Info("Report closed",
		zap.String("report_id", report.ID),
		zap.String("actor_id", actor.ID))

	return e.reload(report.ID)
}

// validateTransition runs the full validate-then-commit check sequence. No
// mutation happens until every check has passed.
func (e *Engine) validateTransition(report *models.Report, actor models.Actor, req TransitionRequest) error {
	if !actor.Role.IsStaff() {
		return fmt.Errorf("%w: role %q may not act on the workflow", ErrForbidden, actor.Role)
	}

	if e.strictRoles {
		owner, ok := OwnerRole(report.CurrentStage)
		if ok && actor.Role != owner {
			return fmt.Errorf("%w: stage %s is owned by role %s", ErrForbidden, report.CurrentStage, owner)
		}
	}

	if report.CurrentStage.IsTerminal() || report.Status.IsTerminal() {
		return fmt.Errorf("%w: report is terminal (stage %s, status %s)",
			ErrInvalidTransition, report.CurrentStage, report.Status)
	}

	if !req.TargetStage.IsValid() {
		return fmt.Errorf("%w: unknown target stage %q", ErrValidation, req.TargetStage)
	}

	target, ok := TargetFor(report.CurrentStage, req.Action)
	if !ok {
		return fmt.Errorf("%w: action %s is not defined from stage %s",
			ErrInvalidTransition, req.Action, report.CurrentStage)
	}
	if target != req.TargetStage {
		return fmt.Errorf("%w: stage %s is not reachable from %s via %s",
			ErrInvalidTransition, req.TargetStage, report.CurrentStage, req.Action)
	}

	if req.Note == "" {
		return fmt.Errorf("%w: a note is required", ErrValidation)
	}

	if req.TargetStage == models.StageCompleted && len(req.CompletionImages) == 0 {
		return fmt.Errorf("%w: completion requires at least one work image", ErrValidation)
	}

	return nil
}

// claimAssignee records the acting user in the assignee slot of their own
// role, first writer wins.
func claimAssignee(report *models.Report, actor models.Actor) {
	switch actor.Role {
	case models.RoleCityManager:
		if report.AssignedCityManager == "" {
			report.AssignedCityManager = actor.ID
		}
	case models.RoleInfraManager:
		if report.AssignedInfraManager == "" {
			report.AssignedInfraManager = actor.ID
		}
	case models.RoleIssueResolver:
		if report.AssignedIssueResolver == "" {
			report.AssignedIssueResolver = actor.ID
		}
	case models.RoleContractor:
		if report.AssignedContractor == "" {
			report.AssignedContractor = actor.ID
		}
	}
}

// reload fetches the report with its full approval history after a commit,
// so callers observe the new stage and the matching history entry together.
func (e *Engine) reload(reportID string) (*models.Report, error) {
	report, err := e.reportRepo.GetByID(reportID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload report: %w", err)
	}
	if report == nil {
		return nil, fmt.Errorf("%w: %s", ErrReportNotFound, reportID)
	}

	entries, err := e.entryRepo.ListByReportID(reportID)
	if err != nil {
		return nil, fmt.Errorf("failed to load approval history: %w", err)
	}
	report.ApprovalHistory = entries
	return report, nil
}
