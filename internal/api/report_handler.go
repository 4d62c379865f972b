package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/civicworks/infra-report/internal/export"
	"github.com/civicworks/infra-report/internal/models"
	"github.com/civicworks/infra-report/internal/repository"
	"github.com/civicworks/infra-report/internal/workflow"
	"github.com/civicworks/infra-report/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReportHandler serves the report and workflow endpoints
type ReportHandler struct {
	reportRepo *repository.ReportRepository
	entryRepo  *repository.EntryRepository
	engine     *workflow.Engine
	exporter   *export.Exporter
	logger     *zap.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(
	reportRepo *repository.ReportRepository,
	entryRepo *repository.EntryRepository,
	engine *workflow.Engine,
	exporter *export.Exporter,
	logger *zap.Logger,
) *ReportHandler {
	return &ReportHandler{
		reportRepo: reportRepo,
		entryRepo:  entryRepo,
		engine:     engine,
		exporter:   exporter,
		logger:     logger,
	}
}

// CreateReportRequest is the payload for submitting a new issue
type CreateReportRequest struct {
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description" binding:"required"`
	Category    string   `json:"category" binding:"required"`
	Location    string   `json:"location"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	ImageURL    string   `json:"image_url"`
}

// CreateReport submits a new infrastructure issue. Every report starts at
// the city manager's desk with citizen-visible status "submitted".
func (h *ReportHandler) CreateReport(c *gin.Context) {
	var req CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"kind": "ValidationError", "message": err.Error()})
		return
	}

	if err := utils.ValidateTitle(req.Title); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"kind": "ValidationError", "message": err.Error()})
		return
	}
	if !models.ValidCategories[req.Category] {
		c.JSON(http.StatusBadRequest, gin.H{"kind": "ValidationError", "message": fmt.Sprintf("unknown category: %s", req.Category)})
		return
	}
	if err := utils.ValidateCoordinates(req.Latitude, req.Longitude); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"kind": "ValidationError", "message": err.Error()})
		return
	}
	if err := utils.ValidateImageURL(req.ImageURL); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"kind": "ValidationError", "message": err.Error()})
		return
	}

	actor := CurrentActor(c)
	now := time.Now()
	report := &models.Report{
		ID:           uuid.NewString(),
		Title:        utils.SanitizeString(req.Title),
		Description:  utils.SanitizeString(req.Description),
		Category:     req.Category,
		Location:     utils.SanitizeString(req.Location),
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		ImageURL:     req.ImageURL,
		ReporterID:   actor.ID,
		ReporterName: actor.Name,
		CurrentStage: models.StagePendingCityManager,
		Status:       models.StatusSubmitted,
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := h.reportRepo.Create(nil, report); err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.logger.Info("Report created",
		zap.String("report_id", report.ID),
		zap.String("category", report.Category),
		zap.String("reporter_id", actor.ID))

	c.JSON(http.StatusCreated, report)
}

// GetReport returns one report with its full approval history
func (h *ReportHandler) GetReport(c *gin.Context) {
	id := c.Param("id")

	report, err := h.reportRepo.GetByID(id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if report == nil {
		respondError(c, h.logger, fmt.Errorf("%w: %s", workflow.ErrReportNotFound, id))
		return
	}

	entries, err := h.entryRepo.ListByReportID(id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	report.ApprovalHistory = entries

	c.JSON(http.StatusOK, report)
}

// ListReports returns reports filtered by status, stage and category
func (h *ReportHandler) ListReports(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	reports, err := h.reportRepo.List(repository.ReportFilter{
		Status:   models.Status(c.Query("status")),
		Stage:    models.Stage(c.Query("stage")),
		Category: c.Query("category"),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"reports": reports, "count": len(reports)})
}

// GetHistory returns the approval trail of a report
func (h *ReportHandler) GetHistory(c *gin.Context) {
	id := c.Param("id")

	report, err := h.reportRepo.GetByID(id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if report == nil {
		respondError(c, h.logger, fmt.Errorf("%w: %s", workflow.ErrReportNotFound, id))
		return
	}

	entries, err := h.entryRepo.ListByReportID(id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"history": entries})
}

// TransitionRequest is the payload for a workflow action
type TransitionRequest struct {
	Action           string   `json:"action" binding:"required"`
	Note             string   `json:"note"`
	NextStage        string   `json:"next_stage" binding:"required"`
	CompletionImages []string `json:"completion_images"`
}

// Transition applies one workflow action to a report
func (h *ReportHandler) Transition(c *gin.Context) {
	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"kind": "ValidationError", "message": err.Error()})
		return
	}

	report, err := h.engine.SubmitTransition(c.Param("id"), CurrentActor(c), workflow.TransitionRequest{
		Action:           models.Action(req.Action),
		Note:             req.Note,
		TargetStage:      models.Stage(req.NextStage),
		CompletionImages: req.CompletionImages,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// CloseReport closes a resolved report
func (h *ReportHandler) CloseReport(c *gin.Context) {
	report, err := h.engine.Close(c.Param("id"), CurrentActor(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// Stats returns report counts grouped by status
func (h *ReportHandler) Stats(c *gin.Context) {
	counts, err := h.reportRepo.CountByStatus()
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"by_status": counts})
}

// Export streams an xlsx workbook of all reports and their approval trails
func (h *ReportHandler) Export(c *gin.Context) {
	reports, err := h.reportRepo.List(repository.ReportFilter{Limit: 200})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	for _, report := range reports {
		entries, err := h.entryRepo.ListByReportID(report.ID)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		report.ApprovalHistory = entries
	}

	file, err := h.exporter.BuildWorkbook(reports)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="reports-%s.xlsx"`, time.Now().Format("2006-01-02")))
	if err := file.Write(c.Writer); err != nil {
		h.logger.Error("Failed to stream export", zap.Error(err))
	}
}
