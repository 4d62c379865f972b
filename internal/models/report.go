package models

import "time"

// Report is the workflow-bearing entity: a geotagged infrastructure issue
// submitted by a citizen and routed through the municipal approval chain.
type Report struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Category     string   `json:"category"`
	Location     string   `json:"location,omitempty"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
	ImageURL     string   `json:"image_url,omitempty"`
	ReporterID   string   `json:"reporter_id"`
	ReporterName string   `json:"reporter_name"`

	CurrentStage Stage  `json:"current_stage"`
	Status       Status `json:"status"`
	// Version guards against concurrent transitions; bumped on every
	// successful stage or status update.
	Version int64 `json:"-"`

	AssignedCityManager   string `json:"assigned_city_manager,omitempty"`
	AssignedInfraManager  string `json:"assigned_infra_manager,omitempty"`
	AssignedIssueResolver string `json:"assigned_issue_resolver,omitempty"`
	AssignedContractor    string `json:"assigned_contractor,omitempty"`

	ResolvedAt           *time.Time `json:"resolved_at,omitempty"`
	WorkCompletionImages []string   `json:"work_completion_images,omitempty"`

	ApprovalHistory []*ApprovalEntry `json:"approval_history,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ApprovalEntry is one immutable audit record of a single workflow
// transition. Stage records the stage the report was in when the action was
// taken, not the stage it moved to.
type ApprovalEntry struct {
	ID           int64         `json:"id"`
	ReportID     string        `json:"report_id"`
	Stage        Stage         `json:"stage"`
	ApprovedBy   string        `json:"approved_by"`
	ApproverName string        `json:"approver_name"`
	ApproverRole Role          `json:"approver_role"`
	Action       HistoryAction `json:"action"`
	Note         string        `json:"note"`
	Timestamp    time.Time     `json:"timestamp"`
}

// Actor is the identity-provider-supplied tuple used to authorize a
// transition request. Never persisted by this service.
type Actor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role Role   `json:"role"`
}
