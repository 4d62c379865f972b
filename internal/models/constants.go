package models

// Stage is the workflow position of a report within the approval chain.
type Stage string

const (
	StagePendingCityManager   Stage = "pending_city_manager"
	StagePendingInfraManager  Stage = "pending_infra_manager"
	StagePendingIssueResolver Stage = "pending_issue_resolver"
	StagePendingContractor    Stage = "pending_contractor"
	StageWorkInProgress       Stage = "work_in_progress"
	StageCompleted            Stage = "completed"
	StageRejected             Stage = "rejected"
)

var validStages = map[Stage]bool{
	StagePendingCityManager:   true,
	StagePendingInfraManager:  true,
	StagePendingIssueResolver: true,
	StagePendingContractor:    true,
	StageWorkInProgress:       true,
	StageCompleted:            true,
	StageRejected:             true,
}

var terminalStages = map[Stage]bool{
	StageCompleted: true,
	StageRejected:  true,
}

// IsValid returns true if the stage belongs to the closed stage set
func (s Stage) IsValid() bool {
	return validStages[s]
}

// IsTerminal returns true if no further transitions are defined from the stage
func (s Stage) IsTerminal() bool {
	return terminalStages[s]
}

// String returns the string representation of the stage
func (s Stage) String() string {
	return string(s)
}

// Status is the coarser citizen-visible lifecycle label. It moves alongside
// the stage but is persisted as its own field.
type Status string

const (
	StatusSubmitted   Status = "submitted"
	StatusUnderReview Status = "under_review"
	StatusInProgress  Status = "in_progress"
	StatusResolved    Status = "resolved"
	StatusClosed      Status = "closed"
	StatusRejected    Status = "rejected"
)

var terminalStatuses = map[Status]bool{
	StatusResolved: true,
	StatusClosed:   true,
	StatusRejected: true,
}

// IsTerminal returns true if the status permits no further stage transitions
func (s Status) IsTerminal() bool {
	return terminalStatuses[s]
}

// String returns the string representation of the status
func (s Status) String() string {
	return string(s)
}

// Role identifies a position in the municipal approval chain. Citizen is the
// base role and may never act on the workflow.
type Role string

const (
	RoleCitizen       Role = "citizen"
	RoleCityManager   Role = "city_manager"
	RoleInfraManager  Role = "infra_manager"
	RoleIssueResolver Role = "issue_resolver"
	RoleContractor    Role = "contractor"
)

var staffRoles = map[Role]bool{
	RoleCityManager:   true,
	RoleInfraManager:  true,
	RoleIssueResolver: true,
	RoleContractor:    true,
}

// IsStaff returns true for roles that participate in the approval chain
func (r Role) IsStaff() bool {
	return staffRoles[r]
}

// String returns the string representation of the role
func (r Role) String() string {
	return string(r)
}

// Action is a workflow action requested by an actor.
type Action string

const (
	ActionApprove   Action = "approve"
	ActionReject    Action = "reject"
	ActionStartWork Action = "start_work"
	ActionComplete  Action = "complete"
)

// HistoryAction is the past-tense form recorded in an approval entry.
type HistoryAction string

const (
	HistoryApproved  HistoryAction = "approved"
	HistoryRejected  HistoryAction = "rejected"
	HistoryForwarded HistoryAction = "forwarded"
	HistoryCompleted HistoryAction = "completed"
)

// HistoryAction maps a requested action to the form stored in the audit trail.
// Handing a report over to field work is recorded as "forwarded".
func (a Action) HistoryAction() HistoryAction {
	switch a {
	case ActionReject:
		return HistoryRejected
	case ActionStartWork:
		return HistoryForwarded
	case ActionComplete:
		return HistoryCompleted
	default:
		return HistoryApproved
	}
}

// Report category constants
const (
	CategoryPothole     = "pothole"
	CategoryDrainage    = "drainage"
	CategoryStreetlight = "streetlight"
	CategoryWater       = "water"
	CategorySanitation  = "sanitation"
	CategoryElectricity = "electricity"
	CategoryOther       = "other"
)

// ValidCategories lists the accepted report categories
var ValidCategories = map[string]bool{
	CategoryPothole:     true,
	CategoryDrainage:    true,
	CategoryStreetlight: true,
	CategoryWater:       true,
	CategorySanitation:  true,
	CategoryElectricity: true,
	CategoryOther:       true,
}
