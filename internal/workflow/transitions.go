package workflow

import "github.com/civicworks/infra-report/internal/models"

// transitionKey identifies one edge of the stage graph.
type transitionKey struct {
	Stage  models.Stage
	Action models.Action
}

// transitionTable is the closed stage graph: one forward edge per stage plus
// a reject edge from every non-terminal stage. No edge returns to an earlier
// stage.
var transitionTable = map[transitionKey]models.Stage{
	{models.StagePendingCityManager, models.ActionApprove}:   models.StagePendingInfraManager,
	{models.StagePendingInfraManager, models.ActionApprove}:  models.StagePendingIssueResolver,
	{models.StagePendingIssueResolver, models.ActionApprove}: models.StagePendingContractor,
	{models.StagePendingContractor, models.ActionStartWork}:  models.StageWorkInProgress,
	{models.StageWorkInProgress, models.ActionComplete}:      models.StageCompleted,

	{models.StagePendingCityManager, models.ActionReject}:   models.StageRejected,
	{models.StagePendingInfraManager, models.ActionReject}:  models.StageRejected,
	{models.StagePendingIssueResolver, models.ActionReject}: models.StageRejected,
	{models.StagePendingContractor, models.ActionReject}:    models.StageRejected,
	{models.StageWorkInProgress, models.ActionReject}:       models.StageRejected,
}

// stageOwner maps each non-terminal stage to the role responsible for acting
// on it. Work in progress stays with the contractor until completion.
var stageOwner = map[models.Stage]models.Role{
	models.StagePendingCityManager:   models.RoleCityManager,
	models.StagePendingInfraManager:  models.RoleInfraManager,
	models.StagePendingIssueResolver: models.RoleIssueResolver,
	models.StagePendingContractor:    models.RoleContractor,
	models.StageWorkInProgress:       models.RoleContractor,
}

// TargetFor returns the stage the given action leads to from the given stage.
func TargetFor(stage models.Stage, action models.Action) (models.Stage, bool) {
	target, ok := transitionTable[transitionKey{stage, action}]
	return target, ok
}

// OwnerRole returns the role that owns the given stage.
func OwnerRole(stage models.Stage) (models.Role, bool) {
	role, ok := stageOwner[stage]
	return role, ok
}

// deriveStatus projects the citizen-visible status after a transition.
// Terminal targets force their status; the first forward approval moves a
// fresh report out of "submitted"; everything else leaves status untouched.
func deriveStatus(current models.Status, fromStage, toStage models.Stage, action models.Action) models.Status {
	switch toStage {
	case models.StageWorkInProgress:
		return models.StatusInProgress
	case models.StageCompleted:
		return models.StatusResolved
	case models.StageRejected:
		return models.StatusRejected
	}
	if fromStage == models.StagePendingCityManager && action == models.ActionApprove {
		return models.StatusUnderReview
	}
	return current
}
