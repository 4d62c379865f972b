package models

import "testing"

func TestStage_IsTerminal(t *testing.T) {
	tests := []struct {
		stage    Stage
		expected bool
	}{
		{StagePendingCityManager, false},
		{StagePendingInfraManager, false},
		{StagePendingIssueResolver, false},
		{StagePendingContractor, false},
		{StageWorkInProgress, false},
		{StageCompleted, true},
		{StageRejected, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.stage), func(t *testing.T) {
			if got := tt.stage.IsTerminal(); got != tt.expected {
				t.Errorf("Stage.IsTerminal() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestStage_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		stage    Stage
		expected bool
	}{
		{"known stage", StagePendingContractor, true},
		{"terminal stage", StageRejected, true},
		{"unknown stage", Stage("pending_mayor"), false},
		{"empty stage", Stage(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.stage.IsValid(); got != tt.expected {
				t.Errorf("Stage.IsValid() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestStatus_IsTerminal(t *testing.T) {
	tests := []struct {
		status   Status
		expected bool
	}{
		{StatusSubmitted, false},
		{StatusUnderReview, false},
		{StatusInProgress, false},
		{StatusResolved, true},
		{StatusClosed, true},
		{StatusRejected, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.IsTerminal(); got != tt.expected {
				t.Errorf("Status.IsTerminal() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestRole_IsStaff(t *testing.T) {
	tests := []struct {
		role     Role
		expected bool
	}{
		{RoleCitizen, false},
		{RoleCityManager, true},
		{RoleInfraManager, true},
		{RoleIssueResolver, true},
		{RoleContractor, true},
		{Role(""), false},
		{Role("admin"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			if got := tt.role.IsStaff(); got != tt.expected {
				t.Errorf("Role.IsStaff() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestAction_HistoryAction(t *testing.T) {
	tests := []struct {
		action   Action
		expected HistoryAction
	}{
		{ActionApprove, HistoryApproved},
		{ActionReject, HistoryRejected},
		{ActionStartWork, HistoryForwarded},
		{ActionComplete, HistoryCompleted},
	}

	for _, tt := range tests {
		t.Run(string(tt.action), func(t *testing.T) {
			if got := tt.action.HistoryAction(); got != tt.expected {
				t.Errorf("Action.HistoryAction() = %v, want %v", got, tt.expected)
			}
		})
	}
}
