package verification

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidStatus(t *testing.T) {
	assert.True(t, ValidStatus(StatusUnverified))
	assert.True(t, ValidStatus(StatusVerified))
	assert.True(t, ValidStatus(StatusDiscrepancyFound))
	assert.True(t, ValidStatus(StatusRejected))
	assert.False(t, ValidStatus(Status("pending")))
	assert.False(t, ValidStatus(Status("")))
}

func TestReverifyStatus(t *testing.T) {
	clean := Report{HasDiscrepancy: false}
	assert.Equal(t, StatusVerified, ReverifyStatus(clean))

	flagged := Report{HasDiscrepancy: true}
	assert.Equal(t, StatusDiscrepancyFound, ReverifyStatus(flagged))
}

func TestAdjudicationStatus(t *testing.T) {
	tests := []struct {
		action  Action
		status  Status
		outcome Outcome
		ok      bool
	}{
		{ActionApprove, StatusVerified, OutcomeVerified, true},
		{ActionCorrect, StatusVerified, OutcomeCorrected, true},
		{ActionReject, StatusRejected, OutcomeRejected, true},
		{ActionInitial, "", "", false},
		{ActionReverify, "", "", false},
		{Action("escalate"), "", "", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.action), func(t *testing.T) {
			status, outcome, ok := AdjudicationStatus(tt.action)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.outcome, outcome)
		})
	}
}
