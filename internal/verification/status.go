package verification

// Status is a bill's verification state.
type Status string

const (
	StatusUnverified       Status = "unverified"
	StatusVerified         Status = "verified"
	StatusDiscrepancyFound Status = "discrepancy_found"
	StatusRejected         Status = "rejected"
)

// ValidStatus reports whether s is a known verification status.
func ValidStatus(s Status) bool {
	switch s {
	case StatusUnverified, StatusVerified, StatusDiscrepancyFound, StatusRejected:
		return true
	}
	return false
}

// Outcome is the reviewer decision recorded on an audit entry.
type Outcome string

const (
	OutcomeVerified  Outcome = "verified"
	OutcomeCorrected Outcome = "corrected"
	OutcomeRejected  Outcome = "rejected"
)

// Action identifies which workflow step produced an audit entry.
type Action string

const (
	ActionInitial  Action = "initial"
	ActionReverify Action = "reverify"
	ActionApprove  Action = "approve"
	ActionCorrect  Action = "correct"
	ActionReject   Action = "reject"
)

// ReverifyStatus maps a re-verification report onto the bill's next status.
// discrepancy_found is not terminal; an organiser can re-adjudicate.
func ReverifyStatus(r Report) Status {
	if r.HasDiscrepancy {
		return StatusDiscrepancyFound
	}
	return StatusVerified
}

// AdjudicationStatus maps a reviewer action onto the resulting status.
// Rejection is not locked: re-verification after rejection stays possible,
// so a bill rejected by mistake can be reopened.
func AdjudicationStatus(a Action) (Status, Outcome, bool) {
	switch a {
	case ActionApprove:
		return StatusVerified, OutcomeVerified, true
	case ActionCorrect:
		return StatusVerified, OutcomeCorrected, true
	case ActionReject:
		return StatusRejected, OutcomeRejected, true
	}
	return "", "", false
}
