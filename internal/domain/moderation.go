package domain

// ReviewAction is an admin decision on an employer.
type ReviewAction string

const (
	ActionApprove     ReviewAction = "approve"
	ActionReject      ReviewAction = "reject"
	ActionSuspend     ReviewAction = "suspend"
	ActionRequestInfo ReviewAction = "request_info"
)

// Valid reports whether a is a known action.
func (a ReviewAction) Valid() bool {
	switch a {
	case ActionApprove, ActionReject, ActionSuspend, ActionRequestInfo:
		return true
	}
	return false
}

const (
	// MinVerifiedTrustScore is the floor applied when an employer is verified.
	MinVerifiedTrustScore = 70
	// ReportSuspensionThreshold is the report count that suspends an employer.
	ReportSuspensionThreshold = 3
	// ReportSuspensionPenalty is subtracted from the trust score on suspension by reports.
	ReportSuspensionPenalty = 20
	// DefaultRejectionReason is used when an admin rejects without notes.
	DefaultRejectionReason = "Verification rejected by administrator"
)
