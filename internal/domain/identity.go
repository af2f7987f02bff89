package domain

import "time"

// Role is the platform role carried by the session token.
type Role string

const (
	RoleEmployer  Role = "employer"
	RoleAdmin     Role = "admin"
	RoleJobSeeker Role = "job_seeker"
	RoleMentor    Role = "mentor"
)

// Valid reports whether r is a known platform role.
func (r Role) Valid() bool {
	switch r {
	case RoleEmployer, RoleAdmin, RoleJobSeeker, RoleMentor:
		return true
	}
	return false
}

// Identity is the authenticated caller resolved from the bearer token.
type Identity struct {
	UserID int64
	Role   Role
}

// Trigger names what caused a verification status change.
type Trigger string

const (
	TriggerSubmission Trigger = "submission"
	TriggerReview     Trigger = "review"
	TriggerReport     Trigger = "report"
)

// VerificationEvent is published whenever an employer's status changes.
type VerificationEvent struct {
	ID             string             `json:"id"`
	EmployerID     int64              `json:"employerId"`
	PreviousStatus VerificationStatus `json:"previousStatus"`
	Status         VerificationStatus `json:"status"`
	TrustScore     int                `json:"trustScore"`
	Trigger        Trigger            `json:"trigger"`
	OccurredAt     time.Time          `json:"occurredAt"`
}
