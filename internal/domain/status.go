package domain

// Status is the document lifecycle state. Transitions are owned exclusively
// by the workflow service; nothing else may write the column.
type Status string

const (
	StatusDraft                    Status = "DRAFT"
	StatusSubmittedByStudent       Status = "SUBMITTED_BY_STUDENT"
	StatusSubmittedByEstablishment Status = "SUBMITTED_BY_ESTABLISHMENT"
	StatusUnderReview              Status = "UNDER_REVIEW"
	StatusValidated                Status = "VALIDATED"
	StatusPublished                Status = "PUBLISHED"
	StatusRejected                 Status = "REJECTED"
	StatusArchived                 Status = "ARCHIVED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusSubmittedByStudent, StatusSubmittedByEstablishment,
		StatusUnderReview, StatusValidated, StatusPublished, StatusRejected, StatusArchived:
		return true
	}
	return false
}

// Terminal reports whether no further transition is defined from s.
func (s Status) Terminal() bool {
	return s == StatusRejected || s == StatusArchived
}

// Reviewable reports whether an establishment may validate or reject a
// document in state s.
func (s Status) Reviewable() bool {
	switch s {
	case StatusSubmittedByStudent, StatusSubmittedByEstablishment, StatusUnderReview:
		return true
	}
	return false
}

type Role string

const (
	RoleStudent       Role = "STUDENT"
	RoleEstablishment Role = "ESTABLISHMENT"
	RolePlatformAdmin Role = "PLATFORM_ADMIN"
)

func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleEstablishment, RolePlatformAdmin:
		return true
	}
	return false
}

type SubmissionSource string

const (
	SubmittedByStudent       SubmissionSource = "STUDENT"
	SubmittedByEstablishment SubmissionSource = "ESTABLISHMENT"
)

// InitialEstablishmentStatus picks the starting state for an establishment
// submission. Drafts win over the legacy flag: a draft is never auto-archived
// even when marked legacy.
func InitialEstablishmentStatus(saveAsDraft, isLegacy bool) Status {
	switch {
	case saveAsDraft:
		return StatusDraft
	case isLegacy:
		return StatusArchived
	default:
		return StatusSubmittedByEstablishment
	}
}
