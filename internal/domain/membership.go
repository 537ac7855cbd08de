package domain

import "time"

// MembershipKind distinguishes organization roles from integration roles.
type MembershipKind string

const (
	MembershipKindOrganization MembershipKind = "ORGANIZATION"
	MembershipKindIntegration  MembershipKind = "INTEGRATION"
)

// AuthorityLevel is the ordered authority a member holds.
type AuthorityLevel string

const (
	AuthorityMember  AuthorityLevel = "MEMBER"
	AuthorityManager AuthorityLevel = "MANAGER"
	AuthorityOwner   AuthorityLevel = "OWNER"
)

// Rank orders authority levels; unknown levels rank below MEMBER.
func (l AuthorityLevel) Rank() int {
	switch l {
	case AuthorityMember:
		return 1
	case AuthorityManager:
		return 2
	case AuthorityOwner:
		return 3
	default:
		return 0
	}
}

// AtLeast reports whether l carries the authority of min or more.
func (l AuthorityLevel) AtLeast(min AuthorityLevel) bool {
	return l.Rank() >= min.Rank()
}

// Membership records a user's authority at an organization or integration.
// SubjectID is the organization or integration id depending on Kind. VenueID
// is nil for organization-wide memberships and always nil for integrations.
//
// For a given (user, organization) there is at most one organization-wide row
// and at most one row per venue; the storage layer enforces this with partial
// unique indexes.
type Membership struct {
	ID        string
	UserID    string
	Kind      MembershipKind
	SubjectID string
	VenueID   *string
	Level     AuthorityLevel
	CreatedAt time.Time
	UpdatedAt time.Time
}
