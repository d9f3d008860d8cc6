package rbac

// Role names. Keep these stable; they are part of auth/RBAC contracts.
//
// - owner: full control, the only role that may approve a reviewed campaign.
// - operator: runs test dials and records feedback.
// - reviewer: read access to drafts, results, and call logs.
// - admin: platform operations, bypasses role checks.
const (
	RoleOwner    = "owner"
	RoleOperator = "operator"
	RoleReviewer = "reviewer"
	RoleAdmin    = "admin"
)

func IsAdmin(role string) bool { return role == RoleAdmin }
