package domain

type Role string

const (
	RoleSuperAdmin Role = "superAdmin"
	RoleAdmin      Role = "admin"
	RoleUser       Role = "user"
	// RoleSystem is reserved for trusted integrations (payment provider
	// sync). It is never accepted from client input.
	RoleSystem Role = "system"
)

// AssignableRoles are the roles a user row may carry.
func (r Role) Assignable() bool {
	return r == RoleSuperAdmin || r == RoleAdmin || r == RoleUser
}

type EntityKind string

const (
	KindCompany      EntityKind = "company"
	KindUser         EntityKind = "user"
	KindReport       EntityKind = "report"
	KindBilling      EntityKind = "billing"
	KindSubscription EntityKind = "subscription"
	KindSession      EntityKind = "session"
	// KindSessionStats is the cross-tenant aggregate view over sessions.
	KindSessionStats EntityKind = "session_stats"
)

// Actor is the authenticated identity an operation runs on behalf of.
// CompanyID is set for role=user actors only.
type Actor struct {
	ID        string  `json:"id"`
	Role      Role    `json:"role"`
	CompanyID *string `json:"company_id,omitempty"`
}

// SystemActor is used by the payment-provider webhook integration.
var SystemActor = Actor{ID: "system", Role: RoleSystem}

// Authenticated reports whether the actor was resolved from a valid session.
func (a Actor) Authenticated() bool {
	return a.ID != "" && (a.Role.Assignable() || a.Role == RoleSystem)
}
