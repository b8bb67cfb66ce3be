package authz

import "tenantadmin-backend/internal/domain"

// Scope is the row-visibility predicate for list queries. Repositories
// translate it to WHERE clauses so pagination totals only ever count
// visible rows; it is never applied as a post-fetch filter.
type Scope struct {
	// All grants unrestricted visibility (superAdmin, system).
	All bool
	// CompanyIDs restricts rows to these owning companies.
	CompanyIDs []string
	// GranteeUserID additionally restricts reports to those the user
	// holds a UserReport grant on.
	GranteeUserID string
}

// ScopeFor resolves an actor's visibility. adminOf is the admin-to-company
// link set, resolved by the caller for role=admin.
func ScopeFor(actor domain.Actor, adminOf []string) Scope {
	switch actor.Role {
	case domain.RoleSuperAdmin, domain.RoleSystem:
		return Scope{All: true}
	case domain.RoleAdmin:
		return Scope{CompanyIDs: adminOf}
	case domain.RoleUser:
		sc := Scope{GranteeUserID: actor.ID}
		if actor.CompanyID != nil {
			sc.CompanyIDs = []string{*actor.CompanyID}
		}
		return sc
	}
	return Scope{}
}

// Empty reports whether the scope can never match a row.
func (s Scope) Empty() bool {
	return !s.All && len(s.CompanyIDs) == 0
}
