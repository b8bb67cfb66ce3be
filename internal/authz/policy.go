// Package authz is the single source of truth for role-based access
// decisions. No other package compares roles; callers pass the resolved
// actor and target facts in and act on the returned decision.
package authz

import "tenantadmin-backend/internal/domain"

type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Denial reason codes, surfaced verbatim in structured errors.
const (
	ReasonInsufficientRole = domain.CodeInsufficientRole
	ReasonNotOwner         = domain.CodeNotOwner
	ReasonMissingGrant     = domain.CodeMissingGrant
)

// Target carries the facts about the entity being acted on that the
// policy needs. Lookups (grants, ownership) happen before Decide; Decide
// itself performs no I/O.
type Target struct {
	// CompanyID is the owning tenant of the target entity, empty when the
	// entity has no owner (e.g. a superAdmin user row).
	CompanyID string
	// UserRole is set when the target entity is a user row.
	UserRole domain.Role
	// Self is true when the target is the actor's own row.
	Self bool
	// HasGrant is true when the actor holds a UserReport grant on the
	// target report.
	HasGrant bool
}

type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision            { return Decision{Allowed: true} }
func deny(reason string) Decision { return Decision{Reason: reason} }

// Decide maps (actor, action, entity kind, target) to an allow/deny
// decision. adminOf is the set of company ids the actor administers,
// resolved from the admin-to-company link by the caller; it is only
// consulted for role=admin. First matching rule wins.
func Decide(actor domain.Actor, adminOf []string, action Action, entity domain.EntityKind, t Target) Decision {
	switch actor.Role {
	case domain.RoleSuperAdmin:
		return allow()
	case domain.RoleSystem:
		return decideSystem(action, entity)
	case domain.RoleAdmin:
		return decideAdmin(adminOf, action, entity, t)
	case domain.RoleUser:
		return decideUser(actor, action, entity, t)
	}
	return deny(ReasonInsufficientRole)
}

// decideSystem covers the trusted payment-provider integration: it may
// read and write billing and subscription rows for any company, nothing
// else. Callers log every system-actor write.
func decideSystem(action Action, entity domain.EntityKind) Decision {
	if entity == domain.KindBilling || entity == domain.KindSubscription {
		if action == ActionCreate || action == ActionRead || action == ActionUpdate {
			return allow()
		}
	}
	return deny(ReasonInsufficientRole)
}

func decideAdmin(adminOf []string, action Action, entity domain.EntityKind, t Target) Decision {
	switch entity {
	case domain.KindCompany:
		// Admins never create or delete companies.
		if action == ActionCreate || action == ActionDelete {
			return deny(ReasonInsufficientRole)
		}
		if !administers(adminOf, t.CompanyID) {
			return deny(ReasonNotOwner)
		}
		return allow()
	case domain.KindUser:
		// Other admins and superAdmins are read-only to an admin.
		if t.UserRole == domain.RoleAdmin || t.UserRole == domain.RoleSuperAdmin {
			if action == ActionRead {
				return allow()
			}
			return deny(ReasonInsufficientRole)
		}
		if !administers(adminOf, t.CompanyID) {
			return deny(ReasonNotOwner)
		}
		return allow()
	case domain.KindReport, domain.KindBilling, domain.KindSubscription:
		if entity != domain.KindReport && action == ActionCreate {
			// Billing rows come from the provider sync only.
			return deny(ReasonInsufficientRole)
		}
		// A read with no owning company is a scoped-list gate; the
		// repository scope keeps rows of other tenants invisible.
		if action == ActionRead && t.CompanyID == "" {
			return allow()
		}
		if !administers(adminOf, t.CompanyID) {
			return deny(ReasonNotOwner)
		}
		return allow()
	case domain.KindSession:
		if t.Self {
			return allow()
		}
		if action == ActionRead && administers(adminOf, t.CompanyID) {
			return allow()
		}
		// Sessions start and stop only for oneself.
		if action == ActionCreate || action == ActionUpdate {
			return deny(ReasonNotOwner)
		}
		return deny(ReasonInsufficientRole)
	}
	return deny(ReasonInsufficientRole)
}

func decideUser(actor domain.Actor, action Action, entity domain.EntityKind, t Target) Decision {
	ownCompany := actor.CompanyID != nil && *actor.CompanyID == t.CompanyID
	switch entity {
	case domain.KindUser:
		// Self-service only: read own row, change own password.
		if t.Self && (action == ActionRead || action == ActionUpdate) {
			return allow()
		}
		if action == ActionRead && ownCompany {
			return allow()
		}
		return deny(ReasonInsufficientRole)
	case domain.KindCompany:
		if action == ActionRead && ownCompany {
			return allow()
		}
		return deny(ReasonInsufficientRole)
	case domain.KindReport:
		if !ownCompany {
			if action == ActionRead || action == ActionUpdate {
				return deny(ReasonNotOwner)
			}
			return deny(ReasonInsufficientRole)
		}
		if !t.HasGrant {
			if action == ActionRead || action == ActionUpdate {
				return deny(ReasonMissingGrant)
			}
			return deny(ReasonInsufficientRole)
		}
		// Update here is reachable only through the dedicated access-count
		// increment; general report patches are not exposed to users.
		if action == ActionRead || action == ActionUpdate {
			return allow()
		}
		return deny(ReasonInsufficientRole)
	case domain.KindSession:
		if t.Self {
			return allow()
		}
		if action == ActionCreate || action == ActionUpdate {
			return deny(ReasonNotOwner)
		}
		return deny(ReasonInsufficientRole)
	}
	return deny(ReasonInsufficientRole)
}

// CountsView reports whether a report view by actor increments the access
// counter. Only role=user views count; admin and superAdmin previews are
// free.
func CountsView(actor domain.Actor) bool {
	return actor.Role == domain.RoleUser
}

func administers(adminOf []string, companyID string) bool {
	if companyID == "" {
		return false
	}
	for _, id := range adminOf {
		if id == companyID {
			return true
		}
	}
	return false
}
