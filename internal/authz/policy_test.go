package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tenantadmin-backend/internal/domain"
)

func strptr(s string) *string { return &s }

func TestDecide_SuperAdmin(t *testing.T) {
	actor := domain.Actor{ID: "sa", Role: domain.RoleSuperAdmin}

	for _, entity := range []domain.EntityKind{
		domain.KindCompany, domain.KindUser, domain.KindReport,
		domain.KindBilling, domain.KindSubscription, domain.KindSession,
	} {
		for _, action := range []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete} {
			d := Decide(actor, nil, action, entity, Target{})
			assert.True(t, d.Allowed, "superAdmin %s %s", action, entity)
		}
	}
}

func TestDecide_System(t *testing.T) {
	actor := domain.SystemActor

	assert.True(t, Decide(actor, nil, ActionCreate, domain.KindBilling, Target{}).Allowed)
	assert.True(t, Decide(actor, nil, ActionUpdate, domain.KindSubscription, Target{}).Allowed)

	d := Decide(actor, nil, ActionDelete, domain.KindBilling, Target{})
	assert.False(t, d.Allowed)
	assert.Equal(t, ReasonInsufficientRole, d.Reason)

	d = Decide(actor, nil, ActionCreate, domain.KindCompany, Target{})
	assert.False(t, d.Allowed)
	assert.Equal(t, ReasonInsufficientRole, d.Reason)
}

func TestDecide_Admin_Company(t *testing.T) {
	actor := domain.Actor{ID: "a1", Role: domain.RoleAdmin}
	adminOf := []string{"c1", "c2"}

	assert.True(t, Decide(actor, adminOf, ActionRead, domain.KindCompany, Target{CompanyID: "c1"}).Allowed)
	assert.True(t, Decide(actor, adminOf, ActionUpdate, domain.KindCompany, Target{CompanyID: "c2"}).Allowed)

	d := Decide(actor, adminOf, ActionCreate, domain.KindCompany, Target{})
	assert.False(t, d.Allowed)
	assert.Equal(t, ReasonInsufficientRole, d.Reason)

	d = Decide(actor, adminOf, ActionDelete, domain.KindCompany, Target{CompanyID: "c1"})
	assert.False(t, d.Allowed)
	assert.Equal(t, ReasonInsufficientRole, d.Reason)

	d = Decide(actor, adminOf, ActionUpdate, domain.KindCompany, Target{CompanyID: "other"})
	assert.False(t, d.Allowed)
	assert.Equal(t, ReasonNotOwner, d.Reason)
}

func TestDecide_Admin_User(t *testing.T) {
	actor := domain.Actor{ID: "a1", Role: domain.RoleAdmin}
	adminOf := []string{"c1"}

	assert.True(t, Decide(actor, adminOf, ActionCreate, domain.KindUser,
		Target{CompanyID: "c1", UserRole: domain.RoleUser}).Allowed)

	// A user row in a company the actor does not administer.
	d := Decide(actor, adminOf, ActionUpdate, domain.KindUser,
		Target{CompanyID: "c9", UserRole: domain.RoleUser})
	assert.False(t, d.Allowed)
	assert.Equal(t, ReasonNotOwner, d.Reason)

	// Peer admins are read-only.
	assert.True(t, Decide(actor, adminOf, ActionRead, domain.KindUser,
		Target{UserRole: domain.RoleAdmin}).Allowed)
	d = Decide(actor, adminOf, ActionUpdate, domain.KindUser,
		Target{UserRole: domain.RoleAdmin})
	assert.False(t, d.Allowed)
	assert.Equal(t, ReasonInsufficientRole, d.Reason)

	d = Decide(actor, adminOf, ActionDelete, domain.KindUser,
		Target{UserRole: domain.RoleSuperAdmin})
	assert.False(t, d.Allowed)
	assert.Equal(t, ReasonInsufficientRole, d.Reason)
}

func TestDecide_Admin_ReportAndBilling(t *testing.T) {
	actor := domain.Actor{ID: "a1", Role: domain.RoleAdmin}
	adminOf := []string{"c1"}

	assert.True(t, Decide(actor, adminOf, ActionCreate, domain.KindReport, Target{CompanyID: "c1"}).Allowed)
	assert.True(t, Decide(actor, adminOf, ActionRead, domain.KindBilling, Target{CompanyID: "c1"}).Allowed)

	// Billing rows are provider-authored.
	d := Decide(actor, adminOf, ActionCreate, domain.KindBilling, Target{CompanyID: "c1"})
	assert.False(t, d.Allowed)
	assert.Equal(t, ReasonInsufficientRole, d.Reason)

	d = Decide(actor, adminOf, ActionRead, domain.KindReport, Target{CompanyID: "c9"})
	assert.False(t, d.Allowed)
	assert.Equal(t, ReasonNotOwner, d.Reason)
}

func TestDecide_User(t *testing.T) {
	actor := domain.Actor{ID: "u1", Role: domain.RoleUser, CompanyID: strptr("c1")}

	// Self-service on the own user row.
	assert.True(t, Decide(actor, nil, ActionRead, domain.KindUser, Target{Self: true}).Allowed)
	assert.True(t, Decide(actor, nil, ActionUpdate, domain.KindUser, Target{Self: true}).Allowed)

	d := Decide(actor, nil, ActionDelete, domain.KindUser, Target{Self: true})
	assert.False(t, d.Allowed)

	// Own company is readable, others are not.
	assert.True(t, Decide(actor, nil, ActionRead, domain.KindCompany, Target{CompanyID: "c1"}).Allowed)
	assert.False(t, Decide(actor, nil, ActionRead, domain.KindCompany, Target{CompanyID: "c2"}).Allowed)
}

func TestDecide_User_ReportGrants(t *testing.T) {
	actor := domain.Actor{ID: "u1", Role: domain.RoleUser, CompanyID: strptr("c1")}

	assert.True(t, Decide(actor, nil, ActionRead, domain.KindReport,
		Target{CompanyID: "c1", HasGrant: true}).Allowed)

	d := Decide(actor, nil, ActionRead, domain.KindReport, Target{CompanyID: "c1"})
	assert.False(t, d.Allowed)
	assert.Equal(t, ReasonMissingGrant, d.Reason)

	d = Decide(actor, nil, ActionRead, domain.KindReport, Target{CompanyID: "c2", HasGrant: true})
	assert.False(t, d.Allowed)
	assert.Equal(t, ReasonNotOwner, d.Reason)

	d = Decide(actor, nil, ActionDelete, domain.KindReport, Target{CompanyID: "c1", HasGrant: true})
	assert.False(t, d.Allowed)
	assert.Equal(t, ReasonInsufficientRole, d.Reason)
}

func TestDecide_User_Session(t *testing.T) {
	actor := domain.Actor{ID: "u1", Role: domain.RoleUser, CompanyID: strptr("c1")}

	assert.True(t, Decide(actor, nil, ActionCreate, domain.KindSession, Target{Self: true}).Allowed)
	assert.False(t, Decide(actor, nil, ActionRead, domain.KindSession, Target{}).Allowed)
}

func TestDecide_Session_OwnerOnlyWrites(t *testing.T) {
	admin := domain.Actor{ID: "a1", Role: domain.RoleAdmin}
	user := domain.Actor{ID: "u1", Role: domain.RoleUser, CompanyID: strptr("c1")}

	// Reads within the administered scope are fine, writes are not.
	assert.True(t, Decide(admin, []string{"c1"}, ActionRead, domain.KindSession, Target{CompanyID: "c1"}).Allowed)

	d := Decide(admin, []string{"c1"}, ActionCreate, domain.KindSession, Target{CompanyID: "c1"})
	assert.False(t, d.Allowed)
	assert.Equal(t, ReasonNotOwner, d.Reason)

	d = Decide(user, nil, ActionUpdate, domain.KindSession, Target{CompanyID: "c1"})
	assert.False(t, d.Allowed)
	assert.Equal(t, ReasonNotOwner, d.Reason)

	assert.True(t, Decide(user, nil, ActionUpdate, domain.KindSession, Target{Self: true}).Allowed)
}

func TestDecide_SessionStats(t *testing.T) {
	assert.True(t, Decide(domain.Actor{ID: "s", Role: domain.RoleSuperAdmin}, nil,
		ActionRead, domain.KindSessionStats, Target{}).Allowed)

	for _, actor := range []domain.Actor{
		{ID: "a1", Role: domain.RoleAdmin},
		{ID: "u1", Role: domain.RoleUser, CompanyID: strptr("c1")},
		domain.SystemActor,
	} {
		d := Decide(actor, []string{"c1"}, ActionRead, domain.KindSessionStats, Target{})
		assert.False(t, d.Allowed, "%s must not read session stats", actor.Role)
		assert.Equal(t, ReasonInsufficientRole, d.Reason)
	}
}

func TestDecide_Admin_UnownedListReads(t *testing.T) {
	admin := domain.Actor{ID: "a1", Role: domain.RoleAdmin}
	adminOf := []string{"c1"}

	// Reads with no owning company gate scoped lists; the row scope does
	// the tenant filtering.
	assert.True(t, Decide(admin, adminOf, ActionRead, domain.KindBilling, Target{}).Allowed)
	assert.True(t, Decide(admin, adminOf, ActionRead, domain.KindSubscription, Target{}).Allowed)

	d := Decide(admin, adminOf, ActionUpdate, domain.KindBilling, Target{})
	assert.False(t, d.Allowed)
	assert.Equal(t, ReasonNotOwner, d.Reason)

	user := domain.Actor{ID: "u1", Role: domain.RoleUser, CompanyID: strptr("c1")}
	d = Decide(user, nil, ActionRead, domain.KindBilling, Target{})
	assert.False(t, d.Allowed)
	assert.Equal(t, ReasonInsufficientRole, d.Reason)
}

func TestCountsView(t *testing.T) {
	assert.True(t, CountsView(domain.Actor{ID: "u1", Role: domain.RoleUser}))
	assert.False(t, CountsView(domain.Actor{ID: "a1", Role: domain.RoleAdmin}))
	assert.False(t, CountsView(domain.Actor{ID: "s", Role: domain.RoleSuperAdmin}))
}

func TestScopeFor(t *testing.T) {
	sa := ScopeFor(domain.Actor{ID: "s", Role: domain.RoleSuperAdmin}, nil)
	assert.True(t, sa.All)

	admin := ScopeFor(domain.Actor{ID: "a", Role: domain.RoleAdmin}, []string{"c1", "c2"})
	assert.False(t, admin.All)
	assert.Equal(t, []string{"c1", "c2"}, admin.CompanyIDs)

	// An admin with no companies sees nothing.
	assert.True(t, ScopeFor(domain.Actor{ID: "a", Role: domain.RoleAdmin}, nil).Empty())

	user := ScopeFor(domain.Actor{ID: "u1", Role: domain.RoleUser, CompanyID: strptr("c1")}, nil)
	assert.Equal(t, []string{"c1"}, user.CompanyIDs)
	assert.Equal(t, "u1", user.GranteeUserID)
}
