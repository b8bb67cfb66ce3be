package service

import (
	"database/sql"
	"errors"

	"tenantadmin-backend/internal/authz"
	"tenantadmin-backend/internal/domain"
	"tenantadmin-backend/internal/logger"
	"tenantadmin-backend/internal/repository/postgres"
)

// storeErr maps raw Entity Store errors to the structured taxonomy before
// they cross the procedure boundary. Unrecognized failures are logged with
// full context and returned redacted.
func storeErr(err error, resource string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return domain.NotFoundErr(resource)
	case errors.Is(err, postgres.ErrDuplicateKey):
		return domain.Conflict(resource + " conflicts with an existing row")
	default:
		var de *domain.Error
		if errors.As(err, &de) {
			return de
		}
		logger.Error("storage failure", "resource", resource, "error", err)
		return domain.Internal()
	}
}

// denyErr turns a policy denial into the structured unauthorized error.
func denyErr(d authz.Decision) error {
	if d.Allowed {
		return nil
	}
	switch d.Reason {
	case authz.ReasonNotOwner:
		return domain.Unauthorized(d.Reason, "target belongs to a company outside your scope")
	case authz.ReasonMissingGrant:
		return domain.Unauthorized(d.Reason, "no view grant for this report")
	default:
		return domain.Unauthorized(authz.ReasonInsufficientRole, "role does not permit this operation")
	}
}
