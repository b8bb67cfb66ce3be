package service

import (
	"regexp"

	"github.com/google/uuid"

	"tenantadmin-backend/internal/domain"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// fieldErrors collects per-field validation messages so the caller can
// re-render forms field by field.
type fieldErrors map[string][]string

func (f fieldErrors) add(field, msg string) {
	f[field] = append(f[field], msg)
}

func (f fieldErrors) required(field, value string) {
	if value == "" {
		f.add(field, "is required")
	}
}

func (f fieldErrors) email(field, value string) {
	if value != "" && !emailPattern.MatchString(value) {
		f.add(field, "is not a valid email address")
	}
}

func (f fieldErrors) uuid(field, value string) {
	if value != "" {
		if _, err := uuid.Parse(value); err != nil {
			f.add(field, "is not a valid id")
		}
	}
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return domain.Validation("invalid input", f)
}

// requireActor is the unauthenticated check, always first: it runs before
// shape validation and before the policy is consulted.
func requireActor(actor domain.Actor) error {
	if !actor.Authenticated() {
		return domain.Unauthenticated("")
	}
	return nil
}

// validSort resolves a caller-supplied sort field against the entity's
// allow-list. Unknown fields are rejected, not silently ignored.
func validSort(allowed map[string]string, sortBy string) (string, error) {
	if sortBy == "" {
		return "", nil
	}
	col, ok := allowed[sortBy]
	if !ok {
		return "", domain.Validation("unsupported sort field", fieldErrors{"sort_by": {"must be one of the supported fields"}})
	}
	return col, nil
}
