package postgres

import (
	"errors"
	"strings"

	"github.com/lib/pq"

	apperrors "github.com/dentika/clinic-api/pkg/errors"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
	checkViolation      = "23514"
)

// Longest names first so patient_treatments_patient_id_fkey is not
// split at the patients prefix.
var constraintTables = []string{
	"patient_treatments",
	"outbox_events",
	"appointments",
	"treatments",
	"patients",
	"images",
	"users",
}

// translateWrite maps constraint failures raised by INSERT or UPDATE
// onto domain errors, so callers never parse pq internals. Returns nil
// when err is not a constraint violation.
func translateWrite(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return nil
	}
	switch string(pqErr.Code) {
	case uniqueViolation:
		return apperrors.NewConflict(constraintField(pqErr.Constraint)+" is already taken", err)
	case foreignKeyViolation:
		return apperrors.NewInvalidReference(constraintField(pqErr.Constraint), err)
	case checkViolation:
		// Validation runs before any write reaches here, so a check
		// failure means a caller bypassed it; still report it cleanly.
		return apperrors.NewBadRequest(constraintField(pqErr.Constraint)+" is out of range", err)
	}
	return nil
}

// translateDelete maps the restrict-on-delete case: a 23503 on DELETE
// means other rows still point at this one.
func translateDelete(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return nil
	}
	if string(pqErr.Code) == foreignKeyViolation {
		return apperrors.NewConflict("record is still referenced by "+pqErr.Table, err)
	}
	return nil
}

// constraintField digs the column out of conventional postgres
// constraint names: users_username_key -> username,
// patient_treatments_patient_id_fkey -> patient_id.
func constraintField(constraint string) string {
	name := strings.TrimSuffix(constraint, "_fkey")
	name = strings.TrimSuffix(name, "_key")
	name = strings.TrimSuffix(name, "_check")
	for _, t := range constraintTables {
		if strings.HasPrefix(name, t+"_") {
			return strings.TrimPrefix(name, t+"_")
		}
	}
	return name
}
