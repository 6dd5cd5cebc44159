package scope

import (
	"machtrade/internal/apperr"

	"github.com/google/uuid"
)

// Owned is implemented by every catalog model that carries a branch id.
type Owned interface {
	OwnerBranch() uuid.UUID
}

// IsInScope is the escape-hatch combinator for unique-key operations the
// interceptor cannot cover: fetch unscoped by unique key, then check the
// record against the scope before acting on it.
func IsInScope(rec Owned, sc EffectiveScope) bool {
	return sc.Contains(rec.OwnerBranch())
}

// EnsureInScope returns a uniform not-found error when the record falls
// outside the scope. Absence inside and outside the scope are reported
// identically so existence never leaks across branches.
func EnsureInScope(rec Owned, sc EffectiveScope) error {
	if !IsInScope(rec, sc) {
		return apperr.NotFound("record not found")
	}
	return nil
}
