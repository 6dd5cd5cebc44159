package service

import (
	"machtrade/internal/apperr"
	"machtrade/internal/scope"

	"github.com/google/uuid"
)

// resolveBranchID decides which branch a new record belongs to. Branch users
// default to their home branch; an explicit branch_id must sit inside the
// caller's effective scope.
func resolveBranchID(actor scope.Actor, sc scope.EffectiveScope, requested string) (uuid.UUID, error) {
	if requested != "" {
		id, err := uuid.Parse(requested)
		if err != nil {
			return uuid.Nil, apperr.Validation("invalid branch_id")
		}
		if sc.Kind() != scope.KindUnrestricted && !sc.Contains(id) {
			return uuid.Nil, apperr.Authorization("branch is outside your scope")
		}
		return id, nil
	}
	if actor.HomeBranchID != nil {
		return *actor.HomeBranchID, nil
	}
	return uuid.Nil, apperr.Validation("branch_id is required")
}

// applyBranchFilter narrows a list filter to an explicitly requested branch.
// The interceptor trusts a filter that already names the scoping field, so
// the legality of the narrowing must be established here: the branch has to
// sit inside the caller's effective scope.
func applyBranchFilter(sc scope.EffectiveScope, f scope.Filter, requested string) error {
	if requested == "" {
		return nil
	}
	id, err := uuid.Parse(requested)
	if err != nil {
		return apperr.Validation("invalid branch_id")
	}
	if sc.Kind() != scope.KindUnrestricted && !sc.Contains(id) {
		return apperr.Authorization("branch is outside your scope")
	}
	f["branch_id"] = id
	return nil
}
