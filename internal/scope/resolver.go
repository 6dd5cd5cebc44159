package scope

import "github.com/google/uuid"

// Resolve computes the actor's effective scope for one request.
//
// Resolution order:
//  1. A bypass from a global actor wins: unrestricted view across branches.
//     Branch-bound actors never widen their scope this way — the flag is
//     ignored and resolution continues (strict rule: elevation does not
//     confer bypass eligibility).
//  2. An explicitly requested branch is allowed iff the actor is global or
//     the branch is in the actor's authorized set.
//  3. A global actor with no home branch sees everything.
//  4. Otherwise the actor is scoped to its authorized set; an empty set
//     resolves to Forbidden, never to "no filter".
func Resolve(actor Actor, requestedBranchID *uuid.UUID, bypass BypassScope) EffectiveScope {
	if bool(bypass) && actor.IsGlobal() {
		return Unrestricted()
	}

	if requestedBranchID != nil {
		if actor.IsGlobal() || actor.Authorized(*requestedBranchID) {
			return ExactBranch(*requestedBranchID)
		}
		return Forbidden()
	}

	if actor.IsGlobal() && actor.HomeBranchID == nil {
		return Unrestricted()
	}

	if len(actor.AuthorizedBranchIDs) > 0 {
		return BranchSet(actor.AuthorizedBranchIDs)
	}

	return Forbidden()
}
