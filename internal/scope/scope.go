// Package scope implements branch (tenant) isolation: the resource catalog,
// the scope resolver, the predicate inspector, the enforcement interceptor and
// the unique-key escape hatch. Every data access against a catalog resource
// passes through this package before it reaches storage.
package scope

import "github.com/google/uuid"

// Kind enumerates the possible effective scopes of a request.
type Kind int

const (
	// KindForbidden is the zero value on purpose: an uninitialized scope
	// denies everything instead of leaking.
	KindForbidden Kind = iota
	KindExactBranch
	KindBranchSet
	KindUnrestricted
)

func (k Kind) String() string {
	switch k {
	case KindExactBranch:
		return "exact_branch"
	case KindBranchSet:
		return "branch_set"
	case KindUnrestricted:
		return "unrestricted"
	default:
		return "forbidden"
	}
}

// EffectiveScope is the resolver's verdict for one request. Immutable.
type EffectiveScope struct {
	kind      Kind
	branchIDs []uuid.UUID
}

// ExactBranch scopes to a single branch.
func ExactBranch(id uuid.UUID) EffectiveScope {
	return EffectiveScope{kind: KindExactBranch, branchIDs: []uuid.UUID{id}}
}

// BranchSet scopes to a set of branches. A singleton collapses to ExactBranch.
func BranchSet(ids []uuid.UUID) EffectiveScope {
	if len(ids) == 1 {
		return ExactBranch(ids[0])
	}
	cp := make([]uuid.UUID, len(ids))
	copy(cp, ids)
	return EffectiveScope{kind: KindBranchSet, branchIDs: cp}
}

// Unrestricted is reachable only by global actors.
func Unrestricted() EffectiveScope { return EffectiveScope{kind: KindUnrestricted} }

// Forbidden denies everything. For reads it becomes a guaranteed-empty
// predicate downstream; for writes it raises — never "no filter".
func Forbidden() EffectiveScope { return EffectiveScope{} }

func (s EffectiveScope) Kind() Kind { return s.kind }

// BranchIDs returns a copy of the scoped branch ids (nil for unrestricted and
// forbidden scopes).
func (s EffectiveScope) BranchIDs() []uuid.UUID {
	cp := make([]uuid.UUID, len(s.branchIDs))
	copy(cp, s.branchIDs)
	return cp
}

// Contains reports whether id falls inside the scope.
func (s EffectiveScope) Contains(id uuid.UUID) bool {
	switch s.kind {
	case KindUnrestricted:
		return true
	case KindExactBranch, KindBranchSet:
		for _, b := range s.branchIDs {
			if b == id {
				return true
			}
		}
	}
	return false
}
