package scope

import (
	"machtrade/internal/apperr"

	"github.com/google/uuid"
)

// Enforcer is the single choke point for every data access against a catalog
// resource. It is injected into repositories explicitly (no transparent
// client wrapping) so each call site can be unit-tested with a fake scope.
// Pure: no shared mutable state, safe for concurrent use.
type Enforcer struct {
	catalog Catalog
}

func NewEnforcer(catalog Catalog) *Enforcer {
	return &Enforcer{catalog: catalog}
}

// Intercept inspects the filter and either passes it through, rewrites it with
// the scope predicate, or rejects the call before it reaches storage.
//
// Unique-key operations are refused outright: AND-ing a scope predicate onto
// a unique-key filter can retarget a write under composite uniqueness, or turn
// "forbidden" into a false "not found". Callers must fetch unscoped by unique
// key and run EnsureInScope themselves (the escape hatch, see authorize.go).
func (e *Enforcer) Intercept(op Operation, resource Resource, filter Filter, sc EffectiveScope) (Filter, error) {
	desc, err := e.catalog.Resource(resource)
	if err != nil {
		return nil, err
	}

	if op.unique() {
		return nil, apperr.Configuration(
			"%s on %s must not go through the interceptor; fetch by unique key and call EnsureInScope", op, resource)
	}

	// No implicit "list everything": a wholly missing filter is a call-site bug.
	if filter == nil {
		return nil, apperr.Validation("missing filter for %s on %s", op, resource)
	}

	// An explicit narrower request within an authorized set is trusted here —
	// its legality was already checked when the scope was resolved.
	if ContainsScopingField(desc, filter) {
		return filter, nil
	}

	field := desc.ScopingFields[0]
	switch sc.Kind() {
	case KindExactBranch:
		out := filter.Clone()
		out[field] = sc.branchIDs[0]
		return out, nil
	case KindBranchSet:
		out := filter.Clone()
		out[field] = map[string]interface{}{"in": idsToInterface(sc.branchIDs)}
		return out, nil
	case KindUnrestricted:
		return filter, nil
	default: // KindForbidden
		if op == OpWriteMany {
			return nil, apperr.Authorization("operation not permitted")
		}
		return emptyPredicate(field), nil
	}
}

func idsToInterface(ids []uuid.UUID) []interface{} {
	out := make([]interface{}, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}
