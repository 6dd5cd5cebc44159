package scope

// Filter is an opaque predicate tree: field keys map to scalar values,
// operator objects (e.g. {"gte": 5}) or nested objects; the combinator keys
// "AND" / "OR" map to child filters or slices of child filters. The scope
// package only traverses the structure — interpreting operators is the
// repository layer's job.
type Filter map[string]interface{}

const (
	CombinatorAnd = "AND"
	CombinatorOr  = "OR"
)

// Clone returns a shallow copy one level deep — enough for the interceptor to
// inject a scoping key without mutating the caller's filter.
func (f Filter) Clone() Filter {
	cp := make(Filter, len(f)+1)
	for k, v := range f {
		cp[k] = v
	}
	return cp
}

// isCombinator reports whether key is a logical AND/OR node.
func isCombinator(key string) bool {
	return key == CombinatorAnd || key == CombinatorOr
}

// emptyPredicate builds a filter guaranteed to match nothing: an empty IN set
// on the scoping field, which the query translator renders as a false clause.
// Used for forbidden reads so denial never degrades to "no filter".
func emptyPredicate(field string) Filter {
	return Filter{field: map[string]interface{}{"in": []interface{}{}}}
}
