package scope

// Structural bounds for filter traversal. Filters come from request payloads,
// so the walk must terminate even on hostile or malformed input.
const (
	maxInspectDepth = 32
	maxInspectNodes = 4096
)

// ContainsScopingField reports whether the filter already names one of the
// descriptor's scoping fields at any AND/OR depth. Pure and side-effect free.
func ContainsScopingField(desc Descriptor, filter Filter) bool {
	budget := maxInspectNodes
	return inspectNode(desc, filter, 0, &budget)
}

func inspectNode(desc Descriptor, node Filter, depth int, budget *int) bool {
	if depth > maxInspectDepth {
		return false
	}
	for key, value := range node {
		*budget--
		if *budget < 0 {
			return false
		}
		if !isCombinator(key) && isScopingField(desc, key) {
			return true
		}
		if inspectValue(desc, value, depth+1, budget) {
			return true
		}
	}
	return false
}

// inspectValue recurses into nested objects and into the array children of
// logical combinators. Scalars and operator values are leaves.
func inspectValue(desc Descriptor, value interface{}, depth int, budget *int) bool {
	switch v := value.(type) {
	case Filter:
		return inspectNode(desc, v, depth, budget)
	case map[string]interface{}:
		return inspectNode(desc, Filter(v), depth, budget)
	case []Filter:
		for _, child := range v {
			if inspectNode(desc, child, depth, budget) {
				return true
			}
		}
	case []map[string]interface{}:
		for _, child := range v {
			if inspectNode(desc, Filter(child), depth, budget) {
				return true
			}
		}
	case []interface{}:
		for _, child := range v {
			if inspectValue(desc, child, depth, budget) {
				return true
			}
		}
	}
	return false
}

func isScopingField(desc Descriptor, key string) bool {
	for _, f := range desc.ScopingFields {
		if key == f {
			return true
		}
	}
	return false
}
