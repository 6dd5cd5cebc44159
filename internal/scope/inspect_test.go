package scope

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

var machinesDesc = Descriptor{Resource: ResourceMachines, ScopingFields: []string{"branch_id"}}

func TestContainsScopingField_TopLevel(t *testing.T) {
	f := Filter{"branch_id": uuid.New()}
	assert.True(t, ContainsScopingField(machinesDesc, f))
}

func TestContainsScopingField_Absent(t *testing.T) {
	f := Filter{"status": "in_stock", "serial_number": "MX-100"}
	assert.False(t, ContainsScopingField(machinesDesc, f))
}

func TestContainsScopingField_NestedCombinators(t *testing.T) {
	f := Filter{
		"AND": []Filter{
			{"status": "sold"},
			{"OR": []Filter{
				{"serial_number": "MX-100"},
				{"branch_id": uuid.New()},
			}},
		},
	}
	assert.True(t, ContainsScopingField(machinesDesc, f))
}

func TestContainsScopingField_PlainMapChildren(t *testing.T) {
	// JSON decoding yields map[string]interface{} and []interface{}, not the
	// Filter aliases; the walk must treat both shapes the same.
	f := Filter{
		"OR": []interface{}{
			map[string]interface{}{"status": "sold"},
			map[string]interface{}{"branch_id": uuid.New().String()},
		},
	}
	assert.True(t, ContainsScopingField(machinesDesc, f))
}

func TestContainsScopingField_CombinatorKeyIsNotAField(t *testing.T) {
	desc := Descriptor{Resource: "things", ScopingFields: []string{"AND"}}
	f := Filter{"AND": []Filter{{"status": "x"}}}
	// The combinator key itself never satisfies the policy.
	assert.False(t, ContainsScopingField(desc, f))
}

func TestContainsScopingField_OperatorValuesAreLeaves(t *testing.T) {
	f := Filter{"amount": map[string]interface{}{"gte": 100}}
	assert.False(t, ContainsScopingField(machinesDesc, f))
}

func TestContainsScopingField_DepthBound(t *testing.T) {
	// Build a chain deeper than the traversal allows; the scoping field at the
	// bottom must not be reachable and the walk must still terminate.
	leaf := Filter{"branch_id": uuid.New()}
	node := leaf
	for i := 0; i < maxInspectDepth+4; i++ {
		node = Filter{"AND": []Filter{node}}
	}
	assert.False(t, ContainsScopingField(machinesDesc, node))
}

func TestContainsScopingField_NodeBudget(t *testing.T) {
	children := make([]Filter, 0, maxInspectNodes)
	for i := 0; i < maxInspectNodes; i++ {
		children = append(children, Filter{"status": "x"})
	}
	children = append(children, Filter{"branch_id": uuid.New()})
	f := Filter{"OR": children}
	assert.False(t, ContainsScopingField(machinesDesc, f))
}

func TestClone_IsIndependentOneLevelDeep(t *testing.T) {
	orig := Filter{"status": "sold"}
	cp := orig.Clone()
	cp["branch_id"] = uuid.New()
	assert.NotContains(t, orig, "branch_id")
}
