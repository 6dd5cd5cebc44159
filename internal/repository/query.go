// Package repository implements storage access on GORM. Every list/search and
// bulk-write method routes its filter through the scope enforcer before any
// SQL is built; unique-key methods are deliberately unscoped and documented as
// such — their callers own the EnsureInScope check.
package repository

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"machtrade/internal/apperr"
	"machtrade/internal/scope"

	"gorm.io/gorm"
)

// Column names are snake_case identifiers; anything else in a filter key is
// rejected before it can reach the SQL string.
var columnRe = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Comparison operators accepted inside a field's operator object.
var sqlOps = map[string]string{
	"eq":   "=",
	"ne":   "<>",
	"gt":   ">",
	"gte":  ">=",
	"lt":   "<",
	"lte":  "<=",
	"like": "LIKE",
}

// ApplyFilter translates an (already intercepted) filter tree into WHERE
// clauses on q. An empty filter applies no predicate — by the time a filter
// reaches this function the enforcer has already injected the scope or
// rejected the call.
func ApplyFilter(q *gorm.DB, f scope.Filter) (*gorm.DB, error) {
	expr, args, err := buildNode(f)
	if err != nil {
		return nil, err
	}
	if expr == "" {
		return q, nil
	}
	return q.Where(expr, args...), nil
}

// scopedQuery is the shared entry point for list/bulk-write methods: intercept
// first, then translate. db may be a transaction handle.
func scopedQuery(db *gorm.DB, enf *scope.Enforcer, op scope.Operation, res scope.Resource, f scope.Filter, sc scope.EffectiveScope) (*gorm.DB, error) {
	rewritten, err := enf.Intercept(op, res, f, sc)
	if err != nil {
		return nil, err
	}
	return ApplyFilter(db, rewritten)
}

// buildNode renders one filter node as a conjunction of its entries.
// Iteration over map keys is sorted so generated SQL is deterministic.
func buildNode(node scope.Filter) (string, []interface{}, error) {
	keys := make([]string, 0, len(node))
	for k := range node {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var parts []string
	var args []interface{}

	for _, key := range keys {
		value := node[key]
		switch key {
		case scope.CombinatorAnd, scope.CombinatorOr:
			expr, childArgs, err := buildCombinator(key, value)
			if err != nil {
				return "", nil, err
			}
			if expr != "" {
				parts = append(parts, expr)
				args = append(args, childArgs...)
			}
		default:
			expr, fieldArgs, err := buildField(key, value)
			if err != nil {
				return "", nil, err
			}
			parts = append(parts, expr)
			args = append(args, fieldArgs...)
		}
	}

	return strings.Join(parts, " AND "), args, nil
}

func buildCombinator(key string, value interface{}) (string, []interface{}, error) {
	children, err := combinatorChildren(value)
	if err != nil {
		return "", nil, apperr.Wrap(apperr.KindValidation, err, "bad %s combinator", key)
	}

	joiner := " AND "
	if key == scope.CombinatorOr {
		joiner = " OR "
	}

	var parts []string
	var args []interface{}
	for _, child := range children {
		expr, childArgs, err := buildNode(child)
		if err != nil {
			return "", nil, err
		}
		if expr == "" {
			continue
		}
		parts = append(parts, "("+expr+")")
		args = append(args, childArgs...)
	}
	if len(parts) == 0 {
		return "", nil, nil
	}
	return "(" + strings.Join(parts, joiner) + ")", args, nil
}

func combinatorChildren(value interface{}) ([]scope.Filter, error) {
	switch v := value.(type) {
	case scope.Filter:
		return []scope.Filter{v}, nil
	case map[string]interface{}:
		return []scope.Filter{scope.Filter(v)}, nil
	case []scope.Filter:
		return v, nil
	case []map[string]interface{}:
		out := make([]scope.Filter, len(v))
		for i, m := range v {
			out[i] = scope.Filter(m)
		}
		return out, nil
	case []interface{}:
		out := make([]scope.Filter, 0, len(v))
		for _, child := range v {
			m, ok := child.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("combinator child is %T, want object", child)
			}
			out = append(out, scope.Filter(m))
		}
		return out, nil
	default:
		return nil, fmt.Errorf("combinator value is %T, want object or array", value)
	}
}

func buildField(column string, value interface{}) (string, []interface{}, error) {
	if !columnRe.MatchString(column) {
		return "", nil, apperr.Validation("invalid filter field %q", column)
	}

	switch v := value.(type) {
	case map[string]interface{}:
		return buildOperators(column, v)
	case []interface{}:
		return buildIn(column, v)
	case nil:
		return column + " IS NULL", nil, nil
	default:
		return column + " = ?", []interface{}{v}, nil
	}
}

func buildOperators(column string, ops map[string]interface{}) (string, []interface{}, error) {
	keys := make([]string, 0, len(ops))
	for k := range ops {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var parts []string
	var args []interface{}
	for _, op := range keys {
		operand := ops[op]
		if op == "in" {
			items, ok := operand.([]interface{})
			if !ok {
				return "", nil, apperr.Validation("filter %s.in wants an array, got %T", column, operand)
			}
			expr, inArgs, err := buildIn(column, items)
			if err != nil {
				return "", nil, err
			}
			parts = append(parts, expr)
			args = append(args, inArgs...)
			continue
		}
		sqlOp, ok := sqlOps[op]
		if !ok {
			return "", nil, apperr.Validation("unknown filter operator %q on %s", op, column)
		}
		parts = append(parts, fmt.Sprintf("%s %s ?", column, sqlOp))
		args = append(args, operand)
	}
	if len(parts) == 0 {
		return "", nil, apperr.Validation("empty operator object on %s", column)
	}
	return strings.Join(parts, " AND "), args, nil
}

// buildIn renders membership. The empty set renders as a constant-false
// clause — this is how the enforcer's guaranteed-empty predicate (forbidden
// reads) reaches SQL without ever widening.
func buildIn(column string, items []interface{}) (string, []interface{}, error) {
	if len(items) == 0 {
		return "1 = 0", nil, nil
	}
	return column + " IN ?", []interface{}{items}, nil
}
