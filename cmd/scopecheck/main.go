// cmd/scopecheck/main.go — static check for the escape-hatch contract.
//
// Unique-key repository reads (FindByID, FindBySerial) bypass branch scoping
// on purpose; every service function using one must pair it with
// scope.EnsureInScope before acting on the record. This tool parses
// internal/service and reports functions that fetch by unique key but never
// check scope, so a missing guard fails CI instead of leaking data.
//
// Usage: go run ./cmd/scopecheck [dir]
package main

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
)

// uniqueReads are the repository methods that skip the enforcer.
var uniqueReads = map[string]bool{
	"FindByID":     true,
	"FindBySerial": true,
	"FindByUsername": true,
}

// guards are the calls that satisfy the contract.
var guards = map[string]bool{
	"EnsureInScope": true,
	"IsInScope":     true,
}

// skipFiles hold functions operating on records that are not branch-scoped
// (users, branches themselves).
var skipFiles = map[string]bool{
	"auth_service.go":   true,
	"branch_service.go": true,
}

func main() {
	dir := "internal/service"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	fset := token.NewFileSet()
	var violations []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		if skipFiles[filepath.Base(path)] {
			return nil
		}

		file, err := parser.ParseFile(fset, path, nil, 0)
		if err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}

		for _, decl := range file.Decls {
			fn, ok := decl.(*ast.FuncDecl)
			if !ok || fn.Body == nil {
				continue
			}
			if v := inspectFunc(fn); v != "" {
				pos := fset.Position(fn.Pos())
				violations = append(violations, fmt.Sprintf("%s:%d: %s calls %s without EnsureInScope/IsInScope", pos.Filename, pos.Line, fn.Name.Name, v))
			}
		}
		return nil
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "scopecheck:", err)
		os.Exit(2)
	}

	if len(violations) > 0 {
		for _, v := range violations {
			fmt.Fprintln(os.Stderr, v)
		}
		os.Exit(1)
	}
	fmt.Println("scopecheck: all unique-key reads are guarded")
}

// inspectFunc returns the name of an unguarded unique read, or "".
func inspectFunc(fn *ast.FuncDecl) string {
	var uniqueRead string
	guarded := false

	ast.Inspect(fn.Body, func(n ast.Node) bool {
		call, ok := n.(*ast.CallExpr)
		if !ok {
			return true
		}
		sel, ok := call.Fun.(*ast.SelectorExpr)
		if !ok {
			return true
		}
		name := sel.Sel.Name
		if uniqueReads[name] {
			uniqueRead = name
		}
		if guards[name] {
			guarded = true
		}
		return true
	})

	if uniqueRead != "" && !guarded {
		return uniqueRead
	}
	return ""
}
