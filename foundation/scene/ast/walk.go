// File: walk.go
// Title: Scene AST Traversal
// Description: Depth-first traversal in source order.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16
//
// Change History:
// - 2026-10-16 v0.1.0: Initial traversal

package ast

// Inspect traverses node depth-first in source order, calling fn for each
// node. If fn returns false the children of that node are skipped.
func Inspect(node Node, fn func(Node) bool) {
	if node == nil || !fn(node) {
		return
	}

	switch n := node.(type) {
	case *Program:
		if n.Character != nil {
			Inspect(n.Character, fn)
		}
		for _, cmd := range n.Commands {
			Inspect(cmd, fn)
		}
	case *Character:
		for _, decl := range n.Declarations {
			Inspect(decl, fn)
		}
	case *SayCommand:
		inspectExpr(n.Expr, fn)
	case *AssignCommand:
		inspectExpr(n.Expr, fn)
	case *Expression:
		for _, t := range n.Terms {
			Inspect(t.Term, fn)
		}
	case *Term:
		for _, f := range n.Factors {
			Inspect(f.Factor, fn)
		}
	case *Factor:
		for _, el := range n.Elements {
			Inspect(el.Element, fn)
		}
	case *Group:
		inspectExpr(n.Expr, fn)
	}
}

func inspectExpr(expr *Expression, fn func(Node) bool) {
	if expr != nil {
		Inspect(expr, fn)
	}
}

// Identifiers returns the identifiers referenced by node in source order
func Identifiers(node Node) []*Identifier {
	var ids []*Identifier
	Inspect(node, func(n Node) bool {
		if id, ok := n.(*Identifier); ok {
			ids = append(ids, id)
		}
		return true
	})
	return ids
}
