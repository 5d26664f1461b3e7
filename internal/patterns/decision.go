// Package patterns compiles match arms into decision trees and checks
// matches over declared ADTs for exhaustiveness and unreachable arms.
//
// Two dialects coexist. A match whose scrutinee is a declared ADT is
// closed: the variant tag set is known, exhaustiveness is mandatory
// and the tree discriminates with Switch nodes. A match over anything
// else (records, primitives, unions) is open: totality is the
// programmer's responsibility, a missing catch-all is not an error,
// and the tree is a chain of Test nodes ending in a trap.
package patterns

import (
	"fmt"
	"strings"

	"golang.org/x/tools/container/intsets"

	"github.com/kitelang/kite/internal/ast"
)

// TrapArm is the leaf target reached when no arm matched. Closed
// exhaustive matches never reach it; open matches without a catch-all,
// and matches whose guards all fail, trap at runtime.
const TrapArm = -1

// DecisionNode is one node of a compiled match. Arm indices refer to
// the source-order arm list the tree was compiled from.
type DecisionNode interface {
	decisionNode()
	String() string
}

// Leaf fires an arm.
type Leaf struct {
	Arm int
}

func (l *Leaf) decisionNode() {}

func (l *Leaf) String() string {
	if l.Arm == TrapArm {
		return "trap"
	}
	return fmt.Sprintf("leaf(%d)", l.Arm)
}

// SwitchCase is one discriminant branch of a Switch.
type SwitchCase struct {
	Tag  string
	Node DecisionNode
}

// Switch discriminates on the constructor tag of the value at Path.
// Path is the chain of payload positions from the scrutinee down to
// the tested value; an empty path tests the scrutinee itself. Cases
// keep the order tags first appear in the arms. Default is nil when
// every reaching value carries one of the listed tags.
type Switch struct {
	Path    []int
	Cases   []SwitchCase
	Default DecisionNode
}

func (s *Switch) decisionNode() {}

func (s *Switch) String() string {
	var b strings.Builder
	b.WriteString("switch")
	if len(s.Path) > 0 {
		fmt.Fprintf(&b, "%v", s.Path)
	}
	b.WriteString("{")
	for i, c := range s.Cases {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s: %s", c.Tag, c.Node)
	}
	if s.Default != nil {
		if len(s.Cases) > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "_: %s", s.Default)
	}
	b.WriteString("}")
	return b.String()
}

// Case returns the branch for a tag.
func (s *Switch) Case(tag string) (DecisionNode, bool) {
	for _, c := range s.Cases {
		if c.Tag == tag {
			return c.Node, true
		}
	}
	return nil, false
}

// Test attempts one arm: if the arm's pattern matches and Cond (the
// arm's guard, nil when unguarded) holds, the arm fires, otherwise
// control continues at Fallback. The structural checks are implied by
// the arm's own pattern; Cond carries only the guard.
type Test struct {
	Cond     ast.Expression
	Arm      int
	Fallback DecisionNode
}

func (t *Test) decisionNode() {}

func (t *Test) String() string {
	return fmt.Sprintf("test(%d, %s)", t.Arm, t.Fallback)
}

// UsedArms collects every arm index the tree can fire. The code
// generator emits bodies only for these; an arm the tree never
// reaches needs no block.
func UsedArms(n DecisionNode) *intsets.Sparse {
	used := &intsets.Sparse{}
	collectArms(n, used)
	return used
}

func collectArms(n DecisionNode, used *intsets.Sparse) {
	switch node := n.(type) {
	case *Leaf:
		if node.Arm != TrapArm {
			used.Insert(node.Arm)
		}
	case *Test:
		used.Insert(node.Arm)
		collectArms(node.Fallback, used)
	case *Switch:
		for _, c := range node.Cases {
			collectArms(c.Node, used)
		}
		if node.Default != nil {
			collectArms(node.Default, used)
		}
	}
}
