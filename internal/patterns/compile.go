package patterns

import (
	"strconv"
	"strings"

	"github.com/kitelang/kite/internal/ast"
	"github.com/kitelang/kite/internal/symbols"
	"github.com/kitelang/kite/internal/typesystem"
)

// obligation is one pending pattern check at a payload position of
// the scrutinee.
type obligation struct {
	path []int
	pat  ast.Pattern
}

// row is one arm's remaining work during compilation.
type row struct {
	arm   int
	guard ast.Expression
	obs   []obligation
}

// Compile builds the decision tree for an ordered arm list without
// type information: every switch with fall-through rows keeps a
// default branch. Analyze feeds the scrutinee type through and prunes
// defaults that a complete tag listing makes dead.
func Compile(arms []*ast.MatchArm) DecisionNode {
	return compileWith(arms, nil, nil)
}

func compileWith(arms []*ast.MatchArm, scrutinee typesystem.Type, table *symbols.SymbolTable) DecisionNode {
	rows := make([]row, len(arms))
	for i, arm := range arms {
		rows[i] = row{
			arm:   i,
			guard: arm.Guard,
			obs:   []obligation{{pat: arm.Pattern}},
		}
	}
	b := &treeBuilder{table: table}
	env := map[string]typesystem.Type{}
	if scrutinee != nil {
		env[pathKey(nil)] = scrutinee
	}
	return b.build(rows, env)
}

// treeBuilder compiles rows top-down. The tree preserves
// first-match-wins: arms group per discriminant tag with intra-group
// source order intact, and a later catch-all never shadows an
// earlier, more specific arm.
type treeBuilder struct {
	table *symbols.SymbolTable
}

func (b *treeBuilder) build(rows []row, env map[string]typesystem.Type) DecisionNode {
	if len(rows) == 0 {
		return &Leaf{Arm: TrapArm}
	}

	head := rows[0]
	obs := refutables(head.obs)

	if len(obs) == 0 {
		if head.guard == nil {
			return &Leaf{Arm: head.arm}
		}
		return &Test{Cond: head.guard, Arm: head.arm, Fallback: b.build(rows[1:], env)}
	}

	if _, ok := obs[0].pat.(*ast.ConstructorPattern); ok {
		return b.buildSwitch(rows, obs[0].path, env)
	}

	// Literal and refutable record obligations are tried arm-at-a-time.
	return &Test{Cond: head.guard, Arm: head.arm, Fallback: b.build(rows[1:], env)}
}

// buildSwitch discriminates on the constructor tag at path. Every row
// unconstrained at that path flows into each case and the default, so
// source order survives the grouping.
func (b *treeBuilder) buildSwitch(rows []row, path []int, env map[string]typesystem.Type) DecisionNode {
	var tags []string
	seen := map[string]bool{}
	for _, r := range rows {
		if ctor, ok := constructorAt(r, path); ok && !seen[ctor.Name.Value] {
			seen[ctor.Name.Value] = true
			tags = append(tags, ctor.Name.Value)
		}
	}

	info, adtArgs := b.adtAt(env, path)

	sw := &Switch{Path: path}
	for _, tag := range tags {
		var caseRows []row
		for _, r := range rows {
			if nr, ok := specialize(r, path, tag); ok {
				caseRows = append(caseRows, nr)
			}
		}
		sw.Cases = append(sw.Cases, SwitchCase{Tag: tag, Node: b.build(caseRows, caseEnv(env, info, adtArgs, path, tag))})
	}

	if info != nil && coversAllTags(info, seen) {
		return sw
	}
	var defaultRows []row
	for _, r := range rows {
		if _, ok := constructorAt(r, path); !ok {
			defaultRows = append(defaultRows, dropAt(r, path))
		}
	}
	if len(defaultRows) > 0 {
		sw.Default = b.build(defaultRows, env)
	}
	return sw
}

// adtAt resolves the declared ADT of the value at path, when known.
func (b *treeBuilder) adtAt(env map[string]typesystem.Type, path []int) (*symbols.ADTInfo, []typesystem.Type) {
	if b.table == nil {
		return nil, nil
	}
	adt, ok := env[pathKey(path)].(typesystem.TADT)
	if !ok {
		return nil, nil
	}
	info, found := b.table.FindADT(adt.Name)
	if !found {
		return nil, nil
	}
	return info, adt.Args
}

// caseEnv extends env with the payload types the taken tag exposes.
func caseEnv(env map[string]typesystem.Type, info *symbols.ADTInfo, args []typesystem.Type, path []int, tag string) map[string]typesystem.Type {
	if info == nil {
		return env
	}
	v, ok := info.Variant(tag)
	if !ok || len(v.Payload) == 0 {
		return env
	}
	sub, err := info.ParamSubst(args)
	if err != nil {
		return env
	}
	next := make(map[string]typesystem.Type, len(env)+len(v.Payload))
	for k, t := range env {
		next[k] = t
	}
	for i, pt := range v.Payload {
		next[pathKey(childPath(path, i))] = pt.Apply(sub)
	}
	return next
}

func coversAllTags(info *symbols.ADTInfo, seen map[string]bool) bool {
	if len(info.Variants) == 0 {
		return false
	}
	for _, v := range info.Variants {
		if !seen[v.Tag] {
			return false
		}
	}
	return true
}

// constructorAt returns the constructor pattern a row pins at path.
func constructorAt(r row, path []int) (*ast.ConstructorPattern, bool) {
	for _, ob := range r.obs {
		if samePath(ob.path, path) {
			ctor, ok := ob.pat.(*ast.ConstructorPattern)
			return ctor, ok
		}
	}
	return nil, false
}

// specialize narrows a row to the case where the value at path
// carries tag. Rows pinning another tag there drop out; rows
// unconstrained there pass through; a matching constructor trades its
// obligation for one per payload element.
func specialize(r row, path []int, tag string) (row, bool) {
	var out []obligation
	for _, ob := range r.obs {
		if !samePath(ob.path, path) {
			out = append(out, ob)
			continue
		}
		if irrefutable(ob.pat) {
			continue
		}
		ctor, ok := ob.pat.(*ast.ConstructorPattern)
		if !ok || ctor.Name.Value != tag {
			return row{}, false
		}
		for i, el := range ctor.Elements {
			out = append(out, obligation{path: childPath(path, i), pat: el})
		}
	}
	return row{arm: r.arm, guard: r.guard, obs: out}, true
}

// dropAt removes a satisfied irrefutable obligation at path.
func dropAt(r row, path []int) row {
	var out []obligation
	for _, ob := range r.obs {
		if samePath(ob.path, path) && irrefutable(ob.pat) {
			continue
		}
		out = append(out, ob)
	}
	return row{arm: r.arm, guard: r.guard, obs: out}
}

func childPath(path []int, i int) []int {
	child := make([]int, 0, len(path)+1)
	child = append(child, path...)
	return append(child, i)
}

func pathKey(path []int) string {
	if len(path) == 0 {
		return ""
	}
	parts := make([]string, len(path))
	for i, p := range path {
		parts[i] = strconv.Itoa(p)
	}
	return strings.Join(parts, ".")
}

func samePath(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func refutables(obs []obligation) []obligation {
	var out []obligation
	for _, ob := range obs {
		if !irrefutable(ob.pat) {
			out = append(out, ob)
		}
	}
	return out
}

// irrefutable reports whether a pattern matches every value of its
// type. Record patterns are irrefutable when every listed field is.
func irrefutable(p ast.Pattern) bool {
	switch pat := p.(type) {
	case *ast.WildcardPattern, *ast.IdentifierPattern:
		return true
	case *ast.RecordPattern:
		for _, f := range pat.Fields {
			if !irrefutable(f.Pattern) {
				return false
			}
		}
		return true
	}
	return false
}
