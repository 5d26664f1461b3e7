package patterns

import (
	"reflect"
	"strconv"
	"testing"

	"github.com/kitelang/kite/internal/ast"
	"github.com/kitelang/kite/internal/symbols"
	"github.com/kitelang/kite/internal/token"
	"github.com/kitelang/kite/internal/typesystem"
)

func tok(lexeme string) token.Token {
	return token.New(lexeme, 1, 1)
}

func wild() ast.Pattern {
	return &ast.WildcardPattern{Token: tok("_")}
}

func varP(name string) ast.Pattern {
	return &ast.IdentifierPattern{Token: tok(name), Value: name}
}

func intP(v int64) ast.Pattern {
	lex := strconv.FormatInt(v, 10)
	return &ast.LiteralPattern{Token: tok(lex), Value: &ast.IntegerLiteral{Token: tok(lex), Value: v}}
}

func ctor(name string, elems ...ast.Pattern) ast.Pattern {
	return &ast.ConstructorPattern{
		Token:    tok(name),
		Name:     &ast.Identifier{Token: tok(name), Value: name},
		Elements: elems,
	}
}

func recP(fields map[string]ast.Pattern, order ...string) ast.Pattern {
	rp := &ast.RecordPattern{Token: tok("{")}
	for _, name := range order {
		rp.Fields = append(rp.Fields, &ast.FieldPattern{
			Token:   tok(name),
			Name:    &ast.Identifier{Token: tok(name), Value: name},
			Pattern: fields[name],
		})
	}
	return rp
}

func arm(p ast.Pattern) *ast.MatchArm {
	return &ast.MatchArm{Pattern: p}
}

func guarded(p ast.Pattern) *ast.MatchArm {
	return &ast.MatchArm{Pattern: p, Guard: &ast.BooleanLiteral{Token: tok("true"), Value: true}}
}

// optionTable registers Option<T> = Some(T) | None.
func optionTable(t *testing.T) *symbols.SymbolTable {
	t.Helper()
	table := symbols.NewEmptySymbolTable()
	ok := table.DefineADT(&symbols.ADTInfo{
		Name:   "Option",
		Params: []symbols.ConstrainedParam{{Name: "T"}},
		Variants: []symbols.Variant{
			{Tag: "Some", Payload: []typesystem.Type{typesystem.TVar{Name: "T"}}},
			{Tag: "None"},
		},
	})
	if !ok {
		t.Fatalf("DefineADT(Option) failed")
	}
	return table
}

func optionOf(elem typesystem.Type) typesystem.Type {
	return typesystem.TADT{Name: "Option", Args: []typesystem.Type{elem}}
}

func TestCompileTrees(t *testing.T) {
	tests := []struct {
		name string
		arms []*ast.MatchArm
		want string
	}{
		{
			name: "tags group in first-appearance order",
			arms: []*ast.MatchArm{arm(ctor("Some", varP("x"))), arm(ctor("None"))},
			want: "switch{Some: leaf(0), None: leaf(1)}",
		},
		{
			name: "specific arm before catch-all keeps its branch",
			arms: []*ast.MatchArm{arm(ctor("Some", wild())), arm(wild())},
			want: "switch{Some: leaf(0), _: leaf(1)}",
		},
		{
			name: "catch-all first wins outright",
			arms: []*ast.MatchArm{arm(wild()), arm(ctor("Some", wild()))},
			want: "leaf(0)",
		},
		{
			name: "catch-all between tags fires for unlisted tags",
			arms: []*ast.MatchArm{arm(ctor("Some", varP("x"))), arm(wild()), arm(ctor("None"))},
			want: "switch{Some: leaf(0), None: leaf(1), _: leaf(1)}",
		},
		{
			name: "nested constructors switch on the payload",
			arms: []*ast.MatchArm{
				arm(ctor("Some", ctor("Some", varP("x")))),
				arm(ctor("Some", ctor("None"))),
				arm(ctor("None")),
			},
			want: "switch{Some: switch[0]{Some: leaf(0), None: leaf(1)}, None: leaf(2)}",
		},
		{
			name: "guards chain within a tag group",
			arms: []*ast.MatchArm{
				guarded(ctor("Some", varP("x"))),
				arm(ctor("Some", varP("y"))),
				arm(ctor("None")),
			},
			want: "switch{Some: test(0, leaf(1)), None: leaf(2)}",
		},
		{
			name: "literal arms try in source order",
			arms: []*ast.MatchArm{arm(intP(1)), arm(intP(2)), arm(wild())},
			want: "test(0, test(1, leaf(2)))",
		},
		{
			name: "open match without catch-all traps",
			arms: []*ast.MatchArm{arm(intP(1)), arm(intP(2))},
			want: "test(0, test(1, trap))",
		},
		{
			name: "trailing guard can fail into the trap",
			arms: []*ast.MatchArm{arm(ctor("Some", varP("x"))), guarded(ctor("None"))},
			want: "switch{Some: leaf(0), None: test(1, trap)}",
		},
		{
			name: "refutable record arm becomes a test",
			arms: []*ast.MatchArm{
				arm(recP(map[string]ast.Pattern{"x": intP(1)}, "x")),
				arm(wild()),
			},
			want: "test(0, leaf(1))",
		},
		{
			name: "literal payload inside a constructor",
			arms: []*ast.MatchArm{
				arm(ctor("Some", intP(5))),
				arm(ctor("Some", varP("n"))),
				arm(ctor("None")),
			},
			want: "switch{Some: test(0, leaf(1)), None: leaf(2)}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compile(tt.arms).String()
			if got != tt.want {
				t.Errorf("tree = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestAnalyzeExhaustiveness(t *testing.T) {
	table := optionTable(t)
	scrutinee := optionOf(typesystem.IntType)

	tests := []struct {
		name        string
		arms        []*ast.MatchArm
		wantMissing []string
	}{
		{
			name:        "full tag split is exhaustive",
			arms:        []*ast.MatchArm{arm(ctor("Some", varP("x"))), arm(ctor("None"))},
			wantMissing: nil,
		},
		{
			name:        "missing tag is reported",
			arms:        []*ast.MatchArm{arm(ctor("Some", varP("x")))},
			wantMissing: []string{"None"},
		},
		{
			name:        "wildcard clears the uncovered set",
			arms:        []*ast.MatchArm{arm(ctor("Some", varP("x"))), arm(wild())},
			wantMissing: nil,
		},
		{
			name:        "binding pattern clears like a wildcard",
			arms:        []*ast.MatchArm{arm(varP("o"))},
			wantMissing: nil,
		},
		{
			name:        "guarded arm covers its tag",
			arms:        []*ast.MatchArm{guarded(ctor("Some", varP("x"))), arm(ctor("None"))},
			wantMissing: nil,
		},
		{
			name:        "literal payload leaves the tag uncovered",
			arms:        []*ast.MatchArm{arm(ctor("Some", intP(5))), arm(ctor("None"))},
			wantMissing: []string{"Some"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Analyze(scrutinee, tt.arms, table)
			if !reflect.DeepEqual(res.Missing, tt.wantMissing) {
				t.Errorf("Missing = %v, want %v", res.Missing, tt.wantMissing)
			}
			if len(res.Unreachable) != 0 {
				t.Errorf("Unreachable = %v, want none", res.Unreachable)
			}
		})
	}
}

func TestAnalyzeNestedExhaustiveness(t *testing.T) {
	table := optionTable(t)
	scrutinee := optionOf(optionOf(typesystem.IntType))

	// 1. A nested gap is reported with its tag path
	res := Analyze(scrutinee, []*ast.MatchArm{
		arm(ctor("Some", ctor("Some", varP("x")))),
		arm(ctor("None")),
	}, table)
	if !reflect.DeepEqual(res.Missing, []string{"Some.None"}) {
		t.Errorf("Missing = %v, want [Some.None]", res.Missing)
	}

	// 2. Splitting the payload across arms removes the outer tag
	res = Analyze(scrutinee, []*ast.MatchArm{
		arm(ctor("Some", ctor("Some", varP("x")))),
		arm(ctor("Some", ctor("None"))),
		arm(ctor("None")),
	}, table)
	if res.Missing != nil {
		t.Errorf("Missing = %v, want none", res.Missing)
	}

	// 3. A payload wildcard covers the whole payload
	res = Analyze(scrutinee, []*ast.MatchArm{
		arm(ctor("Some", wild())),
		arm(ctor("None")),
	}, table)
	if res.Missing != nil {
		t.Errorf("Missing = %v, want none", res.Missing)
	}
}

func TestAnalyzeUnreachable(t *testing.T) {
	table := optionTable(t)
	option := optionOf(typesystem.IntType)

	tests := []struct {
		name      string
		scrutinee typesystem.Type
		arms      []*ast.MatchArm
		want      []int
	}{
		{
			name:      "arm after catch-all",
			scrutinee: option,
			arms:      []*ast.MatchArm{arm(wild()), arm(ctor("Some", varP("x")))},
			want:      []int{1},
		},
		{
			name:      "duplicate tag",
			scrutinee: option,
			arms:      []*ast.MatchArm{arm(ctor("None")), arm(ctor("Some", varP("x"))), arm(ctor("None"))},
			want:      []int{2},
		},
		{
			name:      "catch-all after full split",
			scrutinee: option,
			arms:      []*ast.MatchArm{arm(ctor("Some", varP("x"))), arm(ctor("None")), arm(wild())},
			want:      []int{2},
		},
		{
			name:      "guarded arm does not subsume later arms",
			scrutinee: option,
			arms:      []*ast.MatchArm{guarded(ctor("Some", varP("x"))), arm(ctor("Some", varP("y"))), arm(ctor("None"))},
			want:      nil,
		},
		{
			name:      "guarded duplicate is itself unreachable after a firm cover",
			scrutinee: option,
			arms:      []*ast.MatchArm{arm(ctor("Some", varP("x"))), guarded(ctor("Some", varP("y"))), arm(ctor("None"))},
			want:      []int{1},
		},
		{
			name:      "duplicate literal in an open match",
			scrutinee: typesystem.IntType,
			arms:      []*ast.MatchArm{arm(intP(5)), arm(intP(5)), arm(wild())},
			want:      []int{1},
		},
		{
			name:      "distinct literals are all reachable",
			scrutinee: typesystem.IntType,
			arms:      []*ast.MatchArm{arm(intP(5)), arm(intP(6)), arm(wild())},
			want:      nil,
		},
		{
			name:      "catch-all over a fully split nested payload",
			scrutinee: optionOf(optionOf(typesystem.IntType)),
			arms: []*ast.MatchArm{
				arm(ctor("Some", ctor("Some", varP("x")))),
				arm(ctor("Some", ctor("None"))),
				arm(ctor("None")),
				arm(ctor("Some", wild())),
			},
			want: []int{3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Analyze(tt.scrutinee, tt.arms, table)
			if !reflect.DeepEqual(res.Unreachable, tt.want) {
				t.Errorf("Unreachable = %v, want %v", res.Unreachable, tt.want)
			}
		})
	}
}

func TestAnalyzePrunesCompleteSwitchDefault(t *testing.T) {
	table := optionTable(t)
	option := optionOf(typesystem.IntType)

	// 1. With every tag listed, the catch-all's default branch is dead
	res := Analyze(option, []*ast.MatchArm{
		arm(ctor("Some", varP("x"))),
		arm(ctor("None")),
		arm(wild()),
	}, table)
	if got := res.Tree.String(); got != "switch{Some: leaf(0), None: leaf(1)}" {
		t.Errorf("tree = %s, want pruned switch", got)
	}

	// 2. With a tag missing, the catch-all keeps its default branch
	res = Analyze(option, []*ast.MatchArm{
		arm(ctor("Some", varP("x"))),
		arm(wild()),
	}, table)
	if got := res.Tree.String(); got != "switch{Some: leaf(0), _: leaf(1)}" {
		t.Errorf("tree = %s, want default branch", got)
	}

	// 3. Nested switches prune with their payload's tag set
	res = Analyze(optionOf(option), []*ast.MatchArm{
		arm(ctor("Some", ctor("Some", varP("x")))),
		arm(ctor("Some", ctor("None"))),
		arm(ctor("None")),
		arm(ctor("Some", wild())),
	}, table)
	want := "switch{Some: switch[0]{Some: leaf(0), None: leaf(1)}, None: leaf(2)}"
	if got := res.Tree.String(); got != want {
		t.Errorf("tree = %s, want %s", got, want)
	}
}

func TestUnreachableArmsAbsentFromTree(t *testing.T) {
	table := optionTable(t)
	option := optionOf(typesystem.IntType)

	// For unguarded tag matches the two views agree: an arm the
	// coverage check calls unreachable never gets a node in the tree.
	tests := [][]*ast.MatchArm{
		{arm(wild()), arm(ctor("Some", varP("x")))},
		{arm(ctor("None")), arm(ctor("Some", varP("x"))), arm(ctor("None"))},
		{arm(ctor("Some", varP("x"))), arm(ctor("None")), arm(wild())},
		{arm(ctor("Some", varP("x"))), arm(ctor("None"))},
	}

	for i, arms := range tests {
		res := Analyze(option, arms, table)
		used := UsedArms(res.Tree)
		for _, dead := range res.Unreachable {
			if used.Has(dead) {
				t.Errorf("case %d: unreachable arm %d appears in tree %s", i, dead, res.Tree)
			}
		}
		for a := 0; a < len(arms); a++ {
			if !used.Has(a) && !containsInt(res.Unreachable, a) {
				t.Errorf("case %d: arm %d absent from tree %s but not reported unreachable", i, a, res.Tree)
			}
		}
	}
}

func containsInt(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}

func TestAnalyzeOpenDialectSkipsExhaustiveness(t *testing.T) {
	table := optionTable(t)

	// 1. No catch-all over an Int scrutinee is fine
	res := Analyze(typesystem.IntType, []*ast.MatchArm{arm(intP(1)), arm(intP(2))}, table)
	if res.Missing != nil {
		t.Errorf("Missing = %v, want none for an open match", res.Missing)
	}

	// 2. Record scrutinees are open too
	rec := typesystem.TRecord{Fields: []typesystem.RecordField{{Name: "x", Type: typesystem.IntType}}}
	res = Analyze(rec, []*ast.MatchArm{
		arm(recP(map[string]ast.Pattern{"x": intP(1)}, "x")),
	}, table)
	if res.Missing != nil {
		t.Errorf("Missing = %v, want none for a record match", res.Missing)
	}

	// 3. The compiled tree still traps without a catch-all
	if got := res.Tree.String(); got != "test(0, trap)" {
		t.Errorf("tree = %s, want test(0, trap)", got)
	}
}
