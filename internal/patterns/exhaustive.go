package patterns

import (
	"github.com/kitelang/kite/internal/ast"
	"github.com/kitelang/kite/internal/symbols"
	"github.com/kitelang/kite/internal/typesystem"
)

// Analysis is the combined result for one match expression. Missing
// holds uncovered variant tags in declaration order, nested gaps
// qualified through their path (Some.None). Unreachable holds arm
// indices in source order.
type Analysis struct {
	Tree        DecisionNode
	Missing     []string
	Unreachable []int
}

// Analyze compiles the arms and, when the scrutinee is a declared
// ADT, checks the match for exhaustiveness. Unreachable arms are
// reported in both dialects. A guarded arm counts toward coverage
// even though its guard may fail at runtime; only unguarded arms make
// later arms unreachable.
func Analyze(scrutinee typesystem.Type, arms []*ast.MatchArm, table *symbols.SymbolTable) Analysis {
	res := Analysis{Tree: compileWith(arms, scrutinee, table)}

	root := newSpace(scrutinee, table)
	for i, arm := range arms {
		if root.covers(arm.Pattern) {
			res.Unreachable = append(res.Unreachable, i)
			continue
		}
		root.add(arm.Pattern, arm.Guard == nil)
	}
	if root.adt != nil {
		res.Missing = root.missing("")
	}
	return res
}

// cover tracks how a point of the value space has been matched. firm
// means matched by an unguarded arm; any counts guarded arms too.
type cover struct {
	any  bool
	firm bool
}

func (c *cover) mark(firm bool) {
	c.any = true
	if firm {
		c.firm = true
	}
}

func (c cover) get(firm bool) bool {
	if firm {
		return c.firm
	}
	return c.any
}

// space accumulates pattern coverage for one position of the
// scrutinee. ADT positions track per-tag payload spaces; open
// positions track literals; record positions track per-field spaces.
// Children materialize lazily as patterns touch them, which keeps the
// tree finite for self-referential ADTs.
type space struct {
	typ   typesystem.Type
	table *symbols.SymbolTable

	adt *symbols.ADTInfo
	sub typesystem.Subst

	whole  cover
	tags   map[string]*tagSpace
	lits   map[string]*cover
	fields map[string]*space
}

type tagSpace struct {
	hit     cover
	payload []*space
}

func newSpace(t typesystem.Type, table *symbols.SymbolTable) *space {
	sp := &space{typ: t, table: table}
	if table == nil {
		return sp
	}
	if adt, ok := t.(typesystem.TADT); ok {
		if info, found := table.FindADT(adt.Name); found {
			if sub, err := info.ParamSubst(adt.Args); err == nil {
				sp.adt = info
				sp.sub = sub
			}
		}
	}
	return sp
}

func (sp *space) add(p ast.Pattern, firm bool) {
	switch pat := p.(type) {
	case *ast.WildcardPattern, *ast.IdentifierPattern:
		sp.whole.mark(firm)

	case *ast.LiteralPattern:
		if sp.lits == nil {
			sp.lits = make(map[string]*cover)
		}
		c := sp.lits[literalKey(pat)]
		if c == nil {
			c = &cover{}
			sp.lits[literalKey(pat)] = c
		}
		c.mark(firm)

	case *ast.RecordPattern:
		if irrefutable(pat) {
			sp.whole.mark(firm)
			return
		}
		for _, f := range pat.Fields {
			sp.ensureField(f.Name.Value).add(f.Pattern, firm)
		}

	case *ast.ConstructorPattern:
		ts := sp.ensureTag(pat.Name.Value, len(pat.Elements))
		ts.hit.mark(firm)
		for i, el := range pat.Elements {
			if i < len(ts.payload) {
				ts.payload[i].add(el, firm)
			}
		}
	}
}

// covers reports whether the pattern's match set is already fully
// covered by previously added unguarded patterns.
func (sp *space) covers(p ast.Pattern) bool {
	if sp.full(true) {
		return true
	}
	switch pat := p.(type) {
	case *ast.LiteralPattern:
		c := sp.lits[literalKey(pat)]
		return c != nil && c.firm

	case *ast.RecordPattern:
		if irrefutable(pat) {
			return false
		}
		listed := make(map[string]bool, len(pat.Fields))
		for _, f := range pat.Fields {
			listed[f.Name.Value] = true
			fs := sp.fields[f.Name.Value]
			if fs == nil || !fs.covers(f.Pattern) {
				return false
			}
		}
		// Fields this pattern leaves open must be wholly covered.
		for name, fs := range sp.fields {
			if !listed[name] && !fs.full(true) {
				return false
			}
		}
		return true

	case *ast.ConstructorPattern:
		ts := sp.tags[pat.Name.Value]
		if ts == nil {
			return false
		}
		if len(pat.Elements) == 0 {
			return ts.hit.firm
		}
		for i, el := range pat.Elements {
			if i >= len(ts.payload) || !ts.payload[i].covers(el) {
				return false
			}
		}
		return true
	}
	return false
}

// full reports whether every value reaching this position matches
// some prior pattern. With firm set, guarded arms do not count.
func (sp *space) full(firm bool) bool {
	if sp.whole.get(firm) {
		return true
	}
	if sp.adt != nil {
		if len(sp.adt.Variants) == 0 {
			return false
		}
		for _, v := range sp.adt.Variants {
			ts := sp.tags[v.Tag]
			if ts == nil {
				return false
			}
			if len(ts.payload) == 0 {
				if !ts.hit.get(firm) {
					return false
				}
				continue
			}
			for _, ps := range ts.payload {
				if !ps.full(firm) {
					return false
				}
			}
		}
		return true
	}
	if len(sp.fields) > 0 {
		for _, fs := range sp.fields {
			if !fs.full(firm) {
				return false
			}
		}
		return true
	}
	return false
}

// missing lists the uncovered variant tags under this position, in
// declaration order, qualified with the tag path leading here.
func (sp *space) missing(prefix string) []string {
	if sp.full(false) {
		return nil
	}
	if sp.adt == nil {
		if prefix == "" {
			return nil
		}
		return []string{prefix}
	}
	var out []string
	for _, v := range sp.adt.Variants {
		name := v.Tag
		if prefix != "" {
			name = prefix + "." + v.Tag
		}
		ts := sp.tags[v.Tag]
		if ts == nil {
			out = append(out, name)
			continue
		}
		if len(ts.payload) == 0 {
			if !ts.hit.any {
				out = append(out, name)
			}
			continue
		}
		for _, ps := range ts.payload {
			out = append(out, ps.missing(name)...)
		}
	}
	return dedupe(out)
}

func (sp *space) ensureTag(tag string, arity int) *tagSpace {
	if sp.tags == nil {
		sp.tags = make(map[string]*tagSpace)
	}
	if ts, ok := sp.tags[tag]; ok {
		return ts
	}
	ts := &tagSpace{}
	if sp.adt != nil {
		if v, ok := sp.adt.Variant(tag); ok {
			ts.payload = make([]*space, len(v.Payload))
			for i, pt := range v.Payload {
				ts.payload[i] = newSpace(pt.Apply(sp.sub), sp.table)
			}
			sp.tags[tag] = ts
			return ts
		}
	}
	// Unknown tag, typed elsewhere as an error; track it loosely so
	// coverage bookkeeping stays total.
	ts.payload = make([]*space, arity)
	for i := range ts.payload {
		ts.payload[i] = newSpace(nil, sp.table)
	}
	sp.tags[tag] = ts
	return ts
}

func (sp *space) ensureField(name string) *space {
	if sp.fields == nil {
		sp.fields = make(map[string]*space)
	}
	if fs, ok := sp.fields[name]; ok {
		return fs
	}
	var ft typesystem.Type
	if rec, ok := sp.typ.(typesystem.TRecord); ok {
		ft, _ = rec.Field(name)
	}
	fs := newSpace(ft, sp.table)
	sp.fields[name] = fs
	return fs
}

func literalKey(p *ast.LiteralPattern) string {
	return p.Token.Lexeme
}

func dedupe(names []string) []string {
	var out []string
	seen := map[string]bool{}
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}
