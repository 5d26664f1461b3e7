package typesystem

import (
	"errors"
	"testing"
)

func TestUnifyBasics(t *testing.T) {
	tests := []struct {
		name    string
		t1      Type
		t2      Type
		wantErr bool
	}{
		{
			name: "identical primitives",
			t1:   IntType,
			t2:   IntType,
		},
		{
			name:    "distinct primitives",
			t1:      IntType,
			t2:      StringType,
			wantErr: true,
		},
		{
			name: "variable binds to primitive",
			t1:   TVar{Name: "a"},
			t2:   IntType,
		},
		{
			name: "array elements unify",
			t1:   TArray{Elem: TVar{Name: "a"}},
			t2:   TArray{Elem: BoolType},
		},
		{
			name:    "array against primitive",
			t1:      TArray{Elem: IntType},
			t2:      IntType,
			wantErr: true,
		},
		{
			name: "same named type with matching args",
			t1:   TADT{Name: "Option", Args: []Type{TVar{Name: "a"}}},
			t2:   TADT{Name: "Option", Args: []Type{IntType}},
		},
		{
			name:    "distinct named types",
			t1:      TADT{Name: "Option", Args: []Type{IntType}},
			t2:      TADT{Name: "Result", Args: []Type{IntType}},
			wantErr: true,
		},
		{
			name:    "occurs check rejects infinite type",
			t1:      TVar{Name: "a"},
			t2:      TADT{Name: "List", Args: []Type{TVar{Name: "a"}}},
			wantErr: true,
		},
		{
			name:    "pure function never unifies with interaction",
			t1:      TFunc{Params: []Type{IntType}, ReturnType: IntType},
			t2:      TFunc{Params: []Type{IntType}, ReturnType: IntType, Interaction: true},
			wantErr: true,
		},
		{
			name: "function parameter and return propagate",
			t1:   TFunc{Params: []Type{TVar{Name: "a"}}, ReturnType: TVar{Name: "a"}},
			t2:   TFunc{Params: []Type{IntType}, ReturnType: IntType},
		},
		{
			name:    "function arity differs",
			t1:      TFunc{Params: []Type{IntType, IntType}, ReturnType: IntType},
			t2:      TFunc{Params: []Type{IntType}, ReturnType: IntType},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unify(tt.t1, tt.t2)
			if (err != nil) != tt.wantErr {
				t.Errorf("Unify() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestUnifyRecordsStructurally(t *testing.T) {
	// Field order must not matter.
	r1 := TRecord{Fields: []RecordField{
		{Name: "x", Type: IntType},
		{Name: "y", Type: TVar{Name: "a"}},
	}}
	r2 := TRecord{Fields: []RecordField{
		{Name: "y", Type: BoolType},
		{Name: "x", Type: IntType},
	}}

	s, err := Unify(r1, r2)
	if err != nil {
		t.Fatalf("Unify() error = %v", err)
	}
	if got := (TVar{Name: "a"}).Apply(s); !Identical(got, BoolType) {
		t.Errorf("a = %s, want Bool", got)
	}

	// A missing field is a mismatch, not width subtyping.
	r3 := TRecord{Fields: []RecordField{{Name: "x", Type: IntType}}}
	if _, err := Unify(r1, r3); err == nil {
		t.Errorf("expected field-set mismatch for %s ~ %s", r1, r3)
	}
}

func TestUnifyUnionMembership(t *testing.T) {
	union := NormalizeUnion([]Type{IntType, StringType})

	// 1. A member unifies into the union.
	if _, err := Unify(IntType, union); err != nil {
		t.Errorf("Int ~ Int|String failed: %v", err)
	}
	if _, err := Unify(union, StringType); err != nil {
		t.Errorf("Int|String ~ String failed: %v", err)
	}

	// 2. A non-member does not.
	if _, err := Unify(BoolType, union); err == nil {
		t.Errorf("Bool ~ Int|String should fail")
	}

	// 3. Normalized unions compare member-wise regardless of input order.
	other := NormalizeUnion([]Type{StringType, IntType})
	if _, err := Unify(union, other); err != nil {
		t.Errorf("union order should not matter: %v", err)
	}
}

func TestUnifyConstructorHeads(t *testing.T) {
	f := TConVar{Name: "F", KindVal: MakeArrow(Star, Star)}

	// F<Int> against Option<Int> binds F to the bare Option head.
	s, err := Unify(
		TApp{Head: f, Args: []Type{IntType}},
		TADT{Name: "Option", Args: []Type{IntType}},
	)
	if err != nil {
		t.Fatalf("Unify() error = %v", err)
	}
	bound := f.Apply(s)
	adt, ok := bound.(TADT)
	if !ok || adt.Name != "Option" || len(adt.Args) != 0 {
		t.Fatalf("F bound to %s, want bare Option head", bound)
	}

	// Applying the substitution to F<String> collapses to Option<String>.
	collapsed := TApp{Head: f, Args: []Type{StringType}}.Apply(s)
	if !Identical(collapsed, TADT{Name: "Option", Args: []Type{StringType}}) {
		t.Errorf("F<String> under F:=Option = %s, want Option<String>", collapsed)
	}

	// Arity mismatch between application and reference fails.
	_, err = Unify(
		TApp{Head: f, Args: []Type{IntType}},
		TADT{Name: "Pair", Args: []Type{IntType, BoolType}},
	)
	if err == nil {
		t.Errorf("F<Int> ~ Pair<Int, Bool> should fail")
	}
}

func TestUnifyReportsTypedErrors(t *testing.T) {
	_, err := Unify(IntType, StringType)
	var ue *UnificationError
	if !errors.As(err, &ue) {
		t.Fatalf("expected *UnificationError, got %T", err)
	}

	f := TConVar{Name: "F", KindVal: MakeArrow(Star, Star)}
	g := TConVar{Name: "G", KindVal: MakeArrow(Star, Star, Star)}
	_, err = Unify(f, g)
	var ke *KindMismatchError
	if !errors.As(err, &ke) {
		t.Fatalf("expected *KindMismatchError, got %T", err)
	}
}

func TestSubstCompose(t *testing.T) {
	s1 := Subst{"a": TADT{Name: "Option", Args: []Type{TVar{Name: "b"}}}}
	s2 := Subst{"b": IntType}

	composed := s1.Compose(s2)
	got := TVar{Name: "a"}.Apply(composed)
	want := TADT{Name: "Option", Args: []Type{IntType}}
	if !Identical(got, want) {
		t.Errorf("a = %s, want %s", got, want)
	}
}
