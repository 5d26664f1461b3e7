package export

import (
	"fmt"

	"fortio.org/safecast"

	"github.com/kitelang/kite/internal/typesystem"
)

// TypeExpr tags. The schema stores type trees as tagged nodes rather
// than display strings, so a reader rebuilds structured types without
// a parser.
const (
	tagPrim uint8 = iota + 1
	tagVar
	tagConVar
	tagADT
	tagArray
	tagRecord
	tagFunc
	tagApp
	tagUnion
)

// TypeExpr is one node of a serialized type tree. Which fields are
// meaningful depends on the tag:
//
//	tagPrim, tagVar     Name
//	tagConVar           Name, KindArity
//	tagADT, tagApp      Name, Args (tagApp also KindArity for the head)
//	tagArray            Args[0]
//	tagRecord           Fields and Args, parallel
//	tagFunc             Args (parameters), Ret, Interaction
//	tagUnion            Args (members)
type TypeExpr struct {
	Tag         uint8
	Name        string
	KindArity   uint8
	Args        []TypeExpr
	Ret         *TypeExpr
	Fields      []string
	Interaction bool
}

// EncodeType flattens a type tree into its schema form.
func EncodeType(t typesystem.Type) (TypeExpr, error) {
	switch tt := t.(type) {
	case typesystem.TPrim:
		return TypeExpr{Tag: tagPrim, Name: tt.Name}, nil
	case typesystem.TVar:
		return TypeExpr{Tag: tagVar, Name: tt.Name}, nil
	case typesystem.TConVar:
		arity, err := safecast.Conv[uint8](typesystem.KindArity(tt.Kind()))
		if err != nil {
			return TypeExpr{}, fmt.Errorf("constructor variable %s: %w", tt.Name, err)
		}
		return TypeExpr{Tag: tagConVar, Name: tt.Name, KindArity: arity}, nil
	case typesystem.TADT:
		args, err := encodeTypes(tt.Args)
		if err != nil {
			return TypeExpr{}, err
		}
		return TypeExpr{Tag: tagADT, Name: tt.Name, Args: args}, nil
	case typesystem.TArray:
		elem, err := EncodeType(tt.Elem)
		if err != nil {
			return TypeExpr{}, err
		}
		return TypeExpr{Tag: tagArray, Args: []TypeExpr{elem}}, nil
	case typesystem.TRecord:
		e := TypeExpr{Tag: tagRecord}
		for _, f := range tt.Fields {
			ft, err := EncodeType(f.Type)
			if err != nil {
				return TypeExpr{}, err
			}
			e.Fields = append(e.Fields, f.Name)
			e.Args = append(e.Args, ft)
		}
		return e, nil
	case typesystem.TFunc:
		params, err := encodeTypes(tt.Params)
		if err != nil {
			return TypeExpr{}, err
		}
		ret, err := EncodeType(tt.ReturnType)
		if err != nil {
			return TypeExpr{}, err
		}
		return TypeExpr{Tag: tagFunc, Args: params, Ret: &ret, Interaction: tt.Interaction}, nil
	case typesystem.TApp:
		arity, err := safecast.Conv[uint8](typesystem.KindArity(tt.Head.Kind()))
		if err != nil {
			return TypeExpr{}, fmt.Errorf("constructor variable %s: %w", tt.Head.Name, err)
		}
		args, err := encodeTypes(tt.Args)
		if err != nil {
			return TypeExpr{}, err
		}
		return TypeExpr{Tag: tagApp, Name: tt.Head.Name, KindArity: arity, Args: args}, nil
	case typesystem.TUnion:
		members, err := encodeTypes(tt.Types)
		if err != nil {
			return TypeExpr{}, err
		}
		return TypeExpr{Tag: tagUnion, Args: members}, nil
	case nil:
		return TypeExpr{}, fmt.Errorf("cannot encode a nil type")
	default:
		return TypeExpr{}, fmt.Errorf("cannot encode type %s", t)
	}
}

func encodeTypes(ts []typesystem.Type) ([]TypeExpr, error) {
	if len(ts) == 0 {
		return nil, nil
	}
	out := make([]TypeExpr, len(ts))
	for i, t := range ts {
		e, err := EncodeType(t)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

// DecodeType rebuilds a type tree from its schema form.
func DecodeType(e TypeExpr) (typesystem.Type, error) {
	switch e.Tag {
	case tagPrim:
		return typesystem.TPrim{Name: e.Name}, nil
	case tagVar:
		return typesystem.TVar{Name: e.Name}, nil
	case tagConVar:
		return typesystem.TConVar{Name: e.Name, KindVal: arityKind(e.KindArity)}, nil
	case tagADT:
		args, err := decodeTypes(e.Args)
		if err != nil {
			return nil, err
		}
		return typesystem.TADT{Name: e.Name, Args: args}, nil
	case tagArray:
		if len(e.Args) != 1 {
			return nil, fmt.Errorf("array node carries %d element types", len(e.Args))
		}
		elem, err := DecodeType(e.Args[0])
		if err != nil {
			return nil, err
		}
		return typesystem.TArray{Elem: elem}, nil
	case tagRecord:
		if len(e.Fields) != len(e.Args) {
			return nil, fmt.Errorf("record node has %d names for %d types", len(e.Fields), len(e.Args))
		}
		fields := make([]typesystem.RecordField, len(e.Args))
		for i, a := range e.Args {
			ft, err := DecodeType(a)
			if err != nil {
				return nil, err
			}
			fields[i] = typesystem.RecordField{Name: e.Fields[i], Type: ft}
		}
		return typesystem.TRecord{Fields: fields}, nil
	case tagFunc:
		if e.Ret == nil {
			return nil, fmt.Errorf("function node has no return type")
		}
		params, err := decodeTypes(e.Args)
		if err != nil {
			return nil, err
		}
		ret, err := DecodeType(*e.Ret)
		if err != nil {
			return nil, err
		}
		return typesystem.TFunc{Params: params, ReturnType: ret, Interaction: e.Interaction}, nil
	case tagApp:
		args, err := decodeTypes(e.Args)
		if err != nil {
			return nil, err
		}
		head := typesystem.TConVar{Name: e.Name, KindVal: arityKind(e.KindArity)}
		return typesystem.TApp{Head: head, Args: args}, nil
	case tagUnion:
		members, err := decodeTypes(e.Args)
		if err != nil {
			return nil, err
		}
		return typesystem.NormalizeUnion(members), nil
	default:
		return nil, fmt.Errorf("unknown type tag %d", e.Tag)
	}
}

func decodeTypes(es []TypeExpr) ([]typesystem.Type, error) {
	if len(es) == 0 {
		return nil, nil
	}
	out := make([]typesystem.Type, len(es))
	for i, e := range es {
		t, err := DecodeType(e)
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}

// arityKind rebuilds an n-ary constructor kind from its arity. Every
// position is *, which covers the kinds the surface language can
// declare.
func arityKind(arity uint8) typesystem.Kind {
	if arity == 0 {
		return typesystem.Star
	}
	ks := make([]typesystem.Kind, int(arity)+1)
	for i := range ks {
		ks[i] = typesystem.Star
	}
	return typesystem.MakeArrow(ks...)
}
