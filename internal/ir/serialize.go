package ir

import (
	"fmt"
	"math"
	"strings"

	"github.com/valyala/fastjson"
)

// LiteralSerializer converts literals to and from an interchange format.
//
// Failures of the backend surface as SERIALIZATION errors that wrap the
// backend's error unchanged, so the core taxonomy never depends on a format.
type LiteralSerializer interface {
	MarshalLiteral(lit Literal) ([]byte, error)
	UnmarshalLiteral(data []byte) (Literal, error)
}

// JSONSerializer maps literals to JSON:
//
//	Integer -> number without fraction or exponent
//	Decimal -> number with a fraction or exponent (2.0, not 2)
//	Text    -> string
//	List    -> array of the above (flat)
type JSONSerializer struct{}

var _ LiteralSerializer = JSONSerializer{}

// MarshalLiteral renders lit as JSON.
func (JSONSerializer) MarshalLiteral(lit Literal) ([]byte, error) {
	var a fastjson.Arena
	v, err := literalToJSON(&a, lit, true)
	if err != nil {
		return nil, NewSerializationError(err)
	}
	return v.MarshalTo(nil), nil
}

func literalToJSON(a *fastjson.Arena, lit Literal, top bool) (*fastjson.Value, error) {
	switch val := lit.(type) {
	case Integer:
		return a.NewNumberString(val.String()), nil
	case Decimal:
		f := float64(val)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("decimal %s has no JSON representation", val)
		}
		return a.NewNumberString(val.String()), nil
	case Text:
		return a.NewString(string(val)), nil
	case List:
		if !top {
			return nil, fmt.Errorf("nested list %s is not a literal", val)
		}
		arr := a.NewArray()
		for i, elem := range val {
			v, err := literalToJSON(a, elem, false)
			if err != nil {
				return nil, fmt.Errorf("list[%d]: %w", i, err)
			}
			arr.SetArrayItem(i, v)
		}
		return arr, nil
	default:
		return nil, fmt.Errorf("unknown literal type: %T", lit)
	}
}

// UnmarshalLiteral parses JSON into a literal.
// null, booleans, objects and nested arrays are rejected.
func (JSONSerializer) UnmarshalLiteral(data []byte) (Literal, error) {
	var p fastjson.Parser
	v, err := p.ParseBytes(data)
	if err != nil {
		return nil, NewSerializationError(err)
	}
	lit, err := literalFromJSON(v, true)
	if err != nil {
		return nil, NewSerializationError(err)
	}
	return lit, nil
}

func literalFromJSON(v *fastjson.Value, top bool) (Literal, error) {
	switch v.Type() {
	case fastjson.TypeString:
		b, err := v.StringBytes()
		if err != nil {
			return nil, err
		}
		return Text(b), nil
	case fastjson.TypeNumber:
		if strings.ContainsAny(v.String(), ".eE") {
			f, err := v.Float64()
			if err != nil {
				return nil, err
			}
			return Decimal(f), nil
		}
		n, err := v.Int64()
		if err != nil {
			return nil, err
		}
		return Integer(n), nil
	case fastjson.TypeArray:
		if !top {
			return nil, fmt.Errorf("nested arrays are not literals")
		}
		items, err := v.Array()
		if err != nil {
			return nil, err
		}
		list := make(List, len(items))
		for i, item := range items {
			lit, err := literalFromJSON(item, false)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			list[i] = lit
		}
		return list, nil
	default:
		return nil, fmt.Errorf("JSON %s is not a literal", v.Type())
	}
}
