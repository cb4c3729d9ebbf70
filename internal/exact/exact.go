// Package exact implements compile-time constant values for the language's
// constant-folding needs: booleans, 16-bit characters, 32-bit integers,
// floats, and strings. Values are immutable once created.
package exact

import (
	"fmt"
	"math/big"
	"strconv"
)

// Kind discriminates the dynamic type of a Value.
type Kind int

const (
	Unknown Kind = iota
	Bool
	Char
	Int
	Float
	String
)

// A Value is an immutable compile-time constant.
type Value interface {
	Kind() Kind
	String() string
}

type boolVal bool
type charVal rune
type intVal struct{ val *big.Int }
type floatVal struct{ val *big.Float }
type stringVal string

func (boolVal) Kind() Kind   { return Bool }
func (charVal) Kind() Kind   { return Char }
func (intVal) Kind() Kind    { return Int }
func (floatVal) Kind() Kind  { return Float }
func (stringVal) Kind() Kind { return String }

func (b boolVal) String() string   { return strconv.FormatBool(bool(b)) }
func (c charVal) String() string   { return strconv.QuoteRune(rune(c)) }
func (i intVal) String() string    { return i.val.String() }
func (f floatVal) String() string  { return f.val.Text('g', -1) }
func (s stringVal) String() string { return strconv.Quote(string(s)) }

func MakeBool(b bool) Value     { return boolVal(b) }
func MakeChar(r rune) Value     { return charVal(r) }
func MakeString(s string) Value { return stringVal(s) }

func MakeInt64(x int64) Value {
	return intVal{big.NewInt(x)}
}

// MakeFromLiteral parses lit (as produced by the lexer for an INT or FLOAT
// token) into a constant Value. The host's default IEEE-754 double parse
// semantics are used for floats; see DESIGN.md's Open Question note on
// denormals.
func MakeFromLiteral(lit string, kind Kind) (Value, error) {
	switch kind {
	case Int:
		z, ok := new(big.Int).SetString(lit, 0)
		if !ok {
			return nil, fmt.Errorf("invalid integer literal %q", lit)
		}
		return intVal{z}, nil
	case Float:
		f, err := strconv.ParseFloat(lit, 64)
		if err != nil {
			return nil, err
		}
		return floatVal{big.NewFloat(f)}, nil
	default:
		return nil, fmt.Errorf("unsupported literal kind %v", kind)
	}
}

// BoolVal reports the boolean value of x; x must have Kind() == Bool.
func BoolVal(x Value) bool { return bool(x.(boolVal)) }

// Int64Val reports the int64 value of x, or ok=false if it doesn't fit.
func Int64Val(x Value) (int64, bool) {
	switch v := x.(type) {
	case intVal:
		if v.val.IsInt64() {
			return v.val.Int64(), true
		}
	case charVal:
		return int64(v), true
	}
	return 0, false
}

func StringVal(x Value) string { return string(x.(stringVal)) }

// BinaryOp applies a folding for the small set of operators the checker
// needs to evaluate at compile time (array bounds, switch-case duplicate
// detection via Compare, and const-field initializers).
func BinaryOp(x Value, op string, y Value) (Value, error) {
	switch a := x.(type) {
	case intVal:
		b, ok := y.(intVal)
		if !ok {
			return nil, fmt.Errorf("mismatched operand kinds for %s", op)
		}
		z := new(big.Int)
		switch op {
		case "+":
			z.Add(a.val, b.val)
		case "-":
			z.Sub(a.val, b.val)
		case "*":
			z.Mul(a.val, b.val)
		case "/":
			if b.val.Sign() == 0 {
				return nil, fmt.Errorf("division by zero")
			}
			z.Quo(a.val, b.val)
		default:
			return nil, fmt.Errorf("unsupported integer operator %s", op)
		}
		return intVal{z}, nil
	default:
		return nil, fmt.Errorf("unsupported operand kind for %s", op)
	}
}

// Compare reports whether x and y (of the same Kind) are equal; used by
// the switch-statement duplicate-case check (spec.md §4.2).
func Compare(x, y Value) bool {
	if x.Kind() != y.Kind() {
		return false
	}
	switch a := x.(type) {
	case boolVal:
		return a == y.(boolVal)
	case charVal:
		return a == y.(charVal)
	case intVal:
		return a.val.Cmp(y.(intVal).val) == 0
	case floatVal:
		return a.val.Cmp(y.(floatVal).val) == 0
	case stringVal:
		return a == y.(stringVal)
	}
	return false
}
