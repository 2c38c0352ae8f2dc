package lineproto

import (
	"fmt"
	"math"
	"strconv"
)

// Kind identifies the wire representation of a field Value.
type Kind uint8

// Field value kinds. The set is closed: the database accepts no others.
const (
	KindInvalid Kind = iota
	KindFloat
	KindInt
	KindUint
	KindBool
	KindString
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindFloat:
		return "float"
	case KindInt:
		return "int"
	case KindUint:
		return "uint"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	default:
		return "invalid"
	}
}

// Value is a single typed field value.
//
// Values are built with the constructor matching the Go type of the data.
// The zero Value is invalid and fails to encode.
type Value struct {
	kind Kind
	bits int // float width, 32 or 64
	f    float64
	i    int64
	b    bool
	s    string
}

// Float64 returns a 64-bit float value.
func Float64(v float64) Value { return Value{kind: KindFloat, bits: 64, f: v} }

// Float32 returns a 32-bit float value.
// It is formatted with 32-bit precision, so Float32(3.4) encodes as "3.4".
func Float32(v float32) Value { return Value{kind: KindFloat, bits: 32, f: float64(v)} }

// Int returns a signed integer value.
func Int(v int) Value { return Value{kind: KindInt, i: int64(v)} }

// Int8 returns a signed integer value.
func Int8(v int8) Value { return Value{kind: KindInt, i: int64(v)} }

// Int16 returns a signed integer value.
func Int16(v int16) Value { return Value{kind: KindInt, i: int64(v)} }

// Int32 returns a signed integer value.
func Int32(v int32) Value { return Value{kind: KindInt, i: int64(v)} }

// Int64 returns a signed integer value.
func Int64(v int64) Value { return Value{kind: KindInt, i: v} }

// Uint8 returns an unsigned integer value.
func Uint8(v uint8) Value { return Value{kind: KindUint, i: int64(v)} }

// Uint16 returns an unsigned integer value.
func Uint16(v uint16) Value { return Value{kind: KindUint, i: int64(v)} }

// Uint32 returns an unsigned integer value.
func Uint32(v uint32) Value { return Value{kind: KindUint, i: int64(v)} }

// Bool returns a boolean value.
func Bool(v bool) Value { return Value{kind: KindBool, b: v} }

// String returns a string value.
func String(v string) Value { return Value{kind: KindString, s: v} }

// Kind returns the value's kind.
func (v Value) Kind() Kind { return v.kind }

// Interface returns the value as a Go value (float64, int64, bool or string).
func (v Value) Interface() any {
	switch v.kind {
	case KindFloat:
		return v.f
	case KindInt, KindUint:
		return v.i
	case KindBool:
		return v.b
	case KindString:
		return v.s
	default:
		return nil
	}
}

// GoString implements fmt.GoStringer for readable test failures.
func (v Value) GoString() string {
	return fmt.Sprintf("lineproto.Value{%s: %v}", v.kind, v.Interface())
}

// AppendValue appends the line protocol form of v to dst.
//
// Parameters:
//   - dst: Buffer to append to
//   - v: Field value
//   - policy: Escaping applied to string values
//
// Returns:
//   - []byte: The extended buffer
//   - error: ErrNonFiniteFloat or ErrInvalidValue; dst is returned unchanged on error
func AppendValue(dst []byte, v Value, policy EscapePolicy) ([]byte, error) {
	switch v.kind {
	case KindFloat:
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
			return dst, ErrNonFiniteFloat
		}
		return strconv.AppendFloat(dst, v.f, 'f', -1, v.bits), nil
	case KindInt, KindUint:
		dst = strconv.AppendInt(dst, v.i, 10)
		return append(dst, 'i'), nil
	case KindBool:
		if v.b {
			return append(dst, 'T'), nil
		}
		return append(dst, 'F'), nil
	case KindString:
		dst = append(dst, '"')
		dst = appendEscaped(dst, v.s, policy, stringFieldEscaper)
		return append(dst, '"'), nil
	default:
		return dst, ErrInvalidValue
	}
}

// FormatValue returns the line protocol form of v with no escaping.
func FormatValue(v Value) (string, error) {
	b, err := AppendValue(nil, v, EscapeNone)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
