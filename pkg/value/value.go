// Package value provides the dynamically-typed scalar values stored in
// tree node properties.
//
// A Value is a small tagged variant over a closed set of kinds: void
// (undefined), integer, real, text, and boolean. Conversions and
// stringification are total: asking an integer Value for its text form
// formats the number, asking a text Value for its integer form parses
// it, and so on. A void Value converts to the zero of every kind.
package value

import (
	"strconv"
	"strings"
)

// Kind identifies the underlying type of a Value.
type Kind int

const (
	// KindVoid is the undefined value.
	KindVoid Kind = iota
	// KindInt is a 64-bit signed integer.
	KindInt
	// KindReal is a 64-bit float.
	KindReal
	// KindText is a string.
	KindText
	// KindBool is a boolean.
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindReal:
		return "real"
	case KindText:
		return "text"
	case KindBool:
		return "bool"
	default:
		return "void"
	}
}

// Value is a dynamically-typed property value. The zero Value is void.
// Values are immutable and comparable with Equal.
type Value struct {
	kind Kind
	num  int64
	real float64
	text string
	flag bool
}

// Void returns the undefined value.
func Void() Value { return Value{} }

// Int returns an integer value.
func Int(v int64) Value { return Value{kind: KindInt, num: v} }

// Real returns a floating point value.
func Real(v float64) Value { return Value{kind: KindReal, real: v} }

// Text returns a string value.
func Text(v string) Value { return Value{kind: KindText, text: v} }

// Bool returns a boolean value.
func Bool(v bool) Value { return Value{kind: KindBool, flag: v} }

// Kind returns the kind tag of the value.
func (v Value) Kind() Kind { return v.kind }

// IsVoid reports whether the value is undefined.
func (v Value) IsVoid() bool { return v.kind == KindVoid }

// AsInt converts the value to an integer. Text parses as base-10,
// real truncates, true converts to 1.
func (v Value) AsInt() int64 {
	switch v.kind {
	case KindInt:
		return v.num
	case KindReal:
		return int64(v.real)
	case KindText:
		n, err := strconv.ParseInt(strings.TrimSpace(v.text), 10, 64)
		if err != nil {
			return 0
		}
		return n
	case KindBool:
		if v.flag {
			return 1
		}
	}
	return 0
}

// AsReal converts the value to a float.
func (v Value) AsReal() float64 {
	switch v.kind {
	case KindInt:
		return float64(v.num)
	case KindReal:
		return v.real
	case KindText:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.text), 64)
		if err != nil {
			return 0
		}
		return f
	case KindBool:
		if v.flag {
			return 1
		}
	}
	return 0
}

// AsBool converts the value to a boolean. Nonzero numbers and the
// strings "true" and "1" convert to true.
func (v Value) AsBool() bool {
	switch v.kind {
	case KindInt:
		return v.num != 0
	case KindReal:
		return v.real != 0
	case KindText:
		t := strings.TrimSpace(v.text)
		return t == "true" || t == "1"
	case KindBool:
		return v.flag
	}
	return false
}

// String returns the text form of the value. Void stringifies to "".
func (v Value) String() string {
	switch v.kind {
	case KindInt:
		return strconv.FormatInt(v.num, 10)
	case KindReal:
		return strconv.FormatFloat(v.real, 'g', -1, 64)
	case KindText:
		return v.text
	case KindBool:
		return strconv.FormatBool(v.flag)
	}
	return ""
}

// Equal reports whether two values have the same kind and content.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindInt:
		return v.num == other.num
	case KindReal:
		return v.real == other.real
	case KindText:
		return v.text == other.text
	case KindBool:
		return v.flag == other.flag
	}
	return true
}
