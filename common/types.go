package common

import (
	"strconv"
	"strings"
)

type Type int8

const (
	// For uninitialized Values
	DefaultType Type = iota
	IntType
	StringType
)

func (t Type) String() string {
	switch t {
	case IntType:
		return "int"
	case StringType:
		return "string"
	}
	return "unknown"
}

// ParseType resolves a type name as printed by Type.String.
func ParseType(s string) (Type, bool) {
	switch strings.ToLower(s) {
	case "int":
		return IntType, true
	case "string":
		return StringType, true
	}
	return DefaultType, false
}

// Value represents a single data item flowing between processors.
// A Value carries its own type and a NULL flag; the zero Value is "nil" (untyped
// and uninitialized), which is distinct from a typed NULL.
type Value struct {
	t                Type
	null             bool
	underlyingInt    int64
	underlyingString string
}

// IsNil returns true if the Value is nil and uninitialized. This is NOT to be confused with NULL values.
func (v Value) IsNil() bool {
	return v.t == DefaultType
}

// NewIntValue creates a new integer Value.
func NewIntValue(v int64) Value {
	return Value{
		t:             IntType,
		underlyingInt: v,
	}
}

// NewStringValue creates a new string Value.
func NewStringValue(v string) Value {
	return Value{
		t:                StringType,
		underlyingString: v,
	}
}

// NewBoolValue encodes a boolean as the integers 1 and 0.
func NewBoolValue(b bool) Value {
	if b {
		return NewIntValue(1)
	}
	return NewIntValue(0)
}

// NewNullInt creates a NULL integer Value.
func NewNullInt() Value {
	return Value{
		t:    IntType,
		null: true,
	}
}

// NewNullString creates a NULL string Value.
func NewNullString() Value {
	return Value{
		t:    StringType,
		null: true,
	}
}

// NewNull creates a NULL of the given type.
func NewNull(t Type) Value {
	switch t {
	case IntType:
		return NewNullInt()
	case StringType:
		return NewNullString()
	}
	panic("unknown type")
}

// Type returns the type of the Value.
func (v Value) Type() Type {
	return v.t
}

// IsNull returns true if the Value is NULL.
func (v Value) IsNull() bool {
	return v.null
}

// IntValue returns the underlying (non-NULL) integer.
func (v Value) IntValue() int64 {
	Assert(v.t == IntType, "type mismatch in IntValue")
	Assert(!v.null, "accessing value of NULL int")
	return v.underlyingInt
}

// StringValue returns the underlying (non-NULL) string.
func (v Value) StringValue() string {
	Assert(v.t == StringType, "type mismatch in StringValue")
	Assert(!v.null, "accessing value of NULL string")
	return v.underlyingString
}

// Compare compares two Values.
// Returns -1 if v < other, 0 if v == other, 1 if v > other.
// NULL is considered less than non-NULL values.
func (v Value) Compare(other Value) int {
	Assert(v.t == other.t, "type mismatch in comparison")

	if v.null && other.null {
		return 0
	}
	if v.null {
		return -1
	}
	if other.null {
		return 1
	}

	switch v.t {
	case IntType:
		if v.underlyingInt < other.underlyingInt {
			return -1
		}
		if v.underlyingInt > other.underlyingInt {
			return 1
		}
		return 0
	case StringType:
		return strings.Compare(v.underlyingString, other.underlyingString)
	}
	panic("unreachable")
}

// AppendKey appends an unambiguous encoding of the value to buf. Two values
// produce the same encoding iff they have the same type, nullness and content,
// which makes the encoding usable as a hash map key for grouping.
func (v Value) AppendKey(buf []byte) []byte {
	buf = append(buf, byte(v.t))
	if v.null {
		return append(buf, 0)
	}
	buf = append(buf, 1)
	switch v.t {
	case IntType:
		buf = strconv.AppendInt(buf, v.underlyingInt, 10)
	case StringType:
		buf = strconv.AppendInt(buf, int64(len(v.underlyingString)), 10)
		buf = append(buf, ':')
		buf = append(buf, v.underlyingString...)
	}
	return append(buf, ';')
}

func (v Value) String() string {
	if v.IsNil() {
		return "<nil>"
	}
	if v.null {
		return "NULL"
	}
	switch v.t {
	case IntType:
		return strconv.FormatInt(v.underlyingInt, 10)
	case StringType:
		return v.underlyingString
	}
	return "?"
}
