package decoder

import (
	"fmt"

	"github.com/mcncl/gloss/internal/models"
)

// Enum maps the members of an enumerated type to their unique raw values.
// It is immutable after construction. A nil *Enum has no members, so every
// value decoded or encoded through it is absent.
type Enum[E comparable, R Scalar] struct {
	byRaw    map[R]E
	byMember map[E]R
}

// NewEnum builds an Enum from a raw-value table. It panics if a member
// appears under more than one raw value.
func NewEnum[E comparable, R Scalar](table map[R]E) *Enum[E, R] {
	e := &Enum[E, R]{
		byRaw:    make(map[R]E, len(table)),
		byMember: make(map[E]R, len(table)),
	}
	for raw, member := range table {
		if _, dup := e.byMember[member]; dup {
			panic(fmt.Sprintf("decoder: enum member %v has more than one raw value", member))
		}
		e.byRaw[raw] = member
		e.byMember[member] = raw
	}
	return e
}

// StringEnum builds an Enum for a string-backed type whose members are
// their own raw values.
func StringEnum[E ~string](members ...E) *Enum[E, string] {
	table := make(map[string]E, len(members))
	for _, m := range members {
		table[string(m)] = m
	}
	return NewEnum(table)
}

// IntEnum builds an Enum for an int-backed type whose members are their
// own raw values.
func IntEnum[E ~int](members ...E) *Enum[E, int] {
	table := make(map[int]E, len(members))
	for _, m := range members {
		table[int(m)] = m
	}
	return NewEnum(table)
}

// Member returns the member declared for raw.
func (e *Enum[E, R]) Member(raw R) (E, bool) {
	if e == nil {
		var zero E
		return zero, false
	}
	m, ok := e.byRaw[raw]
	return m, ok
}

// Raw returns the raw value of member.
func (e *Enum[E, R]) Raw(member E) (R, bool) {
	if e == nil {
		var zero R
		return zero, false
	}
	r, ok := e.byMember[member]
	return r, ok
}

// Len returns the number of declared members.
func (e *Enum[E, R]) Len() int {
	if e == nil {
		return 0
	}
	return len(e.byRaw)
}

// EnumValue reads the raw value under key and maps it to a member of enum.
func EnumValue[E comparable, R Scalar](obj models.JSONObject, key string, enum *Enum[E, R]) (E, bool) {
	raw, ok := Value[R](obj, key)
	if !ok {
		var zero E
		return zero, false
	}
	return enum.Member(raw)
}

// EnumValues decodes an array of raw values. A raw value with no matching
// member makes the whole field absent.
func EnumValues[E comparable, R Scalar](obj models.JSONObject, key string, enum *Enum[E, R]) ([]E, bool) {
	raws, ok := Values[R](obj, key)
	if !ok {
		return nil, false
	}
	out := make([]E, 0, len(raws))
	for _, raw := range raws {
		m, ok := enum.Member(raw)
		if !ok {
			return nil, false
		}
		out = append(out, m)
	}
	return out, true
}
