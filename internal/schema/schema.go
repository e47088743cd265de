// Package schema describes the fields a command-line run should pull out of
// an input object. A field is written as "key:kind", for example
//
//	id:int!           required integer
//	owner.login:string
//	topics:[]string
//	created_at:date
//	visibility:enum(public|private)
//
// A schema decodes each field with the decoder package and writes the
// present ones back out with the encoder package, so its output holds only
// values that survived typed decoding.
package schema

import (
	"fmt"
	"strings"

	"github.com/mcncl/gloss/internal/decoder"
	"github.com/mcncl/gloss/internal/encoder"
	"github.com/mcncl/gloss/internal/errors"
	"github.com/mcncl/gloss/internal/models"
)

// Kind is the decoded type of a field.
type Kind string

const (
	KindBool   Kind = "bool"
	KindInt    Kind = "int"
	KindFloat  Kind = "float"
	KindDouble Kind = "double"
	KindString Kind = "string"
	KindDate   Kind = "date"
	KindURL    Kind = "url"
	KindEnum   Kind = "enum"
	KindObject Kind = "object"
)

var kindAliases = map[string]Kind{
	"bool":    KindBool,
	"boolean": KindBool,
	"int":     KindInt,
	"integer": KindInt,
	"int64":   KindInt,
	"float":   KindFloat,
	"float32": KindFloat,
	"double":  KindDouble,
	"float64": KindDouble,
	"number":  KindDouble,
	"string":  KindString,
	"date":    KindDate,
	"time":    KindDate,
	"url":     KindURL,
	"object":  KindObject,
}

// Field is one entry of a Schema.
type Field struct {
	Key      string
	Kind     Kind
	Array    bool
	Members  []string // enum only
	Required bool
}

// String renders f in the syntax ParseField accepts.
func (f Field) String() string {
	var b strings.Builder
	b.WriteString(f.Key)
	b.WriteByte(':')
	if f.Array {
		b.WriteString("[]")
	}
	b.WriteString(string(f.Kind))
	if f.Kind == KindEnum {
		b.WriteByte('(')
		b.WriteString(strings.Join(f.Members, "|"))
		b.WriteByte(')')
	}
	if f.Required {
		b.WriteByte('!')
	}
	return b.String()
}

// ParseField parses a single "key:kind" specification. A missing kind
// means string.
func ParseField(spec string) (Field, error) {
	spec = strings.TrimSpace(spec)
	key, kind, found := strings.Cut(spec, ":")
	key = strings.TrimSpace(key)
	if key == "" {
		return Field{}, errors.NewConfigError(fmt.Sprintf("field %q has no key", spec), nil)
	}

	f := Field{Key: key, Kind: KindString}
	if !found {
		return f, nil
	}

	kind = strings.TrimSpace(kind)
	if strings.HasSuffix(kind, "!") {
		f.Required = true
		kind = strings.TrimSpace(strings.TrimSuffix(kind, "!"))
	}
	if strings.HasPrefix(kind, "[]") {
		f.Array = true
		kind = strings.TrimPrefix(kind, "[]")
	}

	if rest, ok := strings.CutPrefix(kind, "enum("); ok {
		body, ok := strings.CutSuffix(rest, ")")
		if !ok {
			return Field{}, errors.NewConfigError(fmt.Sprintf("field %q: unterminated enum member list", spec), nil)
		}
		members, err := parseMembers(body)
		if err != nil {
			return Field{}, errors.NewConfigError(fmt.Sprintf("field %q", spec), err)
		}
		f.Kind = KindEnum
		f.Members = members
		return f, nil
	}

	k, ok := kindAliases[strings.ToLower(kind)]
	if !ok {
		return Field{}, errors.NewConfigError(fmt.Sprintf("field %q: unknown kind %q", spec, kind), nil)
	}
	f.Kind = k
	return f, nil
}

func parseMembers(body string) ([]string, error) {
	var members []string
	seen := make(map[string]bool)
	for _, m := range strings.Split(body, "|") {
		m = strings.TrimSpace(m)
		if m == "" {
			return nil, fmt.Errorf("empty enum member")
		}
		if seen[m] {
			return nil, fmt.Errorf("duplicate enum member %q", m)
		}
		seen[m] = true
		members = append(members, m)
	}
	return members, nil
}

// Schema is an ordered list of fields.
type Schema struct {
	Fields []Field
}

// Parse parses every spec. Later specs for an already declared key
// replace the earlier one in place.
func Parse(specs []string) (*Schema, error) {
	s := &Schema{}
	index := make(map[string]int, len(specs))
	for _, spec := range specs {
		f, err := ParseField(spec)
		if err != nil {
			return nil, err
		}
		if i, ok := index[f.Key]; ok {
			s.Fields[i] = f
			continue
		}
		index[f.Key] = len(s.Fields)
		s.Fields = append(s.Fields, f)
	}
	return s, nil
}

// Record is the outcome of decoding one object.
type Record struct {
	// Object holds the present fields, re-encoded. Dotted keys are nested.
	Object models.JSONObject
	// Absent lists the keys that were missing, null or malformed, in
	// schema order.
	Absent []string
}

// Decode applies the schema to obj. Absent optional fields are listed in
// the record; absent required fields fail the whole decode.
func (s *Schema) Decode(obj models.JSONObject, format decoder.DateFormat) (Record, error) {
	fragments := make([]models.JSONObject, 0, len(s.Fields))
	var absent, missingRequired []string

	for _, f := range s.Fields {
		frag, ok := f.decode(obj, format)
		if !ok {
			absent = append(absent, f.Key)
			if f.Required {
				missingRequired = append(missingRequired, f.Key)
			}
			continue
		}
		fragments = append(fragments, frag)
	}

	if len(missingRequired) > 0 {
		return Record{Absent: absent}, errors.NewDecodeError(
			fmt.Sprintf("required fields missing or malformed: %s", strings.Join(missingRequired, ", ")),
			errors.ErrRequiredField,
		)
	}
	return Record{Object: encoder.Merge(fragments...), Absent: absent}, nil
}

// DecodeAll applies the schema to every element of arr. Any element that
// is not an object or fails a required field fails the whole array.
func (s *Schema) DecodeAll(arr models.JSONArray, format decoder.DateFormat) ([]Record, error) {
	out := make([]Record, 0, len(arr))
	for i, v := range arr {
		obj, ok := decoder.ModelFrom(v, func(o models.JSONObject) (models.JSONObject, bool) { return o, true })
		if !ok {
			return nil, errors.NewDecodeError(fmt.Sprintf("element %d", i), errors.ErrNotObject)
		}
		rec, err := s.Decode(obj, format)
		if err != nil {
			return nil, errors.NewDecodeError(fmt.Sprintf("element %d", i), err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func (f Field) decode(obj models.JSONObject, format decoder.DateFormat) (models.JSONObject, bool) {
	switch f.Kind {
	case KindBool:
		return scalar[bool](obj, f)
	case KindInt:
		return scalar[int64](obj, f)
	case KindFloat:
		return scalar[float32](obj, f)
	case KindDouble:
		return scalar[float64](obj, f)
	case KindString:
		return scalar[string](obj, f)
	case KindDate:
		if f.Array {
			vs, ok := decoder.Dates(obj, f.Key, format)
			return encoder.Dates(f.Key, vs, format), ok
		}
		v, ok := decoder.Date(obj, f.Key, format)
		return encoder.Date(f.Key, ptrIf(v, ok), format), ok
	case KindURL:
		if f.Array {
			vs, ok := decoder.URLs(obj, f.Key)
			return encoder.URLs(f.Key, vs), ok
		}
		v, ok := decoder.URL(obj, f.Key)
		return encoder.URL(f.Key, v), ok
	case KindEnum:
		enum := decoder.StringEnum(f.Members...)
		if f.Array {
			vs, ok := decoder.EnumValues(obj, f.Key, enum)
			return encoder.EnumValues(f.Key, vs, enum), ok
		}
		v, ok := decoder.EnumValue(obj, f.Key, enum)
		return encoder.EnumValue(f.Key, ptrIf(v, ok), enum), ok
	case KindObject:
		if f.Array {
			vs, ok := decoder.Objects(obj, f.Key)
			return encoder.Models(f.Key, vs, identity), ok
		}
		v, ok := decoder.Object(obj, f.Key)
		return encoder.Model(f.Key, ptrIf(v, ok), identity), ok
	default:
		return nil, false
	}
}

func scalar[T decoder.Scalar](obj models.JSONObject, f Field) (models.JSONObject, bool) {
	if f.Array {
		vs, ok := decoder.Values[T](obj, f.Key)
		return encoder.Values(f.Key, vs), ok
	}
	v, ok := decoder.Value[T](obj, f.Key)
	return encoder.Value(f.Key, ptrIf(v, ok)), ok
}

func identity(o models.JSONObject) models.JSONObject { return o }

func ptrIf[T any](v T, ok bool) *T {
	if !ok {
		return nil
	}
	return &v
}

// Describe summarizes the schema for log output.
func (s *Schema) Describe() string {
	parts := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		parts[i] = f.String()
	}
	return strings.Join(parts, " ")
}
