package synth

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"slices"
	"strings"
)

// Kind is the JSON-level type of a value.
type Kind string

const (
	KindAny     Kind = "any"
	KindNull    Kind = "null"
	KindBoolean Kind = "boolean"
	KindInteger Kind = "integer"
	KindNumber  Kind = "number"
	KindString  Kind = "string"
	KindArray   Kind = "array"
	KindObject  Kind = "object"
)

// TypeDesc describes the shape of one or more JSON samples.
type TypeDesc struct {
	Kind Kind
	// Format refines strings: uuid, datetime, email, url.
	Format   string
	Nullable bool
	// Fields of an object, sorted by name.
	Fields []FieldDesc
	// Elem is the element type of an array; nil for an empty array.
	Elem *TypeDesc
}

type FieldDesc struct {
	Name string
	Type *TypeDesc
	// Optional fields were missing from at least one sample.
	Optional bool
}

// SchemaInferrer produces a type description from sample bodies.
type SchemaInferrer interface {
	Infer(samples ...[]byte) (*TypeDesc, error)
}

// StructuralInferrer infers types from the structure of JSON samples alone.
// Samples of one endpoint are merged: a field absent from some sample
// becomes optional, integer widens to number, and null makes a type nullable.
type StructuralInferrer struct{}

var (
	uuidValuePattern     = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)
	datetimeValuePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}`)
)

func (StructuralInferrer) Infer(samples ...[]byte) (*TypeDesc, error) {
	var merged *TypeDesc
	seen := 0
	for i, s := range samples {
		if len(bytes.TrimSpace(s)) == 0 {
			continue
		}
		var v any
		if err := json.Unmarshal(s, &v); err != nil {
			return nil, fmt.Errorf("sample %d: %w", i, ErrNotJSON)
		}
		t := describe(v)
		if seen == 0 {
			merged = t
		} else {
			merged = mergeTypes(merged, t)
		}
		seen++
	}
	if seen == 0 {
		return nil, ErrNoSamples
	}
	return merged, nil
}

func describe(value any) *TypeDesc {
	switch v := value.(type) {
	case nil:
		return &TypeDesc{Kind: KindNull, Nullable: true}
	case bool:
		return &TypeDesc{Kind: KindBoolean}
	case float64:
		if v == math.Trunc(v) {
			return &TypeDesc{Kind: KindInteger}
		}
		return &TypeDesc{Kind: KindNumber}
	case string:
		return &TypeDesc{Kind: KindString, Format: inferStringFormat(v)}
	case []any:
		t := &TypeDesc{Kind: KindArray}
		for _, el := range v {
			d := describe(el)
			if t.Elem == nil {
				t.Elem = d
			} else {
				t.Elem = mergeTypes(t.Elem, d)
			}
		}
		return t
	case map[string]any:
		t := &TypeDesc{Kind: KindObject}
		for name, fv := range v {
			t.Fields = append(t.Fields, FieldDesc{Name: name, Type: describe(fv)})
		}
		slices.SortFunc(t.Fields, func(a, b FieldDesc) int { return strings.Compare(a.Name, b.Name) })
		return t
	default:
		return &TypeDesc{Kind: KindAny}
	}
}

func inferStringFormat(v string) string {
	if uuidValuePattern.MatchString(v) {
		return "uuid"
	}
	if datetimeValuePattern.MatchString(v) {
		return "datetime"
	}
	if strings.Contains(v, "@") && strings.Contains(v, ".") && !strings.Contains(v, " ") {
		return "email"
	}
	if strings.HasPrefix(v, "http://") || strings.HasPrefix(v, "https://") {
		return "url"
	}
	return ""
}

func mergeTypes(a, b *TypeDesc) *TypeDesc {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	case a.Kind == KindNull:
		out := *b
		out.Nullable = true
		return &out
	case b.Kind == KindNull:
		out := *a
		out.Nullable = true
		return &out
	}

	nullable := a.Nullable || b.Nullable
	if a.Kind != b.Kind {
		if isNumeric(a.Kind) && isNumeric(b.Kind) {
			return &TypeDesc{Kind: KindNumber, Nullable: nullable}
		}
		return &TypeDesc{Kind: KindAny, Nullable: nullable}
	}

	out := &TypeDesc{Kind: a.Kind, Nullable: nullable}
	switch a.Kind {
	case KindString:
		if a.Format == b.Format {
			out.Format = a.Format
		}
	case KindArray:
		out.Elem = mergeTypes(a.Elem, b.Elem)
	case KindObject:
		out.Fields = mergeFields(a.Fields, b.Fields)
	}
	return out
}

func isNumeric(k Kind) bool { return k == KindInteger || k == KindNumber }

func mergeFields(a, b []FieldDesc) []FieldDesc {
	byName := make(map[string]FieldDesc, len(a))
	for _, f := range a {
		byName[f.Name] = f
	}
	inB := make(map[string]bool, len(b))
	for _, f := range b {
		inB[f.Name] = true
		if prev, ok := byName[f.Name]; ok {
			byName[f.Name] = FieldDesc{Name: f.Name, Type: mergeTypes(prev.Type, f.Type), Optional: prev.Optional || f.Optional}
		} else {
			f.Optional = true
			byName[f.Name] = f
		}
	}
	out := make([]FieldDesc, 0, len(byName))
	for name, f := range byName {
		if !inB[name] {
			f.Optional = true
		}
		out = append(out, f)
	}
	slices.SortFunc(out, func(x, y FieldDesc) int { return strings.Compare(x.Name, y.Name) })
	return out
}

// String renders t compactly, e.g. {id: integer, tags?: array<string>}.
func (t *TypeDesc) String() string {
	if t == nil {
		return string(KindAny)
	}
	var sb strings.Builder
	t.write(&sb)
	return sb.String()
}

func (t *TypeDesc) write(sb *strings.Builder) {
	switch t.Kind {
	case KindObject:
		sb.WriteString("{")
		for i, f := range t.Fields {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(f.Name)
			if f.Optional {
				sb.WriteString("?")
			}
			sb.WriteString(": ")
			f.Type.writeOrAny(sb)
		}
		sb.WriteString("}")
	case KindArray:
		sb.WriteString("array<")
		t.Elem.writeOrAny(sb)
		sb.WriteString(">")
	case KindString:
		sb.WriteString("string")
		if t.Format != "" {
			sb.WriteString("(" + t.Format + ")")
		}
	default:
		sb.WriteString(string(t.Kind))
	}
	if t.Nullable && t.Kind != KindNull {
		sb.WriteString("|null")
	}
}

func (t *TypeDesc) writeOrAny(sb *strings.Builder) {
	if t == nil {
		sb.WriteString(string(KindAny))
		return
	}
	t.write(sb)
}
