package grid

import (
	"fmt"
	"strings"
)

// FieldType is a Slate column type tag.
type FieldType string

// Supported field types. Each maps to a distinct SQL declared type so
// a schema derived back from a live table is lossless.
const (
	TypeString  FieldType = "String"
	TypeInteger FieldType = "Integer"
	TypeLong    FieldType = "Long"
	TypeFloat   FieldType = "Float"
	TypeDouble  FieldType = "Double"
	TypeBoolean FieldType = "Boolean"
)

// fieldSep separates fields in a compact schema string; typeSep
// separates a field's name from its type. The convention is stable:
// assertions depend on its round-trip fidelity.
const (
	fieldSep = ";"
	typeSep  = ":"
)

// sqlTypes maps Slate types to SQL declared types. The mapping is
// bijective so DeriveSchema can invert it via PRAGMA table_info.
var sqlTypes = map[FieldType]string{
	TypeString:  "TEXT",
	TypeInteger: "INTEGER",
	TypeLong:    "BIGINT",
	TypeFloat:   "FLOAT",
	TypeDouble:  "DOUBLE",
	TypeBoolean: "BOOLEAN",
}

var slateTypes = func() map[string]FieldType {
	m := make(map[string]FieldType, len(sqlTypes))
	for ft, sq := range sqlTypes {
		m[sq] = ft
	}
	return m
}()

// Field is one column descriptor: name plus type tag.
type Field struct {
	Name string
	Type FieldType
}

// Schema is an ordered sequence of field descriptors. Two Schemas are
// equal iff their canonical String renderings are equal, so field
// order matters.
type Schema struct {
	Fields []Field
}

// ParseSchema parses a compact schema string such as
// "a:Integer;b:Double;c:String". Whitespace around fields, names and
// types is trimmed, so "a:Integer; b:Double" parses identically.
func ParseSchema(s string) (Schema, error) {
	var schema Schema
	for _, part := range strings.Split(s, fieldSep) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, typ, ok := strings.Cut(part, typeSep)
		if !ok {
			return Schema{}, fmt.Errorf("schema field %q: missing %q between name and type", part, typeSep)
		}
		name = strings.TrimSpace(name)
		typ = strings.TrimSpace(typ)
		if name == "" {
			return Schema{}, fmt.Errorf("schema field %q: empty field name", part)
		}
		ft := FieldType(typ)
		if _, ok := sqlTypes[ft]; !ok {
			return Schema{}, fmt.Errorf("schema field %q: unknown type %q", part, typ)
		}
		schema.Fields = append(schema.Fields, Field{Name: name, Type: ft})
	}
	if len(schema.Fields) == 0 {
		return Schema{}, fmt.Errorf("schema %q: no fields", s)
	}
	return schema, nil
}

// String renders the canonical form: "name:Type" joined by ";", no
// whitespace. Parsing a canonical render and re-rendering yields the
// identical string.
func (s Schema) String() string {
	parts := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		parts[i] = f.Name + typeSep + string(f.Type)
	}
	return strings.Join(parts, fieldSep)
}

// ddl renders the column list for CREATE TABLE.
func (s Schema) ddl() string {
	cols := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		cols[i] = fmt.Sprintf("%q %s", f.Name, sqlTypes[f.Type])
	}
	return strings.Join(cols, ", ")
}
