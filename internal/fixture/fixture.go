// Package fixture compiles dataset fixtures from CUE definitions.
//
// A fixture file declares named datasets under the "fixture" field:
//
//	fixture: customers: {
//		description: "two known customers"
//		schema:      "id:Integer;name:String"
//		rows:        "1,alice;2,bob"
//		expect: {
//			rows:   "1,alice;2,bob"
//			schema: "id:Integer;name:String"
//		}
//	}
//
// schema and rows use the same compact string conventions as literal
// dataset construction. The optional expect block carries the rows and
// schema a conformance check asserts against; when absent, a check
// only verifies that the fixture materializes and its schema
// round-trips.
package fixture

import (
	"fmt"
	"os"
	"sort"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/slatedata/slatetest/internal/grid"
)

// Fixture is one compiled dataset fixture.
type Fixture struct {
	// Name uniquely identifies the fixture within its file.
	Name string

	// Description explains what the fixture provides.
	Description string

	// Schema is the compact schema string for the dataset.
	Schema string

	// Rows is the literal data string the dataset is built from.
	Rows string

	// ExpectRows is the expected row rendering for conformance checks.
	// Empty means "no row expectation".
	ExpectRows string

	// ExpectSchema is the expected derived schema. Empty means the
	// fixture's own canonical schema.
	ExpectSchema string
}

// LoadFile reads a CUE fixture file and compiles every fixture in it,
// sorted by name for deterministic iteration.
func LoadFile(path string) ([]Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture file: %w", err)
	}

	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	root := v.LookupPath(cue.ParsePath("fixture"))
	if !root.Exists() {
		return nil, &CompileError{
			Field:   "fixture",
			Message: "file declares no fixtures",
			Pos:     v.Pos(),
		}
	}

	iter, err := root.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var fixtures []Fixture
	for iter.Next() {
		f, err := Compile(iter.Value())
		if err != nil {
			return nil, err
		}
		fixtures = append(fixtures, *f)
	}
	sort.Slice(fixtures, func(i, j int) bool { return fixtures[i].Name < fixtures[j].Name })
	return fixtures, nil
}

// Compile parses a single CUE fixture struct. The value's label is the
// fixture name.
func Compile(v cue.Value) (*Fixture, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	f := &Fixture{}

	labels := v.Path().Selectors()
	if len(labels) > 0 {
		f.Name = labels[len(labels)-1].String()
	}

	schemaVal := v.LookupPath(cue.ParsePath("schema"))
	if !schemaVal.Exists() {
		return nil, &CompileError{Field: "schema", Message: "schema is required", Pos: v.Pos()}
	}
	schema, err := schemaVal.String()
	if err != nil {
		return nil, formatCUEError(err)
	}
	if _, err := grid.ParseSchema(schema); err != nil {
		return nil, &CompileError{Field: "schema", Message: err.Error(), Pos: schemaVal.Pos()}
	}
	f.Schema = schema

	rowsVal := v.LookupPath(cue.ParsePath("rows"))
	if !rowsVal.Exists() {
		return nil, &CompileError{Field: "rows", Message: "rows is required", Pos: v.Pos()}
	}
	f.Rows, err = rowsVal.String()
	if err != nil {
		return nil, formatCUEError(err)
	}

	// description is optional
	if descVal := v.LookupPath(cue.ParsePath("description")); descVal.Exists() {
		f.Description, err = descVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
	}

	// expect is optional; either of its fields may be absent
	if expVal := v.LookupPath(cue.ParsePath("expect")); expVal.Exists() {
		if rv := expVal.LookupPath(cue.ParsePath("rows")); rv.Exists() {
			f.ExpectRows, err = rv.String()
			if err != nil {
				return nil, formatCUEError(err)
			}
		}
		if sv := expVal.LookupPath(cue.ParsePath("schema")); sv.Exists() {
			f.ExpectSchema, err = sv.String()
			if err != nil {
				return nil, formatCUEError(err)
			}
			if _, err := grid.ParseSchema(f.ExpectSchema); err != nil {
				return nil, &CompileError{Field: "expect.schema", Message: err.Error(), Pos: sv.Pos()}
			}
		}
	}

	return f, nil
}

// ExpectedSchema returns the schema string checks assert against: the
// explicit expectation when present, the fixture's own canonical
// render otherwise.
func (f *Fixture) ExpectedSchema() string {
	if f.ExpectSchema != "" {
		return f.ExpectSchema
	}
	s, err := grid.ParseSchema(f.Schema)
	if err != nil {
		// Compile validated the schema already.
		return f.Schema
	}
	return s.String()
}
