package grid

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/text/unicode/norm"
)

// Row/field separators for literal data strings, mirroring the schema
// string convention: ";" between rows, "," between field values.
const (
	rowSep      = ";"
	rowFieldSep = ","
)

// Dataset is a tabular collection of rows materialized into a table
// under one compute context. Row order is NOT guaranteed: a dataset
// models the output of a distributed computation, and nothing in this
// package orders its rows.
type Dataset struct {
	ctx    *Context
	schema Schema
	table  string
}

// CSVOptions configures LoadCSV.
type CSVOptions struct {
	// Delimiter between fields. Zero means ','.
	Delimiter rune

	// Header indicates the first record holds column names.
	Header bool

	// Schema is an optional compact schema string. When empty the file
	// must have a header and every column is typed String.
	Schema string
}

// CreateDataset constructs a dataset from a schema string and a
// literal data string, e.g.
//
//	CreateDataset(ctx, "k:String;v:Integer", "a,1;b,2")
//
// Rows are separated by ";" and may span lines; field values are
// separated by ",". An empty field value is NULL.
func (c *Context) CreateDataset(ctx context.Context, schemaStr, dataStr string) (*Dataset, error) {
	if err := c.ensureActive("create dataset"); err != nil {
		return nil, err
	}
	schema, err := ParseSchema(schemaStr)
	if err != nil {
		return nil, fmt.Errorf("create dataset: %w", err)
	}
	raw := splitDataString(dataStr)
	rows, err := c.decodeRows(schema, raw)
	if err != nil {
		return nil, fmt.Errorf("create dataset: %w", err)
	}
	return c.materialize(ctx, schema, rows)
}

// LoadCSV constructs a dataset from a CSV file.
func (c *Context) LoadCSV(ctx context.Context, path string, opts CSVOptions) (*Dataset, error) {
	if err := c.ensureActive("load csv"); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	if opts.Delimiter != 0 {
		r.Comma = opts.Delimiter
	}
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("load csv %s: %w", path, err)
	}

	var schema Schema
	switch {
	case opts.Schema != "":
		schema, err = ParseSchema(opts.Schema)
		if err != nil {
			return nil, fmt.Errorf("load csv %s: %w", path, err)
		}
		if opts.Header && len(records) > 0 {
			records = records[1:]
		}
	case opts.Header:
		if len(records) == 0 {
			return nil, fmt.Errorf("load csv %s: empty file with header expected", path)
		}
		for _, name := range records[0] {
			schema.Fields = append(schema.Fields, Field{Name: strings.TrimSpace(name), Type: TypeString})
		}
		records = records[1:]
	default:
		return nil, fmt.Errorf("load csv %s: need a schema or a header row", path)
	}

	rows, err := c.decodeRows(schema, records)
	if err != nil {
		return nil, fmt.Errorf("load csv %s: %w", path, err)
	}
	return c.materialize(ctx, schema, rows)
}

// Schema returns the schema the dataset was created with.
func (d *Dataset) Schema() Schema {
	return d.schema
}

// DeriveSchema reads the dataset's actual structure back from the live
// table. This is deliberately not a copy of the stored schema: schema
// assertions compare what the session really built.
func (d *Dataset) DeriveSchema(ctx context.Context) (Schema, error) {
	if err := d.ctx.ensureActive("derive schema"); err != nil {
		return Schema{}, err
	}

	rows, err := d.ctx.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%q)", d.table))
	if err != nil {
		return Schema{}, fmt.Errorf("derive schema: %w", err)
	}
	defer rows.Close()

	var schema Schema
	for rows.Next() {
		var (
			cid       int
			name, typ string
			notnull   int
			dflt      sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &typ, &notnull, &dflt, &pk); err != nil {
			return Schema{}, fmt.Errorf("derive schema: %w", err)
		}
		ft, ok := slateTypes[strings.ToUpper(typ)]
		if !ok {
			return Schema{}, fmt.Errorf("derive schema: column %q has unknown declared type %q", name, typ)
		}
		schema.Fields = append(schema.Fields, Field{Name: name, Type: ft})
	}
	if err := rows.Err(); err != nil {
		return Schema{}, fmt.Errorf("derive schema: %w", err)
	}
	return schema, nil
}

// Collect returns every row of the dataset in whatever order the
// backing table yields them.
func (d *Dataset) Collect(ctx context.Context) ([][]any, error) {
	if err := d.ctx.ensureActive("collect"); err != nil {
		return nil, err
	}

	rows, err := d.ctx.db.QueryContext(ctx, fmt.Sprintf("SELECT * FROM %q", d.table))
	if err != nil {
		return nil, fmt.Errorf("collect: %w", err)
	}
	defer rows.Close()

	var out [][]any
	for rows.Next() {
		dests := make([]any, len(d.schema.Fields))
		for i, f := range d.schema.Fields {
			switch f.Type {
			case TypeString:
				dests[i] = new(sql.NullString)
			case TypeInteger, TypeLong:
				dests[i] = new(sql.NullInt64)
			case TypeFloat, TypeDouble:
				dests[i] = new(sql.NullFloat64)
			case TypeBoolean:
				dests[i] = new(sql.NullBool)
			}
		}
		if err := rows.Scan(dests...); err != nil {
			return nil, fmt.Errorf("collect: %w", err)
		}
		row := make([]any, len(dests))
		for i, dst := range dests {
			row[i] = nullableValue(dst)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("collect: %w", err)
	}
	return out, nil
}

// RenderRows returns the canonical string form of every row: the
// positional field values joined by ",", enclosing brackets stripped,
// strings NFC-normalized so unicode equivalence never produces
// spurious mismatches. NULL renders as "null".
func (d *Dataset) RenderRows(ctx context.Context) ([]string, error) {
	rows, err := d.Collect(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(rows))
	for i, row := range rows {
		out[i] = renderRow(row)
	}
	return out, nil
}

// Count returns the dataset's row count.
func (d *Dataset) Count(ctx context.Context) (int, error) {
	if err := d.ctx.ensureActive("count"); err != nil {
		return 0, err
	}
	var n int
	err := d.ctx.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %q", d.table)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}

// materialize creates the backing table and inserts rows in one
// transaction.
func (c *Context) materialize(ctx context.Context, schema Schema, rows [][]any) (*Dataset, error) {
	table := c.nextTable()
	ddl := fmt.Sprintf("CREATE TABLE %q (%s)", table, schema.ddl())
	if _, err := c.db.ExecContext(ctx, ddl); err != nil {
		return nil, fmt.Errorf("materialize %s: %w", table, err)
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("materialize %s: %w", table, err)
	}
	defer tx.Rollback()

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(schema.Fields)), ",")
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %q VALUES (%s)", table, placeholders))
	if err != nil {
		return nil, fmt.Errorf("materialize %s: %w", table, err)
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return nil, fmt.Errorf("materialize %s: %w", table, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("materialize %s: %w", table, err)
	}

	return &Dataset{ctx: c, schema: schema, table: table}, nil
}

// decodeRows converts raw string records to typed rows, fanning the
// work out across the context's parallelism degree. Output order and
// error reporting are deterministic regardless of scheduling.
func (c *Context) decodeRows(schema Schema, raw [][]string) ([][]any, error) {
	rows := make([][]any, len(raw))
	errs := make([]error, len(raw))

	workers := c.par.Workers
	if workers > len(raw) {
		workers = len(raw)
	}
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := w; i < len(raw); i += workers {
				rows[i], errs[i] = decodeRow(schema, raw[i])
			}
		}(w)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
	}
	return rows, nil
}

// decodeRow converts one record's string fields per the schema.
// An empty field decodes to NULL for every type.
func decodeRow(schema Schema, record []string) ([]any, error) {
	if len(record) != len(schema.Fields) {
		return nil, fmt.Errorf("have %d values, schema has %d fields", len(record), len(schema.Fields))
	}
	row := make([]any, len(record))
	for i, s := range record {
		if s == "" {
			row[i] = nil
			continue
		}
		f := schema.Fields[i]
		switch f.Type {
		case TypeString:
			row[i] = s
		case TypeInteger, TypeLong:
			v, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("field %q: %q is not a valid %s", f.Name, s, f.Type)
			}
			row[i] = v
		case TypeFloat, TypeDouble:
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("field %q: %q is not a valid %s", f.Name, s, f.Type)
			}
			row[i] = v
		case TypeBoolean:
			v, err := strconv.ParseBool(s)
			if err != nil {
				return nil, fmt.Errorf("field %q: %q is not a valid %s", f.Name, s, f.Type)
			}
			row[i] = v
		}
	}
	return row, nil
}

// splitDataString splits a literal data string into records: rows on
// ";" with surrounding whitespace (including newlines from multi-line
// literals) trimmed, fields on ",". A trailing ";" does not produce an
// empty row.
func splitDataString(data string) [][]string {
	var records [][]string
	for _, row := range strings.Split(data, rowSep) {
		row = strings.TrimSpace(row)
		if row == "" {
			continue
		}
		fields := strings.Split(row, rowFieldSep)
		for i, f := range fields {
			fields[i] = strings.TrimSpace(f)
		}
		records = append(records, fields)
	}
	return records
}

// nullableValue unwraps a sql.NullXxx scan destination to its Go value
// or nil.
func nullableValue(dst any) any {
	switch v := dst.(type) {
	case *sql.NullString:
		if v.Valid {
			return v.String
		}
	case *sql.NullInt64:
		if v.Valid {
			return v.Int64
		}
	case *sql.NullFloat64:
		if v.Valid {
			return v.Float64
		}
	case *sql.NullBool:
		if v.Valid {
			return v.Bool
		}
	}
	return nil
}

// renderRow joins one row's values with "," and strips enclosing
// bracket characters, the canonical form expected-row strings are
// written against.
func renderRow(row []any) string {
	parts := make([]string, len(row))
	for i, v := range row {
		parts[i] = renderValue(v)
	}
	joined := strings.Join(parts, rowFieldSep)
	joined = strings.TrimPrefix(joined, "[")
	return strings.TrimSuffix(joined, "]")
}

// renderValue renders a single field value. Floating-point values
// always carry a decimal point ("2.0", never "2") so they cannot be
// confused with integers in expected-row strings.
func renderValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return norm.NFC.String(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		s := strconv.FormatFloat(val, 'f', -1, 64)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		return s
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
