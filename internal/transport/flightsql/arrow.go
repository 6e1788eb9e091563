package flightsql

import (
	"fmt"
	"strconv"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/joacominatel/theseus/internal/transport"
)

func fieldNames(schema *arrow.Schema) []string {
	if schema == nil {
		return nil
	}
	names := make([]string, schema.NumFields())
	for i, f := range schema.Fields() {
		names[i] = f.Name
	}
	return names
}

func recordRow(rec arrow.Record, i int) []any {
	row := make([]any, rec.NumCols())
	for j, col := range rec.Columns() {
		row[j] = valueAt(col, i)
	}
	return row
}

// valueAt converts one Arrow cell to a plain Go value. Decimals come back as
// their exact string form; dates and timestamps as time.Time in UTC.
func valueAt(col arrow.Array, i int) any {
	if col.IsNull(i) {
		return nil
	}

	switch a := col.(type) {
	case *array.String:
		return a.Value(i)
	case *array.LargeString:
		return a.Value(i)
	case *array.Binary:
		return append([]byte(nil), a.Value(i)...)
	case *array.Boolean:
		return a.Value(i)
	case *array.Int8:
		return int64(a.Value(i))
	case *array.Int16:
		return int64(a.Value(i))
	case *array.Int32:
		return int64(a.Value(i))
	case *array.Int64:
		return a.Value(i)
	case *array.Uint8:
		return uint64(a.Value(i))
	case *array.Uint16:
		return uint64(a.Value(i))
	case *array.Uint32:
		return uint64(a.Value(i))
	case *array.Uint64:
		return a.Value(i)
	case *array.Float32:
		return float64(a.Value(i))
	case *array.Float64:
		return a.Value(i)
	case *array.Date32:
		return a.Value(i).ToTime().UTC()
	case *array.Date64:
		return a.Value(i).ToTime().UTC()
	case *array.Timestamp:
		unit := a.DataType().(*arrow.TimestampType).Unit
		return a.Value(i).ToTime(unit).UTC()
	case *array.Decimal128:
		scale := a.DataType().(*arrow.Decimal128Type).Scale
		return a.Value(i).ToString(scale)
	default:
		return col.GetOneForMarshal(i)
	}
}

// buildParams turns rows of positional parameters into a record with one
// column per position. Each column takes its type from its first non-nil
// value; a column of only nils is sent as nullable utf8.
func buildParams(alloc memory.Allocator, rows [][]any) (arrow.Record, error) {
	width := len(rows[0])
	for n, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("parameter set %d has %d values, want %d", n, len(row), width)
		}
	}

	fields := make([]arrow.Field, width)
	for j := range width {
		dt, err := paramType(rows, j)
		if err != nil {
			return nil, err
		}
		fields[j] = arrow.Field{Name: strconv.Itoa(j), Type: dt, Nullable: true}
	}

	bldr := array.NewRecordBuilder(alloc, arrow.NewSchema(fields, nil))
	defer bldr.Release()

	for n, row := range rows {
		for j, v := range row {
			if err := appendParam(bldr.Field(j), v); err != nil {
				return nil, fmt.Errorf("parameter set %d, position %d: %w", n, j, err)
			}
		}
	}
	return bldr.NewRecord(), nil
}

func paramType(rows [][]any, j int) (arrow.DataType, error) {
	for _, row := range rows {
		switch v := row[j].(type) {
		case nil:
			continue
		case string:
			return arrow.BinaryTypes.String, nil
		case []byte:
			return arrow.BinaryTypes.Binary, nil
		case bool:
			return arrow.FixedWidthTypes.Boolean, nil
		case int, int8, int16, int32, int64, uint8, uint16, uint32:
			return arrow.PrimitiveTypes.Int64, nil
		case float32, float64:
			return arrow.PrimitiveTypes.Float64, nil
		case time.Time:
			return &arrow.TimestampType{Unit: arrow.Microsecond, TimeZone: "UTC"}, nil
		default:
			return nil, fmt.Errorf("parameter position %d: unsupported type %T", j, v)
		}
	}
	return arrow.BinaryTypes.String, nil
}

func appendParam(b array.Builder, v any) error {
	if v == nil {
		b.AppendNull()
		return nil
	}

	switch bb := b.(type) {
	case *array.StringBuilder:
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("mixed types: %T in a string column", v)
		}
		bb.Append(s)
	case *array.BinaryBuilder:
		p, ok := v.([]byte)
		if !ok {
			return fmt.Errorf("mixed types: %T in a binary column", v)
		}
		bb.Append(p)
	case *array.BooleanBuilder:
		x, ok := v.(bool)
		if !ok {
			return fmt.Errorf("mixed types: %T in a boolean column", v)
		}
		bb.Append(x)
	case *array.Int64Builder:
		x, ok := toInt64(v)
		if !ok {
			return fmt.Errorf("mixed types: %T in an integer column", v)
		}
		bb.Append(x)
	case *array.Float64Builder:
		switch x := v.(type) {
		case float64:
			bb.Append(x)
		case float32:
			bb.Append(float64(x))
		default:
			return fmt.Errorf("mixed types: %T in a float column", v)
		}
	case *array.TimestampBuilder:
		t, ok := v.(time.Time)
		if !ok {
			return fmt.Errorf("mixed types: %T in a timestamp column", v)
		}
		bb.Append(arrow.Timestamp(t.UnixMicro()))
	default:
		return fmt.Errorf("unsupported builder %T", b)
	}
	return nil
}

func toInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case uint8:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint32:
		return int64(x), true
	}
	return 0, false
}

// decodeObjects reads one GetObjects record batch:
//
//	catalog_name       utf8
//	catalog_db_schemas list<struct<db_schema_name: utf8, db_schema_tables: list<struct<table_name, table_type, ...>>>>
func decodeObjects(rec arrow.Record) (transport.Hierarchy, error) {
	catalogNames, err := recordColumn[*array.String](rec, "catalog_name")
	if err != nil {
		return nil, err
	}
	schemaLists, err := recordColumn[*array.List](rec, "catalog_db_schemas")
	if err != nil {
		return nil, err
	}

	schemas, ok := schemaLists.ListValues().(*array.Struct)
	if !ok {
		return nil, objectsError("catalog_db_schemas", "list of struct")
	}
	schemaNames, err := structField[*array.String](schemas, "db_schema_name")
	if err != nil {
		return nil, err
	}
	tableLists, err := structField[*array.List](schemas, "db_schema_tables")
	if err != nil {
		return nil, err
	}

	tables, ok := tableLists.ListValues().(*array.Struct)
	if !ok {
		return nil, objectsError("db_schema_tables", "list of struct")
	}
	tableNames, err := structField[*array.String](tables, "table_name")
	if err != nil {
		return nil, err
	}
	tableTypes, err := structField[*array.String](tables, "table_type")
	if err != nil {
		return nil, err
	}

	hierarchy := make(transport.Hierarchy, 0, rec.NumRows())
	for i := 0; i < int(rec.NumRows()); i++ {
		catalog := transport.Catalog{Name: stringAt(catalogNames, i)}

		if schemaLists.IsValid(i) {
			start, end := schemaLists.ValueOffsets(i)
			for j := int(start); j < int(end); j++ {
				schema := transport.Schema{Name: stringAt(schemaNames, j)}

				if tableLists.IsValid(j) {
					tStart, tEnd := tableLists.ValueOffsets(j)
					for k := int(tStart); k < int(tEnd); k++ {
						schema.Tables = append(schema.Tables, transport.Table{
							Name: stringAt(tableNames, k),
							Type: stringAt(tableTypes, k),
						})
					}
				}
				catalog.Schemas = append(catalog.Schemas, schema)
			}
		}
		hierarchy = append(hierarchy, catalog)
	}
	return hierarchy, nil
}

func recordColumn[T arrow.Array](rec arrow.Record, name string) (T, error) {
	var zero T
	idx := rec.Schema().FieldIndices(name)
	if len(idx) == 0 {
		return zero, objectsError(name, "present")
	}
	col, ok := rec.Column(idx[0]).(T)
	if !ok {
		return zero, objectsError(name, fmt.Sprintf("%T", zero))
	}
	return col, nil
}

func structField[T arrow.Array](s *array.Struct, name string) (T, error) {
	var zero T
	idx, found := s.DataType().(*arrow.StructType).FieldIdx(name)
	if !found {
		return zero, objectsError(name, "present")
	}
	field, ok := s.Field(idx).(T)
	if !ok {
		return zero, objectsError(name, fmt.Sprintf("%T", zero))
	}
	return field, nil
}

func stringAt(a *array.String, i int) string {
	if a.IsNull(i) {
		return ""
	}
	return a.Value(i)
}

func objectsError(field, want string) error {
	return &transport.RuntimeError{
		Message: fmt.Sprintf("Invalid Data Error: GetObjects field %s is not %s", field, want),
	}
}
