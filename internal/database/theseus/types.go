package theseus

import (
	"strings"

	"github.com/joacominatel/theseus/internal/database"
)

var typeMap = map[string]database.LogicalType{
	"VARCHAR": database.TypeString,
	"INTEGER": database.TypeInteger,
	"DATE":    database.TypeDateTime,
	"BIGINT":  database.TypeBigInt,
	"DOUBLE":  database.TypeFloat,
	"BOOLEAN": database.TypeBoolean,
}

// logicalType maps a transport type string to its logical type. Matching is
// case-sensitive; DECIMAL matches by prefix so DECIMAL(18,3) is numeric.
func logicalType(dataType string) (database.LogicalType, error) {
	if t, ok := typeMap[dataType]; ok {
		return t, nil
	}
	if strings.HasPrefix(dataType, "DECIMAL") {
		return database.TypeNumeric, nil
	}
	return "", &database.UnsupportedTypeError{DataType: dataType}
}
