package database

import (
	"fmt"

	"go.uber.org/zap"
)

// Capability names reported in warnings.
const (
	CapabilityPrimaryKey      = "Primary Key Constraints"
	CapabilityForeignKey      = "Foreign Key Constraints"
	CapabilityCheckConstraint = "Check Constraints"
	CapabilityIndexes         = "indices"
	CapabilityBegin           = "BEGIN"
	CapabilityCommit          = "COMMIT"
	CapabilityRollback        = "ROLLBACK"
)

// CapabilityWarning is a non-fatal signal that a schema or transaction
// construct does not exist on the transport. Callers get an empty result
// alongside it, never an error.
type CapabilityWarning struct {
	Dialect   string
	Construct string
	// Reflection is true for schema reflection constructs and false for
	// transaction control.
	Reflection bool
}

func (w CapabilityWarning) String() string {
	if w.Reflection {
		return fmt.Sprintf("%s driver doesn't support reflection on %s", w.Dialect, w.Construct)
	}
	return fmt.Sprintf("%s driver doesn't support %s", w.Dialect, w.Construct)
}

// WarningHandler receives capability warnings.
type WarningHandler func(CapabilityWarning)

// LogWarnings returns a handler that logs every warning at warn level.
func LogWarnings(logger *zap.Logger) WarningHandler {
	return func(w CapabilityWarning) {
		logger.Warn(w.String(),
			zap.String("dialect", w.Dialect),
			zap.String("construct", w.Construct),
		)
	}
}
