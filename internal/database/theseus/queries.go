package theseus

// Metadata queries. The servers this dialect targets only recognize these
// exact shapes, so column lists and ordering must not change.
const (
	queryGetColumns = `SELECT column_name, data_type, is_nullable, column_default FROM information_schema.columns WHERE table_schema = ? AND table_name = ? ORDER BY ordinal_position ASC`

	queryGetViewNames = `SELECT table_name FROM information_schema.tables WHERE table_type = 'VIEW' AND table_schema = ? ORDER BY 1`

	queryHasTable = `SELECT 1 FROM information_schema.tables WHERE table_schema = ? AND table_name = ?`
)

// Transport messages the facade recognizes.
const (
	notImplementedMarker = "Not implemented Error"
	noActiveTransaction  = "TransactionContext Error: cannot commit - no transaction is active"
)
