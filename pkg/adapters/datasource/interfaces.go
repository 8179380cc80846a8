// Package datasource defines the adapter contracts for executing SQL
// against the configured database.
package datasource

import "context"

// ColumnInfo describes one column of a result set or catalog table.
type ColumnInfo struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// QueryExecutionResult contains the outcome of running a statement.
// Reads populate Columns/Rows/RowCount; writes populate RowsAffected.
type QueryExecutionResult struct {
	Columns      []ColumnInfo     `json:"columns"`
	Rows         []map[string]any `json:"rows"`
	RowCount     int              `json:"row_count"`
	RowsAffected int64            `json:"rows_affected"`
}

// QueryExecutor executes SQL against a datasource. Each implementation
// owns its connection and must be closed when done.
type QueryExecutor interface {
	// ExecuteQuery runs a SELECT statement. When limit is positive the
	// statement is wrapped in a dialect-appropriate subselect so the
	// result set is always bounded.
	ExecuteQuery(ctx context.Context, sqlQuery string, limit int) (*QueryExecutionResult, error)

	// ExecuteStatement runs a write or DDL statement and reports the
	// number of affected rows.
	ExecuteStatement(ctx context.Context, sqlQuery string) (*QueryExecutionResult, error)

	// Close releases the underlying connection.
	Close() error
}

// SchemaExtractor reads the live table catalog from a datasource.
type SchemaExtractor interface {
	// ExtractTables returns all user tables with their columns, in
	// catalog order. System schemas are excluded.
	ExtractTables(ctx context.Context) ([]TableSchema, error)
}

// TableSchema is one catalog table as the extractor reports it.
type TableSchema struct {
	Name    string
	Columns []ColumnInfo
}
