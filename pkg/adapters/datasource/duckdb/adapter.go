// Package duckdb implements the datasource contracts over an embedded
// DuckDB database.
package duckdb

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/marcboeker/go-duckdb/v2"

	"github.com/querygate/engine/pkg/adapters/datasource"
)

// Adapter provides DuckDB query execution and schema extraction through
// database/sql.
type Adapter struct {
	db *sql.DB
}

var (
	_ datasource.QueryExecutor   = (*Adapter)(nil)
	_ datasource.SchemaExtractor = (*Adapter)(nil)
)

// NewAdapter opens a DuckDB database. An empty path opens an in-memory
// database.
func NewAdapter(path string) (*Adapter, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping duckdb: %w", err)
	}
	return &Adapter{db: db}, nil
}

// NewAdapterWithDB wraps an existing handle. Used in tests to inject a
// mocked database.
func NewAdapterWithDB(db *sql.DB) *Adapter {
	return &Adapter{db: db}
}

// ExecuteQuery runs a SELECT and returns bounded results.
func (a *Adapter) ExecuteQuery(ctx context.Context, sqlQuery string, limit int) (*datasource.QueryExecutionResult, error) {
	queryToRun := sqlQuery
	if limit > 0 {
		queryToRun = fmt.Sprintf("SELECT * FROM (%s) AS _limited LIMIT %d", sqlQuery, limit)
	}

	rows, err := a.db.QueryContext(ctx, queryToRun)
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}
	defer rows.Close()

	columnNames, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}
	columns := make([]datasource.ColumnInfo, len(columnNames))
	for i, name := range columnNames {
		columns[i] = datasource.ColumnInfo{Name: name}
	}
	if types, err := rows.ColumnTypes(); err == nil {
		for i, ct := range types {
			if i < len(columns) {
				columns[i].Type = ct.DatabaseTypeName()
			}
		}
	}

	resultRows := make([]map[string]any, 0)
	for rows.Next() {
		values := make([]any, len(columnNames))
		scanTargets := make([]any, len(columnNames))
		for i := range values {
			scanTargets[i] = &values[i]
		}
		if err := rows.Scan(scanTargets...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		rowMap := make(map[string]any, len(columnNames))
		for i, name := range columnNames {
			rowMap[name] = normalizeValue(values[i])
		}
		resultRows = append(resultRows, rowMap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return &datasource.QueryExecutionResult{
		Columns:  columns,
		Rows:     resultRows,
		RowCount: len(resultRows),
	}, nil
}

// ExecuteStatement runs a write or DDL statement.
func (a *Adapter) ExecuteStatement(ctx context.Context, sqlQuery string) (*datasource.QueryExecutionResult, error) {
	result, err := a.db.ExecContext(ctx, sqlQuery)
	if err != nil {
		return nil, fmt.Errorf("execute statement: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		affected = 0
	}
	return &datasource.QueryExecutionResult{RowsAffected: affected}, nil
}

// ExtractTables reads user tables and columns from the DuckDB catalog.
func (a *Adapter) ExtractTables(ctx context.Context) ([]datasource.TableSchema, error) {
	const query = `
		SELECT table_name, column_name, data_type
		FROM information_schema.columns
		WHERE table_schema = 'main'
		ORDER BY table_name, ordinal_position`

	rows, err := a.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("extract tables: %w", err)
	}
	defer rows.Close()

	var tables []datasource.TableSchema
	index := make(map[string]int)
	for rows.Next() {
		var tableName, columnName, dataType string
		if err := rows.Scan(&tableName, &columnName, &dataType); err != nil {
			return nil, fmt.Errorf("scan catalog row: %w", err)
		}
		i, ok := index[tableName]
		if !ok {
			i = len(tables)
			index[tableName] = i
			tables = append(tables, datasource.TableSchema{Name: tableName})
		}
		tables[i].Columns = append(tables[i].Columns, datasource.ColumnInfo{Name: columnName, Type: dataType})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate catalog rows: %w", err)
	}
	return tables, nil
}

// normalizeValue converts driver byte slices to strings so rows
// serialize as JSON text rather than base64.
func normalizeValue(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}

// Close releases the database handle.
func (a *Adapter) Close() error {
	return a.db.Close()
}
