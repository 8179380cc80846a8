// Package postgres implements the datasource contracts over pgx.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/querygate/engine/pkg/adapters/datasource"
	"github.com/querygate/engine/pkg/logging"
)

// Config holds PostgreSQL connection parameters.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

func buildConnectionString(cfg *Config) string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "prefer"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database, sslMode)
}

// Adapter provides PostgreSQL query execution and schema extraction.
type Adapter struct {
	pool *pgxpool.Pool
}

var (
	_ datasource.QueryExecutor   = (*Adapter)(nil)
	_ datasource.SchemaExtractor = (*Adapter)(nil)
)

// NewAdapter connects a pool and verifies the database is reachable.
// Connection errors from pgx can echo the DSN, so they are sanitized
// before they reach any caller that might log them.
func NewAdapter(ctx context.Context, cfg *Config) (*Adapter, error) {
	pool, err := pgxpool.New(ctx, buildConnectionString(cfg))
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %s", logging.SanitizeError(err))
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %s", logging.SanitizeError(err))
	}
	return &Adapter{pool: pool}, nil
}

// ExecuteQuery runs a SELECT and returns bounded results.
func (a *Adapter) ExecuteQuery(ctx context.Context, sqlQuery string, limit int) (*datasource.QueryExecutionResult, error) {
	queryToRun := sqlQuery
	if limit > 0 {
		queryToRun = fmt.Sprintf("SELECT * FROM (%s) AS _limited LIMIT %d", sqlQuery, limit)
	}

	rows, err := a.pool.Query(ctx, queryToRun)
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}
	defer rows.Close()

	fieldDescs := rows.FieldDescriptions()
	columns := make([]datasource.ColumnInfo, len(fieldDescs))
	for i, fd := range fieldDescs {
		columns[i] = datasource.ColumnInfo{Name: string(fd.Name)}
	}

	resultRows := make([]map[string]any, 0)
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("read row values: %w", err)
		}
		rowMap := make(map[string]any, len(columns))
		for i, col := range columns {
			rowMap[col.Name] = values[i]
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
	tag, err := a.pool.Exec(ctx, sqlQuery)
	if err != nil {
		return nil, fmt.Errorf("execute statement: %w", err)
	}
	return &datasource.QueryExecutionResult{RowsAffected: tag.RowsAffected()}, nil
}

// ExtractTables reads user tables and columns from information_schema.
func (a *Adapter) ExtractTables(ctx context.Context) ([]datasource.TableSchema, error) {
	const query = `
		SELECT t.table_name, c.column_name, c.data_type
		FROM information_schema.tables t
		JOIN information_schema.columns c
		  ON c.table_schema = t.table_schema AND c.table_name = t.table_name
		WHERE t.table_schema NOT IN ('pg_catalog', 'information_schema')
		  AND t.table_type = 'BASE TABLE'
		ORDER BY t.table_name, c.ordinal_position`

	rows, err := a.pool.Query(ctx, query)
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

// Close releases the pool.
func (a *Adapter) Close() error {
	a.pool.Close()
	return nil
}
