package datasource

import "context"

// MockExecutor is a configurable mock for testing query execution.
// Set the function fields to control behavior in tests.
type MockExecutor struct {
	// ExecuteQueryFunc is called when ExecuteQuery is invoked.
	// If nil, returns an empty result and nil error.
	ExecuteQueryFunc func(ctx context.Context, sqlQuery string, limit int) (*QueryExecutionResult, error)

	// ExecuteStatementFunc is called when ExecuteStatement is invoked.
	// If nil, returns an empty result and nil error.
	ExecuteStatementFunc func(ctx context.Context, sqlQuery string) (*QueryExecutionResult, error)

	// Call tracking for verification
	ExecuteQueryCalls     int
	ExecuteStatementCalls int
	Statements            []string
}

var _ QueryExecutor = (*MockExecutor)(nil)

// ExecuteQuery implements QueryExecutor.
func (m *MockExecutor) ExecuteQuery(ctx context.Context, sqlQuery string, limit int) (*QueryExecutionResult, error) {
	m.ExecuteQueryCalls++
	m.Statements = append(m.Statements, sqlQuery)
	if m.ExecuteQueryFunc != nil {
		return m.ExecuteQueryFunc(ctx, sqlQuery, limit)
	}
	return &QueryExecutionResult{}, nil
}

// ExecuteStatement implements QueryExecutor.
func (m *MockExecutor) ExecuteStatement(ctx context.Context, sqlQuery string) (*QueryExecutionResult, error) {
	m.ExecuteStatementCalls++
	m.Statements = append(m.Statements, sqlQuery)
	if m.ExecuteStatementFunc != nil {
		return m.ExecuteStatementFunc(ctx, sqlQuery)
	}
	return &QueryExecutionResult{}, nil
}

// Close implements QueryExecutor.
func (m *MockExecutor) Close() error { return nil }

// MockExtractor is a configurable mock for testing schema extraction.
type MockExtractor struct {
	// ExtractTablesFunc is called when ExtractTables is invoked.
	// If nil, returns nil tables and nil error.
	ExtractTablesFunc func(ctx context.Context) ([]TableSchema, error)

	ExtractTablesCalls int
}

var _ SchemaExtractor = (*MockExtractor)(nil)

// ExtractTables implements SchemaExtractor.
func (m *MockExtractor) ExtractTables(ctx context.Context) ([]TableSchema, error) {
	m.ExtractTablesCalls++
	if m.ExtractTablesFunc != nil {
		return m.ExtractTablesFunc(ctx)
	}
	return nil, nil
}
