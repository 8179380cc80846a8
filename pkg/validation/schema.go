package validation

import (
	"context"
	"fmt"
	"strings"

	"github.com/querygate/engine/pkg/models"
	enginesql "github.com/querygate/engine/pkg/sql"
)

// SchemaChecker verifies that every table and column a candidate
// references exists in the session's schema descriptor. There is no
// partial acceptance: one unknown reference fails the whole candidate.
type SchemaChecker struct{}

func NewSchemaChecker() *SchemaChecker {
	return &SchemaChecker{}
}

var _ Check = (*SchemaChecker)(nil)

func (c *SchemaChecker) Name() string { return CheckSchema }

func (c *SchemaChecker) Run(_ context.Context, candidate *models.QueryCandidate, schema *models.SchemaDescriptor) models.CheckVerdict {
	sqlQuery := strings.TrimSpace(candidate.SQL)
	if sqlQuery == "" {
		return models.Fail(CheckSchema, models.ReasonSchemaMismatch, "empty SQL statement cannot be checked against the schema")
	}
	if schema == nil || schema.IsEmpty() {
		return models.Fail(CheckSchema, models.ReasonSchemaMismatch, "no schema available for this data source")
	}

	refs := enginesql.ExtractReferences(sqlQuery)
	if refs.Empty() {
		// A statement we cannot extract any reference from is
		// unanalyzable, and unanalyzable means unverifiable.
		return models.Fail(CheckSchema, models.ReasonSchemaMismatch, "could not identify any table reference in the statement")
	}

	var missingTables []string
	for _, table := range refs.Tables {
		if !schema.HasTable(table) {
			missingTables = append(missingTables, table)
		}
	}
	if len(missingTables) > 0 {
		return models.Fail(CheckSchema, models.ReasonSchemaMismatch,
			fmt.Sprintf("unknown table(s): %s", strings.Join(missingTables, ", ")))
	}

	var missingColumns []string
	for _, column := range refs.Columns {
		if !columnVisible(schema, refs.Tables, column) {
			missingColumns = append(missingColumns, column)
		}
	}
	if len(missingColumns) > 0 {
		return models.Fail(CheckSchema, models.ReasonSchemaMismatch,
			fmt.Sprintf("unknown column(s): %s", strings.Join(missingColumns, ", ")))
	}

	return models.Pass(CheckSchema)
}

// columnVisible reports whether the column exists on any of the tables
// the statement reads from. Extraction drops alias qualifiers, so a
// column only needs to resolve against one referenced table.
func columnVisible(schema *models.SchemaDescriptor, tables []string, column string) bool {
	for _, table := range tables {
		if schema.TableHasColumn(table, column) {
			return true
		}
	}
	return false
}
