package validation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/querygate/engine/pkg/models"
)

func testSchema() *models.SchemaDescriptor {
	return models.NewSchemaDescriptor([]models.TableDescriptor{
		{
			Name: "customers",
			Columns: []models.ColumnDescriptor{
				{Name: "id", Type: "INTEGER"},
				{Name: "name", Type: "VARCHAR"},
				{Name: "region", Type: "VARCHAR"},
				{Name: "created_at", Type: "TIMESTAMP"},
			},
		},
		{
			Name: "invoices",
			Columns: []models.ColumnDescriptor{
				{Name: "id", Type: "INTEGER"},
				{Name: "customer_id", Type: "INTEGER"},
				{Name: "amount", Type: "DECIMAL"},
				{Name: "issued_at", Type: "TIMESTAMP"},
			},
		},
	})
}

func TestSchemaChecker_Run(t *testing.T) {
	checker := NewSchemaChecker()
	schema := testSchema()

	tests := []struct {
		name       string
		sql        string
		wantStatus models.VerdictStatus
		wantDetail string
	}{
		{
			name:       "known table and columns",
			sql:        "SELECT name FROM customers WHERE region = 'west'",
			wantStatus: models.VerdictPass,
		},
		{
			name:       "unknown table",
			sql:        "SELECT * FROM orders",
			wantStatus: models.VerdictFail,
			wantDetail: "unknown table(s): orders",
		},
		{
			name:       "unknown column",
			sql:        "SELECT discount FROM invoices",
			wantStatus: models.VerdictFail,
			wantDetail: "unknown column(s): discount",
		},
		{
			name:       "join across known tables",
			sql:        "SELECT c.name, i.amount FROM customers c JOIN invoices i ON c.id = i.customer_id",
			wantStatus: models.VerdictPass,
		},
		{
			name:       "one unknown table fails the whole candidate",
			sql:        "SELECT c.name FROM customers c JOIN shipments s ON c.id = s.customer_id",
			wantStatus: models.VerdictFail,
			wantDetail: "unknown table(s): shipments",
		},
		{
			name:       "case insensitive match",
			sql:        "SELECT NAME FROM Customers WHERE REGION = 'east'",
			wantStatus: models.VerdictPass,
		},
		{
			name:       "empty sql fails",
			sql:        "",
			wantStatus: models.VerdictFail,
		},
		{
			name:       "unanalyzable statement fails",
			sql:        "SELECT 1",
			wantStatus: models.VerdictFail,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			candidate := &models.QueryCandidate{Request: "test", SQL: tt.sql}
			verdict := checker.Run(context.Background(), candidate, schema)
			assert.Equal(t, tt.wantStatus, verdict.Status, "detail: %s", verdict.Detail)
			if tt.wantStatus == models.VerdictFail {
				assert.Equal(t, models.ReasonSchemaMismatch, verdict.Reason)
			}
			if tt.wantDetail != "" {
				assert.Equal(t, tt.wantDetail, verdict.Detail)
			}
		})
	}
}

func TestSchemaChecker_EmptySchema(t *testing.T) {
	checker := NewSchemaChecker()
	candidate := &models.QueryCandidate{Request: "test", SQL: "SELECT name FROM customers"}

	verdict := checker.Run(context.Background(), candidate, models.NewSchemaDescriptor(nil))
	assert.Equal(t, models.VerdictFail, verdict.Status)
	assert.Equal(t, models.ReasonSchemaMismatch, verdict.Reason)
}
