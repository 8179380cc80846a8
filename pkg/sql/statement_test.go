package sql

import (
	"testing"
)

func TestDetectStatementKind(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want StatementKind
	}{
		{"select", "SELECT * FROM customers", KindRead},
		{"lowercase select", "select id from invoices", KindRead},
		{"select with leading whitespace", "  \n SELECT 1", KindRead},
		{"parenthesized select", "(SELECT 1)", KindRead},
		{"show", "SHOW TABLES", KindRead},
		{"describe", "DESCRIBE customers", KindRead},
		{"explain", "EXPLAIN SELECT * FROM t", KindRead},
		{"pure cte", "WITH recent AS (SELECT * FROM invoices) SELECT * FROM recent", KindRead},
		{"data-modifying cte", "WITH removed AS (DELETE FROM invoices RETURNING *) SELECT * FROM removed", KindWrite},
		{"insert", "INSERT INTO customers (name) VALUES ('ada')", KindWrite},
		{"update", "UPDATE customers SET name = 'ada' WHERE id = 1", KindWrite},
		{"delete", "DELETE FROM customers WHERE id = 1", KindWrite},
		{"merge", "MERGE INTO target USING source ON target.id = source.id", KindWrite},
		{"create table", "CREATE TABLE archive (id INTEGER)", KindDDL},
		{"alter table", "ALTER TABLE customers ADD COLUMN email VARCHAR", KindDDL},
		{"drop table", "DROP TABLE customers", KindDDL},
		{"truncate", "TRUNCATE invoices", KindDDL},
		{"empty", "", KindUnknown},
		{"gibberish", "FOOBAR all the things", KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectStatementKind(tt.sql); got != tt.want {
				t.Errorf("DetectStatementKind(%q) = %v, want %v", tt.sql, got, tt.want)
			}
		})
	}
}

func TestIsModifying(t *testing.T) {
	if IsModifying(KindRead) {
		t.Error("read statements are not modifying")
	}
	if IsModifying(KindUnknown) {
		t.Error("unknown statements are not modifying")
	}
	if !IsModifying(KindWrite) {
		t.Error("writes are modifying")
	}
	if !IsModifying(KindDDL) {
		t.Error("DDL is modifying")
	}
}
