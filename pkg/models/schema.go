package models

import (
	"fmt"
	"strings"
)

// ColumnDescriptor describes a single column of a catalog table.
type ColumnDescriptor struct {
	Name string `json:"name" yaml:"name"`
	Type string `json:"type" yaml:"type"`
}

// TableDescriptor describes a table and its columns.
type TableDescriptor struct {
	Name    string             `json:"name" yaml:"name"`
	Columns []ColumnDescriptor `json:"columns" yaml:"columns"`
}

// SchemaDescriptor is an immutable snapshot of the database schema used by
// all validators during a turn. Table and column names are case-normalized
// once at construction so membership checks are stable regardless of how
// the candidate SQL spells an identifier.
type SchemaDescriptor struct {
	tables []TableDescriptor

	tableSet  map[string]struct{}
	columnSet map[string]struct{}
	// columnsByTable maps normalized table name to its normalized column set.
	columnsByTable map[string]map[string]struct{}
}

// NewSchemaDescriptor builds a descriptor from table definitions.
// Ordering of tables is preserved for prompt rendering.
func NewSchemaDescriptor(tables []TableDescriptor) *SchemaDescriptor {
	d := &SchemaDescriptor{
		tables:         tables,
		tableSet:       make(map[string]struct{}, len(tables)),
		columnSet:      make(map[string]struct{}),
		columnsByTable: make(map[string]map[string]struct{}, len(tables)),
	}
	for _, t := range tables {
		tn := normalizeIdent(t.Name)
		d.tableSet[tn] = struct{}{}
		cols := make(map[string]struct{}, len(t.Columns))
		for _, c := range t.Columns {
			cn := normalizeIdent(c.Name)
			cols[cn] = struct{}{}
			d.columnSet[cn] = struct{}{}
		}
		d.columnsByTable[tn] = cols
	}
	return d
}

func normalizeIdent(name string) string {
	name = strings.TrimSpace(name)
	name = strings.Trim(name, `"`)
	// Drop a schema qualifier if present; the catalog is flat.
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		name = name[idx+1:]
	}
	return strings.ToLower(name)
}

// HasTable reports whether the named table exists in the snapshot.
func (d *SchemaDescriptor) HasTable(name string) bool {
	_, ok := d.tableSet[normalizeIdent(name)]
	return ok
}

// HasColumn reports whether any table contains the named column.
func (d *SchemaDescriptor) HasColumn(name string) bool {
	_, ok := d.columnSet[normalizeIdent(name)]
	return ok
}

// TableHasColumn reports whether the named table contains the named column.
func (d *SchemaDescriptor) TableHasColumn(table, column string) bool {
	cols, ok := d.columnsByTable[normalizeIdent(table)]
	if !ok {
		return false
	}
	_, ok = cols[normalizeIdent(column)]
	return ok
}

// Tables returns the table definitions in load order.
func (d *SchemaDescriptor) Tables() []TableDescriptor {
	return d.tables
}

// TableNames returns the normalized table names in load order.
func (d *SchemaDescriptor) TableNames() []string {
	names := make([]string, 0, len(d.tables))
	for _, t := range d.tables {
		names = append(names, normalizeIdent(t.Name))
	}
	return names
}

// IsEmpty reports whether the snapshot has no tables.
func (d *SchemaDescriptor) IsEmpty() bool {
	return len(d.tables) == 0
}

// Text renders the schema as a compact description suitable for prompts.
func (d *SchemaDescriptor) Text() string {
	var b strings.Builder
	for _, t := range d.tables {
		fmt.Fprintf(&b, "Table: %s\n", t.Name)
		for _, c := range t.Columns {
			fmt.Fprintf(&b, "  - %s: %s\n", c.Name, c.Type)
		}
	}
	return b.String()
}
