// Package query builds parameterized SQL with projection mapping from view
// property names to qualified columns.
package query

import (
	"fmt"
	"strings"
)

// ProjectionMap maps view property names to qualified column references.
type ProjectionMap struct {
	table      string
	alias      string
	columns    map[string]string
	columnList []string
}

// NewProjectionMap creates a ProjectionMap for the given table and alias.
func NewProjectionMap(table, alias string) *ProjectionMap {
	return &ProjectionMap{
		table:   table,
		alias:   alias,
		columns: make(map[string]string),
	}
}

// Project adds a mapping from a database column to a view property name.
func (p *ProjectionMap) Project(column, viewName string) *ProjectionMap {
	qualified := fmt.Sprintf("%s.%s", p.alias, column)
	p.columns[viewName] = qualified
	p.columnList = append(p.columnList, qualified)
	return p
}

// From returns the aliased table reference.
func (p *ProjectionMap) From() string {
	return fmt.Sprintf("%s %s", p.table, p.alias)
}

// Column returns the qualified column for a view property, or the input
// unchanged when not mapped.
func (p *ProjectionMap) Column(viewName string) string {
	if col, ok := p.columns[viewName]; ok {
		return col
	}
	return viewName
}

// Columns returns all mapped columns as a comma-separated select list.
func (p *ProjectionMap) Columns() string {
	return strings.Join(p.columnList, ", ")
}
