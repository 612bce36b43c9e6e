package schema

import (
	"fmt"
	"strings"
)

// ColumnSpec describes a single column of a table.
// Identity is the lower-cased name; stores may report names in either case.
type ColumnSpec struct {
	// Name is the column name as declared or reported.
	Name string `json:"name" yaml:"name"`
	// DeclaredType is the column type, e.g. "INTEGER" or "varchar(255)".
	DeclaredType string `json:"declared_type" yaml:"declared_type"`
	// Nullable reports whether NULL values are accepted.
	Nullable bool `json:"nullable" yaml:"nullable"`
	// PrimaryKey reports membership in the table's primary key.
	PrimaryKey bool `json:"primary_key" yaml:"primary_key"`
}

// Key returns the case-insensitive identity of the column.
func (c ColumnSpec) Key() string {
	return strings.ToLower(c.Name)
}

// ForeignKey describes a single-column reference to another table.
type ForeignKey struct {
	Column    string `json:"column" yaml:"column"`
	RefTable  string `json:"ref_table" yaml:"ref_table"`
	RefColumn string `json:"ref_column" yaml:"ref_column"`
}

func (f ForeignKey) matches(o ForeignKey) bool {
	return strings.EqualFold(f.Column, o.Column) &&
		strings.EqualFold(f.RefTable, o.RefTable) &&
		strings.EqualFold(f.RefColumn, o.RefColumn)
}

// Index describes a supporting index recreated on every rebuild.
type Index struct {
	Name    string   `json:"name" yaml:"name"`
	Columns []string `json:"columns" yaml:"columns"`
	Unique  bool     `json:"unique" yaml:"unique"`
}

// ForbiddenColumn is a legacy column name that must not appear in the table.
// Replacement, when set, is the column that superseded it (e.g. "teacher" -> "teacher_id").
type ForbiddenColumn struct {
	Name        string `json:"name" yaml:"name"`
	Replacement string `json:"replacement,omitempty" yaml:"replacement,omitempty"`
}

// EnumConstraint requires a CHECK (column IN (...)) list containing every value.
type EnumConstraint struct {
	Column string   `json:"column" yaml:"column"`
	Values []string `json:"values" yaml:"values"`
}

// Canonical is the compiled-in description of a table the system expects.
type Canonical struct {
	// Table is the governed table name.
	Table string
	// Version identifies the schema generation, used only for logging.
	Version int
	// Columns are the required columns in creation order.
	Columns []ColumnSpec
	// ForeignKeys are the expected references to other tables.
	ForeignKeys []ForeignKey
	// Uniques lists column sets that must be unique together.
	Uniques [][]string
	// Indexes are the supporting indexes.
	Indexes []Index
	// Forbidden lists legacy columns whose presence marks a stale schema generation.
	Forbidden []ForbiddenColumn
	// Enums lists value-list constraints on columns.
	Enums []EnumConstraint
}

// Column returns the required column with the given name, matched case-insensitively.
func (c *Canonical) Column(name string) (ColumnSpec, bool) {
	for _, col := range c.Columns {
		if strings.EqualFold(col.Name, name) {
			return col, true
		}
	}
	return ColumnSpec{}, false
}

// SequenceTable returns the name of the companion counter table.
func (c *Canonical) SequenceTable() string {
	return SequenceTableName(c.Table)
}

// Validate reports canonical definitions that could never reconcile to a fixed point.
func (c *Canonical) Validate() error {
	if c.Table == "" {
		return fmt.Errorf("canonical schema has no table name")
	}
	if len(c.Columns) == 0 {
		return fmt.Errorf("canonical schema %s has no columns", c.Table)
	}
	seen := make(map[string]struct{}, len(c.Columns))
	for _, col := range c.Columns {
		if _, dup := seen[col.Key()]; dup {
			return fmt.Errorf("canonical schema %s declares column %s twice", c.Table, col.Name)
		}
		seen[col.Key()] = struct{}{}
	}
	for _, f := range c.Forbidden {
		if _, ok := seen[strings.ToLower(f.Name)]; ok {
			return fmt.Errorf("canonical schema %s both requires and forbids column %s", c.Table, f.Name)
		}
	}
	for _, e := range c.Enums {
		if _, ok := seen[strings.ToLower(e.Column)]; !ok {
			return fmt.Errorf("canonical schema %s constrains unknown column %s", c.Table, e.Column)
		}
	}
	for _, idx := range c.Indexes {
		for _, col := range idx.Columns {
			if _, ok := seen[strings.ToLower(col)]; !ok {
				return fmt.Errorf("canonical schema %s indexes unknown column %s", c.Table, col)
			}
		}
	}
	return nil
}

// SequenceTableName follows the "<table>_seq" convention.
func SequenceTableName(table string) string {
	return table + "_seq"
}

// Snapshot is an immutable view of a live table captured by one inspection.
type Snapshot struct {
	table            string
	columns          []ColumnSpec
	index            map[string]int
	definition       *string
	foreignKeys      []ForeignKey
	foreignKeysKnown bool
}

// NewSnapshot builds a snapshot. Later columns with a duplicate case-insensitive
// name are ignored. A nil definition means the store does not expose one.
// A nil foreignKeys slice means the store has no structured form for them.
func NewSnapshot(table string, columns []ColumnSpec, definition *string, foreignKeys []ForeignKey) *Snapshot {
	s := &Snapshot{
		table:   table,
		index:   make(map[string]int, len(columns)),
		columns: make([]ColumnSpec, 0, len(columns)),
	}
	for _, col := range columns {
		if _, dup := s.index[col.Key()]; dup {
			continue
		}
		s.index[col.Key()] = len(s.columns)
		s.columns = append(s.columns, col)
	}
	if definition != nil {
		def := *definition
		s.definition = &def
	}
	if foreignKeys != nil {
		s.foreignKeysKnown = true
		s.foreignKeys = append([]ForeignKey{}, foreignKeys...)
	}
	return s
}

// Table returns the inspected table name.
func (s *Snapshot) Table() string { return s.table }

// Columns returns a copy of the columns in catalog order.
func (s *Snapshot) Columns() []ColumnSpec {
	return append([]ColumnSpec(nil), s.columns...)
}

// ColumnNames returns the column names in catalog order.
func (s *Snapshot) ColumnNames() []string {
	names := make([]string, len(s.columns))
	for i, c := range s.columns {
		names[i] = c.Name
	}
	return names
}

// Column looks up a column case-insensitively.
func (s *Snapshot) Column(name string) (ColumnSpec, bool) {
	i, ok := s.index[strings.ToLower(name)]
	if !ok {
		return ColumnSpec{}, false
	}
	return s.columns[i], true
}

// HasColumn reports whether the column exists, matched case-insensitively.
func (s *Snapshot) HasColumn(name string) bool {
	_, ok := s.index[strings.ToLower(name)]
	return ok
}

// Definition returns the raw definition text, if the store exposed one.
func (s *Snapshot) Definition() (string, bool) {
	if s.definition == nil {
		return "", false
	}
	return *s.definition, true
}

// ForeignKeys returns the structured foreign keys and whether the store reported them.
func (s *Snapshot) ForeignKeys() ([]ForeignKey, bool) {
	return append([]ForeignKey(nil), s.foreignKeys...), s.foreignKeysKnown
}

// DiscrepancyKind classifies a divergence between live and canonical structure.
type DiscrepancyKind string

const (
	// ForbiddenColumnPresent means a legacy column still exists.
	ForbiddenColumnPresent DiscrepancyKind = "forbidden_column_present"
	// RequiredColumnMissing means a canonical column does not exist.
	RequiredColumnMissing DiscrepancyKind = "required_column_missing"
	// ConstraintStale means a constraint does not match the canonical definition.
	ConstraintStale DiscrepancyKind = "constraint_stale"
)

// Discrepancy is one detected divergence.
type Discrepancy struct {
	Kind   DiscrepancyKind `json:"kind" yaml:"kind"`
	Detail string          `json:"detail" yaml:"detail"`
}

func (d Discrepancy) String() string {
	return string(d.Kind) + ": " + d.Detail
}
