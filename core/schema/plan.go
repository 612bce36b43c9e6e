package schema

import "strings"

// SequenceColumn is the single column of every counter table.
const SequenceColumn = "next_val"

// SequenceSeed is the value a freshly created counter table starts from.
const SequenceSeed = 1

// Sequence describes the companion counter table used for identifier generation.
type Sequence struct {
	Table  string
	Column string
	Seed   int64
}

// Plan is the literal target structure a rebuild recreates.
// It is built from a Canonical schema and consumed by a single rebuild.
type Plan struct {
	Table       string
	Columns     []ColumnSpec
	ForeignKeys []ForeignKey
	Uniques     [][]string
	Enums       []EnumConstraint
	Indexes     []Index
	Sequence    Sequence
}

// NewPlan derives a rebuild plan from the canonical schema.
func NewPlan(c *Canonical) *Plan {
	p := &Plan{
		Table:       c.Table,
		Columns:     append([]ColumnSpec(nil), c.Columns...),
		ForeignKeys: append([]ForeignKey(nil), c.ForeignKeys...),
		Enums:       append([]EnumConstraint(nil), c.Enums...),
		Indexes:     append([]Index(nil), c.Indexes...),
		Sequence: Sequence{
			Table:  c.SequenceTable(),
			Column: SequenceColumn,
			Seed:   SequenceSeed,
		},
	}
	for _, u := range c.Uniques {
		p.Uniques = append(p.Uniques, append([]string(nil), u...))
	}
	return p
}

// PrimaryKey returns the primary-key column names in declaration order.
func (p *Plan) PrimaryKey() []string {
	var pk []string
	for _, c := range p.Columns {
		if c.PrimaryKey {
			pk = append(pk, c.Name)
		}
	}
	return pk
}

// EnumFor returns the value-list constraint on column, if any.
func (p *Plan) EnumFor(column string) (EnumConstraint, bool) {
	for _, e := range p.Enums {
		if strings.EqualFold(e.Column, column) {
			return e, true
		}
	}
	return EnumConstraint{}, false
}

// CommonColumns returns the plan's column names that also exist in snap,
// in plan order. These are the columns a preserving rebuild copies across.
func (p *Plan) CommonColumns(snap *Snapshot) []string {
	var common []string
	for _, c := range p.Columns {
		if snap.HasColumn(c.Name) {
			common = append(common, c.Name)
		}
	}
	return common
}
