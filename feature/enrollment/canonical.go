package enrollment

import (
	"fmt"
	"strings"

	"enrollment-manager/core/schema"
	"enrollment-manager/feature/enrollment/models"
)

// SchemaVersion is bumped whenever a canonical schema below changes.
const SchemaVersion = 3

// Users is the canonical shape of the users table.
func Users() *schema.Canonical {
	return &schema.Canonical{
		Table:   models.User{}.TableName(),
		Version: SchemaVersion,
		Columns: mustColumns(models.User{}),
		Uniques: [][]string{{"username"}},
		Enums: []schema.EnumConstraint{
			{Column: "role", Values: append([]string(nil), models.Roles...)},
		},
		Forbidden: []schema.ForbiddenColumn{
			{Name: "password", Replacement: "password_hash"},
			{Name: "is_admin", Replacement: "role"},
		},
	}
}

// Teachers is the canonical shape of the teachers table.
func Teachers() *schema.Canonical {
	return &schema.Canonical{
		Table:   models.Teacher{}.TableName(),
		Version: SchemaVersion,
		Columns: mustColumns(models.Teacher{}),
		ForeignKeys: []schema.ForeignKey{
			{Column: "user_id", RefTable: "users", RefColumn: "id"},
		},
		Uniques: [][]string{{"employee_no"}},
	}
}

// Subjects is the canonical shape of the subjects table.
func Subjects() *schema.Canonical {
	return &schema.Canonical{
		Table:   models.Subject{}.TableName(),
		Version: SchemaVersion,
		Columns: mustColumns(models.Subject{}),
		Uniques: [][]string{{"code"}},
	}
}

// Sections is the canonical shape of the sections table.
func Sections() *schema.Canonical {
	return &schema.Canonical{
		Table:   models.Section{}.TableName(),
		Version: SchemaVersion,
		Columns: mustColumns(models.Section{}),
		Uniques: [][]string{{"name", "school_year"}},
	}
}

// ClassAssignments is the canonical shape of the class_assignments table.
// The free-text teacher, subject, section and grade_level columns of older
// installs were replaced by foreign keys.
func ClassAssignments() *schema.Canonical {
	return &schema.Canonical{
		Table:   models.ClassAssignment{}.TableName(),
		Version: SchemaVersion,
		Columns: mustColumns(models.ClassAssignment{}),
		ForeignKeys: []schema.ForeignKey{
			{Column: "teacher_id", RefTable: "teachers", RefColumn: "id"},
			{Column: "subject_id", RefTable: "subjects", RefColumn: "id"},
			{Column: "section_id", RefTable: "sections", RefColumn: "id"},
		},
		Uniques: [][]string{{"teacher_id", "subject_id", "section_id"}},
		Indexes: []schema.Index{
			{Name: "idx_class_assignments_teacher", Columns: []string{"teacher_id"}},
			{Name: "idx_class_assignments_subject", Columns: []string{"subject_id"}},
			{Name: "idx_class_assignments_section", Columns: []string{"section_id"}},
		},
		Forbidden: []schema.ForbiddenColumn{
			{Name: "teacher", Replacement: "teacher_id"},
			{Name: "subject", Replacement: "subject_id"},
			{Name: "section", Replacement: "section_id"},
			{Name: "grade_level"},
		},
	}
}

// Governed returns every canonical schema in creation order: referenced
// tables come before the tables pointing at them.
func Governed() []*schema.Canonical {
	return []*schema.Canonical{
		Users(),
		Teachers(),
		Subjects(),
		Sections(),
		ClassAssignments(),
	}
}

// Lookup returns the governed canonical schema for table.
func Lookup(table string) (*schema.Canonical, bool) {
	for _, c := range Governed() {
		if strings.EqualFold(c.Table, table) {
			return c, true
		}
	}
	return nil, false
}

// Select resolves table names to canonical schemas, keeping creation order.
// No names selects everything.
func Select(tables ...string) ([]*schema.Canonical, error) {
	if len(tables) == 0 {
		return Governed(), nil
	}
	wanted := make(map[string]struct{}, len(tables))
	for _, t := range tables {
		if _, ok := Lookup(t); !ok {
			return nil, fmt.Errorf("table %q is not governed", t)
		}
		wanted[strings.ToLower(t)] = struct{}{}
	}
	var out []*schema.Canonical
	for _, c := range Governed() {
		if _, ok := wanted[strings.ToLower(c.Table)]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func mustColumns(model any) []schema.ColumnSpec {
	columns, err := schema.ColumnsFromModel(model)
	if err != nil {
		panic(fmt.Sprintf("enrollment model: %v", err))
	}
	return columns
}
