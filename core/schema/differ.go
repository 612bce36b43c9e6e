package schema

import (
	"fmt"
	"strings"
)

// Diff compares a snapshot against the canonical schema and returns the
// discrepancies in report order: forbidden columns, stale constraints, missing
// columns. An empty result means the table is accepted as-is.
//
// A forbidden column that is still present stands in for its replacement, so
// the replacement is not also reported missing.
//
// The matcher may be nil, in which case checks against the raw definition text
// are skipped and only structural checks run.
func Diff(snap *Snapshot, canonical *Canonical, matcher DefinitionMatcher) []Discrepancy {
	var out []Discrepancy

	reported := make(map[string]struct{})
	superseded := make(map[string]struct{})
	for _, f := range canonical.Forbidden {
		if !snap.HasColumn(f.Name) {
			continue
		}
		reported[strings.ToLower(f.Name)] = struct{}{}
		detail := fmt.Sprintf("column %s must not exist", f.Name)
		if f.Replacement != "" {
			superseded[strings.ToLower(f.Replacement)] = struct{}{}
			detail += fmt.Sprintf(" (superseded by %s)", f.Replacement)
		}
		out = append(out, Discrepancy{Kind: ForbiddenColumnPresent, Detail: detail})
	}

	out = append(out, staleDefinition(snap, canonical, matcher, reported)...)
	out = append(out, staleStructure(snap, canonical)...)

	for _, col := range canonical.Columns {
		if _, ok := superseded[col.Key()]; ok {
			continue
		}
		if !snap.HasColumn(col.Name) {
			out = append(out, Discrepancy{
				Kind:   RequiredColumnMissing,
				Detail: fmt.Sprintf("column %s (%s) is missing", col.Name, col.DeclaredType),
			})
		}
	}

	return out
}

func staleDefinition(snap *Snapshot, canonical *Canonical, matcher DefinitionMatcher, reported map[string]struct{}) []Discrepancy {
	def, ok := snap.Definition()
	if !ok || matcher == nil {
		return nil
	}

	var out []Discrepancy
	for _, f := range canonical.Forbidden {
		if _, done := reported[strings.ToLower(f.Name)]; done {
			continue
		}
		if !matcher.HasIdentifier(def, f.Name) {
			continue
		}
		if f.Replacement != "" && matcher.HasIdentifier(def, f.Replacement) {
			continue
		}
		out = append(out, Discrepancy{
			Kind:   ConstraintStale,
			Detail: fmt.Sprintf("definition still references legacy name %s", f.Name),
		})
	}

	for _, e := range canonical.Enums {
		values, found := matcher.EnumValues(def, e.Column)
		if !found {
			out = append(out, Discrepancy{
				Kind:   ConstraintStale,
				Detail: fmt.Sprintf("column %s has no value list constraint", e.Column),
			})
			continue
		}
		if missing := missingValues(e.Values, values); len(missing) > 0 {
			out = append(out, Discrepancy{
				Kind:   ConstraintStale,
				Detail: fmt.Sprintf("value list on %s lacks %s", e.Column, strings.Join(missing, ", ")),
			})
		}
	}
	return out
}

func staleStructure(snap *Snapshot, canonical *Canonical) []Discrepancy {
	var out []Discrepancy

	for _, want := range canonical.Columns {
		if !want.PrimaryKey {
			continue
		}
		if got, ok := snap.Column(want.Name); ok && !got.PrimaryKey {
			out = append(out, Discrepancy{
				Kind:   ConstraintStale,
				Detail: fmt.Sprintf("column %s is not part of the primary key", want.Name),
			})
		}
	}

	fks, known := snap.ForeignKeys()
	if !known {
		return out
	}
	for _, want := range canonical.ForeignKeys {
		if !snap.HasColumn(want.Column) {
			// reported as a missing column
			continue
		}
		found := false
		for _, got := range fks {
			if want.matches(got) {
				found = true
				break
			}
		}
		if !found {
			out = append(out, Discrepancy{
				Kind:   ConstraintStale,
				Detail: fmt.Sprintf("foreign key %s -> %s(%s) is missing", want.Column, want.RefTable, want.RefColumn),
			})
		}
	}
	return out
}

func missingValues(want, have []string) []string {
	set := make(map[string]struct{}, len(have))
	for _, v := range have {
		set[v] = struct{}{}
	}
	var missing []string
	for _, v := range want {
		if _, ok := set[v]; !ok {
			missing = append(missing, v)
		}
	}
	return missing
}
