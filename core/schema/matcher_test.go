package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenMatcher_HasIdentifier(t *testing.T) {
	m := NewTokenMatcher([2]rune{'`', '`'}, [2]rune{'"', '"'}, [2]rune{'[', ']'})

	tests := []struct {
		name string
		def  string
		want bool
	}{
		{"bare", "CREATE TABLE t (teacher TEXT)", true},
		{"backtick", "CREATE TABLE t (`Teacher` TEXT)", true},
		{"bracket", "CREATE TABLE t ([teacher] TEXT)", true},
		{"suffixed name", "CREATE TABLE t (teacher_id INTEGER)", false},
		{"inside literal", "CREATE TABLE t (role TEXT CHECK (role <> 'teacher'))", false},
		{"inside comment", "CREATE TABLE t (id INTEGER) -- teacher", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.HasIdentifier(tt.def, "teacher"))
		})
	}
}

func TestTokenMatcher_EnumValues(t *testing.T) {
	m := NewTokenMatcher([2]rune{'`', '`'}, [2]rune{'"', '"'})

	tests := []struct {
		name   string
		def    string
		want   []string
		wantOK bool
	}{
		{
			name:   "sqlite check",
			def:    `CREATE TABLE users (id INTEGER, "role" TEXT CHECK ("role" IN ('ADMIN', 'TEACHER')))`,
			want:   []string{"ADMIN", "TEACHER"},
			wantOK: true,
		},
		{
			name:   "mysql check with introducer",
			def:    "CREATE TABLE `users` (`role` varchar(20), CONSTRAINT `users_chk_1` CHECK ((`role` in (_utf8mb4'ADMIN',_utf8mb4'STUDENT'))))",
			want:   []string{"ADMIN", "STUDENT"},
			wantOK: true,
		},
		{
			name:   "mysql enum type",
			def:    "CREATE TABLE `users` (`role` enum('ADMIN','O''NEIL') NOT NULL)",
			want:   []string{"ADMIN", "O'NEIL"},
			wantOK: true,
		},
		{
			name: "no list",
			def:  "CREATE TABLE users (role TEXT NOT NULL)",
		},
		{
			name: "subquery is not a list",
			def:  "CREATE TABLE users (role TEXT CHECK (role IN (SELECT name FROM roles)))",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := m.EnumValues(tt.def, "role")
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
