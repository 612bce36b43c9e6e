package models_test

import (
	"testing"

	"enrollment-manager/feature/enrollment/models"

	"github.com/stretchr/testify/assert"
)

func TestTableNames(t *testing.T) {
	assert.Equal(t, "users", models.User{}.TableName())
	assert.Equal(t, "teachers", models.Teacher{}.TableName())
	assert.Equal(t, "subjects", models.Subject{}.TableName())
	assert.Equal(t, "sections", models.Section{}.TableName())
	assert.Equal(t, "class_assignments", models.ClassAssignment{}.TableName())
}

func TestRoles(t *testing.T) {
	assert.Equal(t, []string{"ADMIN", "REGISTRAR", "TEACHER", "STUDENT"}, models.Roles)
}
