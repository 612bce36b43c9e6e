package schema

import (
	"fmt"
	"reflect"
	"strings"
)

// ColumnsFromModel builds column specs from the gorm tags of a model struct.
// Only fields carrying both "column:" and "type:" are considered; the ORM entity
// models are the single place column types are spelled out.
func ColumnsFromModel(model any) ([]ColumnSpec, error) {
	t := reflect.TypeOf(model)
	if t == nil {
		return nil, fmt.Errorf("model is nil")
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("model %s is not a struct", t)
	}

	var columns []ColumnSpec
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("gorm")
		name := parseGormColumn(tag)
		if name == "" {
			continue
		}
		typ := parseGormType(tag)
		if typ == "" {
			return nil, fmt.Errorf("field %s.%s has no gorm type", t.Name(), t.Field(i).Name)
		}
		pk := hasGormFlag(tag, "primaryKey")
		columns = append(columns, ColumnSpec{
			Name:         name,
			DeclaredType: typ,
			Nullable:     !pk && !hasGormFlag(tag, "not null"),
			PrimaryKey:   pk,
		})
	}
	return columns, nil
}

// TableNameOf returns the TableName() of a gorm model.
func TableNameOf(model any) (string, error) {
	t := reflect.TypeOf(model)
	if t == nil {
		return "", fmt.Errorf("model is nil")
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if tabler, ok := reflect.New(t).Interface().(interface{ TableName() string }); ok {
		return tabler.TableName(), nil
	}
	return "", fmt.Errorf("model %s does not implement TableName", t.Name())
}

func parseGormColumn(tag string) string {
	for _, p := range strings.Split(tag, ";") {
		if strings.HasPrefix(p, "column:") {
			return strings.TrimPrefix(p, "column:")
		}
	}
	return ""
}

func parseGormType(tag string) string {
	for _, p := range strings.Split(tag, ";") {
		if strings.HasPrefix(p, "type:") {
			return strings.TrimPrefix(p, "type:")
		}
	}
	return ""
}

func hasGormFlag(tag, flag string) bool {
	for _, p := range strings.Split(tag, ";") {
		if strings.EqualFold(strings.TrimSpace(p), flag) {
			return true
		}
	}
	return false
}
