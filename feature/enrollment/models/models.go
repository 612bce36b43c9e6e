package models

import "time"

// Role values accepted in users.role.
const (
	RoleAdmin     = "ADMIN"
	RoleRegistrar = "REGISTRAR"
	RoleTeacher   = "TEACHER"
	RoleStudent   = "STUDENT"
)

// Roles lists every accepted role in display order.
var Roles = []string{RoleAdmin, RoleRegistrar, RoleTeacher, RoleStudent}

type User struct {
	ID           int64      `gorm:"primaryKey;column:id;type:BIGINT"`
	Username     string     `gorm:"column:username;type:VARCHAR(64);not null"`
	PasswordHash string     `gorm:"column:password_hash;type:VARCHAR(255);not null"`
	FullName     *string    `gorm:"column:full_name;type:VARCHAR(128)"`
	Role         string     `gorm:"column:role;type:VARCHAR(16);not null"`
	CreatedAt    *time.Time `gorm:"column:created_at;type:DATETIME"`
	UpdatedAt    *time.Time `gorm:"column:updated_at;type:DATETIME"`
}

func (User) TableName() string {
	return "users"
}

type Teacher struct {
	ID         int64      `gorm:"primaryKey;column:id;type:BIGINT"`
	UserID     *int64     `gorm:"column:user_id;type:BIGINT"`
	EmployeeNo string     `gorm:"column:employee_no;type:VARCHAR(32);not null"`
	Department *string    `gorm:"column:department;type:VARCHAR(64)"`
	CreatedAt  *time.Time `gorm:"column:created_at;type:DATETIME"`
	UpdatedAt  *time.Time `gorm:"column:updated_at;type:DATETIME"`
}

func (Teacher) TableName() string {
	return "teachers"
}

type Subject struct {
	ID        int64      `gorm:"primaryKey;column:id;type:BIGINT"`
	Code      string     `gorm:"column:code;type:VARCHAR(16);not null"`
	Title     string     `gorm:"column:title;type:VARCHAR(128);not null"`
	Units     int        `gorm:"column:units;type:INT;not null"`
	CreatedAt *time.Time `gorm:"column:created_at;type:DATETIME"`
	UpdatedAt *time.Time `gorm:"column:updated_at;type:DATETIME"`
}

func (Subject) TableName() string {
	return "subjects"
}

type Section struct {
	ID         int64      `gorm:"primaryKey;column:id;type:BIGINT"`
	Name       string     `gorm:"column:name;type:VARCHAR(32);not null"`
	GradeLevel *string    `gorm:"column:grade_level;type:VARCHAR(8)"`
	SchoolYear string     `gorm:"column:school_year;type:VARCHAR(9);not null"`
	CreatedAt  *time.Time `gorm:"column:created_at;type:DATETIME"`
	UpdatedAt  *time.Time `gorm:"column:updated_at;type:DATETIME"`
}

func (Section) TableName() string {
	return "sections"
}

// ClassAssignment links a teacher to a subject taught in a section.
// Older installs stored the teacher, subject and section as free text.
type ClassAssignment struct {
	ID        int64      `gorm:"primaryKey;column:id;type:BIGINT"`
	TeacherID *int64     `gorm:"column:teacher_id;type:BIGINT"`
	SubjectID *int64     `gorm:"column:subject_id;type:BIGINT"`
	SectionID *int64     `gorm:"column:section_id;type:BIGINT"`
	CreatedAt *time.Time `gorm:"column:created_at;type:DATETIME"`
	UpdatedAt *time.Time `gorm:"column:updated_at;type:DATETIME"`
}

func (ClassAssignment) TableName() string {
	return "class_assignments"
}
