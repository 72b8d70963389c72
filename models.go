package main

import (
	"time"

	"gorm.io/datatypes"
)

// CourseDocument is the persisted course. There is one row per document
// name; the whole course lives in Body.
type CourseDocument struct {
	Name      string         `gorm:"primaryKey;size:64"`
	Body      datatypes.JSON `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
