// Package models contains database model definitions.
package models

// Setting is a named value stored in the database, for example the import marker.
type Setting struct {
	ID    uint64 `gorm:"primaryKey"`
	Name  string `gorm:"uniqueIndex;size:191"`
	Value []byte
}
