package database

import (
	"gorm.io/gorm"
)

// Paginate limits a query to one page. A non-positive limit leaves the query unbounded.
func Paginate(offset, limit int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if limit <= 0 {
			return db
		}
		if offset < 0 {
			offset = 0
		}
		return db.Offset(offset).Limit(limit)
	}
}
