package dao

import "gorm.io/gorm"

// InitTables creates the schema through gorm. Postgres deployments use the
// SQL migrations in internal/db instead; this is what tests run against.
func InitTables(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Event{},
		&Participant{},
		&Feedback{},
	)
}
