package database

import (
	"jdmport-backend/internal/domain"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Open opens a GORM DB from DSN (Supabase/Postgres pooler URL).
// PreferSimpleProtocol disables prepared statement caching to avoid 42P05
// ("prepared statement already exists") when using connection poolers (e.g. PgBouncer, Supabase, Render).
func Open(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
}

// AutoMigrate runs migrations for the catalog and ordering models. The browse
// API only reads them; the admin system owns the write path.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.CarDetail{},
		&domain.CarDetailOption{},
		&domain.Feature{},
		&domain.Car{},
		&domain.CarDetailEntry{},
		&domain.Ordering{},
	)
}
