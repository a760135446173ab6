package database

import (
	"log"

	"registro-accidentes/backend/models"

	"gorm.io/gorm"
)

// RunMigrations runs database migrations to ensure tables are up to date.
// Existing data is preserved; AutoMigrate only adds missing columns/indexes.
func RunMigrations(db *gorm.DB) error {
	log.Println("Running database migrations...")

	err := db.AutoMigrate(
		&models.Evento{},
	)

	if err != nil {
		log.Printf("Migration failed: %v", err)
		return err
	}

	return nil
}
