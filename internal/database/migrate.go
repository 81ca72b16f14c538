package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/noah-isme/studyboard-api/internal/models"
)

// Migrate creates or updates every table the API reads and writes.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Student{},
		&models.Teacher{},
		&models.Class{},
		&models.Assignment{},
		&models.Grade{},
		&models.PerformanceSample{},
		&models.PredictionRecord{},
		&models.Message{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}
