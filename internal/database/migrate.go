package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/pageza/recipe-search/backend/internal/model"
)

// RunMigrations creates the recipes table and its indexes when missing.
// Existing tables are left in place; AutoMigrate only adds what is absent.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.Recipe{}); err != nil {
		return fmt.Errorf("failed to migrate recipes: %w", err)
	}
	return nil
}
