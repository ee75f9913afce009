package database

import (
	"LinkGate-Backend/internal/domain"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AutoMigrate creates or updates tables for all persisted models.
func AutoMigrate(db *gorm.DB, log *zap.Logger) error {
	// order matters for foreign keys
	models := []interface{}{
		&domain.CustomDomain{},
		&domain.Link{},
		&domain.ClickEvent{},
	}

	for _, model := range models {
		modelName := fmt.Sprintf("%T", model)
		if err := db.AutoMigrate(model); err != nil {
			log.Error("failed to migrate model", zap.String("model", modelName), zap.Error(err))
			return fmt.Errorf("failed to migrate model %s: %w", modelName, err)
		}
		log.Debug("model migrated", zap.String("model", modelName))
	}

	log.Info("database auto-migration completed", zap.Int("models", len(models)))
	return nil
}
