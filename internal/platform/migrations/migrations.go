package migrations

import (
	"gorm.io/gorm"

	catalogpg "github.com/Apurer/storekeeper/internal/domains/catalog/adapters/persistence/postgres"
	orderspg "github.com/Apurer/storekeeper/internal/domains/orders/adapters/persistence/postgres"
	ownerspg "github.com/Apurer/storekeeper/internal/domains/owners/adapters/persistence/postgres"
)

// Models returns every record of the bounded contexts, parents before children.
func Models() []any {
	var models []any
	models = append(models, ownerspg.Models()...)
	models = append(models, catalogpg.Models()...)
	models = append(models, orderspg.Models()...)
	return models
}

// Run applies the schema for the bounded contexts.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(Models()...)
}
