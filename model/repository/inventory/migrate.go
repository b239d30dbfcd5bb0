package inventory

import (
	"gorm.io/gorm"

	inventoryEntity "vitastore.GO/model/entity/inventory"
)

// AutoMigrate creates or updates the items and transactions tables.
// Used for sqlite and tests; mysql/postgres deployments run db:migrate.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&inventoryEntity.Item{}, &inventoryEntity.Transaction{})
}
