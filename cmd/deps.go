package cmd

import (
	"log"

	"gorm.io/gorm"

	"vitastore.GO/api"
	"vitastore.GO/config"
	"vitastore.GO/core/cache"
	inventoryRepo "vitastore.GO/model/repository/inventory"
	"vitastore.GO/service/notify"
	"vitastore.GO/service/search"
)

// openDB connects and, for sqlite, creates the schema.
func openDB() (*gorm.DB, error) {
	db, err := config.NewDB()
	if err != nil {
		return nil, err
	}
	if config.DBDriver() == "sqlite" {
		if err := inventoryRepo.AutoMigrate(db); err != nil {
			return nil, err
		}
	}
	return db, nil
}

// services wires what commands share with the server. Commands never
// book stock-outs, so notifications are discarded. The summary cache is
// Redis when reachable so invalidations reach the running server.
func services(db *gorm.DB) *api.Services {
	config.InitRedis()
	log.Println(config.PingRedis())
	s := api.NewServices(db, notify.Discard{}, nil, cache.NewStore(config.RedisClient), config.App().SummaryCacheTTL)
	idx, err := search.FromEnv(db)
	if err != nil {
		log.Printf("search disabled: %v", err)
	}
	s.Search = idx
	return s
}
