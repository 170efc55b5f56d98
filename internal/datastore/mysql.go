package datastore

import (
	"fmt"

	"github.com/avikko/labelrun-go/internal/conf"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// MySQLStore implements Interface for MySQL
type MySQLStore struct {
	DataStore
	Settings *conf.Settings
}

// Open sets up the MySQL database connection and migrates the schema.
func (store *MySQLStore) Open() error {
	cfg := &store.Settings.Output.MySQL
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		cfg.Username, cfg.Password, cfg.Host, cfg.Port, cfg.Database)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{Logger: createGormLogger()})
	if err != nil {
		getLogger().Error("Failed to open MySQL database",
			"host", cfg.Host,
			"port", cfg.Port,
			"database", cfg.Database,
			"error", err)
		return fmt.Errorf("failed to open MySQL database: %w", err)
	}

	store.DB = db
	return performAutoMigration(db, store.Settings.Debug,
		"MySQL", fmt.Sprintf("%s:%s/%s", cfg.Host, cfg.Port, cfg.Database))
}

// Close releases the MySQL connection pool.
func (store *MySQLStore) Close() error {
	if store.DB == nil {
		return fmt.Errorf("database connection is not initialized")
	}
	sqlDB, err := store.DB.DB()
	if err != nil {
		getLogger().Error("Failed to retrieve generic DB object", "error", err)
		return err
	}
	if err := sqlDB.Close(); err != nil {
		getLogger().Error("Failed to close MySQL database", "error", err)
		return err
	}
	return nil
}
