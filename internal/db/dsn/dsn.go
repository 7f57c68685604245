// Package dsn provides Data Source Name construction utilities for database connections.
package dsn

import (
	"fmt"

	"github.com/glebarez/sqlite"
	gormmysql "gorm.io/driver/mysql"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/go-jobboard/jobboard/internal/config"
)

const (
	// EngineMySQL selects the mysql gorm driver.
	EngineMySQL = "mysql"
	// EnginePostgres selects the postgres gorm driver.
	EnginePostgres = "postgres"
	// EngineSQLite selects the sqlite gorm driver (dev and testing).
	EngineSQLite = "sqlite"
)

// Create builds the Data Source Name from the configuration.
func Create(cfg *config.Config) string {
	switch cfg.DB.GormEngine {
	case EnginePostgres:
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s %s",
			cfg.DB.Host,
			cfg.DB.Port,
			cfg.DB.User,
			cfg.DB.Password,
			cfg.DB.Name,
			cfg.DB.Extras,
		)
	case EngineSQLite:
		return cfg.DB.Name
	default:
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
			cfg.DB.User,
			cfg.DB.Password,
			cfg.DB.Host,
			cfg.DB.Port,
			cfg.DB.Name,
			cfg.DB.Extras,
		)
	}
}

// Dialector returns the gorm dialector matching the configured engine.
func Dialector(cfg *config.Config) gorm.Dialector {
	switch cfg.DB.GormEngine {
	case EnginePostgres:
		return gormpostgres.Open(Create(cfg))
	case EngineSQLite:
		return sqlite.Open(Create(cfg))
	default:
		return gormmysql.Open(Create(cfg))
	}
}
