// Package dsn builds database connection strings and gorm dialectors from the configuration.
package dsn

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/TigerArchive/TigerArchive/internal/config"
)

// Create builds the Data Source Name for the configured engine.
func Create(dbCfg *config.Config) string {
	db := dbCfg.DB

	switch db.GormEngine {
	case config.EnginePostgres:
		u := url.URL{
			Scheme: "postgres",
			User:   url.UserPassword(db.User, db.Password),
			Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
			Path:   "/" + db.Name,
		}

		u.RawQuery = db.Extras

		return u.String()
	case config.EngineSQLite:
		if db.Extras == "" {
			return db.Name
		}

		return fmt.Sprintf("file:%s?%s", strings.TrimPrefix(db.Name, "file:"), db.Extras)
	default:
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
			db.User,
			db.Password,
			db.Host,
			db.Port,
			db.Name,
			db.Extras,
		)
	}
}

// Dialector returns the gorm dialector for the configured engine.
func Dialector(dbCfg *config.Config) (gorm.Dialector, error) {
	switch dbCfg.DB.GormEngine {
	case config.EngineMySQL:
		return mysql.Open(Create(dbCfg)), nil
	case config.EnginePostgres:
		return postgres.Open(Create(dbCfg)), nil
	case config.EngineSQLite, "":
		return sqlite.Open(Create(dbCfg)), nil
	}

	return nil, fmt.Errorf("%w: %q", config.ErrUnsupportedGormEngine, dbCfg.DB.GormEngine)
}
