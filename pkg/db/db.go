package db

import (
	"log"
	"os"
	"sync"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	constant "github.com/LeeinUITk17/fwserver/pkg/common"
	"github.com/LeeinUITk17/fwserver/pkg/models"
)

type DB struct {
	Conn *gorm.DB
}

var (
	instance *DB
	once     sync.Once
)

func GetInstance(dialector gorm.Dialector) *DB {
	var logger = constant.GetLogger()
	once.Do(func() {
		// TranslateError turns the sqlite unique-constraint violation into
		// gorm.ErrDuplicatedKey, which CreateIfAbsent relies on.
		conn, err := gorm.Open(dialector, &gorm.Config{TranslateError: true})
		if err != nil {
			log.Fatal("Failed to connect to database:", err)
		}

		logger.Info("Connected to database with dialector:", zap.String("dialector", dialector.Name()))

		instance = &DB{Conn: conn}

		err = instance.Conn.AutoMigrate(
			&models.Zone{},
			&models.Sensor{},
			&models.SensorLog{},
			&models.Camera{},
			&models.User{},
			&models.Alert{},
		)
		if err != nil {
			log.Fatal("Failed to migrate database:", err)
		}

		logger.Info("Database migration completed")

		if err := instance.Conn.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			log.Fatal("Failed to enable sqlite foreign key support", err)
		}

		if err := instance.Conn.Exec("PRAGMA journal_mode = WAL").Error; err != nil {
			log.Fatal("Failed to set sqlite journal mode", err)
		}

		// sqlite allows a single writer; serializing connections avoids
		// SQLITE_BUSY when the two pipelines insert concurrently.
		sqlDB, err := instance.Conn.DB()
		if err != nil {
			log.Fatal("Failed to get underlying sql.DB:", err)
		}
		sqlDB.SetMaxOpenConns(1)
	})
	return instance
}

func UseSqliteDialector() gorm.Dialector {
	var dbPath string
	var found bool
	if dbPath, found = os.LookupEnv(constant.EnvKeyFWDbPath); !found {
		dbPath = "firewatch.db"
	}
	return sqlite.Open(dbPath)
}

func UseMemorySqliteDialector() gorm.Dialector {
	return sqlite.Open("file::memory:?cache=shared")
}
