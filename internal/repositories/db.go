package repositories

import (
	"time"

	"github.com/go-faster/errors"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/rohits-web03/codedrop/internal/models"
)

// ConnectDatabase opens the metadata database and runs migrations.
func ConnectDatabase(driver, dsn string, log *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, errors.Errorf("unknown database driver: %s", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         NewGormLogger(log, time.Second),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "connect to database")
	}
	// Run migrations
	if err := db.AutoMigrate(&models.Transfer{}); err != nil {
		return nil, errors.Wrap(err, "migrate")
	}
	log.Info("connected to database", zap.String("driver", driver))
	return db, nil
}
