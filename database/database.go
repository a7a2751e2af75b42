package database

import (
	"github.com/Halocrea/voice-chat-bot/logging"
	"github.com/Halocrea/voice-chat-bot/models"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var log *zap.SugaredLogger

func init() {
	log = logging.InitLogger()
}

// Init opens the sqlite database at path and migrates every model the bot
// persists.
func Init(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(
		&models.Ownership{},
		&models.Preference{},
		&models.PermitGrant{},
		&models.GuildSetup{},
		&models.ModerationRole{},
	); err != nil {
		return nil, err
	}

	log.Infof("Database ready at %s", path)
	return db, nil
}
