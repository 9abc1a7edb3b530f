package database

import (
	"time"

	"wuroud-pos/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var DB *gorm.DB

// Connect opens the MySQL connection and syncs the schema.
// The shop's machine often boots faster than its database, so we retry.
func Connect(dsn string, log *zap.Logger) error {
	var err error

	for i := 0; i < 5; i++ {
		DB, err = gorm.Open(mysql.Open(dsn), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Warn),
		})
		if err == nil {
			break
		}
		log.Warn("failed to connect to database, retrying in 2 seconds",
			zap.Int("attempt", i+1), zap.Error(err))
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return err
	}

	log.Info("✅ Successfully connected to MySQL!")

	err = DB.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.SaleTransaction{},
		&models.InvoiceSequence{},
		&models.DailyTotal{},
	)
	if err != nil {
		return err
	}

	log.Info("✅ Database Schema Synced!")
	return nil
}
