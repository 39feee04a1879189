package main

import (
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"orghierarchy-backend/shared/config"
	"orghierarchy-backend/shared/database"
)

func main() {
	logrus.Info("starting database reset")

	config.LoadConfig()
	cfg := config.GetConfig()

	db, err := gorm.Open(postgres.Open(database.DSN(cfg)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		logrus.WithError(err).Fatal("database connection failed")
	}

	// Dependents first.
	tables := []string{
		"audit_logs",
		"organizations",
	}

	for _, table := range tables {
		logrus.WithField("table", table).Info("dropping table")
		if err := db.Exec("DROP TABLE IF EXISTS " + table + " CASCADE").Error; err != nil {
			logrus.WithError(err).WithField("table", table).Fatal("drop failed")
		}
	}

	logrus.Info("database reset completed, run cmd/seed to recreate the demo hierarchy")
}
