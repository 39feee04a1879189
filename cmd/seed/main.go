package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/google/uuid"

	"orghierarchy-backend/shared/config"
	"orghierarchy-backend/shared/database"
	"orghierarchy-backend/shared/hierarchy"
	"orghierarchy-backend/shared/logger"
	"orghierarchy-backend/shared/utils/permission"
)

// seedActorID is recorded as the actor of every seeded audit row.
var seedActorID = uuid.MustParse("00000000-0000-0000-0000-000000005eed")

func main() {
	config.LoadConfig()
	cfg := config.GetConfig()
	log := logger.Init(cfg.LogLevel, cfg.LogFormat)
	log.Info("starting database seeding")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := database.InitDatabase(); err != nil {
		log.WithError(err).Fatal("failed to initialize database")
	}
	defer database.CloseDatabase()

	db := database.GetDB()
	store := hierarchy.NewGormStore(db)
	svc := hierarchy.NewService(store, hierarchy.NewGormAuditSink(db), permission.NewRoleChecker(), cfg.GetHierarchyMaxDepth(), hierarchy.WithLogger(log))
	actor := hierarchy.Actor{ID: seedActorID, Email: "seed@orghierarchy.dev", Role: permission.RoleSuperAdmin}

	if _, err := database.SeedDemoHierarchy(ctx, store, svc, actor, log); err != nil {
		log.WithError(err).Fatal("failed to seed database")
	}
	log.Info("database seeding completed")
}
