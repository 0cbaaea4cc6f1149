package app

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vietanh2810/event-hub/internal/api"
	"github.com/vietanh2810/event-hub/internal/config"
	"github.com/vietanh2810/event-hub/internal/db"
	"github.com/vietanh2810/event-hub/internal/logger"
	"github.com/vietanh2810/event-hub/internal/repository"
	"github.com/vietanh2810/event-hub/internal/repository/dao"
	"github.com/vietanh2810/event-hub/internal/service"
)

func Start() error {
	conf, err := config.Load("./cmd/app/config.yml")
	if err != nil {
		return fmt.Errorf("failed to initialize config -> %w", err)
	}

	if err = logger.Init(conf.API.Environment); err != nil {
		return fmt.Errorf("failed to initialize logger -> %w", err)
	}
	defer func() { _ = zap.L().Sync() }()

	dbURL := os.Getenv("DATABASE_URL")
	var postgresDB *gorm.DB
	if dbURL != "" {
		postgresDB, err = db.OpenPostgresWithURL(dbURL)
	} else {
		postgresDB, err = db.OpenPostgres(conf.Postgres)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database -> %w", err)
	}

	sqlDB, err := postgresDB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database handle -> %w", err)
	}
	if err = db.Migrate(sqlDB); err != nil {
		return fmt.Errorf("failed to migrate database -> %w", err)
	}

	if err = ensureAdmin(conf.Admin, postgresDB); err != nil {
		return fmt.Errorf("failed to create the admin account -> %w", err)
	}

	s := api.NewServer(conf, postgresDB)

	addr := ":" + s.Config.API.Port
	zap.L().Info(fmt.Sprintf("starting server at %v", addr))
	if err = s.Router.Run(addr); err != nil {
		return fmt.Errorf("failed to start the server -> %w", err)
	}

	return nil
}

// ensureAdmin creates or promotes the configured superuser. Nothing happens
// when no admin username is configured.
func ensureAdmin(conf *config.AdminConfig, gdb *gorm.DB) error {
	if conf == nil || conf.Username == "" {
		return nil
	}

	svc := service.NewAuthService(repository.NewUserRepository(dao.NewUserDAO(gdb)))
	admin, err := svc.EnsureSuperuser(context.Background(), conf.Username, conf.Email, conf.Password)
	if err != nil {
		return err
	}

	zap.L().Info("admin account ready", zap.Uint("user_id", admin.ID), zap.String("username", admin.Username))

	return nil
}
