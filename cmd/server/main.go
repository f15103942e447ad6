package main

import (
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"

	"gorm.io/driver/postgres"
	gormdb "gorm.io/gorm"

	"github.com/lakshc/picauth/auth"
	"github.com/lakshc/picauth/config"
	"github.com/lakshc/picauth/server"
	"github.com/lakshc/picauth/stores"
	"github.com/lakshc/picauth/stores/gorm"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	store, err := openStore(cfg)
	if err != nil {
		log.Fatalf("opening user store: %v", err)
	}

	handler := server.New(cfg, store)

	addr := fmt.Sprintf(":%d", cfg.Port)
	slog.Info("listening", "addr", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatal(err)
	}
}

func openStore(cfg config.App) (auth.UserStore, error) {
	if cfg.DatabaseURL == "" {
		slog.Info("no DATABASE_URL set, using file store", "dir", cfg.DataDir)
		return stores.NewFSUserStore(cfg.DataDir), nil
	}

	db, err := gormdb.Open(postgres.Open(cfg.DatabaseURL), &gormdb.Config{
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}
	if err := gorm.AutoMigrate(db); err != nil {
		return nil, err
	}
	return gorm.NewUserStore(db), nil
}
