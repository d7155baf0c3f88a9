package cmd

import (
	"os"
	"time"

	"github.com/fragrancepalette/backend/internal/bootstrap"
	"github.com/fragrancepalette/backend/internal/conf"
	"github.com/fragrancepalette/backend/internal/db"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var RootCmd = &cobra.Command{
	Use:   "fragrance-palette",
	Short: "Fragrance formula generation service",
	Long:  "Backend serving asynchronous fragrance formula generation: HTTP API, Redis task tracking, RabbitMQ work queue and a primary/replica database split.",
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		log.Errorf("%+v", err)
		os.Exit(1)
	}
}

func loadConfig() (*conf.Config, error) {
	cfg, err := conf.Load()
	if err != nil {
		return nil, err
	}
	bootstrap.InitLogger(cfg.Log)
	return cfg, nil
}

func openDatabase(cfg *conf.Config) (*db.DB, *db.Router, error) {
	if cfg.Database.PrimaryDSN == "" {
		return nil, nil, errors.New("DATABASE_URL_PRIMARY is required")
	}
	router, err := db.Open(cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	if err := router.AutoMigrate(); err != nil {
		router.Close()
		return nil, nil, err
	}
	return db.New(db.NewTimed(router, 200*time.Millisecond)), router, nil
}
