package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fragrancepalette/backend/internal/bootstrap/data"
	"github.com/fragrancepalette/backend/internal/cache"
	"github.com/fragrancepalette/backend/internal/generator"
	"github.com/fragrancepalette/backend/internal/queue"
	"github.com/fragrancepalette/backend/internal/task"
	"github.com/fragrancepalette/backend/internal/worker"
	"github.com/fragrancepalette/backend/server"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var ServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the API server and queue consumer",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

func init() {
	RootCmd.AddCommand(ServerCmd)
}

func runServer() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	database, router, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer router.Close()
	log.Info("connected to database")

	if err := data.InitData(database); err != nil {
		return err
	}

	cacheClient := cache.New(cfg.Redis)
	defer cacheClient.Close()
	tasks := task.NewStore(cacheClient)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The queue is optional infrastructure: without it the service still
	// serves reads, but generation requests report processing unavailable.
	var publisher queue.Publisher = queue.Unavailable
	var broker *queue.Broker
	if broker, err = queue.Connect(cfg.Queue); err != nil {
		log.Warnf("RabbitMQ connection failed (continuing without it): %v", err)
		broker = nil
	} else {
		defer broker.Close()
		publisher = broker
		synth := generator.NewSynthesizer(database, generator.NewClient(cfg.LLM))
		w := worker.New(database, tasks, cacheClient, synth)
		if err := w.Start(ctx, broker); err != nil {
			return err
		}
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	server.Init(engine, server.Deps{
		Config:    cfg,
		DB:        database,
		Cache:     cacheClient,
		Tasks:     tasks,
		Publisher: publisher,
		Broker:    broker,
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: engine,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Infof("server is running on port %d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return errors.WithStack(err)
	case sig := <-quit:
		log.Infof("%s received, shutting down gracefully", sig)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	return errors.WithStack(srv.Shutdown(shutdownCtx))
}
