package bootstrap

import (
	"io"
	"os"

	"github.com/fragrancepalette/backend/internal/conf"
	"github.com/natefinch/lumberjack"
	log "github.com/sirupsen/logrus"
)

// InitLogger configures logrus from config; with LOG_FILE set, output also
// goes to a size-rotated file.
func InitLogger(cfg conf.Log) {
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	if cfg.File != "" {
		rotated := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSize,
			MaxAge:     cfg.MaxAge,
			MaxBackups: cfg.Backups,
			Compress:   cfg.Compress,
		}
		log.SetOutput(io.MultiWriter(os.Stderr, rotated))
	}
}
