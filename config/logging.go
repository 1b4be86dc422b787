package config

import (
	"fmt"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// SetupLogging configures the global logrus logger. An empty File keeps stderr.
func SetupLogging(conf LogSettings) error {
	level, err := log.ParseLevel(conf.Level)
	if err != nil {
		return fmt.Errorf("unknown logging level %q: %w", conf.Level, err)
	}
	log.SetLevel(level)

	if conf.File != "" {
		log.SetOutput(&lumberjack.Logger{
			Filename:   conf.File,
			MaxSize:    32, // megabytes
			MaxBackups: 2,
			MaxAge:     28, // days
			Compress:   true,
		})
	} else {
		log.SetOutput(os.Stderr)
	}

	log.SetFormatter(&log.TextFormatter{
		PadLevelText:    true,
		DisableColors:   conf.File != "",
		FullTimestamp:   true,
		TimestampFormat: time.DateTime,
	})
	return nil
}
