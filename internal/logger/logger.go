package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/natefinch/lumberjack"
	logrus "github.com/sirupsen/logrus"
	gormlogger "gorm.io/gorm/logger"
)

// Options controls where and how verbosely the process logs.
type Options struct {
	Level string // logrus level name; "info" when empty or invalid
	File  string // rotating log file; stderr when empty
	Echo  bool   // log every SQL statement
}

// Setup initializes Logrus, optionally writing through a rotating file.
func Setup(opts Options) *logrus.Logger {
	l := logrus.StandardLogger()

	var out io.Writer = os.Stderr
	if opts.File != "" {
		// Lumberjack for file rotation
		out = &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10, // megabytes
			MaxBackups: 7,
			MaxAge:     7, // days
			Compress:   true,
		}
	}
	l.SetOutput(out)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})

	level, err := logrus.ParseLevel(strings.TrimSpace(opts.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)
	return l
}

// GormLogger routes GORM's SQL logging through the given Logrus logger.
func GormLogger(l *logrus.Logger, echo bool) gormlogger.Interface {
	level := gormlogger.Warn
	if echo {
		level = gormlogger.Info
	}
	return gormlogger.New(
		l,
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}
