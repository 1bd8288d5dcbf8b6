package main

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"greentrack/internal/config"
	"greentrack/internal/logger"
)

// app is the state shared by all subcommands. Settings and the logger are
// resolved once before any subcommand runs.
type app struct {
	load   func() config.Settings
	openDB func(config.Settings, *logrus.Logger) (*gorm.DB, func(), error)

	settings config.Settings
	log      *logrus.Logger
}

func openPostgres(s config.Settings, l *logrus.Logger) (*gorm.DB, func(), error) {
	db, err := config.OpenDB(s, l)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return db, closeFn, nil
}

// withDB opens the database for the duration of fn.
func (a *app) withDB(fn func(db *gorm.DB) error) error {
	db, closeFn, err := a.openDB(a.settings, a.log)
	if err != nil {
		return err
	}
	defer closeFn()
	return fn(db)
}

func NewRootCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	return newRootCommand(&app{load: config.Load, openDB: openPostgres}, stdin, stdout, stderr)
}

func newRootCommand(a *app, stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	var logLevel string
	rc := &cobra.Command{
		Use:   "greentrack",
		Short: "Freight CSV ingestion and CO₂ stage fact pipeline.",
		Long: `greentrack loads planning extracts (addresses, transport types, vehicles,
freight units and orders) into Postgres and derives transport_stage_fact,
one row per order stage with load ratio and CO₂ emissions.

Configuration comes from the environment and an optional .env file.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.settings = a.load()
			if logLevel != "" {
				a.settings.LogLevel = logLevel
			}
			a.log = logger.Setup(logger.Options{
				Level: a.settings.LogLevel,
				File:  a.settings.LogFile,
				Echo:  a.settings.DBEcho,
			})
			return nil
		},
	}
	rc.PersistentFlags().StringVar(&logLevel, "log-level", "", "override LOG_LEVEL")

	rc.AddCommand(newInitDBCommand(a, stdout))
	rc.AddCommand(newIngestCommand(a, stdout))
	rc.AddCommand(newBuildFactsCommand(a, stdout))
	rc.AddCommand(newRefreshViewsCommand(a, stdout))
	rc.AddCommand(newReportCommand(a, stdout))
	rc.AddCommand(newTokenCommand(a, stdout))

	rc.SetIn(stdin)
	rc.SetOut(stdout)
	rc.SetErr(stderr)
	return rc
}

func printf(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
