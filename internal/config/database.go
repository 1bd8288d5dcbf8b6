package config

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"greentrack/internal/logger"
	"greentrack/internal/models"
)

// ErrSchemaPermission matches any SchemaPermissionError via errors.Is.
var ErrSchemaPermission = errors.New("permission denied for schema public")

// SchemaPermissionError reports that the application role cannot create
// tables. Its message carries the grant statements that fix it.
type SchemaPermissionError struct {
	User     string
	Database string
	Err      error
}

func (e *SchemaPermissionError) Error() string {
	return fmt.Sprintf(
		"permission denied for schema public. Run once as postgres:\n"+
			"  psql -U postgres -d %s -c \"GRANT ALL ON SCHEMA public TO %s; GRANT ALL ON DATABASE %s TO %s;\"\n"+
			"or set ADMIN_DATABASE_URL to let init-db apply the grants itself (cause: %v)",
		e.Database, e.User, e.Database, e.User, e.Err,
	)
}

func (e *SchemaPermissionError) Unwrap() error { return e.Err }

func (e *SchemaPermissionError) Is(target error) bool { return target == ErrSchemaPermission }

// Function variables used as test seams.
var (
	migrateFn    = Migrate
	grantAdminFn = grantViaAdmin
)

// OpenDB opens a GORM connection to Postgres. The caller owns the handle.
func OpenDB(s Settings, l *logrus.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(s.DSN()), &gorm.Config{
		Logger: logger.GormLogger(l, s.DBEcho),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return db, nil
}

// Migrate creates or updates every table of the schema.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(models.All()...)
}

// InitDB migrates the schema. A permission failure on schema public is either
// remediated through the admin connection (when configured) and retried, or
// returned as a SchemaPermissionError.
func InitDB(ctx context.Context, db *gorm.DB, s Settings) error {
	err := migrateFn(db.WithContext(ctx))
	if err == nil {
		logrus.Info("Database tables initialized")
		return nil
	}
	if !isSchemaPermission(err) {
		return fmt.Errorf("migrate: %w", err)
	}
	if s.AdminDatabaseURL == "" {
		return &SchemaPermissionError{User: s.DBUser, Database: s.DBName, Err: err}
	}
	if gerr := grantAdminFn(ctx, s); gerr != nil {
		return fmt.Errorf("grant schema via admin connection: %w", gerr)
	}
	if err := migrateFn(db.WithContext(ctx)); err != nil {
		return fmt.Errorf("migrate after grant: %w", err)
	}
	logrus.Info("Database tables initialized after schema grant")
	return nil
}

// ResetDB drops every table (dependent views go with them) and recreates the
// schema.
func ResetDB(ctx context.Context, db *gorm.DB, s Settings) error {
	if err := dropViews(ctx, db); err != nil {
		return err
	}
	all := models.All()
	// drop in reverse dependency order
	for i := len(all) - 1; i >= 0; i-- {
		if err := db.WithContext(ctx).Migrator().DropTable(all[i]); err != nil {
			return fmt.Errorf("drop table: %w", err)
		}
	}
	logrus.Info("Database tables dropped")
	return InitDB(ctx, db, s)
}

// analyticsViews read from transport_stage_fact and go before it.
var analyticsViews = []string{"emissions_per_vehicle", "emissions_per_order", "fleet_utilization"}

func dropViews(ctx context.Context, db *gorm.DB) error {
	kind := "VIEW"
	if db.Dialector.Name() == "postgres" {
		kind = "MATERIALIZED VIEW"
		if err := db.WithContext(ctx).Exec("DROP FUNCTION IF EXISTS refresh_analytics_materialized_views()").Error; err != nil {
			return fmt.Errorf("drop refresh function: %w", err)
		}
	}
	for _, v := range analyticsViews {
		if err := db.WithContext(ctx).Exec(fmt.Sprintf("DROP %s IF EXISTS %s", kind, v)).Error; err != nil {
			return fmt.Errorf("drop view %s: %w", v, err)
		}
	}
	return nil
}

func isSchemaPermission(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "42501" {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "permission denied") && strings.Contains(msg, "schema public")
}

// GrantStatements returns the statements the admin connection executes.
func GrantStatements(user, database string) []string {
	return []string{
		"GRANT ALL ON SCHEMA public TO " + pq.QuoteIdentifier(user),
		"GRANT ALL ON DATABASE " + pq.QuoteIdentifier(database) + " TO " + pq.QuoteIdentifier(user),
	}
}

func grantViaAdmin(ctx context.Context, s Settings) error {
	admin, err := sql.Open("postgres", s.AdminDatabaseURL)
	if err != nil {
		return err
	}
	defer admin.Close()

	for _, stmt := range GrantStatements(s.DBUser, s.DBName) {
		if _, err := admin.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%s: %w", stmt, err)
		}
	}
	logrus.WithField("user", s.DBUser).Info("Granted schema public and database via admin connection")
	return nil
}
