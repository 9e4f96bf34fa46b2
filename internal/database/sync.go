package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var ErrAuthenticationFailed = errors.New("database authentication failed")

// mysql ER_ACCESS_DENIED_ERROR
const mysqlAccessDenied = 1045

// Authenticate checks connectivity and credentials with a round trip to
// the server.
func (db *DB) Authenticate(ctx context.Context) error {
	sqlDB, err := db.gorm.DB()
	if err != nil {
		return err
	}

	err = sqlDB.PingContext(ctx)
	if err == nil {
		return nil
	}
	if isAuthError(err) {
		return fmt.Errorf("%w: %w", ErrAuthenticationFailed, err)
	}
	return fmt.Errorf("connect to %s database: %w", db.dialect, err)
}

func isAuthError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.InvalidPassword ||
			pgErr.Code == pgerrcode.InvalidAuthorizationSpecification
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlAccessDenied
	}
	return false
}

type SyncOptions struct {
	// Force drops every registered table before creating it again.
	// All rows stored in those tables are lost.
	Force bool
}

// Sync creates the tables of the registered models. Without Force,
// existing tables are kept and only missing columns are added.
func (db *DB) Sync(ctx context.Context, opts SyncOptions) error {
	tx := db.migrationSession(ctx)

	if opts.Force {
		err := tx.Migrator().DropTable(db.models...)
		if err != nil {
			return fmt.Errorf("drop tables %s: %w", strings.Join(db.tables, ", "), err)
		}
	}

	err := tx.AutoMigrate(db.models...)
	if err != nil {
		return fmt.Errorf("create tables %s: %w", strings.Join(db.tables, ", "), err)
	}
	return nil
}

// migrationSession carries the table charset and collation for mysql.
// Postgres has no per-table charset, client_encoding covers it.
func (db *DB) migrationSession(ctx context.Context) *gorm.DB {
	tx := db.gorm.WithContext(ctx)
	if db.dialect != DialectMySQL {
		return tx
	}

	var options []string
	if db.opts.Charset != "" {
		options = append(options, "CHARSET="+db.opts.Charset)
	}
	if db.opts.Collate != "" {
		options = append(options, "COLLATE="+db.opts.Collate)
	}
	if len(options) == 0 {
		return tx
	}
	return tx.Set("gorm:table_options", strings.Join(options, " "))
}
