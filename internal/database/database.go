package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const (
	DefaultCharset = "utf8"
	DefaultCollate = "utf8_general_ci"
)

var (
	ErrModelAlreadyRegistered = errors.New("model already registered")
	ErrInvalidModel           = errors.New("invalid model")
)

// Options is the connection descriptor. Values are passed to the driver
// as they are.
type Options struct {
	Dialect        string
	Host           string
	Port           int
	Username       string
	Password       string
	Database       string
	Charset        string
	Collate        string
	ConnectTimeout time.Duration
	Logger         zerolog.Logger
}

type DB struct {
	gorm    *gorm.DB
	dialect string
	opts    Options
	models  []any
	tables  []string
	closers []func()
}

// Open builds a connection for the dialect named in opts. No round trip
// to a database server is made, see Authenticate.
func Open(opts Options) (*DB, error) {
	dialect, err := LookupDialect(opts.Dialect)
	if err != nil {
		return nil, err
	}
	if opts.Port == 0 {
		opts.Port = defaultPort(dialect)
	}

	switch dialect {
	case DialectPostgres:
		return openPostgres(opts)
	case DialectMySQL:
		return openMySQL(opts)
	default:
		return openSQLite(opts)
	}
}

// New wraps an already opened *sql.DB.
func New(conn *sql.DB, dialect string, opts Options) (*DB, error) {
	dialect, err := LookupDialect(dialect)
	if err != nil {
		return nil, err
	}

	var dialector gorm.Dialector
	switch dialect {
	case DialectPostgres:
		dialector = postgres.New(postgres.Config{Conn: conn})
	case DialectMySQL:
		dialector = gormmysql.New(gormmysql.Config{
			Conn:                      conn,
			SkipInitializeWithVersion: true,
		})
	default:
		dialector = &sqlite.Dialector{Conn: conn}
	}
	return open(dialector, dialect, opts)
}

func open(dialector gorm.Dialector, dialect string, opts Options) (*DB, error) {
	gormDB, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 newGormLogger(opts.Logger),
		SkipDefaultTransaction: true,
		DisableAutomaticPing:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", dialect, err)
	}

	return &DB{
		gorm:    gormDB,
		dialect: dialect,
		opts:    opts,
	}, nil
}

func openPostgres(opts Options) (*DB, error) {
	poolCfg, err := postgresPoolConfig(opts)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}

	db, err := New(stdlib.OpenDBFromPool(pool), DialectPostgres, opts)
	if err != nil {
		pool.Close()
		return nil, err
	}
	db.closers = append(db.closers, pool.Close)
	return db, nil
}

func postgresPoolConfig(opts Options) (*pgxpool.Config, error) {
	connURL := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(opts.Host, strconv.Itoa(opts.Port)),
		Path:   "/" + opts.Database,
	}
	if opts.Username != "" {
		connURL.User = url.UserPassword(opts.Username, opts.Password)
	}

	poolCfg, err := pgxpool.ParseConfig(connURL.String())
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}
	poolCfg.ConnConfig.ConnectTimeout = opts.ConnectTimeout
	if opts.Charset != "" {
		poolCfg.ConnConfig.RuntimeParams["client_encoding"] = postgresEncoding(opts.Charset)
	}
	return poolCfg, nil
}

func postgresEncoding(charset string) string {
	switch strings.ToLower(charset) {
	case "utf8", "utf8mb4", "utf-8":
		return "UTF8"
	}
	return charset
}

func openMySQL(opts Options) (*DB, error) {
	connector, err := mysql.NewConnector(mysqlConfig(opts))
	if err != nil {
		return nil, fmt.Errorf("create mysql connector: %w", err)
	}
	return New(sql.OpenDB(connector), DialectMySQL, opts)
}

func mysqlConfig(opts Options) *mysql.Config {
	cfg := mysql.NewConfig()
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(opts.Host, strconv.Itoa(opts.Port))
	cfg.User = opts.Username
	cfg.Passwd = opts.Password
	cfg.DBName = opts.Database
	cfg.Collation = opts.Collate
	cfg.Timeout = opts.ConnectTimeout
	cfg.ParseTime = true
	return cfg
}

// openSQLite treats the database name as the file path.
func openSQLite(opts Options) (*DB, error) {
	path := opts.Database
	if path == "" {
		path = ":memory:"
	}

	db, err := open(sqlite.Open(path), DialectSQLite, opts)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.gorm.DB()
	if err != nil {
		return nil, err
	}
	// A single writer, and the same in-memory database for every query.
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

func (db *DB) Dialect() string {
	return db.dialect
}

func (db *DB) Options() Options {
	return db.opts
}

// Register associates models with the connection so that Sync manages
// their tables.
func (db *DB) Register(models ...any) error {
	for _, model := range models {
		stmt := &gorm.Statement{DB: db.gorm}
		err := stmt.Parse(model)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidModel, err)
		}

		table := stmt.Schema.Table
		if slices.Contains(db.tables, table) {
			return fmt.Errorf("%w: %s", ErrModelAlreadyRegistered, table)
		}
		db.models = append(db.models, model)
		db.tables = append(db.tables, table)
	}
	return nil
}

// Tables returns the table names of the registered models in
// registration order.
func (db *DB) Tables() []string {
	return slices.Clone(db.tables)
}

// WithContext returns a gorm session bound to ctx.
func (db *DB) WithContext(ctx context.Context) *gorm.DB {
	return db.gorm.WithContext(ctx)
}

func (db *DB) Close() error {
	sqlDB, err := db.gorm.DB()
	if err == nil {
		err = sqlDB.Close()
	}
	for _, c := range db.closers {
		c()
	}
	return err
}
