package database

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownDialect = errors.New("unknown dialect")

const (
	DialectPostgres = "postgres"
	DialectMySQL    = "mysql"
	DialectSQLite   = "sqlite"
)

var dialectAliases = map[string]string{
	DialectPostgres: DialectPostgres,
	"postgresql":    DialectPostgres,
	DialectMySQL:    DialectMySQL,
	DialectSQLite:   DialectSQLite,
	"sqlite3":       DialectSQLite,
}

// LookupDialect returns the canonical name of a supported dialect.
func LookupDialect(name string) (string, error) {
	dialect, ok := dialectAliases[strings.ToLower(name)]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownDialect, name)
	}
	return dialect, nil
}

func defaultPort(dialect string) int {
	switch dialect {
	case DialectPostgres:
		return 5432
	case DialectMySQL:
		return 3306
	}
	return 0
}
