package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"docflow/internal/config"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Open connects to the relational database configured for dbType.
func Open(dbType string, cfg *config.Config) (*sql.DB, error) {
	dbType = config.StoreKind(dbType)
	dbCfg, ok := cfg.Databases[dbType]
	if !ok {
		return nil, fmt.Errorf("database config for %s not found", dbType)
	}

	var (
		db  *sql.DB
		err error
	)

	switch dbType {
	case "sqlite3":
		if dbCfg.DSN == "" {
			return nil, fmt.Errorf("sqlite dsn must be provided")
		}
		db, err = sql.Open("sqlite3", dbCfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("open sqlite database: %w", err)
		}
		// a single connection keeps ":memory:" databases alive and avoids
		// SQLITE_BUSY between concurrent writers
		db.SetMaxOpenConns(1)
	case "mysql":
		db, err = sql.Open("mysql", mysqlDSN(dbCfg))
		if err != nil {
			return nil, fmt.Errorf("open mysql database: %w", err)
		}
	case "postgres":
		db, err = sql.Open("postgres", postgresDSN(dbCfg))
		if err != nil {
			return nil, fmt.Errorf("open postgres database: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported driver: %s", dbType)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// mysqlDSN builds the go-sql-driver DSN. clientFoundRows makes RowsAffected
// count matched rows, which Update relies on to detect missing documents.
func mysqlDSN(c config.DatabaseConfig) string {
	dsn := c.DSN
	if dsn == "" {
		dsn = fmt.Sprintf("%s:%s@tcp(%s:%d)/%s", c.Username, c.Password, c.Host, c.Port, c.DBName)
		if c.Params != "" {
			dsn += "?" + c.Params
		}
	}
	for _, param := range []string{"parseTime=true", "clientFoundRows=true"} {
		key := param[:strings.IndexByte(param, '=')+1]
		if strings.Contains(dsn, key) {
			continue
		}
		if strings.Contains(dsn, "?") {
			dsn += "&" + param
		} else {
			dsn += "?" + param
		}
	}
	return dsn
}

func postgresDSN(c config.DatabaseConfig) string {
	if c.DSN != "" {
		return c.DSN
	}
	port := c.Port
	if port == 0 {
		port = 5432
	}
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s", c.Host, port, c.Username, c.Password, c.DBName)
	if c.Params != "" {
		dsn += " " + c.Params
	} else {
		dsn += " sslmode=disable"
	}
	return dsn
}

// Migrate ensures the documents table is present.
func Migrate(ctx context.Context, db *sql.DB, driver string) error {
	var stmts []string
	switch config.StoreKind(driver) {
	case "sqlite3":
		stmts = []string{
			`CREATE TABLE IF NOT EXISTS documents (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				filename TEXT NOT NULL,
				file_path TEXT NOT NULL,
				extracted_text TEXT NOT NULL,
				is_legal BOOLEAN,
				summary TEXT,
				translated_text TEXT,
				generated_document TEXT,
				translated_document TEXT,
				created_at DATETIME NOT NULL,
				updated_at DATETIME NOT NULL
			)`,
		}
	case "mysql":
		stmts = []string{
			`CREATE TABLE IF NOT EXISTS documents (
				id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
				filename TEXT NOT NULL,
				file_path TEXT NOT NULL,
				extracted_text LONGTEXT NOT NULL,
				is_legal BOOLEAN NULL,
				summary MEDIUMTEXT NULL,
				translated_text LONGTEXT NULL,
				generated_document TEXT NULL,
				translated_document TEXT NULL,
				created_at DATETIME(6) NOT NULL,
				updated_at DATETIME(6) NOT NULL,
				PRIMARY KEY (id)
			) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		}
	case "postgres":
		stmts = []string{
			`CREATE TABLE IF NOT EXISTS documents (
				id BIGSERIAL PRIMARY KEY,
				filename TEXT NOT NULL,
				file_path TEXT NOT NULL,
				extracted_text TEXT NOT NULL,
				is_legal BOOLEAN,
				summary TEXT,
				translated_text TEXT,
				generated_document TEXT,
				translated_document TEXT,
				created_at TIMESTAMPTZ NOT NULL,
				updated_at TIMESTAMPTZ NOT NULL
			)`,
		}
	default:
		return fmt.Errorf("unsupported driver for migration: %s", driver)
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate (%s): %w", driver, err)
		}
	}
	return nil
}
