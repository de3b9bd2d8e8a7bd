package data

import (
	"database/sql"
	"embed"
	"log/slog"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

const (
	// DataFileName is the default run history database file name.
	DataFileName string = "data.db"

	// projection rows cascade on run delete only with foreign keys on
	dsnParams = "?_pragma=foreign_keys(1)"
)

var (
	//go:embed sql/*
	f embed.FS

	errDBNotInitialized = errors.New("database not initialized")
)

// Init creates the run history schema in the database at dbFilePath. It is
// safe to call on an existing database.
func Init(dbFilePath string) error {
	if dbFilePath == "" {
		return errors.New("dbFilePath not specified")
	}

	db, err := GetDB(dbFilePath)
	if err != nil {
		return errors.Wrapf(err, "error opening database: %s", dbFilePath)
	}
	defer db.Close()

	b, err := f.ReadFile("sql/ddl.sql")
	if err != nil {
		return errors.Wrap(err, "failed to read the schema creation file")
	}
	if _, err := db.Exec(string(b)); err != nil {
		return errors.Wrapf(err, "failed to create database schema in: %s", dbFilePath)
	}
	slog.Debug("db schema ready", "path", dbFilePath)

	return nil
}

// GetDB opens the sqlite database at path with foreign keys enforced.
func GetDB(path string) (*sql.DB, error) {
	conn, err := sql.Open("sqlite", path+dsnParams)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database: %s", path)
	}
	return conn, nil
}
