package db

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	_ "github.com/mattn/go-sqlite3"
)

// Tx is the common query surface of *sql.DB and *sql.Tx, allowing repository
// operations to run both inside and outside of transactions.
type Tx interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

type DB struct {
	Conn *sql.DB
}

func NewDB(fname string) (*DB, error) {
	conn, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_busy_timeout=5000", fname))
	if err != nil {
		return nil, fmt.Errorf("open failed: %v", err)
	}

	// SQLite permits a single writer at a time. Funneling all access through
	// one connection avoids SQLITE_BUSY under concurrent invocations.
	conn.SetMaxOpenConns(1)

	db := &DB{conn}
	if err := db.Init(); err != nil {
		return nil, fmt.Errorf("initialization failed: %v", err)
	}

	return db, nil
}

// Closes the underlying database handle used for all connections.
func (db *DB) Close() {
	db.Conn.Close()
}

func (db *DB) Init() error {
	log.Info("Configuring database")

	// Bootstrap table for per-user engagement records
	stmt := `
	create table
		if not exists
		users (
			id              string not null primary key,
			lastfm_username string,
			currency        int not null default 0,
			experience      int not null default 0,
			command_count   int not null default 0
		);
	`
	if _, err := db.Conn.Exec(stmt); err != nil {
		log.Error("Failed to execute statement", "stmt", strings.ReplaceAll(stmt, "\t", "  "), "err", err)
		return err
	}

	return nil
}

func (db *DB) Transaction(fn func(tx Tx) error) error {
	log.Debug("Transaction start", "fn", fn)

	tx, err := db.Conn.Begin()
	if err != nil {
		log.Debug("Transaction start failure", "fn", fn, "err", err)
		return err
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		log.Debug("Transaction internal failure", "fn", fn, "err", err)
		return err
	}

	if err := tx.Commit(); err != nil {
		log.Debug("Transaction commit failure", "fn", fn, "err", err)
		return err
	}

	log.Debug("Transaction complete", "fn", fn)
	return nil
}
