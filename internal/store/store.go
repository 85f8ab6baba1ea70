package store

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sync"

	_ "modernc.org/sqlite" // Pure Go SQLite driver - no CGO required
)

// TxMode selects the access mode of a scoped transaction.
type TxMode int

const (
	// ReadOnly transactions may only query.
	ReadOnly TxMode = iota
	// ReadWrite transactions may mutate and take the write lock up front.
	ReadWrite
)

// Tables managed by the store, in migration order.
const (
	TableProductos      = "productos"
	TableCarrito        = "carrito"
	TableConfig         = "config"
	TableSincronizacion = "sincronizacion"
	TableCompras        = "compras"
)

// migrations holds one idempotent schema script per version. Index i upgrades
// the schema from user_version i to i+1. Every statement uses IF NOT EXISTS so
// re-running a step is a no-op and records in untouched tables survive.
var migrations = []string{
	`
	CREATE TABLE IF NOT EXISTS productos (
		id TEXT PRIMARY KEY,
		titulo TEXT NOT NULL,
		precio INTEGER NOT NULL CHECK (precio >= 0),
		imagen TEXT NOT NULL DEFAULT '',
		categoria_id TEXT NOT NULL DEFAULT '',
		categoria_nombre TEXT NOT NULL DEFAULT '',
		fecha_actualizacion DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_productos_categoria ON productos(categoria_id);
	CREATE INDEX IF NOT EXISTS idx_productos_precio ON productos(precio);

	CREATE TABLE IF NOT EXISTS carrito (
		id TEXT PRIMARY KEY,
		titulo TEXT NOT NULL,
		precio INTEGER NOT NULL CHECK (precio >= 0),
		imagen TEXT NOT NULL DEFAULT '',
		cantidad INTEGER NOT NULL CHECK (cantidad >= 1),
		fecha_agregado DATETIME NOT NULL,
		fecha_actualizacion DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_carrito_fecha_agregado ON carrito(fecha_agregado);

	CREATE TABLE IF NOT EXISTS config (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		timestamp DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS sincronizacion (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tipo TEXT NOT NULL,
		datos TEXT NOT NULL DEFAULT '{}',
		timestamp DATETIME NOT NULL,
		sincronizado INTEGER NOT NULL DEFAULT 0,
		fecha_sincronizacion DATETIME
	);
	CREATE INDEX IF NOT EXISTS idx_sincronizacion_tipo ON sincronizacion(tipo);
	CREATE INDEX IF NOT EXISTS idx_sincronizacion_timestamp ON sincronizacion(timestamp);

	CREATE TABLE IF NOT EXISTS compras (
		id TEXT PRIMARY KEY,
		fecha DATETIME NOT NULL,
		productos TEXT NOT NULL DEFAULT '[]',
		total INTEGER NOT NULL CHECK (total >= 0),
		cantidad INTEGER NOT NULL CHECK (cantidad >= 0),
		estado TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_compras_fecha ON compras(fecha);
	CREATE INDEX IF NOT EXISTS idx_compras_estado ON compras(estado);
	`,
}

// SchemaVersion is the schema version this build writes to PRAGMA user_version.
var SchemaVersion = len(migrations)

// Store owns the shared sqlite file. Every running instance opens the same
// path; the engine serializes writers, WAL mode keeps readers concurrent.
// A successful Open is the readiness signal - there is no polling handshake.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open opens or creates the database at path and migrates the schema up to
// SchemaVersion. Returns ErrStorageUnavailable if the engine cannot be opened.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	// SQLite supports a single writer; funnel everything through one connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	log.Printf("[Store] Opened database %s (schema v%d)", path, SchemaVersion)
	return &Store{db: db}, nil
}

// migrate applies pending schema steps and bumps PRAGMA user_version.
func migrate(db *sql.DB) error {
	var current int
	if err := db.QueryRow("PRAGMA user_version").Scan(&current); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	for v := current; v < len(migrations); v++ {
		if _, err := db.Exec(migrations[v]); err != nil {
			return fmt.Errorf("migration to v%d failed: %w", v+1, err)
		}
		if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", v+1)); err != nil {
			return fmt.Errorf("failed to set schema version %d: %w", v+1, err)
		}
		log.Printf("[Store] Schema migrated to v%d", v+1)
	}
	return nil
}

// Version returns the current PRAGMA user_version of the open database.
func (s *Store) Version(ctx context.Context) (int, error) {
	var v int
	err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&v)
	return v, err
}

// WithTx runs fn inside one transaction and guarantees commit-or-rollback on
// every exit path, including a panic inside fn. Read-modify-write sequences
// against the same record must go through a single ReadWrite call here -
// separate read and write transactions can lose concurrent updates.
func (s *Store) WithTx(ctx context.Context, mode TxMode, fn func(tx *sql.Tx) error) (err error) {
	if mode == ReadWrite {
		s.mu.Lock()
		defer s.mu.Unlock()
	} else {
		s.mu.RLock()
		defer s.mu.RUnlock()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTxAborted, err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
		if err != nil {
			tx.Rollback()
			err = mapError(err)
			return
		}
		if cerr := tx.Commit(); cerr != nil {
			err = fmt.Errorf("%w: %v", ErrTxAborted, cerr)
		}
	}()

	return fn(tx)
}

// DB exposes the underlying handle for single-statement repository queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// PurgeAll clears all five tables atomically in a single transaction.
func (s *Store) PurgeAll(ctx context.Context) error {
	tables := []string{TableProductos, TableCarrito, TableConfig, TableSincronizacion, TableCompras}
	err := s.WithTx(ctx, ReadWrite, func(tx *sql.Tx) error {
		for _, table := range tables {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("failed to clear %s: %w", table, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	log.Printf("[Store] Purged all collections")
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
