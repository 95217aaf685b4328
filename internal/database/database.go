/*
 * Copyright 2025 Google LLC
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *    https://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package database exposes SQL databases as a warehouse.Client. A "dataset" is a
// schema (PostgreSQL, SQL Server) or a database (MySQL).
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/GoogleCloudPlatform/bq-data-validator/internal/config"
	"github.com/GoogleCloudPlatform/bq-data-validator/internal/warehouse"
)

var _ warehouse.Client = (*DB)(nil)

// DB holds the database connection pool and dialect handler.
type DB struct {
	Pool    *sql.DB
	Handler DialectHandler
	Config  config.DatabaseConfig
}

// ColumnInfo holds basic information about a database column.
type ColumnInfo struct {
	Name     string
	DataType string
}

// DialectHandler provides the dialect-specific parts of DB.
type DialectHandler interface {
	CreateCloudSQLPool(cfg config.DatabaseConfig) (*sql.DB, error)
	CreateStandardPool(cfg config.DatabaseConfig) (*sql.DB, error)
	QuoteIdentifier(name string) string
	// ListTables returns the base tables of schema in a stable order.
	ListTables(ctx context.Context, db *DB, schema string) ([]string, error)
	// ListColumns returns the columns of schema.table by ordinal position. An
	// empty result means the table does not exist.
	ListColumns(ctx context.Context, db *DB, schema, table string) ([]ColumnInfo, error)
}

// MissingTableDetector is implemented by handlers that can recognise the driver
// error for a missing table.
type MissingTableDetector interface {
	IsMissingTable(err error) bool
}

var (
	dialectHandlers = make(map[string]DialectHandler)
	mu              sync.RWMutex
)

func RegisterDialectHandler(dialect string, handler DialectHandler) {
	mu.Lock()
	defer mu.Unlock()
	dialectHandlers[dialect] = handler
}

func GetDialectHandler(dialect string) (DialectHandler, error) {
	mu.RLock()
	defer mu.RUnlock()
	handler, ok := dialectHandlers[dialect]
	if !ok {
		return nil, fmt.Errorf("unsupported database dialect: %s", dialect)
	}
	return handler, nil
}

// New opens and pings a pool for cfg.Dialect. Dialects prefixed with "cloudsql"
// connect through the Cloud SQL connector.
func New(ctx context.Context, cfg config.DatabaseConfig) (*DB, error) {
	handler, err := GetDialectHandler(cfg.Dialect)
	if err != nil {
		return nil, err
	}

	var pool *sql.DB
	if strings.HasPrefix(cfg.Dialect, "cloudsql") {
		pool, err = handler.CreateCloudSQLPool(cfg)
	} else {
		pool, err = handler.CreateStandardPool(cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create database pool for dialect %s: %w", cfg.Dialect, err)
	}

	if err := pool.PingContext(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to database (ping failed) for dialect %s: %w", cfg.Dialect, err)
	}

	return &DB{
		Pool:    pool,
		Handler: handler,
		Config:  cfg,
	}, nil
}

func (db *DB) Close() error {
	if db.Pool != nil {
		return db.Pool.Close()
	}
	return nil
}

// GetTable reads the column list and counts the rows of schema.table.
func (db *DB) GetTable(ctx context.Context, schema, table string) (*warehouse.TableMetadata, error) {
	if err := db.ready(); err != nil {
		return nil, err
	}
	op := fmt.Sprintf("get table %s.%s", schema, table)

	columns, err := db.Handler.ListColumns(ctx, db, schema, table)
	if err != nil {
		return nil, db.classifyError(op, err)
	}
	if len(columns) == 0 {
		return nil, warehouse.NotFoundError(op, nil)
	}

	var numRows int64
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", db.QualifiedTable(schema, table))
	if err := db.Pool.QueryRowContext(ctx, countQuery).Scan(&numRows); err != nil {
		return nil, db.classifyError(op, err)
	}

	fields := make(warehouse.Schema, len(columns))
	for i, col := range columns {
		fields[i] = warehouse.Field{Name: col.Name, Type: warehouse.NormalizeType(col.DataType)}
	}
	return &warehouse.TableMetadata{
		DatasetID: schema,
		TableID:   table,
		NumRows:   uint64(numRows),
		Schema:    fields,
	}, nil
}

// RunQuery executes query and returns every row keyed by column name. Byte slices
// are returned as strings.
func (db *DB) RunQuery(ctx context.Context, query string) ([]warehouse.Row, error) {
	if err := db.ready(); err != nil {
		return nil, err
	}

	rows, err := db.Pool.QueryContext(ctx, query)
	if err != nil {
		return nil, db.classifyError("run query", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, db.classifyError("read query columns", err)
	}

	var result []warehouse.Row
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, db.classifyError("scan query row", err)
		}
		row := make(warehouse.Row, len(columns))
		for i, name := range columns {
			if b, ok := values[i].([]byte); ok {
				row[name] = string(b)
				continue
			}
			row[name] = values[i]
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, db.classifyError("iterate query rows", err)
	}
	return result, nil
}

func (db *DB) ListTables(ctx context.Context, schema string) ([]string, error) {
	if err := db.ready(); err != nil {
		return nil, err
	}
	tables, err := db.Handler.ListTables(ctx, db, schema)
	if err != nil {
		return nil, db.classifyError("list tables in "+schema, err)
	}
	return tables, nil
}

func (db *DB) QualifiedTable(schema, table string) string {
	return db.Handler.QuoteIdentifier(schema) + "." + db.Handler.QuoteIdentifier(table)
}

func (db *DB) QuoteIdentifier(name string) string {
	return db.Handler.QuoteIdentifier(name)
}

func (db *DB) ready() error {
	if db.Pool == nil {
		return fmt.Errorf("database connection pool is not initialized")
	}
	if db.Handler == nil {
		return fmt.Errorf("dialect handler not initialized")
	}
	return nil
}

func (db *DB) classifyError(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if errors.Is(err, sql.ErrNoRows) {
		return warehouse.NotFoundError(op, err)
	}
	if detector, ok := db.Handler.(MissingTableDetector); ok && detector.IsMissingTable(err) {
		return warehouse.NotFoundError(op, err)
	}
	return warehouse.NewError(op, err)
}
