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
package warehouse

import (
	"context"
)

// Client defines the warehouse operations needed by the validator.
type Client interface {
	// GetTable returns a fresh metadata snapshot. It returns an error wrapping
	// ErrNotFound when the table does not exist in the dataset.
	GetTable(ctx context.Context, datasetID, tableID string) (*TableMetadata, error)

	// RunQuery executes sql and returns every result row keyed by column name.
	RunQuery(ctx context.Context, sql string) ([]Row, error)

	// ListTables returns the table ids of a dataset in the order reported by the warehouse.
	ListTables(ctx context.Context, datasetID string) ([]string, error)

	// QualifiedTable renders a quoted dataset.table reference usable in RunQuery.
	QualifiedTable(datasetID, tableID string) string

	// QuoteIdentifier quotes a column name for use in RunQuery.
	QuoteIdentifier(name string) string

	Close() error
}

// Row is a single query result row keyed by column name.
type Row map[string]any

// TableMetadata is a read-only snapshot of a table at the time it was fetched.
type TableMetadata struct {
	DatasetID string
	TableID   string
	NumRows   uint64
	Schema    Schema
}
