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
package bigquery

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/GoogleCloudPlatform/bq-data-validator/internal/config"
	"github.com/GoogleCloudPlatform/bq-data-validator/internal/warehouse"
)

// Client implements warehouse.Client on top of the BigQuery API.
type Client struct {
	bq        *bigquery.Client
	projectID string
}

var _ warehouse.Client = (*Client)(nil)

// NewClient creates a BigQuery client for cfg.ProjectID. Extra options are applied
// after the ones derived from cfg.
func NewClient(ctx context.Context, cfg config.WarehouseConfig, opts ...option.ClientOption) (*Client, error) {
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("cannot create BigQuery client: project id is missing")
	}

	var clientOpts []option.ClientOption
	if cfg.CredentialsFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	if cfg.Endpoint != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(cfg.Endpoint))
	}
	clientOpts = append(clientOpts, opts...)

	bq, err := bigquery.NewClient(ctx, cfg.ProjectID, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create BigQuery client: %w", err)
	}
	if cfg.Location != "" {
		bq.Location = cfg.Location
	}

	return &Client{bq: bq, projectID: cfg.ProjectID}, nil
}

// GetTable fetches the table's metadata.
func (c *Client) GetTable(ctx context.Context, datasetID, tableID string) (*warehouse.TableMetadata, error) {
	md, err := c.bq.Dataset(datasetID).Table(tableID).Metadata(ctx)
	if err != nil {
		return nil, classifyError(fmt.Sprintf("get table %s.%s", datasetID, tableID), err)
	}

	schema := make(warehouse.Schema, len(md.Schema))
	for i, f := range md.Schema {
		schema[i] = warehouse.Field{Name: f.Name, Type: string(f.Type)}
	}
	return &warehouse.TableMetadata{
		DatasetID: datasetID,
		TableID:   tableID,
		NumRows:   md.NumRows,
		Schema:    schema,
	}, nil
}

// RunQuery runs sql as a query job and reads every row.
func (c *Client) RunQuery(ctx context.Context, sql string) ([]warehouse.Row, error) {
	it, err := c.bq.Query(sql).Read(ctx)
	if err != nil {
		return nil, classifyError("run query", err)
	}

	var rows []warehouse.Row
	for {
		var values map[string]bigquery.Value
		err := it.Next(&values)
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, classifyError("read query results", err)
		}
		row := make(warehouse.Row, len(values))
		for k, v := range values {
			row[k] = v
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ListTables lists the ids of every table in the dataset.
func (c *Client) ListTables(ctx context.Context, datasetID string) ([]string, error) {
	it := c.bq.Dataset(datasetID).Tables(ctx)

	var tables []string
	for {
		t, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, classifyError("list tables in "+datasetID, err)
		}
		tables = append(tables, t.TableID)
	}
	return tables, nil
}

// QualifiedTable renders `dataset.table`, resolved against the client's project.
func (c *Client) QualifiedTable(datasetID, tableID string) string {
	return quote(datasetID + "." + tableID)
}

func (c *Client) QuoteIdentifier(name string) string {
	return quote(name)
}

func (c *Client) Close() error {
	if c.bq != nil {
		return c.bq.Close()
	}
	return nil
}

func quote(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "\\`") + "`"
}

// classifyError maps BigQuery REST and gRPC errors onto the warehouse error taxonomy.
// Context errors are returned unchanged.
func classifyError(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound {
		return warehouse.NotFoundError(op, err)
	}
	if status.Code(err) == codes.NotFound {
		return warehouse.NotFoundError(op, err)
	}
	return warehouse.NewError(op, err)
}
