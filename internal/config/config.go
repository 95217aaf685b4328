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
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/GoogleCloudPlatform/bq-data-validator/internal/warehouse"
)

const (
	KindBigQuery = "bigquery"

	DefaultNullCheckColumn = "column_name"
)

// SupportedKinds lists the warehouse backends accepted by --warehouse.
var SupportedKinds = []string{
	KindBigQuery,
	"postgres", "cloudsqlpostgres",
	"mysql", "cloudsqlmysql",
	"sqlserver", "cloudsqlsqlserver",
}

// ErrMissingConfig is returned when a required setting is absent.
var ErrMissingConfig = errors.New("missing required configuration")

// Config holds all configuration for the application
type Config struct {
	Warehouse  WarehouseConfig  `mapstructure:"warehouse"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Validation ValidationConfig `mapstructure:"validation"`
	Retry      RetryConfig      `mapstructure:"retry"`
	Log        LogConfig        `mapstructure:"log"`
}

// WarehouseConfig selects the backend and the dataset to validate.
type WarehouseConfig struct {
	Kind            string `mapstructure:"kind"`
	ProjectID       string `mapstructure:"project_id"`
	DatasetID       string `mapstructure:"dataset_id"`
	Location        string `mapstructure:"location"`
	CredentialsFile string `mapstructure:"credentials_file"`
	Endpoint        string `mapstructure:"endpoint"`
}

// DatabaseConfig holds database connection configuration for the SQL backends.
type DatabaseConfig struct {
	Dialect                        string `mapstructure:"-"`
	Host                           string `mapstructure:"host"`
	Port                           int    `mapstructure:"port"`
	User                           string `mapstructure:"user"`
	Password                       string `mapstructure:"password"`
	DBName                         string `mapstructure:"name"`
	SSLMode                        string `mapstructure:"sslmode"`
	CloudSQLInstanceConnectionName string `mapstructure:"cloudsql_instance_connection_name"`
	UsePrivateIP                   bool   `mapstructure:"cloudsql_use_private_ip"`
}

// ValidationConfig describes the fixed checks run against every table.
type ValidationConfig struct {
	NullCheckColumn string            `mapstructure:"null_check_column"`
	ExpectedSchema  []warehouse.Field `mapstructure:"expected_schema"`
	SchemaFile      string            `mapstructure:"schema_file"`
}

// RetryConfig configures the backoff applied around each table validation.
type RetryConfig struct {
	MaxAttempts       int           `mapstructure:"max_attempts"`
	InitialBackoff    time.Duration `mapstructure:"initial_backoff"`
	MaxBackoff        time.Duration `mapstructure:"max_backoff"`
	BackoffMultiplier float64       `mapstructure:"backoff_multiplier"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DefaultExpectedSchema is used when no expected schema is configured.
func DefaultExpectedSchema() []warehouse.Field {
	return []warehouse.Field{{Name: DefaultNullCheckColumn, Type: "STRING"}}
}

// Validate checks that the settings required to start a run are present.
func (c *Config) Validate() error {
	kind := strings.ToLower(c.Warehouse.Kind)
	supported := false
	for _, k := range SupportedKinds {
		if kind == k {
			supported = true
			break
		}
	}
	if !supported {
		return fmt.Errorf("unsupported warehouse: %s (only %s are supported)", c.Warehouse.Kind, strings.Join(SupportedKinds, ", "))
	}

	var missing []string
	if kind == KindBigQuery && c.Warehouse.ProjectID == "" {
		missing = append(missing, "project id (GCP_PROJECT_ID)")
	}
	if c.Warehouse.DatasetID == "" {
		missing = append(missing, "dataset id (BQ_DATASET_ID)")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingConfig, strings.Join(missing, ", "))
	}

	if c.Validation.NullCheckColumn == "" {
		return fmt.Errorf("%w: null check column", ErrMissingConfig)
	}
	if len(c.Validation.ExpectedSchema) == 0 {
		return fmt.Errorf("%w: expected schema", ErrMissingConfig)
	}
	for i, f := range c.Validation.ExpectedSchema {
		if f.Name == "" || f.Type == "" {
			return fmt.Errorf("expected schema field #%d must have a name and a type", i+1)
		}
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry max attempts must be at least 1, got %d", c.Retry.MaxAttempts)
	}
	return nil
}
