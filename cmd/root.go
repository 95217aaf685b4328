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
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/GoogleCloudPlatform/bq-data-validator/internal/config"
	"github.com/GoogleCloudPlatform/bq-data-validator/internal/database"
	_ "github.com/GoogleCloudPlatform/bq-data-validator/internal/database/mysql"
	_ "github.com/GoogleCloudPlatform/bq-data-validator/internal/database/postgres"
	_ "github.com/GoogleCloudPlatform/bq-data-validator/internal/database/sqlserver"
	"github.com/GoogleCloudPlatform/bq-data-validator/internal/logging"
	"github.com/GoogleCloudPlatform/bq-data-validator/internal/validator"
	"github.com/GoogleCloudPlatform/bq-data-validator/internal/warehouse"
	"github.com/GoogleCloudPlatform/bq-data-validator/internal/warehouse/bigquery"
)

var (
	configFile string

	// Set by initConfigAndLogger before any subcommand runs.
	appConfig *config.Config
	logger    = zap.NewNop()
)

// flagKeys maps persistent flags to their configuration keys.
var flagKeys = map[string]string{
	"project":                           "warehouse.project_id",
	"dataset":                           "warehouse.dataset_id",
	"warehouse":                         "warehouse.kind",
	"credentials-file":                  "warehouse.credentials_file",
	"location":                          "warehouse.location",
	"endpoint":                          "warehouse.endpoint",
	"host":                              "database.host",
	"port":                              "database.port",
	"username":                          "database.user",
	"password":                          "database.password",
	"database":                          "database.name",
	"sslmode":                           "database.sslmode",
	"cloudsql-instance-connection-name": "database.cloudsql_instance_connection_name",
	"cloudsql-use-private-ip":           "database.cloudsql_use_private_ip",
	"null-column":                       "validation.null_check_column",
	"schema-file":                       "validation.schema_file",
	"max-attempts":                      "retry.max_attempts",
	"initial-backoff":                   "retry.initial_backoff",
	"max-backoff":                       "retry.max_backoff",
	"log-level":                         "log.level",
	"log-format":                        "log.format",
}

// newWarehouseClient opens the backend selected by cfg.Warehouse.Kind.
var newWarehouseClient = func(ctx context.Context, cfg *config.Config) (warehouse.Client, error) {
	if cfg.Warehouse.Kind == config.KindBigQuery {
		return bigquery.NewClient(ctx, cfg.Warehouse)
	}
	return database.New(ctx, cfg.Database)
}

var rootCmd = &cobra.Command{
	Use:   "bq_validator",
	Short: "A tool to validate the tables of a warehouse dataset",
	Long: `bq_validator checks every table of a dataset for null values in a
configured column and for an expected schema, retrying transient warehouse errors.`,
	PersistentPreRunE: initConfigAndLogger,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

// initConfigAndLogger loads configuration from flags, environment and the optional
// config file, then builds the run logger.
func initConfigAndLogger(cmd *cobra.Command, args []string) error {
	v := viper.New()
	for flag, key := range flagKeys {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return fmt.Errorf("bind flag --%s: %w", flag, err)
		}
	}

	cfg, err := config.Load(v, configFile)
	if err != nil {
		logging.Must("info", "console").Error("Invalid configuration", zap.Error(err))
		return err
	}

	l, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	appConfig = cfg
	logger = l
	return nil
}

func newValidator(client warehouse.Client) *validator.Validator {
	schema := make(warehouse.Schema, len(appConfig.Validation.ExpectedSchema))
	copy(schema, appConfig.Validation.ExpectedSchema)
	return validator.New(client, logger, validator.Options{
		DatasetID:       appConfig.Warehouse.DatasetID,
		NullCheckColumn: appConfig.Validation.NullCheckColumn,
		ExpectedSchema:  schema,
		Retry: validator.RetryOptions{
			MaxAttempts:       appConfig.Retry.MaxAttempts,
			InitialBackoff:    appConfig.Retry.InitialBackoff,
			MaxBackoff:        appConfig.Retry.MaxBackoff,
			BackoffMultiplier: appConfig.Retry.BackoffMultiplier,
		},
	})
}

// withClient opens the warehouse client for one command and closes it afterwards.
func withClient(ctx context.Context, fn func(warehouse.Client) error) error {
	client, err := newWarehouseClient(ctx, appConfig)
	if err != nil {
		logger.Error("Failed to connect to warehouse", zap.String("warehouse", appConfig.Warehouse.Kind), zap.Error(err))
		return fmt.Errorf("failed to connect to warehouse: %w", err)
	}
	defer func() {
		if cerr := client.Close(); cerr != nil {
			logger.Warn("Failed to close warehouse client", zap.Error(cerr))
		}
	}()
	return fn(client)
}

// Execute runs the root command until it completes or the process is interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer func() { _ = logger.Sync() }()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "Config file (yaml, json or toml)")

	pf.String("project", "", "GCP project id (env GCP_PROJECT_ID) - MANDATORY for bigquery")
	pf.String("dataset", "", "Dataset to validate; schema or database name for SQL warehouses (env BQ_DATASET_ID) - MANDATORY")
	pf.String("warehouse", config.KindBigQuery, fmt.Sprintf("Warehouse backend (%s)", strings.Join(config.SupportedKinds, ", ")))
	pf.String("credentials-file", "", "Service account key file (env GOOGLE_APPLICATION_CREDENTIALS)")
	pf.String("location", "", "BigQuery job location")
	pf.String("endpoint", "", "BigQuery API endpoint override")

	// Database connection flags
	pf.String("host", "localhost", "Database host")
	pf.Int("port", 0, "Database port (dialect default when 0)")
	pf.String("username", "", "Database username")
	pf.String("password", "", "Database password")
	pf.String("database", "", "Database name (defaults to --dataset)")
	pf.String("sslmode", "disable", "PostgreSQL sslmode")
	pf.String("cloudsql-instance-connection-name", "", "Cloud SQL instance connection name (for Cloud SQL dialects)")
	pf.Bool("cloudsql-use-private-ip", false, "Use private IP for Cloud SQL connection (Cloud SQL)")

	pf.String("null-column", config.DefaultNullCheckColumn, "Column checked for null values")
	pf.String("schema-file", "", "YAML file with the expected schema")
	pf.Int("max-attempts", 5, "Attempts per table before giving up")
	pf.Duration("initial-backoff", time.Second, "Base wait between attempts")
	pf.Duration("max-backoff", 10*time.Second, "Maximum wait between attempts")
	pf.String("log-level", "info", "Log level (debug, info, warn, error)")
	pf.String("log-format", "console", "Log format (console, json)")

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(listTablesCmd)
	rootCmd.AddCommand(checkSchemaCmd)
	rootCmd.AddCommand(checkNullsCmd)
}
