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
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/GoogleCloudPlatform/bq-data-validator/internal/warehouse"
)

// EnvPrefix prefixes every automatically bound environment variable (BQV_WAREHOUSE_DATASET_ID, ...).
const EnvPrefix = "BQV"

// legacyEnv maps config keys to the environment variable names used by earlier deployments.
var legacyEnv = map[string]string{
	"warehouse.project_id":       "GCP_PROJECT_ID",
	"warehouse.dataset_id":       "BQ_DATASET_ID",
	"warehouse.credentials_file": "GOOGLE_APPLICATION_CREDENTIALS",
}

// SetDefaults registers every key with its default so env lookups and Unmarshal see it.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("warehouse.kind", KindBigQuery)
	v.SetDefault("warehouse.project_id", "")
	v.SetDefault("warehouse.dataset_id", "")
	v.SetDefault("warehouse.location", "")
	v.SetDefault("warehouse.credentials_file", "")
	v.SetDefault("warehouse.endpoint", "")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 0)
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.cloudsql_instance_connection_name", "")
	v.SetDefault("database.cloudsql_use_private_ip", false)

	v.SetDefault("validation.null_check_column", DefaultNullCheckColumn)
	v.SetDefault("validation.expected_schema", DefaultExpectedSchema())
	v.SetDefault("validation.schema_file", "")

	v.SetDefault("retry.max_attempts", 5)
	v.SetDefault("retry.initial_backoff", time.Second)
	v.SetDefault("retry.max_backoff", 10*time.Second)
	v.SetDefault("retry.backoff_multiplier", 2.0)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// Load builds the configuration from defaults, an optional config file and the
// environment, in increasing order of precedence. Flags bound on v take precedence
// over all of them.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range legacyEnv {
		if err := v.BindEnv(key, EnvPrefix+"_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.Warehouse.Kind = strings.ToLower(cfg.Warehouse.Kind)
	cfg.Database.Dialect = cfg.Warehouse.Kind
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = cfg.Warehouse.DatasetID
	}

	if cfg.Validation.SchemaFile != "" {
		fields, err := LoadExpectedSchema(cfg.Validation.SchemaFile)
		if err != nil {
			return nil, err
		}
		cfg.Validation.ExpectedSchema = fields
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type schemaFile struct {
	Fields []warehouse.Field `yaml:"fields"`
}

// LoadExpectedSchema reads an expected schema from a YAML file of the form
//
//	fields:
//	  - name: column_name
//	    type: STRING
func LoadExpectedSchema(path string) ([]warehouse.Field, error) {
	if path == "" {
		return nil, errors.New("schema file path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema file: %w", err)
	}

	var sf schemaFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("parse schema file: %w", err)
	}
	if len(sf.Fields) == 0 {
		return nil, fmt.Errorf("schema file %s defines no fields", path)
	}
	for i := range sf.Fields {
		sf.Fields[i].Type = warehouse.NormalizeType(sf.Fields[i].Type)
	}
	return sf.Fields, nil
}
