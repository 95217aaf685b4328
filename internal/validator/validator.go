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

// Package validator runs data-quality checks against the tables of one dataset.
package validator

import (
	"go.uber.org/zap"

	"github.com/GoogleCloudPlatform/bq-data-validator/internal/warehouse"
)

const defaultNullCheckColumn = "column_name"

// Outcome is the result of a table validation that did not fail.
type Outcome int

const (
	// OutcomeFailed accompanies a non-nil error.
	OutcomeFailed Outcome = iota
	// OutcomeValidated means every check ran. Check findings are reported through logs.
	OutcomeValidated
	// OutcomeNotFound means the table disappeared from the dataset. It is not retried.
	OutcomeNotFound
)

func (o Outcome) String() string {
	switch o {
	case OutcomeValidated:
		return "validated"
	case OutcomeNotFound:
		return "not_found"
	default:
		return "failed"
	}
}

// Options configures a Validator.
type Options struct {
	DatasetID       string
	NullCheckColumn string
	ExpectedSchema  warehouse.Schema
	Retry           RetryOptions
}

// Validator validates the tables of a single dataset. It is not safe for concurrent use.
type Validator struct {
	client warehouse.Client
	logger *zap.Logger
	opts   Options
	sleep  sleepFunc
}

// New creates a Validator. Zero-valued options fall back to the single
// (column_name, STRING) schema, the column_name null check and DefaultRetryOptions.
func New(client warehouse.Client, logger *zap.Logger, opts Options) *Validator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.NullCheckColumn == "" {
		opts.NullCheckColumn = defaultNullCheckColumn
	}
	if len(opts.ExpectedSchema) == 0 {
		opts.ExpectedSchema = warehouse.Schema{{Name: defaultNullCheckColumn, Type: "STRING"}}
	}
	if opts.Retry.MaxAttempts == 0 {
		opts.Retry = DefaultRetryOptions
	}
	return &Validator{
		client: client,
		logger: logger.With(zap.String("dataset", opts.DatasetID)),
		opts:   opts,
		sleep:  sleepContext,
	}
}

func (v *Validator) tableLogger(tableID string) *zap.Logger {
	return v.logger.With(zap.String("table", tableID))
}
