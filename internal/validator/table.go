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
package validator

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/GoogleCloudPlatform/bq-data-validator/internal/warehouse"
)

// ValidateTable fetches the table metadata, logs its row count and runs the null
// and schema checks. A missing table yields OutcomeNotFound with a nil error and
// is never retried. Any other failure is retried according to the retry options;
// once attempts are exhausted the last error is returned.
func (v *Validator) ValidateTable(ctx context.Context, tableID string) (Outcome, error) {
	if strings.TrimSpace(tableID) == "" {
		return OutcomeFailed, &ErrInvalidInput{Msg: "table id must not be empty"}
	}

	logger := v.tableLogger(tableID)
	return withRetry(ctx, logger, v.opts.Retry, v.sleep, func(ctx context.Context) (Outcome, error) {
		return v.validateOnce(ctx, logger, tableID)
	})
}

func (v *Validator) validateOnce(ctx context.Context, logger *zap.Logger, tableID string) (Outcome, error) {
	meta, err := v.client.GetTable(ctx, v.opts.DatasetID, tableID)
	if err != nil {
		return v.classify(logger, tableID, err)
	}
	logger.Info("Validating table", zap.Uint64("rows", meta.NumRows))

	if _, err := v.CheckNulls(ctx, tableID); err != nil {
		return v.classify(logger, tableID, err)
	}
	if _, err := v.CheckSchema(ctx, tableID); err != nil {
		return v.classify(logger, tableID, err)
	}

	logger.Info("Table validated successfully")
	return OutcomeValidated, nil
}

// classify turns a failed attempt into an outcome: not-found ends the validation
// quietly, everything else is logged and returned for the retry loop.
func (v *Validator) classify(logger *zap.Logger, tableID string, err error) (Outcome, error) {
	switch {
	case warehouse.IsNotFound(err):
		logger.Error("Table not found in dataset")
		return OutcomeNotFound, nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		logger.Error("Validation cancelled", zap.Error(err))
		return OutcomeFailed, &ErrCancelled{Msg: "validate table " + tableID, Err: err}
	case warehouse.IsWarehouseError(err):
		logger.Error("Warehouse error during validation", zap.Error(err))
		return OutcomeFailed, &ErrWarehouse{Msg: "validate table " + tableID, Err: err}
	default:
		logger.Error("Unexpected error during validation", zap.Error(err))
		return OutcomeFailed, &ErrUnexpected{Msg: "validate table " + tableID, Err: err}
	}
}
