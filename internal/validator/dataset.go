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
	"fmt"
	"time"

	"go.uber.org/zap"
)

// ValidateAll lists every table of the dataset and validates them one by one in
// listing order. A listing failure aborts before any table is validated.
func (v *Validator) ValidateAll(ctx context.Context) error {
	tables, err := v.client.ListTables(ctx, v.opts.DatasetID)
	if err != nil {
		v.logger.Error("Error listing tables in dataset", zap.Error(err))
		return fmt.Errorf("failed to list tables in dataset %s: %w", v.opts.DatasetID, err)
	}
	return v.ValidateTables(ctx, tables)
}

// ValidateTables validates the given tables sequentially. Missing tables are
// skipped; the first other error stops the run and is returned.
func (v *Validator) ValidateTables(ctx context.Context, tables []string) error {
	startTime := time.Now()
	v.logger.Info("Starting dataset validation", zap.Int("tables", len(tables)))

	var validated, missing int
	for _, table := range tables {
		outcome, err := v.ValidateTable(ctx, table)
		if err != nil {
			return fmt.Errorf("validation of table %s failed: %w", table, err)
		}
		if outcome == OutcomeNotFound {
			missing++
			continue
		}
		validated++
	}

	v.logger.Info("All tables validated successfully",
		zap.Int("validated", validated),
		zap.Int("not_found", missing),
		zap.Duration("elapsed", time.Since(startTime)),
	)
	return nil
}
