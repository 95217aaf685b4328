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

	"go.uber.org/zap"
)

// CheckSchema fetches the table's current schema and compares it, in order,
// with the expected schema. A mismatch is logged as a warning and is not an error.
func (v *Validator) CheckSchema(ctx context.Context, tableID string) (bool, error) {
	logger := v.tableLogger(tableID)

	meta, err := v.client.GetTable(ctx, v.opts.DatasetID, tableID)
	if err != nil {
		logger.Error("Error checking schema", zap.Error(err))
		return false, err
	}

	if !meta.Schema.Equal(v.opts.ExpectedSchema) {
		logger.Warn("Table schema does not match expected schema",
			zap.Stringer("expected", v.opts.ExpectedSchema),
			zap.Stringer("actual", meta.Schema),
		)
		return false, nil
	}

	logger.Info("Table schema is valid")
	return true, nil
}
