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
	"strconv"

	"go.uber.org/zap"

	"github.com/GoogleCloudPlatform/bq-data-validator/internal/warehouse"
)

const nullCountAlias = "null_value_count"

// NullCountQuery builds the aggregate query counting NULLs of column in dataset.table.
func NullCountQuery(client warehouse.Client, datasetID, tableID, column string) string {
	return fmt.Sprintf("SELECT COUNT(*) AS %s FROM %s WHERE %s IS NULL",
		nullCountAlias, client.QualifiedTable(datasetID, tableID), client.QuoteIdentifier(column))
}

// CheckNulls counts NULL values of the configured column. A positive count is
// logged as a warning and is not an error.
func (v *Validator) CheckNulls(ctx context.Context, tableID string) (int64, error) {
	logger := v.tableLogger(tableID).With(zap.String("column", v.opts.NullCheckColumn))

	query := NullCountQuery(v.client, v.opts.DatasetID, tableID, v.opts.NullCheckColumn)
	rows, err := v.client.RunQuery(ctx, query)
	if err != nil {
		logger.Error("Error checking null values", zap.Error(err))
		return 0, err
	}

	count, err := nullCountFromRows(rows)
	if err != nil {
		logger.Error("Error checking null values", zap.Error(err))
		return 0, err
	}

	if count > 0 {
		logger.Warn(fmt.Sprintf("Table has %d null values", count), zap.Int64("null_count", count))
	} else {
		logger.Info("Table has no null values")
	}
	return count, nil
}

func nullCountFromRows(rows []warehouse.Row) (int64, error) {
	if len(rows) == 0 {
		return 0, &ErrQueryExecution{Msg: "null count query returned no rows"}
	}
	raw, ok := rows[0][nullCountAlias]
	if !ok {
		return 0, &ErrQueryExecution{Msg: fmt.Sprintf("null count query returned no %s column", nullCountAlias)}
	}
	return convertToInt64(raw)
}

func convertToInt64(value any) (int64, error) {
	switch v := value.(type) {
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case uint64:
		return int64(v), nil
	case float32:
		return int64(v), nil
	case float64:
		return int64(v), nil
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, &ErrQueryExecution{Msg: "null count is not an integer", Err: err}
		}
		return n, nil
	default:
		return 0, &ErrQueryExecution{Msg: fmt.Sprintf("could not convert null count of type %T to int64", value)}
	}
}
