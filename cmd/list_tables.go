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
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/GoogleCloudPlatform/bq-data-validator/internal/warehouse"
)

var listTablesCmd = &cobra.Command{
	Use:     "list-tables",
	Short:   "List the tables of a dataset",
	Example: `./bq_validator list-tables --project my-project --dataset sales`,
	RunE:    runListTables,
}

func runListTables(cmd *cobra.Command, args []string) error {
	dataset := appConfig.Warehouse.DatasetID
	return withClient(cmd.Context(), func(client warehouse.Client) error {
		tables, err := client.ListTables(cmd.Context(), dataset)
		if err != nil {
			logger.Error("Error listing tables in dataset", zap.String("dataset", dataset), zap.Error(err))
			return fmt.Errorf("failed to list tables in dataset %s: %w", dataset, err)
		}
		for _, table := range tables {
			fmt.Fprintln(cmd.OutOrStdout(), table)
		}
		logger.Info("Listed tables", zap.String("dataset", dataset), zap.Int("count", len(tables)))
		return nil
	})
}
