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

	"github.com/GoogleCloudPlatform/bq-data-validator/internal/warehouse"
)

var (
	checkSchemaTable string
	checkNullsTable  string
)

var checkSchemaCmd = &cobra.Command{
	Use:     "check-schema",
	Short:   "Compare one table's schema with the expected schema",
	Example: `./bq_validator check-schema --project my-project --dataset sales --table orders --schema-file ./orders_schema.yaml`,
	RunE:    runCheckSchema,
}

var checkNullsCmd = &cobra.Command{
	Use:     "check-nulls",
	Short:   "Count null values in one table's null-check column",
	Example: `./bq_validator check-nulls --project my-project --dataset sales --table orders --null-column customer_id`,
	RunE:    runCheckNulls,
}

// A mismatch is a finding, not a failure: it is logged and printed but the exit code stays 0.
func runCheckSchema(cmd *cobra.Command, args []string) error {
	return withClient(cmd.Context(), func(client warehouse.Client) error {
		ok, err := newValidator(client).CheckSchema(cmd.Context(), checkSchemaTable)
		if err != nil {
			return fmt.Errorf("schema check of table %s failed: %w", checkSchemaTable, err)
		}
		result := "valid"
		if !ok {
			result = "mismatch"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: schema %s\n", checkSchemaTable, result)
		return nil
	})
}

func runCheckNulls(cmd *cobra.Command, args []string) error {
	return withClient(cmd.Context(), func(client warehouse.Client) error {
		count, err := newValidator(client).CheckNulls(cmd.Context(), checkNullsTable)
		if err != nil {
			return fmt.Errorf("null check of table %s failed: %w", checkNullsTable, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d null values in %s\n", checkNullsTable, count, appConfig.Validation.NullCheckColumn)
		return nil
	})
}

func init() {
	checkSchemaCmd.Flags().StringVarP(&checkSchemaTable, "table", "t", "", "Table to check - MANDATORY")
	_ = checkSchemaCmd.MarkFlagRequired("table")

	checkNullsCmd.Flags().StringVarP(&checkNullsTable, "table", "t", "", "Table to check - MANDATORY")
	_ = checkNullsCmd.MarkFlagRequired("table")
}
