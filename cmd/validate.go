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
	"github.com/spf13/cobra"

	"github.com/GoogleCloudPlatform/bq-data-validator/internal/warehouse"
)

var validateTables []string

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the tables of a dataset",
	Long: `Validates every table of the dataset, or only the tables given with --table.
Tables that disappear while the run is in progress are logged and skipped.`,
	Example: `./bq_validator validate --project my-project --dataset sales
./bq_validator validate --warehouse postgres --host 127.0.0.1 --username app --password pass --database shop --dataset public --table orders`,
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	return withClient(cmd.Context(), func(client warehouse.Client) error {
		v := newValidator(client)
		if len(validateTables) > 0 {
			return v.ValidateTables(cmd.Context(), validateTables)
		}
		return v.ValidateAll(cmd.Context())
	})
}

func init() {
	validateCmd.Flags().StringSliceVarP(&validateTables, "table", "t", nil, "Table to validate (repeatable; defaults to every table in the dataset)")
}
