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
	"fmt"
)

// ErrWarehouse represents a failure reported by the warehouse during validation
type ErrWarehouse struct {
	Msg string
	Err error
}

// ErrQueryExecution represents a query whose result could not be interpreted
type ErrQueryExecution struct {
	Msg string
	Err error
}

// ErrUnexpected represents any other failure during validation
type ErrUnexpected struct {
	Msg string
	Err error
}

// ErrInvalidInput represents errors related to invalid input parameters
type ErrInvalidInput struct {
	Msg string
	Err error
}

// ErrCancelled represents errors when an operation is cancelled
type ErrCancelled struct {
	Msg string
	Err error
}

func (e *ErrWarehouse) Error() string {
	return fmt.Sprintf("warehouse error: %s: %v", e.Msg, e.Err)
}

func (e *ErrWarehouse) Unwrap() error {
	return e.Err
}

func (e *ErrQueryExecution) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("query execution error: %s", e.Msg)
	}
	return fmt.Sprintf("query execution error: %s: %v", e.Msg, e.Err)
}

func (e *ErrQueryExecution) Unwrap() error {
	return e.Err
}

func (e *ErrUnexpected) Error() string {
	return fmt.Sprintf("unexpected error: %s: %v", e.Msg, e.Err)
}

func (e *ErrUnexpected) Unwrap() error {
	return e.Err
}

func (e *ErrInvalidInput) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("invalid input error: %s", e.Msg)
	}
	return fmt.Sprintf("invalid input error: %s: %v", e.Msg, e.Err)
}

func (e *ErrInvalidInput) Unwrap() error {
	return e.Err
}

func (e *ErrCancelled) Error() string {
	return fmt.Sprintf("operation cancelled: %s: %v", e.Msg, e.Err)
}

func (e *ErrCancelled) Unwrap() error {
	return e.Err
}
