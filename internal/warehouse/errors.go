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
package warehouse

import (
	"errors"
	"fmt"
)

// ErrNotFound is wrapped by client errors when the referenced table or dataset does not exist.
var ErrNotFound = errors.New("not found")

// Error represents a failure reported by the warehouse itself (API, driver or query errors).
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("warehouse error: %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError wraps err as a warehouse error for operation op. A nil err yields nil.
func NewError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}

// NotFoundError builds an error for a missing object that satisfies errors.Is(err, ErrNotFound).
func NotFoundError(op string, cause error) error {
	if cause == nil {
		return &Error{Op: op, Err: ErrNotFound}
	}
	return &Error{Op: op, Err: fmt.Errorf("%w: %v", ErrNotFound, cause)}
}

// IsNotFound reports whether err is a not-found condition.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsWarehouseError reports whether err originated at the warehouse boundary.
func IsWarehouseError(err error) bool {
	var werr *Error
	return errors.As(err, &werr)
}
