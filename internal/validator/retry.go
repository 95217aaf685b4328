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
	"math"
	"time"

	"go.uber.org/zap"
)

// RetryOptions configures the retry behavior
type RetryOptions struct {
	MaxAttempts       int           // Maximum number of attempts, including the first one
	InitialBackoff    time.Duration // Base of the exponential backoff
	MaxBackoff        time.Duration // Maximum backoff duration
	BackoffMultiplier float64       // Multiplier for exponential backoff
}

// DefaultRetryOptions waits 2s, 4s, 8s and 10s between five attempts.
var DefaultRetryOptions = RetryOptions{
	MaxAttempts:       5,
	InitialBackoff:    time.Second,
	MaxBackoff:        10 * time.Second,
	BackoffMultiplier: 2.0,
}

// Backoff returns the wait after the given failed attempt (1-based):
// min(InitialBackoff * BackoffMultiplier^attempt, MaxBackoff).
func (o RetryOptions) Backoff(attempt int) time.Duration {
	backoff := time.Duration(float64(o.InitialBackoff) * math.Pow(o.BackoffMultiplier, float64(attempt)))
	if o.MaxBackoff > 0 && (backoff > o.MaxBackoff || backoff < 0) {
		backoff = o.MaxBackoff
	}
	return backoff
}

// sleepFunc blocks for d or until ctx is done.
type sleepFunc func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// isRetryableError determines if an error should trigger a retry
func isRetryableError(err error) bool {
	switch err.(type) {
	case *ErrInvalidInput, *ErrCancelled:
		return false
	default:
		return true
	}
}

// withRetry executes the given operation with retry logic
func withRetry[T any](ctx context.Context, logger *zap.Logger, opts RetryOptions, sleep sleepFunc, op func(context.Context) (T, error)) (T, error) {
	var lastErr error
	var result T

	maxAttempts := opts.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr == nil {
				lastErr = &ErrCancelled{Msg: "operation cancelled by context", Err: err}
			}
			return result, lastErr
		}

		result, lastErr = op(ctx)
		if lastErr == nil {
			return result, nil
		}
		if !isRetryableError(lastErr) || attempt == maxAttempts {
			return result, lastErr
		}

		backoff := opts.Backoff(attempt)
		logger.Warn("Operation failed, retrying",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", maxAttempts),
			zap.Duration("backoff", backoff),
			zap.Error(lastErr),
		)
		if err := sleep(ctx, backoff); err != nil {
			return result, &ErrCancelled{Msg: "operation cancelled during backoff", Err: err}
		}
	}

	return result, lastErr
}
