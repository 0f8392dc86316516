package lending

import (
	"context"
	"errors"
	"math/rand"
	"strconv"
	"time"

	"github.com/ragalabs/loan-ledger-go/ledger"
)

const (
	defaultMaxAttempts  = 6
	defaultBaseDelay    = 10 * time.Millisecond
	defaultJitterFactor = 0.3

	retryDelayMetric        = "lending_retry_delay_seconds"
	retriesMetric           = "lending_retries_total"
	maxRetriesReachedMetric = "lending_max_retries_reached_total"

	labelOperation     = "operation"
	labelAttemptNumber = "attempt_number"
	labelErrorType     = "final_error_type"
)

// RetryableFunc represents a function that can be retried.
type RetryableFunc func(ctx context.Context) error

type retryConfig struct {
	maxAttempts      int
	baseDelay        time.Duration
	jitterFactor     float64
	metricsCollector ledger.MetricsCollector
	operation        string
}

// RetryOption configures retry behavior using the functional options pattern.
type RetryOption func(*retryConfig) error

// WithMaxAttempts sets the maximum number of retry attempts.
func WithMaxAttempts(attempts int) RetryOption {
	return func(config *retryConfig) error {
		if attempts <= 0 {
			return ErrInvalidMaxAttempts
		}

		config.maxAttempts = attempts

		return nil
	}
}

// WithBaseDelay sets the base delay for exponential backoff.
// Actual delays: baseDelay, baseDelay*2, baseDelay*4, and so on.
func WithBaseDelay(delay time.Duration) RetryOption {
	return func(config *retryConfig) error {
		if delay < 0 {
			return ErrNegativeBaseDelay
		}

		config.baseDelay = delay

		return nil
	}
}

// WithJitterFactor sets the jitter factor added to each backoff delay.
// Valid range: 0.0 (no jitter) to 1.0 (100% jitter).
func WithJitterFactor(factor float64) RetryOption {
	return func(config *retryConfig) error {
		if factor < 0.0 || factor > 1.0 {
			return ErrInvalidJitterFactor
		}

		config.jitterFactor = factor

		return nil
	}
}

// WithRetryMetrics sets the metrics collector for retry instrumentation,
// labeled with the given operation name.
func WithRetryMetrics(collector ledger.MetricsCollector, operation string) RetryOption {
	return func(config *retryConfig) error {
		if collector == nil {
			return ErrNilMetricsCollector
		}

		if operation == "" {
			return ErrEmptyOperationName
		}

		config.metricsCollector = collector
		config.operation = operation

		return nil
	}
}

// RetryWithExponentialBackoff executes fn with exponential backoff, retrying
// only transient storage failures up to maxAttempts times.
//
// Retry schedule (default): 0 ms, 10 ms, 20 ms, 40 ms, 80 ms, 160 ms with
// 30% jitter, ~ 500 ms worst case.
//
// Only ledger.ErrTransientStorageFailure is retried. Invariant conflicts are
// definitive answers and timeouts should fail fast, so both are returned
// immediately.
func RetryWithExponentialBackoff(ctx context.Context, fn RetryableFunc, options ...RetryOption) error {
	config := &retryConfig{
		maxAttempts:  defaultMaxAttempts,
		baseDelay:    defaultBaseDelay,
		jitterFactor: defaultJitterFactor,
	}

	for _, option := range options {
		if err := option(config); err != nil {
			return err
		}
	}

	var lastErr error

	for attempt := 0; attempt < config.maxAttempts; attempt++ {
		if attempt > 0 {
			delay := config.baseDelay * time.Duration(1<<(attempt-1))
			jitter := rand.Float64() * float64(delay) * config.jitterFactor //nolint:gosec // math/rand is sufficient for jitter
			backoffDelay := delay + time.Duration(jitter)

			config.recordRetryDelay(ctx, attempt, backoffDelay)

			select {
			case <-time.After(backoffDelay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}

		if !errors.Is(lastErr, ledger.ErrTransientStorageFailure) {
			return lastErr
		}

		config.recordRetryAttempt(ctx, attempt)
	}

	config.recordMaxRetriesReached(ctx, lastErr)

	return lastErr
}

func (config *retryConfig) recordRetryDelay(ctx context.Context, attempt int, backoffDelay time.Duration) {
	if config.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		labelOperation:     config.operation,
		labelAttemptNumber: strconv.Itoa(attempt),
	}

	if contextual, ok := config.metricsCollector.(ledger.ContextualMetricsCollector); ok {
		contextual.RecordDurationContext(ctx, retryDelayMetric, backoffDelay, labels)

		return
	}

	config.metricsCollector.RecordDuration(retryDelayMetric, backoffDelay, labels)
}

func (config *retryConfig) recordRetryAttempt(ctx context.Context, attempt int) {
	if attempt >= config.maxAttempts-1 || config.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		labelOperation:     config.operation,
		labelAttemptNumber: strconv.Itoa(attempt + 1),
	}

	if contextual, ok := config.metricsCollector.(ledger.ContextualMetricsCollector); ok {
		contextual.IncrementCounterContext(ctx, retriesMetric, labels)

		return
	}

	config.metricsCollector.IncrementCounter(retriesMetric, labels)
}

func (config *retryConfig) recordMaxRetriesReached(ctx context.Context, lastErr error) {
	if config.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		labelOperation: config.operation,
		labelErrorType: errorTypeLabel(lastErr),
	}

	if contextual, ok := config.metricsCollector.(ledger.ContextualMetricsCollector); ok {
		contextual.IncrementCounterContext(ctx, maxRetriesReachedMetric, labels)

		return
	}

	config.metricsCollector.IncrementCounter(maxRetriesReachedMetric, labels)
}

func errorTypeLabel(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ledger.ErrTransientStorageFailure):
		return "transient_storage_failure"
	case errors.Is(err, context.Canceled):
		return "context_canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "context_deadline_exceeded"
	default:
		return "other"
	}
}
