package postgresengine

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/ragalabs/loan-ledger-go/ledger"
)

const (
	operationBorrow = "borrow"
	operationReturn = "return"
	operationQuery  = "query"
	operationCount  = "count_open"

	logMsgBuildBorrowQueryFailed = "failed to build borrow query"
	logMsgBuildReturnQueryFailed = "failed to build return query"
	logMsgBuildSelectQueryFailed = "failed to build select query"
	logMsgBorrowExecFailed       = "borrow statement failed"
	logMsgReturnExecFailed       = "return statement failed"
	logMsgDBQueryFailed          = "database query failed"
	logMsgRowsAffectedFailed     = "failed to read rows affected"
	logMsgScanRowFailed          = "failed to scan database row"
	logMsgCloseRowsFailed        = "failed to close rows iterator"
	logMsgOpenLoanConflict       = "open loan already exists for pair"
	logMsgMultipleOpenLoans      = "multiple open loans found for pair, storage consistency is broken"
	logMsgLoanBorrowed           = "loan record created"
	logMsgLoanReturned           = "loan record closed"
	logMsgQueryCompleted         = "loan query completed"
	logMsgSQLQueryExecuted       = "sql query executed"

	logAttrError       = "error"
	logAttrQuery       = "query"
	logAttrOperation   = "operation"
	logAttrLoanID      = "loan_id"
	logAttrBookID      = "book_id"
	logAttrPatronID    = "patron_id"
	logAttrRecordCount = "record_count"
	logAttrOpenCount   = "open_count"
	logAttrDurationMS  = "duration_ms"

	metricDuration           = "loanledger_operation_duration_seconds"
	metricRecordsQueried     = "loanledger_records_queried_total"
	metricInvariantConflicts = "loanledger_open_loan_conflicts_total"
	metricCorruptionAlarms   = "loanledger_corruption_alarms_total"
	metricErrors             = "loanledger_errors_total"

	labelOperation = "operation"
	labelErrorType = "error_type"
	labelStatus    = "status"

	statusSuccess  = "success"
	statusConflict = "conflict"
	statusError    = "error"

	errorTypeBuildQuery = "build_query"
	errorTypeDatabase   = "database"
	errorTypeScanRow    = "scan_row"
	errorTypeNoOpenLoan = "no_open_loan"
	errorTypeCorruption = "corruption"

	spanNamePrefix   = "loanledger."
	spanAttrLoanID   = "loanledger.loan_id"
	spanAttrBookID   = "loanledger.book_id"
	spanAttrPatronID = "loanledger.patron_id"
	spanAttrCount    = "loanledger.record_count"
	spanAttrStatus   = "loanledger.status"
)

// operationObserver carries the per-call observability state so the engine
// methods report spans, metrics and contextual logs with one-liners instead
// of repeating the collector plumbing on every code path.
type operationObserver struct {
	ll        *LoanLedger
	ctx       context.Context
	operation string
	span      ledger.SpanContext
}

func (ll *LoanLedger) startOperation(
	ctx context.Context,
	operation string,
	attrs map[string]string,
) (*operationObserver, context.Context) {

	obs := &operationObserver{ll: ll, operation: operation}

	if ll.tracingCollector != nil {
		spanAttrs := map[string]string{labelOperation: operation}
		for key, value := range attrs {
			spanAttrs[key] = value
		}

		obs.ctx, obs.span = ll.tracingCollector.StartSpan(ctx, spanNamePrefix+operation, spanAttrs)

		return obs, obs.ctx
	}

	obs.ctx = ctx

	return obs, ctx
}

func (o *operationObserver) finishSuccess(duration time.Duration, attrs map[string]string) {
	if o.ll.metricsCollector != nil {
		o.ll.metricsCollector.RecordDuration(metricDuration, duration,
			map[string]string{labelOperation: o.operation, labelStatus: statusSuccess})
	}

	o.finishSpan(statusSuccess, attrs)
}

func (o *operationObserver) finishQuerySuccess(recordCount int, duration time.Duration) {
	if o.ll.metricsCollector != nil {
		o.ll.metricsCollector.RecordDuration(metricDuration, duration,
			map[string]string{labelOperation: o.operation, labelStatus: statusSuccess})
		o.ll.metricsCollector.RecordValue(metricRecordsQueried, float64(recordCount),
			map[string]string{labelOperation: o.operation})
	}

	o.finishSpan(statusSuccess, map[string]string{spanAttrCount: strconv.Itoa(recordCount)})
}

func (o *operationObserver) finishConflict(duration time.Duration) {
	if o.ll.metricsCollector != nil {
		o.ll.metricsCollector.IncrementCounter(metricInvariantConflicts,
			map[string]string{labelOperation: o.operation})
		o.ll.metricsCollector.RecordDuration(metricDuration, duration,
			map[string]string{labelOperation: o.operation, labelStatus: statusConflict})
	}

	o.finishSpan(statusConflict, nil)
}

func (o *operationObserver) finishError(errorType string, duration time.Duration) {
	if o.ll.metricsCollector != nil {
		o.ll.metricsCollector.IncrementCounter(metricErrors,
			map[string]string{labelOperation: o.operation, labelErrorType: errorType})

		if errorType == errorTypeCorruption {
			o.ll.metricsCollector.IncrementCounter(metricCorruptionAlarms,
				map[string]string{labelOperation: o.operation})
		}

		if duration > 0 {
			o.ll.metricsCollector.RecordDuration(metricDuration, duration,
				map[string]string{labelOperation: o.operation, labelStatus: statusError})
		}
	}

	o.finishSpan(statusError, map[string]string{labelErrorType: errorType})
}

func (o *operationObserver) finishSpan(status string, attrs map[string]string) {
	if o.span == nil {
		return
	}

	o.ll.tracingCollector.FinishSpan(o.span, status, attrs)
}

/***** logging helpers *****/

func (ll *LoanLedger) logOperation(ctx context.Context, msg string, args ...any) {
	if ll.contextualLogger != nil {
		ll.contextualLogger.InfoContext(ctx, msg, args...)

		return
	}

	if ll.logger != nil {
		ll.logger.Info(msg, args...)
	}
}

func (ll *LoanLedger) logError(ctx context.Context, msg string, err error, args ...any) {
	allArgs := append([]any{logAttrError, err.Error()}, args...)

	if ll.contextualLogger != nil {
		ll.contextualLogger.ErrorContext(ctx, msg, allArgs...)

		return
	}

	if ll.logger != nil {
		ll.logger.Error(msg, allArgs...)
	}
}

func (ll *LoanLedger) logConflict(ctx context.Context, bookID uuid.UUID, patronID uuid.UUID) {
	args := []any{logAttrBookID, bookID.String(), logAttrPatronID, patronID.String()}

	if ll.contextualLogger != nil {
		ll.contextualLogger.WarnContext(ctx, logMsgOpenLoanConflict, args...)

		return
	}

	if ll.logger != nil {
		ll.logger.Warn(logMsgOpenLoanConflict, args...)
	}
}

func (ll *LoanLedger) alarmCorruption(ctx context.Context, bookID uuid.UUID, patronID uuid.UUID, openCount int) {
	args := []any{
		logAttrBookID, bookID.String(),
		logAttrPatronID, patronID.String(),
		logAttrOpenCount, openCount,
	}

	if ll.contextualLogger != nil {
		ll.contextualLogger.ErrorContext(ctx, logMsgMultipleOpenLoans, args...)

		return
	}

	if ll.logger != nil {
		ll.logger.Error(logMsgMultipleOpenLoans, args...)
	}
}

func (ll *LoanLedger) logQueryWithDuration(ctx context.Context, query string, operation string, duration time.Duration) {
	args := []any{
		logAttrOperation, operation,
		logAttrDurationMS, toMilliseconds(duration),
		logAttrQuery, query,
	}

	if ll.contextualLogger != nil {
		ll.contextualLogger.DebugContext(ctx, logMsgSQLQueryExecuted, args...)

		return
	}

	if ll.logger != nil {
		ll.logger.Debug(logMsgSQLQueryExecuted, args...)
	}
}

func toMilliseconds(duration time.Duration) float64 {
	return float64(duration.Nanoseconds()) / 1e6
}
