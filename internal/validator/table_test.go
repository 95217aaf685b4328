package validator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/GoogleCloudPlatform/bq-data-validator/internal/warehouse"
)

func TestValidateTable_Success(t *testing.T) {
	h := newHarness(t)
	h.expectHealthyTable("orders")

	outcome, err := h.v.ValidateTable(context.Background(), "orders")
	require.NoError(t, err)
	assert.Equal(t, OutcomeValidated, outcome)
	h.client.AssertExpectations(t)

	assert.Equal(t, 0, h.errorLines())
	started := h.logs.FilterMessage("Validating table").All()
	require.Len(t, started, 1)
	assert.Equal(t, uint64(10), started[0].ContextMap()["rows"])
	assert.Equal(t, "orders", started[0].ContextMap()["table"])
	assert.Equal(t, 1, h.logs.FilterMessage("Table validated successfully").Len())
	assert.Empty(t, h.sleeps)
}

func TestValidateTable_NotFound(t *testing.T) {
	h := newHarness(t)
	h.client.On("GetTable", testDataset, "gone").Return(nil, warehouse.NotFoundError("get table", errors.New("404"))).Once()

	outcome, err := h.v.ValidateTable(context.Background(), "gone")
	require.NoError(t, err)
	assert.Equal(t, OutcomeNotFound, outcome)

	h.client.AssertNumberOfCalls(t, "GetTable", 1)
	h.client.AssertNotCalled(t, "RunQuery", nullQuery("gone"))
	assert.Equal(t, 1, h.errorLines())
	assert.Equal(t, 1, h.logs.FilterMessage("Table not found in dataset").Len())
	assert.Empty(t, h.sleeps)
}

func TestValidateTable_NotFoundDuringSchemaCheck(t *testing.T) {
	h := newHarness(t)
	h.client.On("GetTable", testDataset, "t").Return(tableMeta("t", 1, validSchema), nil).Once()
	h.client.On("RunQuery", nullQuery("t")).Return(nullRows(int64(0)), nil).Once()
	h.client.On("GetTable", testDataset, "t").Return(nil, warehouse.NotFoundError("get table", nil)).Once()

	outcome, err := h.v.ValidateTable(context.Background(), "t")
	require.NoError(t, err)
	assert.Equal(t, OutcomeNotFound, outcome)
	assert.Empty(t, h.sleeps)
}

func TestValidateTable_WarehouseErrorExhaustsRetries(t *testing.T) {
	h := newHarness(t)
	backendErr := warehouse.NewError("get table", errors.New("backendError"))
	h.client.On("GetTable", testDataset, "flaky").Return(nil, backendErr)

	outcome, err := h.v.ValidateTable(context.Background(), "flaky")
	require.Error(t, err)
	assert.Equal(t, OutcomeFailed, outcome)

	var werr *ErrWarehouse
	require.ErrorAs(t, err, &werr)
	assert.ErrorIs(t, err, backendErr)

	h.client.AssertNumberOfCalls(t, "GetTable", 5)
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second, 8 * time.Second, 10 * time.Second}, h.sleeps)
	assert.Equal(t, 5, h.logs.FilterMessage("Warehouse error during validation").Len())
	assert.Equal(t, 4, h.logs.FilterMessage("Operation failed, retrying").Len())
}

func TestValidateTable_RecoversAfterTransientError(t *testing.T) {
	h := newHarness(t)
	h.client.On("GetTable", testDataset, "t").Return(nil, warehouse.NewError("get table", errors.New("rateLimitExceeded"))).Once()
	h.expectHealthyTable("t")

	outcome, err := h.v.ValidateTable(context.Background(), "t")
	require.NoError(t, err)
	assert.Equal(t, OutcomeValidated, outcome)
	assert.Equal(t, []time.Duration{2 * time.Second}, h.sleeps)
	h.client.AssertNumberOfCalls(t, "GetTable", 3)
}

func TestValidateTable_UnexpectedErrorIsRetried(t *testing.T) {
	h := newHarness(t)
	h.client.On("GetTable", testDataset, "t").Return(tableMeta("t", 1, validSchema), nil)
	h.client.On("RunQuery", nullQuery("t")).Return([]warehouse.Row{{"other": 1}}, nil)

	outcome, err := h.v.ValidateTable(context.Background(), "t")
	require.Error(t, err)
	assert.Equal(t, OutcomeFailed, outcome)

	var unexpected *ErrUnexpected
	require.ErrorAs(t, err, &unexpected)
	var qerr *ErrQueryExecution
	assert.ErrorAs(t, err, &qerr)
	h.client.AssertNumberOfCalls(t, "RunQuery", 5)
	assert.Equal(t, 5, h.logs.FilterMessage("Unexpected error during validation").Len())
}

func TestValidateTable_QueryErrorPropagatesToRetry(t *testing.T) {
	h := newHarness(t)
	h.v.opts.Retry.MaxAttempts = 2
	queryErr := warehouse.NewError("run query", errors.New("syntax error"))
	h.client.On("GetTable", testDataset, "t").Return(tableMeta("t", 1, validSchema), nil)
	h.client.On("RunQuery", nullQuery("t")).Return(nil, queryErr)

	_, err := h.v.ValidateTable(context.Background(), "t")
	require.ErrorIs(t, err, queryErr)
	h.client.AssertNumberOfCalls(t, "RunQuery", 2)
	assert.Equal(t, 2, h.logs.FilterMessage("Error checking null values").Len())
	assert.Equal(t, []time.Duration{2 * time.Second}, h.sleeps)
}

func TestValidateTable_EmptyTableID(t *testing.T) {
	h := newHarness(t)

	outcome, err := h.v.ValidateTable(context.Background(), "  ")
	require.Error(t, err)
	assert.Equal(t, OutcomeFailed, outcome)
	var invalid *ErrInvalidInput
	assert.ErrorAs(t, err, &invalid)
	h.client.AssertNotCalled(t, "GetTable", testDataset, "  ")
}

func TestValidateTable_CancelledDuringBackoff(t *testing.T) {
	h := newHarness(t)
	h.v.sleep = func(ctx context.Context, d time.Duration) error { return context.Canceled }
	h.client.On("GetTable", testDataset, "t").Return(nil, warehouse.NewError("get table", errors.New("boom")))

	_, err := h.v.ValidateTable(context.Background(), "t")
	var cancelled *ErrCancelled
	require.ErrorAs(t, err, &cancelled)
	h.client.AssertNumberOfCalls(t, "GetTable", 1)
}

func TestValidateTable_ContextErrorIsNotRetried(t *testing.T) {
	h := newHarness(t)
	h.client.On("GetTable", testDataset, "t").Return(nil, context.DeadlineExceeded)

	_, err := h.v.ValidateTable(context.Background(), "t")
	var cancelled *ErrCancelled
	require.ErrorAs(t, err, &cancelled)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	h.client.AssertNumberOfCalls(t, "GetTable", 1)
	assert.Empty(t, h.sleeps)
}

func TestValidateTable_LogsCarryDataset(t *testing.T) {
	h := newHarness(t)
	h.expectHealthyTable("t")

	_, err := h.v.ValidateTable(context.Background(), "t")
	require.NoError(t, err)
	for _, entry := range h.logs.FilterLevelExact(zapcore.InfoLevel).All() {
		assert.Equal(t, testDataset, entry.ContextMap()["dataset"], entry.Message)
	}
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "validated", OutcomeValidated.String())
	assert.Equal(t, "not_found", OutcomeNotFound.String())
	assert.Equal(t, "failed", OutcomeFailed.String())
}
