package validator

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/GoogleCloudPlatform/bq-data-validator/internal/warehouse"
)

// MockClient is a testify mock of warehouse.Client
type MockClient struct {
	mock.Mock
}

var _ warehouse.Client = (*MockClient)(nil)

func (m *MockClient) GetTable(ctx context.Context, datasetID, tableID string) (*warehouse.TableMetadata, error) {
	args := m.Called(datasetID, tableID)
	meta, _ := args.Get(0).(*warehouse.TableMetadata)
	return meta, args.Error(1)
}

func (m *MockClient) RunQuery(ctx context.Context, sql string) ([]warehouse.Row, error) {
	args := m.Called(sql)
	rows, _ := args.Get(0).([]warehouse.Row)
	return rows, args.Error(1)
}

func (m *MockClient) ListTables(ctx context.Context, datasetID string) ([]string, error) {
	args := m.Called(datasetID)
	tables, _ := args.Get(0).([]string)
	return tables, args.Error(1)
}

func (m *MockClient) QualifiedTable(datasetID, tableID string) string {
	return fmt.Sprintf("`%s.%s`", datasetID, tableID)
}

func (m *MockClient) QuoteIdentifier(name string) string {
	return "`" + name + "`"
}

func (m *MockClient) Close() error {
	return nil
}

const testDataset = "ds"

var validSchema = warehouse.Schema{{Name: "column_name", Type: "STRING"}}

func tableMeta(table string, rows uint64, schema warehouse.Schema) *warehouse.TableMetadata {
	return &warehouse.TableMetadata{DatasetID: testDataset, TableID: table, NumRows: rows, Schema: schema}
}

func nullQuery(table string) string {
	return fmt.Sprintf("SELECT COUNT(*) AS null_value_count FROM `%s.%s` WHERE `column_name` IS NULL", testDataset, table)
}

func nullRows(count any) []warehouse.Row {
	return []warehouse.Row{{"null_value_count": count}}
}

type testHarness struct {
	client *MockClient
	v      *Validator
	logs   *observer.ObservedLogs
	sleeps []time.Duration
}

func newHarness(t *testing.T) *testHarness {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	h := &testHarness{client: &MockClient{}, logs: logs}
	h.v = New(h.client, zap.New(core), Options{DatasetID: testDataset})
	h.v.sleep = func(ctx context.Context, d time.Duration) error {
		h.sleeps = append(h.sleeps, d)
		return nil
	}
	return h
}

func (h *testHarness) errorLines() int {
	return h.logs.FilterLevelExact(zapcore.ErrorLevel).Len()
}

// expectHealthyTable sets up a table that passes every check.
func (h *testHarness) expectHealthyTable(table string) {
	h.client.On("GetTable", testDataset, table).Return(tableMeta(table, 10, validSchema), nil).Times(2)
	h.client.On("RunQuery", nullQuery(table)).Return(nullRows(int64(0)), nil).Once()
}
