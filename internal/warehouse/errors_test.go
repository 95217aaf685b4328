package warehouse

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorClassification(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		name          string
		err           error
		wantNotFound  bool
		wantWarehouse bool
	}{
		{"warehouse", NewError("get table", cause), false, true},
		{"not_found", NotFoundError("get table", cause), true, true},
		{"not_found_without_cause", NotFoundError("get table", nil), true, true},
		{"wrapped_not_found", fmt.Errorf("check schema: %w", NotFoundError("get table", nil)), true, true},
		{"plain", cause, false, false},
		{"bare_sentinel", ErrNotFound, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantNotFound, IsNotFound(tt.err))
			assert.Equal(t, tt.wantWarehouse, IsWarehouseError(tt.err))
		})
	}
}

func TestNewError(t *testing.T) {
	assert.NoError(t, NewError("op", nil))

	cause := errors.New("boom")
	err := NewError("list tables", cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "warehouse error: list tables: boom", err.Error())
}
