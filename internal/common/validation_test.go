package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestValidatorCollectsAllErrors(t *testing.T) {
	v := NewValidator()
	v.Field("name", "  ", Required).
		Field("count", -1, NonNegative).
		Field("size", 0, Positive).
		Field("kind", "b", OneOf("a", "c")).
		Check(false, "range", "5..1", "min must not exceed max")

	require.True(t, v.HasErrors())
	assert.Len(t, v.Errors(), 5)

	err := v.Error()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
	for _, field := range []string{"name", "count", "size", "kind", "range"} {
		assert.Contains(t, err.Error(), "'"+field+"'")
	}
}

func TestValidatorNoErrors(t *testing.T) {
	v := NewValidator()
	v.Field("name", "ok", Required).
		Field("count", 0, NonNegative).
		Field("id", "7c9e6679-7425-40de-944b-e07fc1f90ae7", UUID)

	assert.False(t, v.HasErrors())
	assert.NoError(t, v.Error())
	assert.Empty(t, v.ErrorMessage())
	assert.NoError(t, ValidateAndReturnError(v))
}

func TestValidateAndReturnError(t *testing.T) {
	v := NewValidator().Field("id", "not-a-uuid", UUID)
	err := ValidateAndReturnError(v)
	require.Error(t, err)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestToStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want codes.Code
	}{
		{name: "nil", err: nil, want: codes.OK},
		{name: "not found", err: WrapError(ErrNotFound, "record 1"), want: codes.NotFound},
		{name: "invalid input", err: NewAppError(CodeInput, "empty text", ErrInvalidInput), want: codes.InvalidArgument},
		{name: "database", err: NewAppError(CodeDatabase, "insert", ErrDatabase), want: codes.Internal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, status.Code(ToStatus(tt.err)))
		})
	}
}
