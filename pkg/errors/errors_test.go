package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "validation failed: ID - is required", NewValidationError("ID", "is required").Error())
	assert.Equal(t, "validation failed: bad page", NewValidationError("", "bad page").Error())
	assert.Equal(t, "record not found", ErrNotFound.Error())
	assert.Equal(t, "user already exists", NewAlreadyExistsError("user", "").Error())
	assert.Equal(t, "users already synced", ErrAlreadySynced.Error())
}

func TestGRPCStatusCodes(t *testing.T) {
	tests := []struct {
		name string
		err  GRPCStatuser
		code codes.Code
	}{
		{"validation", NewValidationError("Email", "invalid"), codes.InvalidArgument},
		{"not found", NewNotFoundError("record", ""), codes.NotFound},
		{"already exists", NewAlreadyExistsError("record", ""), codes.AlreadyExists},
		{"failed precondition", NewFailedPreconditionError("nope"), codes.FailedPrecondition},
		{"internal", NewInternalError("boom", stderrors.New("cause")), codes.Internal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.GRPCStatus().Code())
		})
	}
}

func TestInternalError_Unwrap(t *testing.T) {
	cause := stderrors.New("redis down")
	err := fmt.Errorf("save: %w", NewInternalError("failed to persist records", cause))

	var internal *InternalError
	require.True(t, stderrors.As(err, &internal))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "failed to persist records", internal.GRPCStatus().Message())

	st, ok := status.FromError(internal)
	require.True(t, ok)
	assert.Equal(t, codes.Internal, st.Code())
}
