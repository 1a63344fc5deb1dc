package errorbank

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
)

func TestStatusCodes(t *testing.T) {
	tests := []struct {
		kind     Kind
		httpCode int
		grpcCode codes.Code
	}{
		{KindBadRequest, http.StatusBadRequest, codes.InvalidArgument},
		{KindConflict, http.StatusConflict, codes.AlreadyExists},
		{KindNotFound, http.StatusNotFound, codes.NotFound},
		{KindUnprocessableEntity, http.StatusUnprocessableEntity, codes.FailedPrecondition},
		{KindUnavailable, http.StatusServiceUnavailable, codes.Unavailable},
		{KindInternal, http.StatusInternalServerError, codes.Internal},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			err := New(tt.kind, "boom")
			assert.Equal(t, tt.httpCode, err.StatusCode())
			assert.Equal(t, tt.grpcCode, err.GRPCCode())
		})
	}
}

func TestFrom(t *testing.T) {
	appErr := Conflict("duplicate", WithDetail("order_id", "001"))
	assert.Same(t, appErr, From(appErr))

	cause := errors.New("disk full")
	wrapped := From(cause)
	assert.Equal(t, KindInternal, wrapped.Kind())
	assert.ErrorIs(t, wrapped, cause)
}

func TestErrorMessageIncludesCause(t *testing.T) {
	cause := errors.New("no such file")
	err := Unavailable("storage unavailable", WithCause(cause))
	assert.Equal(t, "storage unavailable: no such file", err.Error())
	assert.ErrorIs(t, err, cause)
}
