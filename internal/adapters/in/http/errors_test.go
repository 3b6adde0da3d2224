package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"shiptrack/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{errs.NewValueIsRequiredError("route"), http.StatusBadRequest, codeInvalidInput},
		{errs.NewValueIsInvalidError("weight"), http.StatusBadRequest, codeInvalidInput},
		{errs.NewValueIsOutOfRangeError("weight", 0, 1, 10), http.StatusBadRequest, codeInvalidInput},
		{errs.NewObjectNotFoundError("shipmentId", "7"), http.StatusNotFound, codeNotFound},
		{errs.NewReferenceNotFoundError("carrier", "C9"), http.StatusUnprocessableEntity, codeReferenceNotFound},
		{errs.NewInvalidStateError("assign", "Delivered"), http.StatusConflict, codeInvalidState},
		{errs.NewIllegalTransitionError("Pending", "Delivered"), http.StatusConflict, codeIllegalTransition},
		{errs.NewVersionIsInvalidError("sequence"), http.StatusConflict, codeConflict},
		{fmt.Errorf("wait for shipment 7: %w", context.DeadlineExceeded), http.StatusInternalServerError, codeInternal},
		{errors.New("boom"), http.StatusInternalServerError, codeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			status, code := classify(fmt.Errorf("wrapped: %w", tt.err))
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, code)
		})
	}
}
