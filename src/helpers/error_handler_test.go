package helpers

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategory(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, "ok"},
		{"protocol", NewProtocolError("missing symbol"), "protocol"},
		{"wrapped protocol", fmt.Errorf("decode: %w", NewProtocolError("x")), "protocol"},
		{"no data", NewDataUnavailableError("ZZZ", "empty series"), "data_unavailable"},
		{"fetch", NewFetchError("AAPL", errors.New("connection refused")), "fetch"},
		{"timeout", NewTimeoutError("fetch", context.DeadlineExceeded), "timeout"},
		{"bare deadline", context.DeadlineExceeded, "timeout"},
		{"transport", NewTransportError("send response", errors.New("broken pipe")), "transport"},
		{"config", NewConfigurationError("bad port %d", 1), "configuration"},
		{"other", errors.New("?"), "internal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Category(tt.err))
		})
	}
}

func TestWireMessage(t *testing.T) {
	assert.Equal(t, "bad request", WireMessage(NewProtocolError("years not an integer")))

	err := NewDataUnavailableError("ZZZZ", "empty series")
	assert.Equal(t, "no usable data for symbol ZZZZ: empty series", WireMessage(err))

	fe := NewFetchError("AAPL", errors.New("status 503"))
	assert.Equal(t, "fetch failed for AAPL: status 503", WireMessage(fe))
}

func TestErrorsUnwrap(t *testing.T) {
	err := NewDataUnavailableError("X", "")
	assert.ErrorIs(t, err, ErrNoData)
	assert.Equal(t, "no usable data for symbol X", err.Error())

	cause := errors.New("dial tcp: refused")
	fe := NewFetchError("X", cause)
	assert.ErrorIs(t, fe, cause)
}

func TestSentinelStaysOffTheMessage(t *testing.T) {
	pe := NewProtocolError("years not an integer")
	assert.ErrorIs(t, pe, ErrBadRequest)
	assert.Equal(t, "years not an integer", pe.Error())

	de := fmt.Errorf("estimate: %w", NewDataUnavailableError("ZZZZ", "empty series"))
	assert.ErrorIs(t, de, ErrNoData)
	assert.NotErrorIs(t, de, ErrBadRequest)
	assert.Equal(t, "no usable data for symbol ZZZZ", WireMessage(NewDataUnavailableError("ZZZZ", "")))
	assert.Equal(t, "estimate: no usable data for symbol ZZZZ: empty series", de.Error())
}
