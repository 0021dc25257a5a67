package chatapi

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"network kind", &RequestError{Kind: KindNetwork, Message: "dial tcp: connection refused"}, MsgNetwork},
		{"fetch failure text", errors.New("TypeError: Failed to fetch"), MsgNetwork},
		{"timeout kind", &RequestError{Kind: KindTimeout, Message: "deadline"}, MsgTimeout},
		{"timeout text", errors.New("upstream timeout: read"), MsgTimeout},
		{"401 status", &RequestError{Kind: KindHTTP, StatusCode: 401, Message: "bad key"}, MsgAuth},
		{"401 text", errors.New("HTTP 401: Unauthorized"), MsgAuth},
		{"403 status", &RequestError{Kind: KindHTTP, StatusCode: 403, Message: "nope"}, MsgForbidden},
		{"429 status with payload", &RequestError{Kind: KindHTTP, StatusCode: 429, Message: "rate limit"}, MsgRateLimited},
		{"500 status", &RequestError{Kind: KindHTTP, StatusCode: 500, Message: "HTTP 500: Internal Server Error"}, MsgServer},
		{"502 status", &RequestError{Kind: KindHTTP, StatusCode: 502, Message: "x"}, MsgUnavailable},
		{"503 text", errors.New("upstream said 503"), MsgUnavailable},
		{"504 status", &RequestError{Kind: KindHTTP, StatusCode: 504, Message: "y"}, MsgUnavailable},
		{"timeout beats status", &RequestError{Kind: KindHTTP, StatusCode: 503, Message: "upstream timeout"}, MsgTimeout},
		{"raw passthrough", &RequestError{Kind: KindHTTP, StatusCode: 404, Message: "HTTP 404: Not Found"}, "HTTP 404: Not Found"},
		{"application passthrough", &RequestError{Kind: KindApplication, StatusCode: 200, Message: "model exploded"}, "model exploded"},
		{"empty message", &RequestError{Kind: KindApplication, StatusCode: 200}, MsgUnknown},
		{"wrapped", fmt.Errorf("send: %w", &RequestError{Kind: KindHTTP, StatusCode: 429, Message: "slow down"}), MsgRateLimited},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.err))
		})
	}
}

func TestFailureKindString(t *testing.T) {
	assert.Equal(t, "network", KindNetwork.String())
	assert.Equal(t, "http", KindHTTP.String())
	assert.Equal(t, "canceled", KindCanceled.String())
	assert.Equal(t, "unknown", FailureKind(99).String())
}
