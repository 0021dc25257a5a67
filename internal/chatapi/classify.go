package chatapi

import (
	"errors"
	"slices"
	"strings"
)

// Friendly messages shown in the error dialog.
const (
	MsgNetwork     = "Network connection failed. Please check your connection and try again."
	MsgTimeout     = "Request timed out. Please try again later."
	MsgAuth        = "Authentication failed. Please check the API key configuration."
	MsgForbidden   = "Access denied. Please check your permissions."
	MsgRateLimited = "Rate limited: too many requests. Please try again later."
	MsgServer      = "Internal server error. Please try again later."
	MsgUnavailable = "Service temporarily unavailable. Please try again later."
	MsgUnknown     = "An unknown error occurred. Please try again."
)

// A classification matches on failure kind, HTTP status or a substring of the
// raw message; any hit wins.
type classification struct {
	kinds    []FailureKind
	statuses []int
	keywords []string
	message  string
}

func (c classification) matches(kind FailureKind, status int, raw string) bool {
	if slices.Contains(c.kinds, kind) || (status != 0 && slices.Contains(c.statuses, status)) {
		return true
	}
	for _, kw := range c.keywords {
		if strings.Contains(raw, kw) {
			return true
		}
	}
	return false
}

// Order matters: the first match wins.
var classifications = []classification{
	{kinds: []FailureKind{KindNetwork}, keywords: []string{"Failed to fetch", "NetworkError"}, message: MsgNetwork},
	{kinds: []FailureKind{KindTimeout}, keywords: []string{"timeout"}, message: MsgTimeout},
	{statuses: []int{401}, keywords: []string{"401"}, message: MsgAuth},
	{statuses: []int{403}, keywords: []string{"403"}, message: MsgForbidden},
	{statuses: []int{429}, keywords: []string{"429"}, message: MsgRateLimited},
	{statuses: []int{500}, keywords: []string{"500"}, message: MsgServer},
	{statuses: []int{502, 503, 504}, keywords: []string{"502", "503", "504"}, message: MsgUnavailable},
}

// Classify maps a request failure to the message shown to the user. Unmatched
// failures pass their raw message through.
func Classify(err error) string {
	if err == nil {
		return ""
	}

	raw := err.Error()
	kind := KindUnknown
	status := 0

	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		kind = reqErr.Kind
		status = reqErr.StatusCode
		raw = reqErr.Message
	}

	for _, c := range classifications {
		if c.matches(kind, status, raw) {
			return c.message
		}
	}

	if strings.TrimSpace(raw) == "" {
		return MsgUnknown
	}
	return raw
}
