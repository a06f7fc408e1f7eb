package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestIsPolicyBlocked(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "structured code names a record exception",
			err:  &RequestError{StatusCode: 409, Code: "-2130575194, Microsoft.SharePoint.SPRecordsRepositoryException", Message: "operation refused"},
			want: true,
		},
		{
			name: "message mentions retention",
			err:  &RequestError{StatusCode: 403, Message: "This version cannot be deleted because it is subject to a retention policy"},
			want: true,
		},
		{
			name: "message mentions hold",
			err:  &RequestError{StatusCode: 403, Message: "The file is on hold and cannot be modified"},
			want: true,
		},
		{
			name: "wrapped request error still classifies",
			err:  fmt.Errorf("delete chunk: %w", &RequestError{StatusCode: 403, Message: "item is a declared record"}),
			want: true,
		},
		{
			name: "unrelated server error",
			err:  &RequestError{StatusCode: 500, Message: "internal server error"},
			want: false,
		},
		{
			name: "plain transport error",
			err:  errors.New("connection reset by peer"),
			want: false,
		},
		{
			name: "nil",
			err:  nil,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsPolicyBlocked(tt.err); got != tt.want {
				t.Errorf("IsPolicyBlocked(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"throttled", &RequestError{StatusCode: 429, Message: "too many requests"}, true},
		{"server error", &RequestError{StatusCode: 503, Message: "service unavailable"}, true},
		{"bad request", &RequestError{StatusCode: 400, Message: "invalid query"}, false},
		{"forbidden", &RequestError{StatusCode: 403, Message: "access denied"}, false},
		{"transport failure", errors.New("connection refused"), true},
		{"context canceled", context.Canceled, false},
		{"wrapped deadline", fmt.Errorf("delete chunk: %w", context.DeadlineExceeded), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
