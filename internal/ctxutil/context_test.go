package ctxutil

import (
	"context"
	"testing"
	"time"
)

func TestContextValues(t *testing.T) {
	ctx := context.Background()

	if GetUserID(ctx) != "" || GetChatID(ctx) != "" {
		t.Error("empty context should return empty IDs")
	}
	if _, ok := GetRequestID(ctx); ok {
		t.Error("empty context should not contain a request ID")
	}

	ctx = WithUserID(ctx, "U123")
	ctx = WithChatID(ctx, "C456")
	ctx = WithRequestID(ctx, "evt-789")

	if got := GetUserID(ctx); got != "U123" {
		t.Errorf("GetUserID = %q, want %q", got, "U123")
	}
	if got := GetChatID(ctx); got != "C456" {
		t.Errorf("GetChatID = %q, want %q", got, "C456")
	}
	if got, ok := GetRequestID(ctx); !ok || got != "evt-789" {
		t.Errorf("GetRequestID = %q, %v", got, ok)
	}
}

func TestPreserveTracing(t *testing.T) {
	parent, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	parent = WithUserID(parent, "U123")
	parent = WithChatID(parent, "C456")
	parent = WithRequestID(parent, "evt-789")
	cancel()

	detached := PreserveTracing(parent)

	if err := detached.Err(); err != nil {
		t.Errorf("detached context inherited cancellation: %v", err)
	}
	if GetUserID(detached) != "U123" || GetChatID(detached) != "C456" {
		t.Error("tracing values not preserved")
	}
	if got, ok := GetRequestID(detached); !ok || got != "evt-789" {
		t.Errorf("request ID not preserved: %q, %v", got, ok)
	}
}
