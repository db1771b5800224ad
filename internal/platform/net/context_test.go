package net_test

import (
	"context"
	"testing"

	pnet "mywallet/internal/platform/net"
)

func TestWithRequest_And_Getters(t *testing.T) {
	base := context.Background()

	t.Run("sets request id", func(t *testing.T) {
		ctx := pnet.WithRequest(base, "req-123")
		if got := pnet.RequestID(ctx); got != "req-123" {
			t.Fatalf("RequestID got %q want %q", got, "req-123")
		}
	})

	t.Run("empty id returns same ctx", func(t *testing.T) {
		ctx := pnet.WithRequest(base, "")
		if ctx != base {
			t.Fatalf("expected ctx to be unchanged when id empty")
		}
		if got := pnet.RequestID(ctx); got != "" {
			t.Fatalf("RequestID got %q want empty", got)
		}
	})
}

func TestWithCaller(t *testing.T) {
	base := context.Background()
	if got := pnet.Caller(pnet.WithCaller(base, "ci")); got != "ci" {
		t.Fatalf("Caller got %q", got)
	}
	if ctx := pnet.WithCaller(base, ""); ctx != base || pnet.Caller(ctx) != "" {
		t.Fatal("empty caller should leave ctx unchanged")
	}
}
