//go:build integration_pg

package pg

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"mywallet/internal/platform/testkit"

	"github.com/rs/zerolog"
)

func TestOpen_Integration(t *testing.T) {
	dsn := testkit.Postgres(t)
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	var buf bytes.Buffer
	pool, err := Open(ctx, Config{URL: dsn, AppName: "mywallet-pg-it", MaxConns: 2, LogSQL: true}, zerolog.New(&buf), nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(pool.Close)

	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}

	var app string
	if err := pool.QueryRow(ctx, `select current_setting('application_name')`).Scan(&app); err != nil {
		t.Fatal(err)
	}
	if app != "mywallet-pg-it" {
		t.Fatalf("application_name = %q", app)
	}
	if !strings.Contains(buf.String(), "current_setting") {
		t.Fatalf("query was not traced: %q", buf.String())
	}
}
