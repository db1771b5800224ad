package browser

import (
	"context"
	stderrs "errors"
	"testing"
	"time"

	perr "mywallet/internal/platform/errors"
)

func fakeResolver(present map[string]bool, look string) binResolver {
	return binResolver{
		goos:   "linux",
		exists: func(p string) bool { return present[p] },
		lookPath: func() (string, bool) {
			return look, look != ""
		},
		download: func(context.Context) (string, error) { return "/cache/rod/chromium", nil },
	}
}

func TestResolve(t *testing.T) {
	cases := []struct {
		name    string
		opts    Options
		present map[string]bool
		look    string
		want    string
		wantErr bool
	}{
		{
			name: "production downloads managed build",
			opts: Options{Mode: ModeProduction, BinHint: "/ignored"},
			want: "/cache/rod/chromium",
		},
		{
			name:    "local hint wins",
			opts:    Options{Mode: ModeLocal, BinHint: "/opt/chrome/chrome"},
			present: map[string]bool{"/opt/chrome/chrome": true, "/usr/bin/chromium": true},
			want:    "/opt/chrome/chrome",
		},
		{
			name:    "local missing hint falls back to well known",
			opts:    Options{Mode: ModeLocal, BinHint: "/nope"},
			present: map[string]bool{"/usr/bin/chromium": true},
			want:    "/usr/bin/chromium",
		},
		{
			name: "local falls back to PATH lookup",
			opts: Options{Mode: ModeLocal},
			look: "/home/dev/bin/chrome",
			want: "/home/dev/bin/chrome",
		},
		{
			name:    "local with nothing installed",
			opts:    Options{Mode: ModeLocal},
			wantErr: true,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := fakeResolver(tc.present, tc.look).resolve(context.Background(), tc.opts)
			if tc.wantErr {
				if !perr.IsCode(err, perr.ErrorCodeUnavailable) {
					t.Fatalf("want unavailable error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("resolve: %v", err)
			}
			if got != tc.want {
				t.Fatalf("resolve = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestResolve_DownloadFailureIsUnavailable(t *testing.T) {
	r := fakeResolver(nil, "")
	r.download = func(context.Context) (string, error) { return "", stderrs.New("403 from mirror") }
	_, err := r.resolve(context.Background(), Options{Mode: ModeProduction})
	if !perr.IsCode(err, perr.ErrorCodeUnavailable) || !perr.Retryable(err) {
		t.Fatalf("want retryable unavailable, got %v", err)
	}
}

func TestResolve_DownloadHonoursContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	r := fakeResolver(nil, "")
	r.download = func(ctx context.Context) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}
	_, err := r.resolve(ctx, Options{Mode: ModeProduction})
	if !perr.IsCode(err, perr.ErrorCodeTimeout) || !stderrs.Is(err, context.DeadlineExceeded) {
		t.Fatalf("want timeout wrapping the deadline, got %v", err)
	}
}

func TestKeyed(t *testing.T) {
	for _, ch := range "aZ09 !~@.-_/" {
		if !keyed(ch) {
			t.Fatalf("%q should be typed as a key", ch)
		}
	}
	for _, ch := range "\n\téक€" {
		if keyed(ch) {
			t.Fatalf("%q should be inserted as text", ch)
		}
	}
}

func TestParseMode(t *testing.T) {
	if ParseMode(" LOCAL ") != ModeLocal || ParseMode("production") != ModeProduction || ParseMode("") != ModeProduction {
		t.Fatalf("ParseMode mapping wrong")
	}
}

func TestMissingWrapsSentinel(t *testing.T) {
	err := Missing("#transactionPIN")
	if !stderrs.Is(err, ErrNoElement) {
		t.Fatalf("Missing should wrap ErrNoElement")
	}
	e, ok := perr.As(err)
	if !ok || e.Field() != "#transactionPIN" || e.Code() != perr.ErrorCodeAutomation {
		t.Fatalf("unexpected error shape: %+v", e)
	}
}

func TestDriverErr(t *testing.T) {
	if driverErr(nil, "x") != nil {
		t.Fatalf("nil should pass through")
	}
	if got := driverErr(stderrs.New("cdp closed"), "click"); !perr.IsCode(got, perr.ErrorCodeAutomation) {
		t.Fatalf("want automation, got %v", got)
	}
	own := perr.Timeoutf("already classified")
	if driverErr(own, "click") != own {
		t.Fatalf("project errors should pass through unchanged")
	}
}
