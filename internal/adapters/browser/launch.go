package browser

import (
	"context"
	"os"
	"runtime"
	"strings"

	perr "mywallet/internal/platform/errors"

	"github.com/go-rod/rod/lib/launcher"
)

// wellKnown lists install locations probed in local mode, per GOOS
var wellKnown = map[string][]string{
	"linux": {
		"/usr/bin/google-chrome",
		"/usr/bin/google-chrome-stable",
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
		"/snap/bin/chromium",
		"/usr/bin/microsoft-edge",
	},
	"darwin": {
		"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
		"/Applications/Chromium.app/Contents/MacOS/Chromium",
		"/Applications/Microsoft Edge.app/Contents/MacOS/Microsoft Edge",
	},
	"windows": {
		`C:\Program Files\Google\Chrome\Application\chrome.exe`,
		`C:\Program Files (x86)\Google\Chrome\Application\chrome.exe`,
		`C:\Program Files (x86)\Microsoft\Edge\Application\msedge.exe`,
	},
}

// binResolver finds a browser executable; fields are seams for tests
type binResolver struct {
	goos     string
	exists   func(path string) bool
	lookPath func() (string, bool)
	download func(ctx context.Context) (string, error)
}

func defaultResolver() binResolver {
	return binResolver{
		goos: runtime.GOOS,
		exists: func(p string) bool {
			st, err := os.Stat(p)
			return err == nil && !st.IsDir()
		},
		lookPath: launcher.LookPath,
		download: func(ctx context.Context) (string, error) {
			b := launcher.NewBrowser()
			b.Context = ctx
			return b.Get()
		},
	}
}

// resolve returns the executable to launch for opts
// production: managed download; local: hint, well-known paths, then PATH lookup
func (r binResolver) resolve(ctx context.Context, opts Options) (string, error) {
	if opts.Mode != ModeLocal {
		bin, err := r.download(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return "", perr.Wrap(err, perr.ErrorCodeTimeout, "managed browser download interrupted")
			}
			return "", perr.Wrap(err, perr.ErrorCodeUnavailable, "managed browser download failed")
		}
		return bin, nil
	}

	if hint := strings.TrimSpace(opts.BinHint); hint != "" {
		if r.exists(hint) {
			return hint, nil
		}
	}
	for _, p := range wellKnown[r.goos] {
		if r.exists(p) {
			return p, nil
		}
	}
	if p, ok := r.lookPath(); ok {
		return p, nil
	}
	return "", perr.Unavailablef("no local browser found (set MERO_BROWSER_BIN)")
}
