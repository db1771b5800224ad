package swaggerkit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	phttp "mywallet/internal/platform/net/http"

	"github.com/go-chi/chi/v5"
)

func TestDocJSON_ListsEveryRoute(t *testing.T) {
	b, err := DocJSON()
	if err != nil {
		t.Fatal(err)
	}
	var doc struct {
		Info  struct{ Title string }
		Paths map[string]any
	}
	if err := json.Unmarshal(b, &doc); err != nil {
		t.Fatal(err)
	}
	if doc.Info.Title != "MyWallet API" {
		t.Fatalf("title %q", doc.Info.Title)
	}
	for _, p := range []string{
		"/meroshare/login/test", "/meroshare/apply", "/meroshare/allotment", "/meroshare/portfolio",
		"/meta/health", "/meta/ready", "/meta/version", "/meta/service",
	} {
		if _, ok := doc.Paths[p]; !ok {
			t.Errorf("path %s missing", p)
		}
	}
}

func TestMount(t *testing.T) {
	for _, enabled := range []bool{true, false} {
		m := chi.NewRouter()
		Mount(phttp.AdaptChi(m), enabled)
		rr := httptest.NewRecorder()
		m.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/docs/doc.json", nil))
		want := http.StatusNotFound
		if enabled {
			want = http.StatusOK
		}
		if rr.Code != want {
			t.Fatalf("enabled=%v: status %d", enabled, rr.Code)
		}
	}
}
