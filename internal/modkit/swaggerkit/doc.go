package swaggerkit

import (
	_ "embed"
	"encoding/json"
	"net/http"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed openapi.yaml
var openapiYAML []byte

var (
	docOnce sync.Once
	docJSON []byte
	docErr  error
)

// DocJSON returns the embedded OpenAPI document converted to JSON
func DocJSON() ([]byte, error) {
	docOnce.Do(func() {
		var doc map[string]any
		if docErr = yaml.Unmarshal(openapiYAML, &doc); docErr != nil {
			return
		}
		docJSON, docErr = json.Marshal(doc)
	})
	return docJSON, docErr
}

func serveDocJSON(w http.ResponseWriter, _ *http.Request) {
	b, err := DocJSON()
	if err != nil {
		http.Error(w, "openapi document unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(b)
}
