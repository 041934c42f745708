package swagger

import (
	"encoding/json"
	"testing"

	"github.com/swaggo/swag"
)

func TestSwaggerRegistered(t *testing.T) {
	doc, err := swag.ReadDoc()
	if err != nil {
		t.Fatalf("ReadDoc() error: %v", err)
	}

	var spec struct {
		Info struct {
			Title string `json:"title"`
		} `json:"info"`
		Paths map[string]any `json:"paths"`
	}
	if err := json.Unmarshal([]byte(doc), &spec); err != nil {
		t.Fatalf("registered doc is not valid JSON: %v", err)
	}
	if spec.Info.Title != "Folio API" {
		t.Errorf("unexpected title %q", spec.Info.Title)
	}
	for _, path := range []string{"/segment", "/emptysegment", "/segmentedpages", "/segmentation/settings", "/api/translate"} {
		if _, ok := spec.Paths[path]; !ok {
			t.Errorf("missing path %s", path)
		}
	}
}
