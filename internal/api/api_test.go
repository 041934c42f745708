package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func TestClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/ok":
			json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
		case r.Method == http.MethodPost && r.URL.Path == "/echo":
			if ct := r.Header.Get("Content-Type"); ct != "application/json" {
				t.Errorf("expected JSON content type, got %q", ct)
			}
			var body map[string]int
			json.NewDecoder(r.Body).Decode(&body)
			json.NewEncoder(w).Encode(body)
		case r.Method == http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		case r.URL.Path == "/missing":
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(ErrorResponse{Error: "book not found"})
		default:
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte("upstream down"))
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	ctx := context.Background()

	var status map[string]string
	if err := c.Get(ctx, "/ok", &status); err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if status["status"] != "ok" {
		t.Errorf("unexpected body %v", status)
	}

	var echo map[string]int
	if err := c.Post(ctx, "/echo", map[string]int{"page": 3}, &echo); err != nil {
		t.Fatalf("Post() error: %v", err)
	}
	if echo["page"] != 3 {
		t.Errorf("unexpected echo %v", echo)
	}

	if err := c.Delete(ctx, "/anything"); err != nil {
		t.Errorf("Delete() error: %v", err)
	}

	err := c.Get(ctx, "/missing", nil)
	var se *StatusError
	if !errors.As(err, &se) || se.Code != 404 || se.Message != "book not found" {
		t.Errorf("expected 404 status error, got %v", err)
	}

	err = c.Put(ctx, "/other", map[string]int{}, nil)
	if !errors.As(err, &se) || se.Code != 502 || se.Message != "upstream down" {
		t.Errorf("expected raw 502 body, got %v", err)
	}
}

func TestOutputTo(t *testing.T) {
	data := struct {
		BookID int    `json:"book"`
		Type   string `json:"imageSegType"`
	}{BookID: 2, Type: "STRAIGHT_RECT"}

	var buf bytes.Buffer
	if err := OutputTo(&buf, OutputFormatYAML, data); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "book: 2") || !strings.Contains(buf.String(), "imageSegType: STRAIGHT_RECT") {
		t.Errorf("expected JSON field names in YAML output, got:\n%s", buf.String())
	}

	buf.Reset()
	if err := OutputTo(&buf, OutputFormatJSON, data); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"book": 2`) {
		t.Errorf("unexpected JSON output:\n%s", buf.String())
	}

	if err := OutputTo(&buf, "toml", data); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestSetOutputFormat(t *testing.T) {
	defer SetOutputFormat("yaml")

	SetOutputFormat("json")
	if GetOutputFormat() != OutputFormatJSON {
		t.Errorf("expected json, got %s", GetOutputFormat())
	}
	SetOutputFormat("xml")
	if GetOutputFormat() != DefaultOutput {
		t.Errorf("expected default, got %s", GetOutputFormat())
	}
}

type testEndpoint struct {
	path  string
	init  bool
	group string
}

func (e testEndpoint) Route() (string, string, http.HandlerFunc) {
	return http.MethodGet, e.path, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}
}

func (e testEndpoint) RequiresInit() bool { return e.init }

func (e testEndpoint) CommandGroup() string { return e.group }

func (e testEndpoint) Command(func() string) *cobra.Command {
	return &cobra.Command{Use: strings.TrimPrefix(e.path, "/")}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	for _, ep := range []testEndpoint{{path: "/health"}, {path: "/books", init: true}} {
		if err := r.Register(ep); err != nil {
			t.Fatalf("Register() error = %v", err)
		}
	}

	mux := http.NewServeMux()
	r.RegisterRoutes(mux, func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	})

	for path, want := range map[string]int{"/health": 200, "/books": 503} {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != want {
			t.Errorf("%s: expected %d, got %d", path, want, rec.Code)
		}
	}

	cmd := r.BuildCommands(func() string { return "" })
	if len(cmd.Commands()) != 2 {
		t.Errorf("expected 2 subcommands, got %d", len(cmd.Commands()))
	}
	if len(r.Endpoints()) != 2 {
		t.Errorf("expected 2 endpoints, got %d", len(r.Endpoints()))
	}
}

func TestRegistry_DuplicateRoute(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(testEndpoint{path: "/segment"}); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(testEndpoint{path: "/segment"}); !errors.Is(err, ErrDuplicateRoute) {
		t.Errorf("expected ErrDuplicateRoute, got %v", err)
	}
	if len(r.Endpoints()) != 1 {
		t.Errorf("expected 1 endpoint, got %d", len(r.Endpoints()))
	}
}

func TestRegistry_CommandGroups(t *testing.T) {
	r := NewRegistry()
	r.AddGroup("books", "Book and settings commands")
	for _, ep := range []testEndpoint{
		{path: "/health"},
		{path: "/list", group: "books"},
		{path: "/get", group: "books"},
		{path: "/top", group: "engine"},
	} {
		if err := r.Register(ep); err != nil {
			t.Fatal(err)
		}
	}

	cmd := r.BuildCommands(func() string { return "" })
	books, _, err := cmd.Find([]string{"books", "get"})
	if err != nil || books.Name() != "get" {
		t.Fatalf("expected books get, got %v (%v)", books, err)
	}
	if books.Parent().Short != "Book and settings commands" {
		t.Errorf("unexpected group help %q", books.Parent().Short)
	}
	engine, _, err := cmd.Find([]string{"engine"})
	if err != nil || engine.Short != "engine commands" || len(engine.Commands()) != 1 {
		t.Errorf("unexpected engine group %+v (%v)", engine, err)
	}
	if len(cmd.Commands()) != 3 {
		t.Errorf("expected health, books and engine, got %d", len(cmd.Commands()))
	}
}
