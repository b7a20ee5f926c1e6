package agentcard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/deskmesh/deskmesh/pkg/errors"
)

func testCard(url string) *AgentCard {
	return Build(Config{
		Name:        "demo-agent",
		Description: "test fixture",
		Version:     "0.1.0",
		URL:         url,
		Skills: []AgentSkill{
			{ID: "demo", Name: "Demo", Tags: []string{"test"}},
		},
	})
}

func TestPublishHandler_NoCard(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, WellKnownPath, nil)
	rec := httptest.NewRecorder()

	PublishHandler(nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestPublishHandler_ServesCard(t *testing.T) {
	card := testCard("http://localhost:10020")
	req := httptest.NewRequest(http.MethodGet, WellKnownPath, nil)
	rec := httptest.NewRecorder()

	PublishHandler(card).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get("Content-Type") != DefaultMediaType {
		t.Fatalf("expected content type %q", DefaultMediaType)
	}
	var decoded AgentCard
	if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if decoded.Name != "demo-agent" {
		t.Fatalf("expected name demo-agent, got %q", decoded.Name)
	}
}

func TestFetch_Success(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != WellKnownPath {
			http.NotFound(w, r)
			return
		}
		PublishHandler(testCard(server.URL)).ServeHTTP(w, r)
	}))
	defer server.Close()

	got, err := Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if got.Name != "demo-agent" {
		t.Fatalf("expected name %q, got %q", "demo-agent", got.Name)
	}
	if len(got.Skills) != 1 || got.Skills[0].ID != "demo" {
		t.Fatalf("expected one demo skill, got %+v", got.Skills)
	}
}

func TestFetch_Idempotent(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		PublishHandler(testCard(server.URL)).ServeHTTP(w, r)
	}))
	defer server.Close()

	first, err := Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("first Fetch error: %v", err)
	}
	second, err := Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("second Fetch error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected structurally identical cards, got %+v and %+v", first, second)
	}
}

func TestFetch_NonOK(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := Fetch(context.Background(), server.URL)
	if !errors.HasCode(err, errors.CodeDiscovery) {
		t.Fatalf("expected discovery error for non-200 response, got %v", err)
	}
}

func TestFetch_MalformedCard(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", "not-json"},
		{"missing name", `{"url":"http://localhost:1","skills":[{"id":"x","name":"x"}]}`},
		{"missing skills", `{"name":"a","url":"http://localhost:1","skills":[]}`},
		{"bad url", `{"name":"a","url":"::","skills":[{"id":"x","name":"x"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", DefaultMediaType)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := Fetch(context.Background(), server.URL)
			if !errors.HasCode(err, errors.CodeDiscovery) {
				t.Fatalf("expected discovery error, got %v", err)
			}
		})
	}
}

func TestFetch_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	_, err := Fetch(context.Background(), server.URL)
	if !errors.HasCode(err, errors.CodeDiscovery) {
		t.Fatalf("expected discovery error for closed server, got %v", err)
	}
}
