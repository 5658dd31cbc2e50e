package generator

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/packsmith-labs/packsmith/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *ModelAPI {
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	cfg := &config.ModelAPIEnvConfig{
		ModelAPIUrl:   ts.URL,
		ModelName:     "packsmith-test",
		ClientTimeout: 5 * time.Second,
		RetryWaitMin:  time.Millisecond,
		RetryWaitMax:  2 * time.Millisecond,
	}
	m, err := NewModelAPI(cfg)
	if err != nil {
		t.Fatalf("new model api: %v", err)
	}
	return m
}

func TestNewModelAPI_NilConfig(t *testing.T) {
	_, err := NewModelAPI(nil)
	if err == nil {
		t.Fatalf("expected error when cfg is nil")
	}
}

func TestGenerate_Success(t *testing.T) {
	m := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/generate" || r.Method != http.MethodPost {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"text":"{\"files\":[]}"}`))
	})

	text, err := m.Generate(context.Background(), Request{Instruction: "make", Parts: []Part{TextPart("a sword")}})
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if text != `{"files":[]}` {
		t.Fatalf("unexpected text: %q", text)
	}
}

func TestGenerate_HTTPError(t *testing.T) {
	m := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("bad"))
	})
	if _, err := m.Generate(context.Background(), Request{}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestGenerate_ServiceFailure(t *testing.T) {
	m := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":false,"text":"","error":"safety policy rejection"}`))
	})
	if _, err := m.Generate(context.Background(), Request{}); err == nil {
		t.Fatalf("expected error on success=false")
	}
}
