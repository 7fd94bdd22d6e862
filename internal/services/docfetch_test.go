package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mailforge/mailforge-backend/internal/logger"
)

func newSheetServer(t *testing.T, sheets map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "/doc-123/gviz/tq") {
			http.NotFound(w, r)
			return
		}
		body, ok := sheets[r.URL.Query().Get("sheet")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte(body))
	}))
}

func TestFetchSheet(t *testing.T) {
	srv := newSheetServer(t, map[string]string{
		"Program": "title,speaker\n\"Scaling, fast\",Dana Reyes\n,,\nStreaming,Sam Okafor\n",
	})
	defer srv.Close()
	t.Setenv("DOC_EXPORT_BASE_URL", srv.URL)

	f := NewDocFetcher(logger.NewNop())
	got, err := f.FetchSheet(context.Background(), "doc-123", "Program")
	if err != nil {
		t.Fatalf("FetchSheet: %v", err)
	}
	want := "title\tspeaker\nScaling, fast\tDana Reyes\nStreaming\tSam Okafor"
	if got != want {
		t.Errorf("got %q want %q", got, want)
	}
}

func TestFetchSheetRequiresDocID(t *testing.T) {
	t.Setenv("DOC_EXPORT_BASE_URL", "http://127.0.0.1:0")
	f := NewDocFetcher(logger.NewNop())
	if _, err := f.FetchSheet(context.Background(), "  ", "Program"); err == nil {
		t.Fatal("expected error")
	}
}

func TestFetchSheetHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()
	t.Setenv("DOC_EXPORT_BASE_URL", srv.URL)

	f := NewDocFetcher(logger.NewNop())
	_, err := f.FetchSheet(context.Background(), "doc-123", "Program")
	if err == nil || !strings.Contains(err.Error(), "403") {
		t.Fatalf("got %v", err)
	}
}

func TestFetchMeta(t *testing.T) {
	srv := newSheetServer(t, map[string]string{
		"Meta": "Tone,professional\nLanguage,en\n,ignored\n",
	})
	defer srv.Close()
	t.Setenv("DOC_EXPORT_BASE_URL", srv.URL)

	f := NewDocFetcher(logger.NewNop())
	meta, err := f.FetchMeta(context.Background(), "doc-123")
	if err != nil {
		t.Fatalf("FetchMeta: %v", err)
	}
	if meta["tone"] != "professional" || meta["language"] != "en" {
		t.Errorf("meta: %v", meta)
	}
	if len(meta) != 2 {
		t.Errorf("unexpected entries: %v", meta)
	}
}
