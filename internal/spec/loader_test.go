package spec

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestLoad_BlocksFileURL(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	_, err := Load(ctx, "file:///etc/hosts")
	if err == nil {
		t.Fatalf("expected error for file:// URL")
	}
	var se *SpecError
	if !errors.As(err, &se) {
		t.Fatalf("expected SpecError, got %T", err)
	}
	if se.Code != InputError {
		t.Fatalf("expected InputError, got %v", se.Code)
	}
}

func TestLoad_UnsupportedScheme(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	_, err := Load(ctx, "ftp://example.com/spec.yaml")
	if err == nil {
		t.Fatalf("expected error for unsupported scheme")
	}
	var se *SpecError
	if !errors.As(err, &se) || se.Code != InputError {
		t.Fatalf("expected InputError, got %v (%T)", err, err)
	}
}

func TestLoad_NetworkError(t *testing.T) {
	t.Parallel()
	// Unused port to provoke a quick network failure.
	url := "http://127.0.0.1:1/spec.yaml"
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := Load(ctx, url, WithHTTPTimeout(200*time.Millisecond), WithMaxRetries(2))
	if err == nil {
		t.Fatalf("expected network error")
	}
	var se *SpecError
	if !errors.As(err, &se) || se.Code != NetworkError {
		t.Fatalf("expected NetworkError, got %v (%T)", err, err)
	}
}

func TestLoad_LocalFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "api.yaml")
	content := strings.TrimSpace(`openapi: 3.0.0
info:
  title: Local
  version: "1.0.0"
paths:
  "/pet":
    get:
      responses: {}
`) + "\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	doc, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if doc.Title != "Local" || len(doc.Paths) != 1 {
		t.Fatalf("unexpected document: %+v", doc)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "nope.yaml"))
	var se *SpecError
	if !errors.As(err, &se) || se.Code != InputError {
		t.Fatalf("expected InputError, got %v (%T)", err, err)
	}
}

func TestLoad_DecodeErrorCarriesLocation(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	content := strings.TrimSpace(`openapi: 3.0.0
info: { title: Bad, version: "1" }
paths:
  "/pet": [1, 2]
`) + "\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, err := Load(context.Background(), path)
	var se *SpecError
	if !errors.As(err, &se) {
		t.Fatalf("expected SpecError, got %T", err)
	}
	if se.Code != ParseError {
		t.Fatalf("expected ParseError, got %v", se.Code)
	}
	if se.Location == "" || se.JSONPointer != "#/paths/~1pet" {
		t.Fatalf("expected location and pointer, got %q %q", se.Location, se.JSONPointer)
	}
}

func TestLoad_UnknownVersion(t *testing.T) {
	t.Parallel()
	_, err := LoadBytes([]byte("info: {title: x}\n"), "inline")
	var se *SpecError
	if !errors.As(err, &se) || se.Code != ParseError {
		t.Fatalf("expected ParseError, got %v (%T)", err, err)
	}
}

func TestLoad_FetchesOverHTTP(t *testing.T) {
	t.Parallel()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// First attempt fails transiently.
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("openapi: 3.1.0\ninfo: {title: Remote, version: '1'}\npaths: {}\n"))
	}))
	defer srv.Close()

	doc, err := Load(context.Background(), srv.URL+"/spec.yaml", WithBackoffBase(time.Millisecond))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if doc.Title != "Remote" {
		t.Fatalf("title: %q", doc.Title)
	}
	if hits.Load() != 2 {
		t.Fatalf("expected one retry, got %d requests", hits.Load())
	}
}

func TestLoad_HTTPClientErrorIsNotRetried(t *testing.T) {
	t.Parallel()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := Load(context.Background(), srv.URL, WithBackoffBase(time.Millisecond))
	var se *SpecError
	if !errors.As(err, &se) || se.Code != NetworkError {
		t.Fatalf("expected NetworkError, got %v (%T)", err, err)
	}
	if hits.Load() != 1 {
		t.Fatalf("expected a single request, got %d", hits.Load())
	}
}

func TestLoad_V2_Conversion_Success(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "swagger.yaml")
	content := strings.TrimSpace(`swagger: "2.0"
info:
  title: Sample
  version: "1.0.0"
paths:
  "/hello":
	get:
	  responses:
		"200":
		  description: ok
`) + "\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	ctx := context.Background()
	doc, err := Load(ctx, path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if doc == nil {
		t.Fatalf("expected doc")
	}
	if !strings.HasPrefix(doc.Version, "3.") {
		t.Fatalf("expected OpenAPI v3, got %q", doc.Version)
	}
	if len(doc.Paths) != 1 || doc.Paths[0].Path != "/hello" {
		t.Fatalf("expected /hello path, got %+v", doc.Paths)
	}
}

func TestLoad_V2_Conversion_Failure(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "swagger-bad.yaml")
	content := strings.TrimSpace(`swagger: "2.0"
paths: {}
`) + "\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	ctx := context.Background()
	_, err := Load(ctx, path)
	if err == nil {
		t.Fatalf("expected conversion error")
	}
	var se *SpecError
	if !errors.As(err, &se) {
		t.Fatalf("expected SpecError, got %T", err)
	}
	if se.Code != ConversionError {
		t.Fatalf("expected ConversionError, got %v", se.Code)
	}
}

