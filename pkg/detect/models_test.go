package detect

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestEnsureFileUsesCache(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, dnnConfigFile)
	if err := os.WriteFile(path, []byte("cached"), 0o644); err != nil {
		t.Fatal(err)
	}

	// An unreachable URL proves the cached file short-circuits the fetch.
	got, err := ensureFile(dir, dnnConfigFile, "http://127.0.0.1:1/unreachable")
	if err != nil {
		t.Fatalf("ensureFile: %v", err)
	}
	if got != path {
		t.Errorf("ensureFile = %q, want %q", got, path)
	}
}

func TestEnsureFileDownloads(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("model-bytes"))
	}))
	defer server.Close()

	dir := t.TempDir()
	path, err := ensureFile(dir, "model.bin", server.URL)
	if err != nil {
		t.Fatalf("ensureFile: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "model-bytes" {
		t.Errorf("downloaded %q, want model-bytes", data)
	}
	if _, err := os.Stat(path + ".part"); !os.IsNotExist(err) {
		t.Error("temp download file left behind")
	}
}

func TestEnsureFileBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	if _, err := ensureFile(t.TempDir(), "model.bin", server.URL); err == nil {
		t.Fatal("expected error for 404 response")
	}
}
