package asset

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestLocalResource(t *testing.T) {
	_, thisFile, _, _ := runtime.Caller(0)
	res, err := NewResource(thisFile, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer res.Close()

	if res.IsRemote() {
		t.Fatal("expected local resource")
	}
	if res.Name() != "resource_test.go" {
		t.Fatalf("expected name resource_test.go; got %s", res.Name())
	}
	if res.Ext() != ".go" {
		t.Fatalf("expected ext .go; got %s", res.Ext())
	}
}

func TestLocalRelativeResource(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "textures"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "scene.scn"), []byte("light 0 10 0"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "textures", "Earth.BMP"), []byte("BM"), 0644); err != nil {
		t.Fatal(err)
	}

	parent, err := NewResource(filepath.Join(dir, "scene.scn"), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer parent.Close()

	res, err := NewResource(`textures\Earth.BMP`, parent)
	if err != nil {
		t.Fatal(err)
	}
	defer res.Close()

	expPath := filepath.Join(dir, "textures", "Earth.BMP")
	if res.Path() != expPath {
		t.Fatalf("expected path %s; got %s", expPath, res.Path())
	}
	if res.Ext() != ".bmp" {
		t.Fatalf("expected ext .bmp; got %s", res.Ext())
	}

	data, err := io.ReadAll(res)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "BM" {
		t.Fatalf("expected payload BM; got %q", string(data))
	}
}

func TestHttpResource(t *testing.T) {
	_, thisFile, _, _ := runtime.Caller(0)
	thisDir := filepath.Dir(thisFile)

	server := httptest.NewServer(http.FileServer(http.Dir(thisDir)))
	defer server.Close()

	fetchUrl := server.URL + "/" + filepath.Base(thisFile)
	res, err := NewResource(fetchUrl, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer res.Close()

	if !res.IsRemote() {
		t.Fatal("expected remote resource")
	}

	fetchUrl = server.URL + "/file-not-found.foo"
	expError := fmt.Sprintf("resource: could not fetch '%s': status %d", fetchUrl, 404)
	_, err = NewResource(fetchUrl, nil)
	if err == nil || err.Error() != expError {
		t.Fatalf("expected to get: %s; got %v", expError, err)
	}
}

func TestRelativeHttpResources(t *testing.T) {
	serverHits := 0
	serverFn := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		serverHits++
		switch r.URL.Path {
		case "/scenes/default.scn", "/scenes/default.mtl", "/scenes/textures/floor.bmp":
			w.Write([]byte("OK"))
		default:
			http.NotFound(w, r)
		}
	})
	server := httptest.NewServer(serverFn)
	defer server.Close()

	sceneRes, err := NewResource(server.URL+"/scenes/default.scn", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer sceneRes.Close()

	for _, relPath := range []string{"default.mtl", "textures/floor.bmp"} {
		res, err := NewResource(relPath, sceneRes)
		if err != nil {
			t.Fatal(err)
		}
		res.Close()
	}

	if serverHits != 3 {
		t.Fatalf("expected server to receive 3 requests; got %d", serverHits)
	}
}

func TestResourceContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewResourceWithContext(ctx, server.URL+"/scene.scn", nil)
	if err == nil || !strings.Contains(err.Error(), "context canceled") {
		t.Fatalf("expected context canceled error; got %v", err)
	}
}

func TestUnsupportedResourceScheme(t *testing.T) {
	expError := "resource: unsupported scheme 'gopher'"
	_, err := NewResource("gopher://digging.scn", nil)
	if err == nil || err.Error() != expError {
		t.Fatalf("expected to get: %s; got %v", expError, err)
	}
}

func TestResourceFromStream(t *testing.T) {
	res := NewResourceFromStream("embedded.scn", strings.NewReader("light 0 0 0"))
	defer res.Close()

	if res.Name() != "embedded.scn" || res.IsRemote() {
		t.Fatalf("expected local embedded resource; got %s", res.Path())
	}

	data, _ := io.ReadAll(res)
	if string(data) != "light 0 0 0" {
		t.Fatalf("expected stream payload; got %q", string(data))
	}
}
