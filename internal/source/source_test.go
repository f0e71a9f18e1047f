package source

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
)

var content = []byte("0123456789abcdefghijklmnopqrstuvwxyz")

func rangeServer(t *testing.T, data []byte) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.ServeContent(w, r, "archive.zip", time.Time{}, bytes.NewReader(data))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func checkReadAt(t *testing.T, src Source) {
	t.Helper()
	if src.Size() != int64(len(content)) {
		t.Fatalf("Size = %d, want %d", src.Size(), len(content))
	}

	tests := []struct {
		off     int64
		n       int
		want    string
		wantEOF bool
	}{
		{0, 4, "0123", false},
		{10, 6, "abcdef", false},
		{30, 6, "uvwxyz", false},
		{32, 8, "wxyz", true},
		{int64(len(content)), 4, "", true},
	}
	for _, tt := range tests {
		p := make([]byte, tt.n)
		n, err := src.ReadAt(p, tt.off)
		if got := string(p[:n]); got != tt.want {
			t.Errorf("ReadAt(%d, %d) = %q, want %q", tt.off, tt.n, got, tt.want)
		}
		if tt.wantEOF && err != io.EOF {
			t.Errorf("ReadAt(%d, %d): err = %v, want io.EOF", tt.off, tt.n, err)
		}
		if !tt.wantEOF && err != nil {
			t.Errorf("ReadAt(%d, %d): %v", tt.off, tt.n, err)
		}
	}
}

func TestHTTP(t *testing.T) {
	srv := rangeServer(t, content)
	src, err := Open(context.Background(), srv.URL+"/archive.zip")
	if err != nil {
		t.Fatal(err)
	}
	defer src.Close()
	if _, ok := src.(*HTTP); !ok {
		t.Fatalf("Open returned %T", src)
	}
	checkReadAt(t, src)
}

func TestHTTPRangeUnsupported(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "36")
		if r.Method == http.MethodGet {
			w.Write(content)
		}
	}))
	defer srv.Close()

	src, err := OpenHTTP(context.Background(), srv.URL, srv.Client())
	if err != nil {
		t.Fatal(err)
	}
	_, err = src.ReadAt(make([]byte, 4), 0)
	if errors.Cause(err) != ErrRangeUnsupported {
		t.Errorf("err = %v, want ErrRangeUnsupported", err)
	}
}

func TestHTTPNotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()
	if _, err := OpenHTTP(context.Background(), srv.URL, nil); err == nil {
		t.Error("OpenHTTP succeeded on 404")
	}
}

func TestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.zip")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}
	src, err := Open(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	defer src.Close()
	if src.Name() != path {
		t.Errorf("Name = %q", src.Name())
	}
	checkReadAt(t, src)
}

func TestFileMissing(t *testing.T) {
	if _, err := OpenFile(filepath.Join(t.TempDir(), "missing.zip")); err == nil {
		t.Error("OpenFile succeeded on a missing file")
	}
}

func TestIsURL(t *testing.T) {
	for name, want := range map[string]bool{
		"http://example.com/a.zip":  true,
		"https://example.com/a.zip": true,
		"/tmp/a.zip":                false,
		"ftp://example.com/a.zip":   false,
	} {
		if IsURL(name) != want {
			t.Errorf("IsURL(%q) = %v", name, !want)
		}
	}
}
