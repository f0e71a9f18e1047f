package cmd

import (
	"archive/zip"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// writeZip builds a small archive on disk with the standard library
// writer, which also stores extended timestamps.
func writeZip(t *testing.T, path, comment string, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range files {
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     name,
			Method:   zip.Deflate,
			Modified: time.Date(2021, 6, 1, 10, 30, 0, 0, time.UTC),
		})
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.SetComment(comment); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return buf.Bytes()
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		sub.Flags().VisitAll(reset)
	}
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func TestList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.zip")
	writeZip(t, path, "", map[string]string{"hello.txt": "hello, world\n"})

	out, _, err := run(t, "list", path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Archive: " + path, "hello.txt", "deflated", "2021-06-01 10:30", "1 entries"} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}

	out, _, err = run(t, "list", "--local", path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Data") {
		t.Errorf("--local output lacks the data column:\n%s", out)
	}
}

func TestListOverHTTP(t *testing.T) {
	data := writeZip(t, "", "", map[string]string{"remote.txt": "over the wire"})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.ServeContent(w, r, "remote.zip", time.Time{}, bytes.NewReader(data))
	}))
	defer srv.Close()

	out, _, err := run(t, "list", "--buffer-size", "64", srv.URL+"/remote.zip")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "remote.txt") {
		t.Errorf("output lacks the entry:\n%s", out)
	}
}

func TestListBadOptions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.zip")
	writeZip(t, path, "", map[string]string{"a": "a"})

	if _, _, err := run(t, "list", "--charset", "ebcdic", path); err == nil {
		t.Error("unknown charset accepted")
	}
	if _, _, err := run(t, "list", "--unicode-mismatch", "loud", path); err == nil {
		t.Error("unknown mismatch policy accepted")
	}
	if _, _, err := run(t, "list", filepath.Join(t.TempDir(), "missing.zip")); err == nil {
		t.Error("missing archive accepted")
	}
}

func TestComment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.zip")
	writeZip(t, path, "made for testing", map[string]string{"a": "a"})

	out, _, err := run(t, "comment", path)
	if err != nil {
		t.Fatal(err)
	}
	if out != "made for testing\n" {
		t.Errorf("comment = %q", out)
	}
}

func TestScan(t *testing.T) {
	dir := t.TempDir()
	writeZip(t, filepath.Join(dir, "a.zip"), "", map[string]string{"one": "1", "two": "2"})
	writeZip(t, filepath.Join(dir, "sub", "b.zip"), "", map[string]string{"three": "3"})
	if err := os.WriteFile(filepath.Join(dir, "broken.zip"), []byte("not an archive"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, logs, err := run(t, "scan", dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"OK   " + filepath.Join(dir, "a.zip") + ": 2 entries",
		"OK   " + filepath.Join(dir, "sub", "b.zip") + ": 1 entries",
		"FAIL " + filepath.Join(dir, "broken.zip"),
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "notes.txt") {
		t.Errorf("non-archive scanned:\n%s", out)
	}
	if !strings.Contains(logs, "archives: 3") {
		t.Errorf("summary missing:\n%s", logs)
	}
}

func TestScanInterrupted(t *testing.T) {
	dir := t.TempDir()
	writeZip(t, filepath.Join(dir, "a.zip"), "", map[string]string{"one": "1"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	scanCmd.SetContext(ctx)
	defer scanCmd.SetContext(context.Background())

	out, _, err := run(t, "scan", dir)
	if err == nil || !strings.Contains(err.Error(), "interrupted") {
		t.Errorf("err = %v, want an interrupted scan", err)
	}
	if strings.Contains(out, "a.zip") {
		t.Errorf("archive scanned after cancellation:\n%s", out)
	}
}

func TestGlobMatcher(t *testing.T) {
	match, err := globMatcher("*.zip|*.jar")
	if err != nil {
		t.Fatal(err)
	}
	for name, want := range map[string]bool{
		"/x/a.zip":   true,
		"/x/A.ZIP":   true,
		"lib.jar":    true,
		"notes.txt":  false,
		"zip/readme": false,
	} {
		if match(name) != want {
			t.Errorf("match(%q) = %v", name, !want)
		}
	}
	if _, err := globMatcher("[bad"); err == nil {
		t.Error("bad pattern accepted")
	}
}
