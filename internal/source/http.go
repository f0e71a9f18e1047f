package source

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/pkg/errors"
)

// ErrRangeUnsupported is returned when a server answers a range request
// with anything but 206 Partial Content.
var ErrRangeUnsupported = errors.New("source: server does not support range requests")

// HTTP reads a remote file with one range request per ReadAt.
type HTTP struct {
	ctx    context.Context
	client *http.Client
	url    string
	size   int64
}

// OpenHTTP asks the server for the length of the file at url. A nil client
// means http.DefaultClient. ctx bounds every request made through the
// returned source.
func OpenHTTP(ctx context.Context, url string, client *http.Client) (*HTTP, error) {
	if client == nil {
		client = http.DefaultClient
	}
	h := &HTTP{ctx: ctx, client: client, url: url}
	size, err := h.contentLength()
	if err != nil {
		return nil, err
	}
	h.size = size
	return h, nil
}

func (h *HTTP) contentLength() (int64, error) {
	req, err := http.NewRequestWithContext(h.ctx, http.MethodHead, h.url, nil)
	if err != nil {
		return 0, errors.WithStack(err)
	}
	res, err := h.client.Do(req)
	if err != nil {
		return 0, errors.Wrapf(err, "HEAD <%s> failed", h.url)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return 0, errors.Errorf("HEAD <%s>: %s", h.url, res.Status)
	}
	if res.ContentLength < 0 {
		return 0, errors.Errorf("HEAD <%s>: no content length", h.url)
	}
	return res.ContentLength, nil
}

// ReadAt fetches bytes off through off+len(p)-1. Like any io.ReaderAt it
// returns io.EOF when p extends past the end of the file.
func (h *HTTP) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, errors.Errorf("source: negative offset %d", off)
	}
	if off >= h.size {
		return 0, io.EOF
	}
	want := p
	if rem := h.size - off; int64(len(want)) > rem {
		want = want[:rem]
	}
	if len(want) == 0 {
		return 0, nil
	}

	req, err := http.NewRequestWithContext(h.ctx, http.MethodGet, h.url, nil)
	if err != nil {
		return 0, errors.WithStack(err)
	}
	req.Header.Set("Range", fmt.Sprintf("bytes=%d-%d", off, off+int64(len(want))-1))
	res, err := h.client.Do(req)
	if err != nil {
		return 0, errors.Wrapf(err, "GET <%s> failed", h.url)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusPartialContent {
		return 0, errors.Wrapf(ErrRangeUnsupported, "GET <%s>: %s", h.url, res.Status)
	}

	n, err := io.ReadFull(res.Body, want)
	if err != nil {
		return n, errors.Wrapf(err, "reading range %d+%d of <%s>", off, len(want), h.url)
	}
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Size returns the content length reported by the server.
func (h *HTTP) Size() int64 { return h.size }

// Name returns the URL.
func (h *HTTP) Name() string { return h.url }

// Close is a no-op; every request closes its own response.
func (h *HTTP) Close() error { return nil }
