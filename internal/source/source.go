// Package source provides the random-access byte sources archives are
// read from: memory-mapped local files and remote files fetched with HTTP
// range requests.
package source

import (
	"context"
	"io"
	"strings"
)

// Source is a sized, random-access archive source.
type Source interface {
	io.ReaderAt
	io.Closer
	Size() int64
	Name() string
}

// Open opens name as a URL when it has an http or https scheme and as a
// local file otherwise.
func Open(ctx context.Context, name string) (Source, error) {
	if IsURL(name) {
		return OpenHTTP(ctx, name, nil)
	}
	return OpenFile(name)
}

// IsURL reports whether name is an http or https URL.
func IsURL(name string) bool {
	return strings.HasPrefix(name, "http://") || strings.HasPrefix(name, "https://")
}
