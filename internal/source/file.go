package source

import (
	"github.com/pkg/errors"
	"golang.org/x/exp/mmap"
)

// File is a memory-mapped local file.
type File struct {
	*mmap.ReaderAt
	path string
}

// OpenFile maps the file at path.
func OpenFile(path string) (*File, error) {
	r, err := mmap.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "mmap <%s> failed", path)
	}
	return &File{ReaderAt: r, path: path}, nil
}

// Size returns the length of the file.
func (f *File) Size() int64 {
	return int64(f.Len())
}

// Name returns the path the file was opened with.
func (f *File) Name() string {
	return f.path
}
