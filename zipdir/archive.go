// Package zipdir locates and decodes the directory structures of a ZIP
// archive: the end of central directory record and its Zip64 counterpart,
// central directory entries, local file headers and the extra field blocks
// that carry Zip64 sizes, Unix metadata and Unicode paths.
//
// The archive may carry a self-extractor stub or other bytes in front of
// it, may be truncated or hostile, and may be a Zip64 archive. Open works
// out where the central directory really is and reports recoverable
// anomalies as warnings.
package zipdir

import (
	"io"

	"github.com/pkg/errors"
)

// Archive is an archive opened for reading its directory. It owns a read
// window over the source and is not safe for concurrent use.
type Archive struct {
	r    io.ReaderAt
	size int64
	opts options

	// buf is the read window followed by the 3-byte hold the backward
	// signature search carries across block boundaries.
	buf      []byte
	bufStart int64
	n        int
	pos      int

	end      EndRecord
	locator  *Zip64Locator
	record   *Zip64EndRecord
	zip64Err error

	realEnd     int64 // where the (Zip64) end record was found
	expectedEnd int64 // where the end record says the directory ends
	extraBytes  int64
	dirStart    int64
	empty       bool
	warnings    []error
}

func newArchive(r io.ReaderAt, size int64, opts []Option) *Archive {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Archive{
		r:    r,
		size: size,
		opts: o,
		buf:  make([]byte, o.bufferSize+3),
	}
}

func (a *Archive) bufSize() int {
	return len(a.buf) - 3
}

// offset returns the absolute position of the cursor.
func (a *Archive) offset() int64 {
	return a.bufStart + int64(a.pos)
}

// seek moves the cursor to off, keeping the window when off is inside it.
func (a *Archive) seek(off int64) error {
	if off < 0 || off > a.size {
		return errors.Wrapf(ErrTruncated, "seek to %d outside %d byte archive", off, a.size)
	}
	if off >= a.bufStart && off < a.bufStart+int64(a.n) {
		a.pos = int(off - a.bufStart)
		return nil
	}
	a.bufStart, a.n, a.pos = off, 0, 0
	return nil
}

// fill replaces the window with the bytes that follow it.
func (a *Archive) fill() error {
	a.bufStart += int64(a.n)
	a.n, a.pos = 0, 0
	want := int64(a.bufSize())
	if rem := a.size - a.bufStart; rem < want {
		want = rem
	}
	if want <= 0 {
		return io.EOF
	}
	n, err := a.r.ReadAt(a.buf[:want], a.bufStart)
	a.n = n
	if n > 0 {
		return nil
	}
	if err == nil {
		err = io.EOF
	}
	return err
}

// readFull copies len(p) bytes from the cursor into p. A short read
// returns the number of bytes copied and an error with ErrTruncated as its
// cause, or the source's own error for anything other than end of file.
func (a *Archive) readFull(p []byte) (int, error) {
	start := a.offset()
	done := 0
	for done < len(p) {
		if a.pos >= a.n {
			if err := a.fill(); err != nil {
				if err == io.EOF || err == io.ErrUnexpectedEOF {
					return done, errors.Wrapf(ErrTruncated, "read %d of %d bytes at offset %d", done, len(p), start)
				}
				return done, errors.Wrapf(err, "read at offset %d", start+int64(done))
			}
		}
		c := copy(p[done:], a.buf[a.pos:a.n])
		a.pos += c
		done += c
	}
	return done, nil
}

func (a *Archive) readAt(p []byte, off int64) error {
	if err := a.seek(off); err != nil {
		return err
	}
	_, err := a.readFull(p)
	return err
}

func (a *Archive) warn(err error) {
	a.warnings = append(a.warnings, err)
	a.opts.logger.Printf("%v", err)
}

// Size returns the size of the source.
func (a *Archive) Size() int64 { return a.size }

// End returns the end of central directory record, with Zip64 values
// applied.
func (a *Archive) End() EndRecord { return a.end }

// Comment returns the archive comment.
func (a *Archive) Comment() []byte { return a.end.Comment }

// Zip64 returns the Zip64 locator and record, or nils for a classic archive.
func (a *Archive) Zip64() (*Zip64Locator, *Zip64EndRecord) {
	if !a.end.HaveZip64Record {
		return nil, nil
	}
	return a.locator, a.record
}

// Zip64Err explains why a Zip64 locator that was found was not used. It
// has ErrInconsistentZip64 as its cause, or is nil.
func (a *Archive) Zip64Err() error { return a.zip64Err }

// ExtraBytes returns the number of bytes in front of the archive proper,
// such as a self-extractor stub. Offsets stored in the archive are shifted
// by this amount.
func (a *Archive) ExtraBytes() int64 { return a.extraBytes }

// CentralDirectoryOffset returns the absolute offset of the first central
// directory header.
func (a *Archive) CentralDirectoryOffset() int64 { return a.dirStart }

// Empty reports whether the archive has no entries.
func (a *Archive) Empty() bool { return a.empty }

// Warnings returns the recoverable anomalies met while opening and
// walking the archive.
func (a *Archive) Warnings() []error { return a.warnings }
