package zipdir

import (
	"io"

	"github.com/pkg/errors"
)

// Open reads the end records of the size-byte archive in r and locates its
// central directory. Recoverable anomalies, such as bytes prepended to the
// archive or an empty archive, do not fail Open; they are reported through
// Warnings and the configured Logger.
func Open(r io.ReaderAt, size int64, opts ...Option) (*Archive, error) {
	if size < 0 {
		return nil, errors.Errorf("zip: invalid archive size %d", size)
	}
	a := newArchive(r, size, opts)

	searchLen := a.opts.searchLen
	if searchLen == 0 {
		searchLen = DefaultSearchLen
	}
	if searchLen > size {
		searchLen = size
	}
	if err := a.findEndRecord(searchLen); err != nil {
		return nil, err
	}
	if err := a.locateCentralDirectory(); err != nil {
		return nil, err
	}
	return a, nil
}

// locateCentralDirectory checks the end record against where it was found,
// compensates for bytes before or missing from the archive, and verifies
// that a central directory header starts where it should.
func (a *Archive) locateCentralDirectory() error {
	end := &a.end
	if end.ThisDisk != 0 {
		a.warn(errors.Wrapf(ErrMultiDisk, "disk %d; assuming all parts were concatenated", end.ThisDisk))
	}

	a.extraBytes = a.realEnd - a.expectedEnd
	switch {
	case a.extraBytes < 0:
		a.warn(errors.Wrapf(ErrMissingBytes, "%d bytes missing", -a.extraBytes))
	case a.extraBytes > 0 && end.CentralDirOffset == 0 && end.CentralDirSize != 0:
		// Written by zip 1.5 -go, which left the offset at zero.
		a.warn(errors.Wrapf(ErrNullCentralDirOffset, "using %d", a.extraBytes))
		end.CentralDirOffset = uint64(a.extraBytes)
		a.extraBytes = 0
	case a.extraBytes > 0:
		a.warn(errors.Wrapf(ErrExtraBytes, "%d bytes", a.extraBytes))
	}

	if a.expectedEnd == 0 && end.CentralDirSize == 0 {
		a.empty = true
		a.warn(ErrEmptyArchive)
		return nil
	}

	// Try the compensated offset first; without compensation on failure.
	state := stateSeeking
	skipped := int64(0)
	retried := false
	for !state.done() {
		switch state {
		case stateSeeking:
			a.dirStart = int64(end.CentralDirOffset) + a.extraBytes
			state = stateVerifying
		case stateVerifying:
			switch {
			case a.hasSignature(a.dirStart, directoryHeaderSignature):
				state = stateResolved
			case retried:
				state = stateFailed
			default:
				state = stateCompensating
			}
		case stateCompensating:
			skipped = a.extraBytes
			a.extraBytes = 0
			retried = true
			state = stateSeeking
		}
	}
	if state == stateFailed {
		return errors.Wrapf(ErrCentralDirNotFound, "at offset %d", a.dirStart)
	}
	if retried {
		a.warn(errors.Wrapf(ErrCentralDirTooLong, "by %d bytes", -skipped))
	}
	return nil
}

// hasSignature reports whether sig is at off.
func (a *Archive) hasSignature(off int64, sig uint32) bool {
	if off < 0 {
		return false
	}
	var buf [4]byte
	if err := a.readAt(buf[:], off); err != nil {
		return false
	}
	b := readBuf(buf[:])
	return b.uint32() == sig
}
