package zipdir

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/pkg/errors"
)

var directoryEndSig = sigBytes(directoryEndSignature)

func sigBytes(sig uint32) [4]byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], sig)
	return b
}

// matchSig reports whether b holds sig at p. The caller guarantees
// p+4 <= len(b).
func matchSig(b []byte, p int, sig [4]byte) bool {
	return b[p] == sig[0] && b[p+1] == sig[1] && b[p+2] == sig[2] && b[p+3] == sig[3]
}

// findEndRecord locates the end of central directory record, reads it and
// the archive comment, then looks for a Zip64 end record in front of it.
func (a *Archive) findEndRecord(searchLen int64) error {
	found, err := a.findSignature(searchLen)
	if err != nil {
		return err
	}
	if !found {
		return errors.Wrapf(ErrSignatureNotFound, "searched last %d bytes of %d", searchLen, a.size)
	}
	a.realEnd = a.offset()

	var rec [directoryEndLen]byte
	if _, err := a.readFull(rec[:]); err != nil {
		return errors.WithMessage(err, "zip: reading end-of-central-directory record")
	}
	a.end = readDirectoryEnd(rec[:])
	a.end.Start = a.realEnd
	a.end.End = a.realEnd + directoryEndLen + int64(a.end.CommentLength)

	// The comment follows the record and is read before the Zip64 lookup
	// moves the cursor backwards.
	if l := int(a.end.CommentLength); l > 0 {
		comment := make([]byte, l)
		n, err := a.readFull(comment)
		if err != nil {
			if errors.Cause(err) != ErrTruncated {
				return err
			}
			a.warn(errors.Wrapf(ErrCommentTruncated, "%d of %d bytes present", n, l))
		}
		a.end.Comment = comment[:n]
	}

	if err := a.findZip64End(); err != nil {
		return err
	}
	off, size := a.end.CentralDirOffset, a.end.CentralDirSize
	if off > math.MaxInt64 || size > math.MaxInt64-off {
		return errors.Wrapf(ErrCentralDirNotFound, "offset %d and size %d overflow", off, size)
	}
	a.expectedEnd = int64(off + size)
	return nil
}

// readDirectoryEnd decodes a 22-byte end of central directory record,
// signature included.
func readDirectoryEnd(buf []byte) EndRecord {
	b := readBuf(buf[4:]) // skip signature
	return EndRecord{
		ThisDisk:         uint32(b.uint16()),
		CentralDirDisk:   uint32(b.uint16()),
		EntriesThisDisk:  uint64(b.uint16()),
		TotalEntries:     uint64(b.uint16()),
		CentralDirSize:   uint64(b.uint32()),
		CentralDirOffset: uint64(b.uint32()),
		CommentLength:    b.uint16(),
	}
}

// findSignature scans backwards for the end of central directory
// signature and leaves the cursor on it. Archives no larger than the
// window are read in one go; larger ones are read from the end in
// window-sized blocks.
func (a *Archive) findSignature(searchLen int64) (bool, error) {
	bs := a.bufSize()
	if a.size <= int64(bs) {
		n := int(a.size)
		if err := a.readBlock(0, n); err != nil {
			return false, err
		}
		for p := n - directoryEndLen; p >= 0; p-- {
			if matchSig(a.buf, p, directoryEndSig) {
				a.pos = p
				return true, nil
			}
		}
		return false, nil
	}
	return a.recFind(searchLen, directoryEndSig, directoryEndLen-4)
}

// recFind searches the last searchLen bytes for sig, reading the partial
// block at the end first and then whole blocks toward the start. The first
// 3 bytes of every block are kept behind the next block read, so a
// signature that straddles two blocks is still seen whole. A match must
// leave room for recSize bytes after the signature.
func (a *Archive) recFind(searchLen int64, sig [4]byte, recSize int) (bool, error) {
	bs := int64(a.bufSize())
	hold := a.buf[bs:]
	for i := range hold {
		hold[i] = 0
	}

	tail := a.size % bs
	blockStart := a.size - tail
	if tail > int64(recSize) {
		if err := a.readBlock(blockStart, int(tail)); err != nil {
			return false, err
		}
		for p := int(tail) - (recSize + 4); p >= 0; p-- {
			if matchSig(a.buf, p, sig) {
				a.pos = p
				return true, nil
			}
		}
		copy(hold, a.buf[:3])
	}

	numBlocks := (searchLen - tail + bs - 1) / bs
	for i := int64(1); i <= numBlocks && blockStart >= bs; i++ {
		blockStart -= bs
		// readBlock leaves the hold alone; it sits right after the block.
		if err := a.readBlock(blockStart, int(bs)); err != nil {
			return false, err
		}
		for p := int(bs) - 1; p >= 0; p-- {
			if !matchSig(a.buf, p, sig) {
				continue
			}
			if blockStart+int64(p)+int64(recSize)+4 > a.size {
				continue
			}
			a.pos = p
			return true, nil
		}
		copy(hold, a.buf[:3])
	}
	return false, nil
}

// readBlock loads n bytes at off into the window.
func (a *Archive) readBlock(off int64, n int) error {
	a.bufStart, a.n, a.pos = off, 0, 0
	got, err := a.r.ReadAt(a.buf[:n], off)
	if got != n {
		if err == nil || err == io.EOF {
			return errors.Wrapf(ErrTruncated, "read %d of %d bytes at offset %d", got, n, off)
		}
		return errors.Wrap(err, "zip: searching for end-of-central-directory")
	}
	a.n = n
	return nil
}
