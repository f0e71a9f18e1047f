package zipdir

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"

	"github.com/pkg/errors"
)

// UnicodePathState says what an entry's Unicode path block contributed.
type UnicodePathState int

const (
	// UnicodePathAbsent means there is no usable Unicode path block.
	UnicodePathAbsent UnicodePathState = iota
	// UnicodePathStandardIsUTF8 means the block is empty: the standard
	// name is already UTF-8.
	UnicodePathStandardIsUTF8
	// UnicodePathPresent means the block carries a UTF-8 name.
	UnicodePathPresent
)

// UnicodePath is the decoded Unicode path block of an entry.
type UnicodePath struct {
	State         UnicodePathState
	Path          []byte // UTF-8, for UnicodePathPresent
	ChecksumValid bool
	Version       uint8
}

// ResolveUnicodePath decodes the Unicode path block among blocks and
// checks it against standardPath, the name stored in the header. The block
// is version(1) crc32(4) path. A checksum that does not match the exact
// bytes of standardPath yields ErrChecksumMismatch along with the decoded
// block; what to do with it is up to the caller.
func ResolveUnicodePath(blocks []ExtraBlock, standardPath []byte) (UnicodePath, error) {
	var up UnicodePath
	for _, blk := range blocks {
		if blk.ID != ExtraUnicodePath {
			continue
		}
		d := blk.Data
		if len(d) < 5 {
			return UnicodePath{}, errors.Wrapf(ErrMalformedExtraField, "unicode path block of %d bytes", len(d))
		}
		version := d[0]
		if version > 1 {
			return UnicodePath{}, errors.Wrapf(ErrUnsupportedUnicodeVersion, "version %d", version)
		}
		path := d[5:]
		if i := bytes.IndexByte(path, 0); i >= 0 {
			path = path[:i]
		}
		up = UnicodePath{
			State:   UnicodePathPresent,
			Path:    path,
			Version: version,
		}
		if len(d) == 5 {
			up.State = UnicodePathStandardIsUTF8
			up.Path = nil
		}
		stored := binary.LittleEndian.Uint32(d[1:5])
		if sum := crc32.ChecksumIEEE(standardPath); sum != stored {
			return up, errors.Wrapf(ErrChecksumMismatch, "stored %#08x, name has %#08x", stored, sum)
		}
		up.ChecksumValid = true
	}
	return up, nil
}
