package zipdir

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// readBuf is a cursor over a record whose length was checked up front.
type readBuf []byte

func (b *readBuf) uint8() uint8 {
	v := (*b)[0]
	*b = (*b)[1:]
	return v
}

func (b *readBuf) uint16() uint16 {
	v := binary.LittleEndian.Uint16(*b)
	*b = (*b)[2:]
	return v
}

func (b *readBuf) uint32() uint32 {
	v := binary.LittleEndian.Uint32(*b)
	*b = (*b)[4:]
	return v
}

func (b *readBuf) uint64() uint64 {
	v := binary.LittleEndian.Uint64(*b)
	*b = (*b)[8:]
	return v
}

func (b *readBuf) sub(n int) readBuf {
	b2 := (*b)[:n]
	*b = (*b)[n:]
	return b2
}

// field returns b[off:off+width], or ErrTruncated when that range is not
// inside b.
func field(b []byte, off, width int) ([]byte, error) {
	if off < 0 || width < 0 || off > len(b) || width > len(b)-off {
		return nil, errors.Wrapf(ErrTruncated, "field [%d:%d] of %d bytes", off, off+width, len(b))
	}
	return b[off : off+width], nil
}

func readU16LE(b []byte, off int) (uint16, error) {
	f, err := field(b, off, 2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(f), nil
}

func readU32LE(b []byte, off int) (uint32, error) {
	f, err := field(b, off, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(f), nil
}

func readU64LE(b []byte, off int) (uint64, error) {
	f, err := field(b, off, 8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(f), nil
}
