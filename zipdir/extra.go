package zipdir

import (
	"github.com/pkg/errors"
)

const extraHeaderLen = 4 // id(2) + length(2)

// ExtraBlock is one block of an extra field. Data is exactly as long as
// the block declares.
type ExtraBlock struct {
	ID   uint16
	Data []byte
}

// WalkExtra calls fn for each block of the extra field buf. A block that
// declares more bytes than remain ends the walk with ErrMalformedExtraField
// before its payload is touched; fewer than 4 trailing bytes end it
// without error. An error from fn stops the walk and is returned.
func WalkExtra(buf []byte, fn func(ExtraBlock) error) error {
	for off := 0; len(buf)-off >= extraHeaderLen; {
		b := readBuf(buf[off : off+extraHeaderLen])
		id := b.uint16()
		size := int(b.uint16())
		remain := len(buf) - off - extraHeaderLen
		if size > remain {
			return errors.Wrapf(ErrMalformedExtraField,
				"block %#04x at offset %d declares %d bytes, %d remain", id, off, size, remain)
		}
		start := off + extraHeaderLen
		if err := fn(ExtraBlock{ID: id, Data: buf[start : start+size : start+size]}); err != nil {
			return err
		}
		off = start + size
	}
	return nil
}

// ExtraBlocks returns the well-formed blocks of buf. If a malformed block
// ends the walk, the blocks before it are returned with the error.
func ExtraBlocks(buf []byte) ([]ExtraBlock, error) {
	var blocks []ExtraBlock
	err := WalkExtra(buf, func(b ExtraBlock) error {
		blocks = append(blocks, b)
		return nil
	})
	return blocks, err
}
