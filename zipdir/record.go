package zipdir

import (
	"github.com/pkg/errors"
)

// readCentralDirectoryEntry decodes a 46-byte central directory header,
// signature included.
func readCentralDirectoryEntry(buf []byte) (*CentralDirectoryEntry, error) {
	if len(buf) < directoryHeaderLen {
		return nil, errors.Wrapf(ErrTruncated, "central directory header of %d bytes", len(buf))
	}
	b := readBuf(buf[:directoryHeaderLen])
	if sig := b.uint32(); sig != directoryHeaderSignature {
		return nil, errors.Errorf("zip: bad central directory signature %#08x", sig)
	}
	h := &CentralDirectoryEntry{
		CreatorVersion:   b.uint16(),
		ReaderVersion:    b.uint16(),
		Flags:            b.uint16(),
		Method:           b.uint16(),
		ModifiedTime:     b.uint16(),
		ModifiedDate:     b.uint16(),
		CRC32:            b.uint32(),
		CompressedSize:   uint64(b.uint32()),
		UncompressedSize: uint64(b.uint32()),
		NameLength:       b.uint16(),
		ExtraLength:      b.uint16(),
		CommentLength:    b.uint16(),
		DiskNumberStart:  uint32(b.uint16()),
		InternalAttrs:    b.uint16(),
	}
	h.ExternalAttrs = b.uint32()
	h.LocalHeaderOffset = uint64(b.uint32())
	return h, nil
}

// readLocalFileHeader decodes a 30-byte local file header, signature
// included. With a data descriptor the local CRC and sizes are not
// reliable and are taken from the central directory entry.
func readLocalFileHeader(buf []byte, central *CentralDirectoryEntry) (*LocalFileHeader, error) {
	if len(buf) < fileHeaderLen {
		return nil, errors.Wrapf(ErrTruncated, "local file header of %d bytes", len(buf))
	}
	b := readBuf(buf[:fileHeaderLen])
	if sig := b.uint32(); sig != fileHeaderSignature {
		return nil, errors.Wrapf(ErrLocalHeaderNotFound, "signature %#08x", sig)
	}
	h := &LocalFileHeader{
		ReaderVersion:    b.uint16(),
		Flags:            b.uint16(),
		Method:           b.uint16(),
		ModifiedTime:     b.uint16(),
		ModifiedDate:     b.uint16(),
		CRC32:            b.uint32(),
		CompressedSize:   uint64(b.uint32()),
		UncompressedSize: uint64(b.uint32()),
		NameLength:       b.uint16(),
		ExtraLength:      b.uint16(),
	}
	if h.Flags&FlagDataDescriptor != 0 && central != nil {
		h.CRC32 = central.CRC32
		h.CompressedSize = central.CompressedSize
		h.UncompressedSize = central.UncompressedSize
	}
	return h, nil
}
