package zipdir

import (
	"github.com/pkg/errors"
)

// ResolveZip64 replaces the sentinel fields of h with the values from its
// Zip64 extra blocks. A block holds, in this order and only for fields at
// their sentinel, the uncompressed size, the compressed size, the local
// header offset (8 bytes each) and the starting disk (4 bytes). Every Zip64
// block is applied in turn.
func ResolveZip64(h *CentralDirectoryEntry, blocks []ExtraBlock) error {
	for _, blk := range blocks {
		if blk.ID != ExtraZip64 {
			continue
		}
		d := blk.Data
		pos := 0
		if h.UncompressedSize == uint32max {
			v, err := readU64LE(d, pos)
			if err != nil {
				return malformedZip64("uncompressed size", err)
			}
			h.UncompressedSize = v
			pos += 8
		}
		if h.CompressedSize == uint32max {
			v, err := readU64LE(d, pos)
			if err != nil {
				return malformedZip64("compressed size", err)
			}
			h.CompressedSize = v
			pos += 8
		}
		if h.LocalHeaderOffset == uint32max {
			v, err := readU64LE(d, pos)
			if err != nil {
				return malformedZip64("local header offset", err)
			}
			h.LocalHeaderOffset = v
			pos += 8
		}
		if h.DiskNumberStart == uint16max {
			v, err := readU32LE(d, pos)
			if err != nil {
				return malformedZip64("disk number", err)
			}
			h.DiskNumberStart = v
		}
	}
	return nil
}

// ResolveLocalZip64 is ResolveZip64 for a local header, whose Zip64 block
// only carries the two sizes.
func ResolveLocalZip64(h *LocalFileHeader, blocks []ExtraBlock) error {
	for _, blk := range blocks {
		if blk.ID != ExtraZip64 {
			continue
		}
		pos := 0
		if h.UncompressedSize == uint32max {
			v, err := readU64LE(blk.Data, pos)
			if err != nil {
				return malformedZip64("uncompressed size", err)
			}
			h.UncompressedSize = v
			pos += 8
		}
		if h.CompressedSize == uint32max {
			v, err := readU64LE(blk.Data, pos)
			if err != nil {
				return malformedZip64("compressed size", err)
			}
			h.CompressedSize = v
		}
	}
	return nil
}

func malformedZip64(what string, err error) error {
	return errors.Wrapf(ErrMalformedZip64Field, "%s: %v", what, err)
}
