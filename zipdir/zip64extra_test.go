package zipdir

import (
	"testing"

	"github.com/pkg/errors"
)

func TestResolveZip64(t *testing.T) {
	const big = 0x1_0000_0010

	tests := []struct {
		name    string
		in      CentralDirectoryEntry
		extra   []byte
		want    CentralDirectoryEntry
		wantErr error
	}{
		{
			name:  "compressed size only",
			in:    CentralDirectoryEntry{CompressedSize: uint32max, UncompressedSize: 7},
			extra: extraBlock(ExtraZip64, u64(big)),
			want:  CentralDirectoryEntry{CompressedSize: big, UncompressedSize: 7},
		},
		{
			name:  "no sentinel ignores block",
			in:    CentralDirectoryEntry{CompressedSize: 5, UncompressedSize: 7},
			extra: extraBlock(ExtraZip64, u64(big), u64(big)),
			want:  CentralDirectoryEntry{CompressedSize: 5, UncompressedSize: 7},
		},
		{
			name: "all fields in order",
			in: CentralDirectoryEntry{
				UncompressedSize:  uint32max,
				CompressedSize:    uint32max,
				LocalHeaderOffset: uint32max,
				DiskNumberStart:   uint16max,
			},
			extra: extraBlock(ExtraZip64, u64(big+1), u64(big+2), u64(big+3), u32(4)),
			want: CentralDirectoryEntry{
				UncompressedSize:  big + 1,
				CompressedSize:    big + 2,
				LocalHeaderOffset: big + 3,
				DiskNumberStart:   4,
			},
		},
		{
			name:  "offset only",
			in:    CentralDirectoryEntry{LocalHeaderOffset: uint32max},
			extra: extraBlock(ExtraZip64, u64(big)),
			want:  CentralDirectoryEntry{LocalHeaderOffset: big},
		},
		{
			name:  "other blocks skipped",
			in:    CentralDirectoryEntry{UncompressedSize: uint32max},
			extra: append(extraBlock(ExtraTime, []byte{0}), extraBlock(ExtraZip64, u64(big))...),
			want:  CentralDirectoryEntry{UncompressedSize: big},
		},
		{
			name:  "second block sees resolved fields",
			in:    CentralDirectoryEntry{UncompressedSize: uint32max},
			extra: append(extraBlock(ExtraZip64, u64(big)), extraBlock(ExtraZip64, u64(1))...),
			want:  CentralDirectoryEntry{UncompressedSize: big},
		},
		{
			name:    "block too short",
			in:      CentralDirectoryEntry{UncompressedSize: uint32max, CompressedSize: uint32max},
			extra:   extraBlock(ExtraZip64, u64(big)),
			wantErr: ErrMalformedZip64Field,
		},
		{
			name:    "disk number short",
			in:      CentralDirectoryEntry{DiskNumberStart: uint16max},
			extra:   extraBlock(ExtraZip64, u16(1)),
			wantErr: ErrMalformedZip64Field,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blocks, err := ExtraBlocks(tt.extra)
			if err != nil {
				t.Fatal(err)
			}
			h := tt.in
			err = ResolveZip64(&h, blocks)
			if tt.wantErr != nil {
				if errors.Cause(err) != tt.wantErr {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if h != tt.want {
				t.Errorf("got %+v\nwant %+v", h, tt.want)
			}
		})
	}
}

func TestResolveLocalZip64(t *testing.T) {
	blocks, _ := ExtraBlocks(extraBlock(ExtraZip64, u64(1<<33), u64(1<<32)))
	h := LocalFileHeader{UncompressedSize: uint32max, CompressedSize: uint32max}
	if err := ResolveLocalZip64(&h, blocks); err != nil {
		t.Fatal(err)
	}
	if h.UncompressedSize != 1<<33 || h.CompressedSize != 1<<32 {
		t.Errorf("sizes = %d, %d", h.UncompressedSize, h.CompressedSize)
	}

	blocks, _ = ExtraBlocks(extraBlock(ExtraZip64, u64(1<<33)))
	h = LocalFileHeader{UncompressedSize: uint32max, CompressedSize: uint32max}
	if err := ResolveLocalZip64(&h, blocks); errors.Cause(err) != ErrMalformedZip64Field {
		t.Errorf("err = %v, want ErrMalformedZip64Field", err)
	}
}
