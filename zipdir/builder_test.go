package zipdir

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"strings"

	"github.com/pkg/errors"
)

var le = binary.LittleEndian

// testEntry describes one member of a synthetic archive.
type testEntry struct {
	name       string
	data       string
	flags      uint16
	dosDate    uint16
	dosTime    uint16
	extra      []byte // central
	localExtra []byte
	comment    string

	// Overrides for the central record; zero keeps the computed value.
	csize, usize uint32
	offset       uint32
	disk         uint16
	// The local header gets zero CRC and sizes, as with a data descriptor.
	zeroLocal bool
}

// testArchive assembles an archive. Offsets are relative to the start of
// the archive proper, so prefix behaves like a self-extractor stub.
type testArchive struct {
	prefix  []byte
	entries []testEntry
	comment string
	zip64   bool

	// Applied to the classic end record after it is built.
	patchEnd func(rec []byte)
	// Applied to the Zip64 locator after it is built.
	patchLocator func(rec []byte)
	// Applied to the Zip64 end record after it is built.
	patchRecord func(rec []byte)
}

func (ta testArchive) build() []byte {
	var body []byte
	offsets := make([]uint32, len(ta.entries))
	for i, e := range ta.entries {
		offsets[i] = uint32(len(body))
		crc := crc32.ChecksumIEEE([]byte(e.data))
		size := uint32(len(e.data))
		if e.zeroLocal {
			crc, size = 0, 0
		}
		body = le.AppendUint32(body, fileHeaderSignature)
		body = le.AppendUint16(body, 20)
		body = le.AppendUint16(body, e.flags)
		body = le.AppendUint16(body, Store)
		body = le.AppendUint16(body, e.dosTime)
		body = le.AppendUint16(body, e.dosDate)
		body = le.AppendUint32(body, crc)
		body = le.AppendUint32(body, size)
		body = le.AppendUint32(body, size)
		body = le.AppendUint16(body, uint16(len(e.name)))
		body = le.AppendUint16(body, uint16(len(e.localExtra)))
		body = append(body, e.name...)
		body = append(body, e.localExtra...)
		body = append(body, e.data...)
	}

	cdStart := uint32(len(body))
	for i, e := range ta.entries {
		csize, usize := uint32(len(e.data)), uint32(len(e.data))
		if e.csize != 0 {
			csize = e.csize
		}
		if e.usize != 0 {
			usize = e.usize
		}
		off := offsets[i]
		if e.offset != 0 {
			off = e.offset
		}
		body = le.AppendUint32(body, directoryHeaderSignature)
		body = le.AppendUint16(body, CreatorUnix<<8|30)
		body = le.AppendUint16(body, 20)
		body = le.AppendUint16(body, e.flags)
		body = le.AppendUint16(body, Store)
		body = le.AppendUint16(body, e.dosTime)
		body = le.AppendUint16(body, e.dosDate)
		body = le.AppendUint32(body, crc32.ChecksumIEEE([]byte(e.data)))
		body = le.AppendUint32(body, csize)
		body = le.AppendUint32(body, usize)
		body = le.AppendUint16(body, uint16(len(e.name)))
		body = le.AppendUint16(body, uint16(len(e.extra)))
		body = le.AppendUint16(body, uint16(len(e.comment)))
		body = le.AppendUint16(body, e.disk)
		body = le.AppendUint16(body, 0)
		body = le.AppendUint32(body, 0100644<<16)
		body = le.AppendUint32(body, off)
		body = append(body, e.name...)
		body = append(body, e.extra...)
		body = append(body, e.comment...)
	}
	cdSize := uint32(len(body)) - cdStart
	n := uint64(len(ta.entries))

	if ta.zip64 {
		recStart := uint64(len(body))
		body = le.AppendUint32(body, directory64EndSignature)
		body = le.AppendUint64(body, directory64EndLen-12)
		body = le.AppendUint16(body, 45)
		body = le.AppendUint16(body, 45)
		body = le.AppendUint32(body, 0)
		body = le.AppendUint32(body, 0)
		body = le.AppendUint64(body, n)
		body = le.AppendUint64(body, n)
		body = le.AppendUint64(body, uint64(cdSize))
		body = le.AppendUint64(body, uint64(cdStart))
		if ta.patchRecord != nil {
			ta.patchRecord(body[recStart:])
		}

		locStart := len(body)
		body = le.AppendUint32(body, directory64LocSignature)
		body = le.AppendUint32(body, 0)
		body = le.AppendUint64(body, recStart)
		body = le.AppendUint32(body, 1)
		if ta.patchLocator != nil {
			ta.patchLocator(body[locStart:])
		}
	}

	endStart := len(body)
	body = le.AppendUint32(body, directoryEndSignature)
	if ta.zip64 {
		body = le.AppendUint16(body, 0)
		body = le.AppendUint16(body, 0)
		body = le.AppendUint16(body, uint16max)
		body = le.AppendUint16(body, uint16max)
		body = le.AppendUint32(body, uint32max)
		body = le.AppendUint32(body, uint32max)
	} else {
		body = le.AppendUint16(body, 0)
		body = le.AppendUint16(body, 0)
		body = le.AppendUint16(body, uint16(n))
		body = le.AppendUint16(body, uint16(n))
		body = le.AppendUint32(body, cdSize)
		body = le.AppendUint32(body, cdStart)
	}
	body = le.AppendUint16(body, uint16(len(ta.comment)))
	if ta.patchEnd != nil {
		ta.patchEnd(body[endStart:])
	}
	body = append(body, ta.comment...)

	return append(append([]byte(nil), ta.prefix...), body...)
}

func simpleArchive() testArchive {
	return testArchive{
		entries: []testEntry{
			{name: "hello.txt", data: "hello, world\n", dosDate: 0x5021, dosTime: 0x6000},
			{name: "dir/", dosDate: 0x5021},
		},
	}
}

// extraBlock encodes one extra field block.
func extraBlock(id uint16, parts ...[]byte) []byte {
	data := bytes.Join(parts, nil)
	b := le.AppendUint16(nil, id)
	b = le.AppendUint16(b, uint16(len(data)))
	return append(b, data...)
}

func u16(v uint16) []byte { return le.AppendUint16(nil, v) }
func u32(v uint32) []byte { return le.AppendUint32(nil, v) }
func u64(v uint64) []byte { return le.AppendUint64(nil, v) }

func unicodePathBlock(version uint8, crc uint32, path string) []byte {
	return extraBlock(ExtraUnicodePath, []byte{version}, u32(crc), []byte(path))
}

// testLogger collects log lines.
type testLogger struct {
	lines []string
}

func (l *testLogger) Printf(format string, v ...interface{}) {
	l.lines = append(l.lines, strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func hasCause(errs []error, target error) bool {
	for _, err := range errs {
		if errors.Cause(err) == target {
			return true
		}
	}
	return false
}
