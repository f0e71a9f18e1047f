package zipdir

import (
	"encoding/binary"
	"strconv"
	"time"
)

// TimeFlags marks which Unix times are present. The bits match the flags
// byte of the extended timestamp block.
type TimeFlags uint8

const (
	TimeMtime TimeFlags = 1 << iota
	TimeAtime
	TimeCtime

	timeAll = TimeMtime | TimeAtime | TimeCtime
)

// OwnerValid is set in UnixMetadata.Flags when uid and gid are present.
const OwnerValid = 0x100

// MS-DOS timestamps (date<<16 | time) used to guess the sign of a 32-bit
// Unix time with its top bit set.
const (
	// DOSTimeMinimum is 1980-01-01 00:00:00, which writers store for
	// times before 1980.
	DOSTimeMinimum uint32 = 0x00210000
	// DOSTime2038 is 2038-01-18 00:00:00, just before a signed 32-bit
	// time wraps.
	DOSTime2038 uint32 = 0x74320000
)

// UnixMetadata holds what the Unix extra blocks say about an entry. A time
// or owner that was not found is marked absent rather than left at zero.
type UnixMetadata struct {
	Mtime, Atime, Ctime int64 // seconds since the Unix epoch
	Present             TimeFlags
	UID, GID            uint64
	HasOwner            bool
}

// ModTime returns the modification time, if present.
func (m UnixMetadata) ModTime() (time.Time, bool) {
	return m.time(m.Mtime, TimeMtime)
}

// AccessTime returns the access time, if present.
func (m UnixMetadata) AccessTime() (time.Time, bool) {
	return m.time(m.Atime, TimeAtime)
}

// ChangeTime returns the creation (status change) time, if present.
func (m UnixMetadata) ChangeTime() (time.Time, bool) {
	return m.time(m.Ctime, TimeCtime)
}

func (m UnixMetadata) time(sec int64, f TimeFlags) (time.Time, bool) {
	if m.Present&f == 0 {
		return time.Time{}, false
	}
	return time.Unix(sec, 0).UTC(), true
}

// Owner returns uid and gid, if present.
func (m UnixMetadata) Owner() (uid, gid uint64, ok bool) {
	return m.UID, m.GID, m.HasOwner
}

// Flags returns the time flags with OwnerValid added when the owner is
// known, or 0 when nothing was found.
func (m UnixMetadata) Flags() uint {
	f := uint(m.Present)
	if m.HasOwner {
		f |= OwnerValid
	}
	return f
}

type timeSign int

const (
	signUnknown timeSign = iota
	signNegative
	signUnsigned
)

// modTimeSign interprets a 32-bit mtime. With the top bit set the DOS
// timestamp decides: the DOS minimum means a time before 1970, a DOS time
// past 2038-01-18 means an unsigned time after 2038, and anything else
// cannot be trusted.
func modTimeSign(v, dosDateTime uint32) (int64, timeSign, bool) {
	switch {
	case v&0x80000000 == 0:
		return int64(v), signUnknown, true
	case dosDateTime == DOSTimeMinimum:
		return int64(int32(v)), signNegative, true
	case dosDateTime >= DOSTime2038:
		return int64(v), signUnsigned, true
	}
	return 0, signUnknown, false
}

// applySign interprets atime and ctime using the sign established by mtime.
func applySign(v uint32, s timeSign) (int64, bool) {
	switch {
	case v&0x80000000 == 0:
		return int64(v), true
	case s == signNegative:
		return int64(int32(v)), true
	case s == signUnsigned:
		return int64(v), true
	}
	return 0, false
}

// ResolveUnix scans blocks for Unix times and ownership. Later blocks of a
// kind replace earlier ones. The extended timestamp and second and third
// generation Info-ZIP blocks outrank the first-generation Info-ZIP and
// PKWARE blocks, and a third-generation owner outranks a second-generation
// one. central selects the central directory form of the extended
// timestamp, which carries the mtime only. dosDateTime is the entry's
// MS-DOS timestamp.
func ResolveUnix(blocks []ExtraBlock, central bool, dosDateTime uint32) UnixMetadata {
	var (
		m       UnixMetadata
		sign    timeSign
		newType bool // an extended timestamp or second/third generation block was seen
		haveUX3 bool
	)
	for _, blk := range blocks {
		d := blk.Data
		switch blk.ID {
		case ExtraTime:
			newType = true
			m.Present, m.Mtime, m.Atime, m.Ctime = 0, 0, 0, 0
			if len(d) < 1 {
				break
			}
			m.Present, sign = scanExtTime(&m, d, central, dosDateTime)

		case ExtraIZUnix2:
			newType = true
			if haveUX3 {
				break
			}
			m.UID, m.GID, m.HasOwner = 0, 0, false
			if len(d) == 4 {
				m.UID, m.GID, m.HasOwner = readOwner16(d, 0)
			}

		case ExtraIZUnix3:
			newType = true
			haveUX3 = true
			m.UID, m.GID, m.HasOwner = 0, 0, false
			if uid, gid, ok := readUX3(d, strconv.IntSize); ok {
				m.UID, m.GID, m.HasOwner = uid, gid, true
			}

		case ExtraIZUnix, ExtraPKUnix:
			// atime(4) mtime(4) [uid(2) gid(2)]
			if len(d) < 8 || newType {
				break
			}
			m.Present |= TimeMtime | TimeAtime
			mt, s, ok := modTimeSign(binary.LittleEndian.Uint32(d[4:]), dosDateTime)
			sign = s
			if ok {
				m.Mtime = mt
				if at, ok := applySign(binary.LittleEndian.Uint32(d[0:]), sign); ok {
					m.Atime = at
				} else {
					m.Present &^= TimeAtime
				}
			} else {
				m.Present &^= timeAll
			}
			if uid, gid, ok := readOwner16(d, 8); ok {
				m.UID, m.GID, m.HasOwner = uid, gid, true
			}
		}
	}
	return m
}

// scanExtTime decodes an extended timestamp block into m and returns the
// times found. An mtime whose sign cannot be determined discards the
// whole block.
func scanExtTime(m *UnixMetadata, d []byte, central bool, dosDateTime uint32) (TimeFlags, timeSign) {
	flags := TimeFlags(d[0]) & timeAll
	sign := signUnknown
	idx := 1
	if flags&TimeMtime != 0 {
		if idx+4 > len(d) {
			flags &^= TimeMtime
		} else {
			v, s, ok := modTimeSign(binary.LittleEndian.Uint32(d[idx:]), dosDateTime)
			if !ok {
				return 0, signUnknown
			}
			m.Mtime, sign = v, s
			idx += 4
		}
	}
	if central {
		// The central copy stops after mtime.
		return flags & TimeMtime, sign
	}
	for _, f := range []TimeFlags{TimeAtime, TimeCtime} {
		if flags&f == 0 {
			continue
		}
		if idx+4 > len(d) {
			flags &^= f
			continue
		}
		v, ok := applySign(binary.LittleEndian.Uint32(d[idx:]), sign)
		idx += 4
		if !ok {
			flags &^= f
			continue
		}
		if f == TimeAtime {
			m.Atime = v
		} else {
			m.Ctime = v
		}
	}
	return flags, sign
}

// readUX3 decodes a version 1 third-generation Unix block:
// version(1) uidSize(1) uid gidSize(1) gid.
func readUX3(d []byte, bits int) (uid, gid uint64, ok bool) {
	if len(d) < 7 || d[0] != 1 {
		return 0, 0, false
	}
	b := readBuf(d[1:])
	uidSize := int(b.uint8())
	if uidSize+1 > len(b) {
		return 0, 0, false
	}
	uid, ok = readUX3Value(b.sub(uidSize), uidSize, bits)
	if !ok {
		return 0, 0, false
	}
	gidSize := int(b.uint8())
	if gidSize > len(b) {
		return 0, 0, false
	}
	gid, ok = readUX3Value(b.sub(gidSize), gidSize, bits)
	return uid, gid, ok
}

// readOwner16 reads a 16-bit uid and gid pair at off.
func readOwner16(d []byte, off int) (uid, gid uint64, ok bool) {
	u, err := readU16LE(d, off)
	if err != nil {
		return 0, 0, false
	}
	g, err := readU16LE(d, off+2)
	if err != nil {
		return 0, 0, false
	}
	return uint64(u), uint64(g), true
}

// readUX3Value decodes a uid or gid of width 2, 4 or 8 bytes for a target
// integer of the given bit size. An 8-byte value that does not fit fails,
// as does the 32-bit all-ones value when the target is 32 bits wide.
func readUX3Value(b []byte, width, bits int) (uint64, bool) {
	if width > len(b) {
		return 0, false
	}
	switch width {
	case 2:
		return uint64(binary.LittleEndian.Uint16(b)), true
	case 4:
		return uint64(binary.LittleEndian.Uint32(b)), true
	case 8:
		v := binary.LittleEndian.Uint64(b)
		if bits < 64 {
			if v == uint32max || v>>uint(bits) != 0 {
				return 0, false
			}
		}
		return v, true
	}
	return 0, false
}
