package ucs4

import (
	"encoding/hex"
	"strconv"

	"github.com/pkg/errors"
)

// MaxEscapeLen is the room reserved per code point for an escape when
// sizing local-charset output. Values above 0xFFFFFF escape to 10 bytes and
// may be cut by ToLocal.
const MaxEscapeLen = 8

// ErrInvalidEscape is returned by Unescape for malformed input.
var ErrInvalidEscape = errors.New("ucs4: invalid escape")

// Escape returns the printable stand-in for cp: "#U" and 4 hex digits when
// the value fits in two bytes, otherwise "#L" and two hex digits per
// significant byte (6 digits up to 0xFFFFFF, 8 above). The digits are the
// big-endian bytes of the value.
func Escape(cp uint32) string {
	var b [4]byte
	n := 0
	for w := cp; w != 0; w >>= 8 {
		b[n] = byte(w)
		n++
	}
	prefix := "#L"
	if n <= 2 {
		n = 2
		prefix = "#U"
	}
	be := make([]byte, n)
	for i := 0; i < n; i++ {
		be[i] = b[n-1-i]
	}
	return prefix + hex.EncodeToString(be)
}

// Unescape parses a string produced by Escape.
func Unescape(s string) (uint32, error) {
	if len(s) < 2 || s[0] != '#' {
		return 0, errors.Wrapf(ErrInvalidEscape, "%q", s)
	}
	digits := s[2:]
	switch s[1] {
	case 'U':
		if len(digits) != 4 {
			return 0, errors.Wrapf(ErrInvalidEscape, "%q: want 4 hex digits", s)
		}
	case 'L':
		if len(digits) != 6 && len(digits) != 8 {
			return 0, errors.Wrapf(ErrInvalidEscape, "%q: want 6 or 8 hex digits", s)
		}
	default:
		return 0, errors.Wrapf(ErrInvalidEscape, "%q: unknown prefix", s)
	}
	v, err := strconv.ParseUint(digits, 16, 32)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidEscape, "%q: %v", s, err)
	}
	return uint32(v), nil
}
