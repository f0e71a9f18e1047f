// Package ucs4 converts between UTF-8 byte strings and 32-bit code points
// and renders code points for a local character set, escaping the ones the
// charset cannot represent.
//
// The UTF-8 rules are the original (RFC 2279) ones: lead bytes announce
// sequences of 1 to 6 bytes and values up to 0x7FFFFFFF are accepted. Names
// stored in ZIP archives predate the RFC 3629 restrictions, so the stricter
// unicode/utf8 decoder would reject entries other tools extract fine.
package ucs4

import (
	"github.com/pkg/errors"
)

// MaxRune is the largest value a 6-byte sequence can carry.
const MaxRune = 0x7FFFFFFF

// ErrInvalidUTF8 is returned when a byte sequence is not well-formed UTF-8.
var ErrInvalidUTF8 = errors.New("ucs4: invalid utf-8")

// LeadByteLength returns the length of the sequence introduced by the lead
// byte b, or 0 if b cannot start a sequence (a trailing byte 0x80-0xBF, or
// 0xFE/0xFF).
func LeadByteLength(b byte) int {
	switch {
	case b < 0x80:
		return 1
	case b < 0xC0:
		return 0
	case b < 0xE0:
		return 2
	case b < 0xF0:
		return 3
	case b < 0xF8:
		return 4
	case b < 0xFC:
		return 5
	case b < 0xFE:
		return 6
	}
	return 0
}

// DecodeRune decodes the first sequence of s. On invalid input it returns
// n == 0, so a caller advancing by n never moves past bad bytes.
// Overlong forms are accepted as in RFC 2279: C1 81 decodes to 'A' and
// C0 80 to NUL, so Encode(Decode(s)) does not reproduce such input.
func DecodeRune(s []byte) (cp uint32, n int, err error) {
	if len(s) == 0 {
		return 0, 0, errors.Wrap(ErrInvalidUTF8, "empty input")
	}
	size := LeadByteLength(s[0])
	if size == 0 {
		return 0, 0, errors.Wrapf(ErrInvalidUTF8, "invalid lead byte %#02x", s[0])
	}
	if size == 1 {
		return uint32(s[0]), 1, nil
	}
	if len(s) < size {
		return 0, 0, errors.Wrapf(ErrInvalidUTF8, "sequence of %d bytes cut after %d", size, len(s))
	}
	cp = uint32(s[0]) & (0x7F >> uint(size))
	for i := 1; i < size; i++ {
		c := s[i]
		if c < 0x80 || c >= 0xC0 {
			return 0, 0, errors.Wrapf(ErrInvalidUTF8, "byte %#02x at %d is not a trailing byte", c, i)
		}
		cp = cp<<6 | uint32(c&0x3F)
	}
	return cp, size, nil
}

// Decode converts s into code points. Decoding ends at the first NUL byte or
// at the end of s; the terminator is not part of the result.
func Decode(s []byte) ([]uint32, error) {
	cps := make([]uint32, 0, len(s))
	for i := 0; i < len(s); {
		cp, n, err := DecodeRune(s[i:])
		if err != nil {
			return nil, errors.WithMessagef(err, "offset %d", i)
		}
		if cp == 0 {
			break
		}
		cps = append(cps, cp)
		i += n
	}
	return cps, nil
}

// RuneLen returns the number of bytes needed to encode cp, or 0 if cp is
// above MaxRune.
func RuneLen(cp uint32) int {
	switch {
	case cp <= 0x7F:
		return 1
	case cp <= 0x7FF:
		return 2
	case cp <= 0xFFFF:
		return 3
	case cp <= 0x1FFFFF:
		return 4
	case cp <= 0x3FFFFFF:
		return 5
	case cp <= MaxRune:
		return 6
	}
	return 0
}

// AppendRune appends the UTF-8 encoding of cp to dst.
func AppendRune(dst []byte, cp uint32) ([]byte, error) {
	n := RuneLen(cp)
	switch n {
	case 0:
		return dst, errors.Wrapf(ErrInvalidUTF8, "code point %#x out of range", cp)
	case 1:
		return append(dst, byte(cp)), nil
	}
	lead := byte(0xFF << uint(8-n))
	dst = append(dst, lead|byte(cp>>(6*uint(n-1))))
	for i := n - 2; i >= 0; i-- {
		dst = append(dst, 0x80|byte(cp>>(6*uint(i)))&0x3F)
	}
	return dst, nil
}

// Encode is the inverse of Decode.
func Encode(cps []uint32) ([]byte, error) {
	buf := make([]byte, 0, len(cps))
	var err error
	for _, cp := range cps {
		if buf, err = AppendRune(buf, cp); err != nil {
			return nil, err
		}
	}
	return buf, nil
}
