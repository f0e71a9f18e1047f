package ucs4

import (
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding/charmap"
)

// Charset is a local character set code points are rendered into.
type Charset interface {
	Name() string
	// MaxBytes is the longest encoding of a single code point.
	MaxBytes() int
	// EncodeRune returns the local bytes for cp, or false if cp has no
	// representation.
	EncodeRune(cp uint32) ([]byte, bool)
}

type utf8Charset struct{}

func (utf8Charset) Name() string  { return "utf-8" }
func (utf8Charset) MaxBytes() int { return utf8.UTFMax }

func (utf8Charset) EncodeRune(cp uint32) ([]byte, bool) {
	if cp > utf8.MaxRune || !utf8.ValidRune(rune(cp)) {
		return nil, false
	}
	return utf8.AppendRune(nil, rune(cp)), true
}

type asciiCharset struct{}

func (asciiCharset) Name() string  { return "ascii" }
func (asciiCharset) MaxBytes() int { return 1 }

func (asciiCharset) EncodeRune(cp uint32) ([]byte, bool) {
	if cp > 0x7F {
		return nil, false
	}
	return []byte{byte(cp)}, true
}

type charmapCharset struct {
	name string
	cm   *charmap.Charmap
}

func (c charmapCharset) Name() string  { return c.name }
func (c charmapCharset) MaxBytes() int { return 1 }

func (c charmapCharset) EncodeRune(cp uint32) ([]byte, bool) {
	if cp > utf8.MaxRune {
		return nil, false
	}
	b, ok := c.cm.EncodeRune(rune(cp))
	if !ok {
		return nil, false
	}
	return []byte{b}, true
}

var (
	// UTF8 represents every valid Unicode scalar value.
	UTF8 Charset = utf8Charset{}
	// ASCII represents 7-bit code points only.
	ASCII Charset = asciiCharset{}
)

var charmaps = map[string]*charmap.Charmap{
	"cp437":        charmap.CodePage437,
	"cp850":        charmap.CodePage850,
	"iso-8859-1":   charmap.ISO8859_1,
	"iso-8859-15":  charmap.ISO8859_15,
	"windows-1252": charmap.Windows1252,
	"koi8-r":       charmap.KOI8R,
}

// ErrUnknownCharset is returned by Lookup.
var ErrUnknownCharset = errors.New("ucs4: unknown charset")

// Lookup returns the charset registered under name (case-insensitive).
func Lookup(name string) (Charset, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	switch key {
	case "utf-8", "utf8":
		return UTF8, nil
	case "ascii", "us-ascii":
		return ASCII, nil
	}
	if cm, ok := charmaps[key]; ok {
		return charmapCharset{name: key, cm: cm}, nil
	}
	return nil, errors.Wrap(ErrUnknownCharset, name)
}

// ToLocal renders cps in cs. A code point is escaped when cs cannot encode
// it, or, with escapeAll, whenever it is not plain ASCII. Output is bounded
// to len(cps) * max(cs.MaxBytes(), MaxEscapeLen) bytes; an escape that does
// not fit in the remaining room is cut short and truncated is reported.
// Rendering stops at a 0 code point.
func ToLocal(cps []uint32, cs Charset, escapeAll bool) (s string, truncated bool) {
	per := cs.MaxBytes()
	if per < MaxEscapeLen {
		per = MaxEscapeLen
	}
	limit := len(cps) * per
	out := make([]byte, 0, limit)

	appendEscape := func(cp uint32) {
		esc := Escape(cp)
		if room := limit - len(out); len(esc) > room {
			esc = esc[:room]
			truncated = true
		}
		out = append(out, esc...)
	}
	// Long escapes borrow room from later code points, so plain encodings
	// are bounded too. A multi-byte character is never split.
	appendLocal := func(enc []byte) {
		if len(enc) > limit-len(out) {
			truncated = true
			return
		}
		out = append(out, enc...)
	}

	for _, cp := range cps {
		if cp == 0 {
			break
		}
		enc, ok := cs.EncodeRune(cp)
		switch {
		case escapeAll:
			if ok && len(enc) == 1 && enc[0] <= 0x7F {
				appendLocal(enc)
			} else {
				appendEscape(cp)
			}
		case ok:
			appendLocal(enc)
		default:
			appendEscape(cp)
		}
	}
	return string(out), truncated
}

// UTF8ToLocal decodes s and renders it with ToLocal.
func UTF8ToLocal(s []byte, cs Charset, escapeAll bool) (string, bool, error) {
	cps, err := Decode(s)
	if err != nil {
		return "", false, err
	}
	local, truncated := ToLocal(cps, cs, escapeAll)
	return local, truncated, nil
}
