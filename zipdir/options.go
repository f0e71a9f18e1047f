package zipdir

import (
	"strings"

	"github.com/abe-nagisa/zipcore/ucs4"
	"github.com/pkg/errors"
)

const (
	// DefaultBufferSize is the size of the read window.
	DefaultBufferSize = 8192
	// MinBufferSize is the smallest accepted read window. It holds a full
	// end of central directory record.
	MinBufferSize = 32
	// DefaultSearchLen bounds the backward search for the end record: the
	// longest comment plus the record, with room for appended garbage.
	DefaultSearchLen = 66000
)

// MismatchPolicy decides what happens to an entry whose Unicode path block
// does not match its standard name.
type MismatchPolicy int

const (
	// MismatchError marks the entry with ErrChecksumMismatch.
	MismatchError MismatchPolicy = iota
	// MismatchWarn keeps the standard name and records a warning.
	MismatchWarn
	// MismatchIgnore keeps the standard name silently.
	MismatchIgnore
)

var mismatchNames = []string{"error", "warn", "ignore"}

func (p MismatchPolicy) String() string {
	if p < 0 || int(p) >= len(mismatchNames) {
		return "unknown"
	}
	return mismatchNames[p]
}

// ParseMismatchPolicy accepts "error", "warn" or "ignore".
func ParseMismatchPolicy(s string) (MismatchPolicy, error) {
	for i, name := range mismatchNames {
		if strings.EqualFold(s, name) {
			return MismatchPolicy(i), nil
		}
	}
	return MismatchError, errors.Errorf("zip: unknown unicode mismatch policy %q", s)
}

// Logger receives warnings and diagnostics. *log.Logger satisfies it.
type Logger interface {
	Printf(format string, v ...interface{})
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...interface{}) {}

type options struct {
	bufferSize int
	searchLen  int64
	charset    ucs4.Charset
	escapeAll  bool
	mismatch   MismatchPolicy
	logger     Logger
}

func defaultOptions() options {
	return options{
		bufferSize: DefaultBufferSize,
		charset:    ucs4.UTF8,
		mismatch:   MismatchError,
		logger:     nopLogger{},
	}
}

// Option configures Open.
type Option func(o *options)

// WithBufferSize sets the read window size. Values below MinBufferSize are
// raised to it.
func WithBufferSize(n int) Option {
	return func(o *options) {
		if n < MinBufferSize {
			n = MinBufferSize
		}
		o.bufferSize = n
	}
}

// WithSearchLen bounds the backward search for the end record. Zero keeps
// the default of min(size, DefaultSearchLen).
func WithSearchLen(n int64) Option {
	return func(o *options) {
		if n >= 0 {
			o.searchLen = n
		}
	}
}

// WithCharset sets the character set display names are rendered in.
func WithCharset(cs ucs4.Charset) Option {
	return func(o *options) {
		if cs != nil {
			o.charset = cs
		}
	}
}

// WithEscapeAll renders every non-ASCII character of a UTF-8 name as an
// escape.
func WithEscapeAll(v bool) Option {
	return func(o *options) {
		o.escapeAll = v
	}
}

// WithUnicodeMismatch sets the policy for Unicode path checksum mismatches.
func WithUnicodeMismatch(p MismatchPolicy) Option {
	return func(o *options) {
		o.mismatch = p
	}
}

// WithLogger sets where warnings are reported.
func WithLogger(l Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
