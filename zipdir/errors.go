package zipdir

import (
	"github.com/abe-nagisa/zipcore/ucs4"
	"github.com/pkg/errors"
)

var (
	// ErrTruncated is returned when fewer bytes are available than a
	// record or field requires.
	ErrTruncated = errors.New("zip: truncated record")

	// ErrSignatureNotFound is returned when no end of central directory
	// record lies within the search range.
	ErrSignatureNotFound = errors.New("zip: end-of-central-directory signature not found")

	// ErrInconsistentZip64 explains why a Zip64 locator was not trusted.
	// It is never returned by Open; see Archive.Zip64Err.
	ErrInconsistentZip64 = errors.New("zip: inconsistent zip64 end records")

	// ErrZip64RecordNotFound is returned when a Zip64 locator is present but
	// the record it points at cannot be found.
	ErrZip64RecordNotFound = errors.New("zip: zip64 end-of-central-directory record not found")

	// ErrMalformedExtraField is reported when an extra block declares more
	// bytes than the extra field holds. Blocks after it are not trusted.
	ErrMalformedExtraField = errors.New("zip: malformed extra field")

	// ErrMalformedZip64Field is returned when a Zip64 extra block is too
	// short for the sentinel fields of its header.
	ErrMalformedZip64Field = errors.New("zip: malformed zip64 extra field")

	// ErrUnsupportedUnicodeVersion is returned for Unicode path blocks newer
	// than version 1.
	ErrUnsupportedUnicodeVersion = errors.New("zip: unsupported unicode path version")

	// ErrChecksumMismatch is returned when a Unicode path block does not
	// belong to the standard name stored next to it.
	ErrChecksumMismatch = errors.New("zip: unicode path checksum mismatch")

	// ErrInvalidUTF8 is returned when a name flagged as UTF-8 does not decode.
	ErrInvalidUTF8 = ucs4.ErrInvalidUTF8

	// ErrCentralDirNotFound is returned when no central directory header is
	// found at the offset the end record states, with or without
	// compensating for extra bytes.
	ErrCentralDirNotFound = errors.New("zip: start of central directory not found")

	// ErrEntryCountMismatch is returned when the central directory holds a
	// different number of entries than the end record declares.
	ErrEntryCountMismatch = errors.New("zip: central directory entry count mismatch")

	// ErrLocalHeaderNotFound is returned when no local header signature is
	// found where a central directory entry points.
	ErrLocalHeaderNotFound = errors.New("zip: local file header not found")
)

// Archive-level anomalies. These are collected by Archive.Warnings and do
// not stop the archive from being read.
var (
	ErrEmptyArchive         = errors.New("zip: zipfile is empty")
	ErrMultiDisk            = errors.New("zip: zipfile claims to be the last disk of a multi-part archive")
	ErrExtraBytes           = errors.New("zip: extra bytes at beginning or within zipfile")
	ErrMissingBytes         = errors.New("zip: bytes missing from zipfile")
	ErrNullCentralDirOffset = errors.New("zip: NULL central directory offset")
	ErrCentralDirTooLong    = errors.New("zip: reported length of central directory is off")
	ErrCommentTruncated     = errors.New("zip: zipfile comment truncated")
	ErrZip64RecordRelocated = errors.New("zip: zip64 end-of-central-directory record found before its stated offset")
)
