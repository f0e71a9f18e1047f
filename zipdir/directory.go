package zipdir

import (
	"encoding/binary"
	"strings"
	"time"

	"github.com/abe-nagisa/zipcore/ucs4"
	"github.com/pkg/errors"
)

// Entry is a central directory entry with its variable-length fields and
// decoded extra blocks.
type Entry struct {
	CentralDirectoryEntry
	Name    []byte
	Extra   []byte
	Comment []byte

	Blocks      []ExtraBlock
	UnicodePath UnicodePath
	Unix        UnixMetadata

	// DisplayName is the name in the configured charset. UTF-8 names are
	// converted and escaped; other names are passed through.
	DisplayName string

	// Warnings are problems confined to the entry's metadata, such as a
	// malformed extra field.
	Warnings []error
	// Err is set when the entry cannot be trusted: a short Zip64 block, or
	// a Unicode path mismatch under MismatchError.
	Err error

	HeaderOffset int64 // absolute offset of the central directory header
}

// IsDir reports whether the entry names a directory.
func (e *Entry) IsDir() bool {
	return strings.HasSuffix(string(e.Name), "/")
}

// IsUTF8 reports whether DisplayName was decoded from UTF-8.
func (e *Entry) IsUTF8() bool {
	if e.Flags&FlagUTF8 != 0 {
		return true
	}
	return e.UnicodePath.ChecksumValid && e.UnicodePath.State != UnicodePathAbsent
}

// Modified returns the Unix modification time if one was found, and the
// MS-DOS timestamp otherwise.
func (e *Entry) Modified() time.Time {
	if t, ok := e.Unix.ModTime(); ok {
		return t
	}
	return msDosToTime(e.ModifiedDate, e.ModifiedTime)
}

// Walk calls fn for each central directory entry in order. It stops at
// the first header without a central directory signature and checks the
// number of entries read against the end record. An error from fn stops
// the walk and is returned.
func (a *Archive) Walk(fn func(*Entry) error) error {
	if a.empty {
		return nil
	}
	if err := a.seek(a.dirStart); err != nil {
		return err
	}

	var count uint64
	for {
		var rec [directoryHeaderLen]byte
		off := a.offset()
		if _, err := a.readFull(rec[:4]); err != nil {
			return errors.WithMessagef(err, "zip: reading central directory entry %d", count+1)
		}
		if binary.LittleEndian.Uint32(rec[:4]) != directoryHeaderSignature {
			break
		}
		if _, err := a.readFull(rec[4:]); err != nil {
			return errors.WithMessagef(err, "zip: reading central directory entry %d", count+1)
		}
		h, err := readCentralDirectoryEntry(rec[:])
		if err != nil {
			return err
		}

		e := &Entry{CentralDirectoryEntry: *h, HeaderOffset: off}
		nl, el := int(h.NameLength), int(h.ExtraLength)
		d := make([]byte, nl+el+int(h.CommentLength))
		if _, err := a.readFull(d); err != nil {
			return errors.WithMessagef(err, "zip: reading name of central directory entry %d", count+1)
		}
		e.Name = d[:nl:nl]
		e.Extra = d[nl : nl+el : nl+el]
		e.Comment = d[nl+el:]
		count++

		// Resolving may not move the cursor; fn may, through LocalHeader.
		a.resolveEntry(e)
		next := a.offset()
		if err := fn(e); err != nil {
			return err
		}
		if err := a.seek(next); err != nil {
			return err
		}
	}

	want := a.end.TotalEntries
	if count != want && (a.end.IsZip64 || count%0x10000 != want) {
		return errors.Wrapf(ErrEntryCountMismatch, "read %d, end record says %d", count, want)
	}
	return nil
}

// Entries returns all central directory entries.
func (a *Archive) Entries() ([]*Entry, error) {
	n := a.end.TotalEntries
	if limit := uint64(a.size) / directoryHeaderLen; n > limit {
		n = limit
	}
	entries := make([]*Entry, 0, n)
	err := a.Walk(func(e *Entry) error {
		entries = append(entries, e)
		return nil
	})
	return entries, err
}

func (a *Archive) resolveEntry(e *Entry) {
	blocks, err := ExtraBlocks(e.Extra)
	e.Blocks = blocks
	if err != nil {
		a.entryWarn(e, err)
	}

	if err := ResolveZip64(&e.CentralDirectoryEntry, blocks); err != nil {
		e.Err = err
	}

	up, err := ResolveUnicodePath(blocks, e.Name)
	e.UnicodePath = up
	switch {
	case err == nil:
	case errors.Cause(err) == ErrChecksumMismatch:
		switch a.opts.mismatch {
		case MismatchError:
			if e.Err == nil {
				e.Err = err
			}
		case MismatchWarn:
			a.entryWarn(e, err)
		}
	default:
		a.entryWarn(e, err)
	}

	e.Unix = ResolveUnix(blocks, true, e.DOSDateTime())
	e.DisplayName = a.displayName(e)
}

func (a *Archive) displayName(e *Entry) string {
	name := e.Name
	if e.UnicodePath.ChecksumValid && e.UnicodePath.State == UnicodePathPresent {
		name = e.UnicodePath.Path
	}
	if !e.IsUTF8() {
		return string(name)
	}
	s, truncated, err := ucs4.UTF8ToLocal(name, a.opts.charset, a.opts.escapeAll)
	if err != nil {
		a.entryWarn(e, errors.WithMessage(err, "zip: name is not UTF-8"))
		return string(e.Name)
	}
	if truncated {
		a.opts.logger.Printf("%s: display name truncated", s)
	}
	return s
}

func (a *Archive) entryWarn(e *Entry, err error) {
	e.Warnings = append(e.Warnings, err)
	a.opts.logger.Printf("%s: %v", e.Name, err)
}

// LocalFile is a local file header with its name and extra field.
type LocalFile struct {
	LocalFileHeader
	Name  []byte
	Extra []byte
	Unix  UnixMetadata

	HeaderOffset int64 // absolute offset of the local header
	DataOffset   int64 // absolute offset of the file data
}

// LocalHeader reads the local file header of e, shifted by ExtraBytes.
// Unix metadata is resolved from the local extra field, which may carry
// more times than the central one.
func (a *Archive) LocalHeader(e *Entry) (*LocalFile, error) {
	off := int64(e.LocalHeaderOffset) + a.extraBytes
	var rec [fileHeaderLen]byte
	if err := a.readAt(rec[:], off); err != nil {
		return nil, errors.WithMessagef(err, "zip: local header of %s", e.Name)
	}
	h, err := readLocalFileHeader(rec[:], &e.CentralDirectoryEntry)
	if err != nil {
		return nil, errors.WithMessagef(err, "zip: local header of %s at offset %d", e.Name, off)
	}

	nl := int(h.NameLength)
	d := make([]byte, nl+int(h.ExtraLength))
	if _, err := a.readFull(d); err != nil {
		return nil, errors.WithMessagef(err, "zip: local header of %s", e.Name)
	}
	lf := &LocalFile{
		LocalFileHeader: *h,
		Name:            d[:nl:nl],
		Extra:           d[nl:],
		HeaderOffset:    off,
		DataOffset:      off + fileHeaderLen + int64(len(d)),
	}

	blocks, err := ExtraBlocks(lf.Extra)
	if err != nil {
		a.opts.logger.Printf("%s: local %v", e.Name, err)
	}
	if h.Flags&FlagDataDescriptor == 0 {
		if err := ResolveLocalZip64(&lf.LocalFileHeader, blocks); err != nil {
			return lf, err
		}
	}
	lf.Unix = ResolveUnix(blocks, false, h.DOSDateTime())
	return lf, nil
}
