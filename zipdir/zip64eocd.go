package zipdir

import (
	"github.com/pkg/errors"
)

// findZip64End looks for a Zip64 end locator right in front of the end
// record. A missing or inconsistent locator leaves the archive classic; a
// locator whose record cannot be found is an error.
func (a *Archive) findZip64End() error {
	locStart := a.realEnd - directory64LocLen
	if locStart < 0 {
		return nil
	}

	var lbuf [directory64LocLen]byte
	if err := a.readAt(lbuf[:], locStart); err != nil {
		return errors.WithMessage(err, "zip: reading zip64 end-of-central-directory locator")
	}
	b := readBuf(lbuf[:])
	if sig := b.uint32(); sig != directory64LocSignature {
		return nil
	}
	loc := &Zip64Locator{
		RecordDisk:   b.uint32(),
		RecordOffset: b.uint64(),
		TotalDisks:   b.uint32(),
	}

	end := &a.end
	if end.ThisDisk != uint16max && end.ThisDisk != loc.TotalDisks-1 {
		a.notZip64("end record is disk %d, locator counts %d disks", end.ThisDisk, loc.TotalDisks)
		return nil
	}
	if loc.RecordOffset > uint64(locStart) {
		return errors.Wrapf(ErrZip64RecordNotFound, "record offset %d is beyond the locator at %d", loc.RecordOffset, locStart)
	}

	off, rec, err := a.readZip64Record(int64(loc.RecordOffset), locStart)
	if err != nil {
		return err
	}

	switch {
	case rec.ThisDisk != loc.RecordDisk:
		a.notZip64("record is on disk %d, locator says %d", rec.ThisDisk, loc.RecordDisk)
		return nil
	case end.CentralDirDisk != uint16max && end.CentralDirDisk != rec.CentralDirDisk:
		a.notZip64("central directory disk %d != %d", end.CentralDirDisk, rec.CentralDirDisk)
		return nil
	case end.EntriesThisDisk != uint16max && end.EntriesThisDisk != rec.EntriesThisDisk:
		a.notZip64("entries on this disk %d != %d", end.EntriesThisDisk, rec.EntriesThisDisk)
		return nil
	case end.TotalEntries != uint16max && end.TotalEntries != rec.TotalEntries:
		a.notZip64("total entries %d != %d", end.TotalEntries, rec.TotalEntries)
		return nil
	case end.CentralDirSize != uint32max && end.CentralDirSize != rec.CentralDirSize:
		a.notZip64("central directory size %d != %d", end.CentralDirSize, rec.CentralDirSize)
		return nil
	case end.CentralDirOffset != uint32max && end.CentralDirOffset != rec.CentralDirOffset:
		a.notZip64("central directory offset %d != %d", end.CentralDirOffset, rec.CentralDirOffset)
		return nil
	}

	end.HaveZip64Record = true
	end.Zip64Start = off
	end.Zip64End = off + 12 + int64(rec.RecordSize)
	a.locator, a.record = loc, rec
	a.realEnd = off

	if end.ThisDisk == uint16max {
		end.ThisDisk = rec.ThisDisk
		end.IsZip64 = end.IsZip64 || rec.ThisDisk != uint16max
	}
	if end.CentralDirDisk == uint16max {
		end.CentralDirDisk = rec.CentralDirDisk
		end.IsZip64 = end.IsZip64 || rec.CentralDirDisk != uint16max
	}
	if end.EntriesThisDisk == uint16max {
		end.EntriesThisDisk = rec.EntriesThisDisk
		end.IsZip64 = end.IsZip64 || rec.EntriesThisDisk != uint16max
	}
	if end.TotalEntries == uint16max {
		end.TotalEntries = rec.TotalEntries
		end.IsZip64 = end.IsZip64 || rec.TotalEntries != uint16max
	}
	if end.CentralDirSize == uint32max {
		end.CentralDirSize = rec.CentralDirSize
		end.IsZip64 = end.IsZip64 || rec.CentralDirSize != uint32max
	}
	if end.CentralDirOffset == uint32max {
		end.CentralDirOffset = rec.CentralDirOffset
		end.IsZip64 = end.IsZip64 || rec.CentralDirOffset != uint32max
	}
	return nil
}

// readZip64Record reads the Zip64 end record at off. If the signature is
// not there, the record is looked for once more directly in front of the
// locator, where it sits when bytes were prepended to the archive.
func (a *Archive) readZip64Record(off, locStart int64) (int64, *Zip64EndRecord, error) {
	var buf [directory64EndLen]byte
	state := stateSeeking
	retried := false
	for !state.done() {
		switch state {
		case stateSeeking:
			if err := a.readAt(buf[:], off); err != nil {
				return 0, nil, errors.WithMessage(err, "zip: reading zip64 end-of-central-directory record")
			}
			state = stateVerifying
		case stateVerifying:
			sig := readBuf(buf[:4])
			switch {
			case sig.uint32() == directory64EndSignature:
				state = stateResolved
			case retried:
				state = stateFailed
			default:
				state = stateCompensating
			}
		case stateCompensating:
			retried = true
			off = locStart - directory64EndLen
			if off < 0 {
				state = stateFailed
				break
			}
			state = stateSeeking
		}
	}
	if state == stateFailed {
		return 0, nil, errors.Wrapf(ErrZip64RecordNotFound, "locator at %d", locStart)
	}
	if retried {
		a.warn(errors.Wrapf(ErrZip64RecordRelocated, "found at %d", off))
	}

	b := readBuf(buf[4:])
	rec := &Zip64EndRecord{
		RecordSize:       b.uint64(),
		CreatorVersion:   b.uint16(),
		ReaderVersion:    b.uint16(),
		ThisDisk:         b.uint32(),
		CentralDirDisk:   b.uint32(),
		EntriesThisDisk:  b.uint64(),
		TotalEntries:     b.uint64(),
		CentralDirSize:   b.uint64(),
		CentralDirOffset: b.uint64(),
	}
	return off, rec, nil
}

func (a *Archive) notZip64(format string, args ...interface{}) {
	a.zip64Err = errors.Wrapf(ErrInconsistentZip64, format, args...)
	a.opts.logger.Printf("%v", a.zip64Err)
}
