package zipdir

// Compression methods.
const (
	Store   uint16 = 0 // no compression
	Deflate uint16 = 8 // DEFLATE compressed
)

const (
	fileHeaderSignature      = 0x04034b50
	directoryHeaderSignature = 0x02014b50
	directoryEndSignature    = 0x06054b50
	directory64LocSignature  = 0x07064b50
	directory64EndSignature  = 0x06064b50
	fileHeaderLen            = 30 // + filename + extra
	directoryHeaderLen       = 46 // + filename + extra + comment
	directoryEndLen          = 22 // + comment
	directory64LocLen        = 20 //
	directory64EndLen        = 56 // + extra

	// Limits for non zip64 files.
	uint16max = (1 << 16) - 1
	uint32max = (1 << 32) - 1
)

// Constants for the first byte in CreatorVersion.
const (
	CreatorFAT    = 0
	CreatorUnix   = 3
	CreatorNTFS   = 11
	CreatorVFAT   = 14
	CreatorMacOSX = 19
)

// General purpose flag bits.
const (
	FlagEncrypted      = 0x0001
	FlagDataDescriptor = 0x0008 // sizes and CRC follow the data
	FlagUTF8           = 0x0800 // name and comment are UTF-8
)

// Extra header IDs.
//
// IDs 0..31 are reserved for official use by PKWARE.
// IDs above that range are defined by third-party vendors.
//
// See http://mdfs.net/Docs/Comp/Archiving/Zip/ExtraField
const (
	ExtraZip64       = 0x0001 // Zip64 extended information
	ExtraPKUnix      = 0x000d // PKWARE Unix
	ExtraTime        = 0x5455 // Extended timestamp
	ExtraIZUnix      = 0x5855 // Info-ZIP Unix, first generation
	ExtraUnicodePath = 0x7075 // Info-ZIP Unicode path
	ExtraIZUnix2     = 0x7855 // Info-ZIP Unix, second generation
	ExtraIZUnix3     = 0x7875 // Info-ZIP Unix, third generation
)

// EndRecord is the end of central directory record. Counts, sizes and
// offsets hold their Zip64 values once the Zip64 record has been applied.
type EndRecord struct {
	ThisDisk         uint32
	CentralDirDisk   uint32
	EntriesThisDisk  uint64
	TotalEntries     uint64
	CentralDirSize   uint64
	CentralDirOffset uint64 // relative to the first byte of the archive
	CommentLength    uint16
	Comment          []byte

	Start int64 // absolute offset of the signature
	End   int64 // Start + 22 + CommentLength

	HaveZip64Record bool
	IsZip64         bool  // a sentinel field was promoted to a real value
	Zip64Start      int64 // absolute offset of the Zip64 record
	Zip64End        int64
}

// Zip64Locator points at the Zip64 end of central directory record.
type Zip64Locator struct {
	RecordDisk   uint32
	RecordOffset uint64
	TotalDisks   uint32 // 1-based, unlike every other disk number
}

// Zip64EndRecord is the Zip64 end of central directory record.
type Zip64EndRecord struct {
	RecordSize       uint64 // size of the remaining record
	CreatorVersion   uint16
	ReaderVersion    uint16
	ThisDisk         uint32
	CentralDirDisk   uint32
	EntriesThisDisk  uint64
	TotalEntries     uint64
	CentralDirSize   uint64
	CentralDirOffset uint64
}

// CentralDirectoryEntry is the fixed part of a central directory header.
// CompressedSize, UncompressedSize, LocalHeaderOffset and DiskNumberStart
// carry their Zip64 values after ResolveZip64.
type CentralDirectoryEntry struct {
	CreatorVersion    uint16
	ReaderVersion     uint16
	Flags             uint16
	Method            uint16
	ModifiedTime      uint16 // MS-DOS time
	ModifiedDate      uint16 // MS-DOS date
	CRC32             uint32
	CompressedSize    uint64
	UncompressedSize  uint64
	NameLength        uint16
	ExtraLength       uint16
	CommentLength     uint16
	DiskNumberStart   uint32
	InternalAttrs     uint16
	ExternalAttrs     uint32 // Meaning depends on CreatorVersion
	LocalHeaderOffset uint64
}

// DOSDateTime returns the date in the high and the time in the low 16 bits.
func (h *CentralDirectoryEntry) DOSDateTime() uint32 {
	return uint32(h.ModifiedDate)<<16 | uint32(h.ModifiedTime)
}

// Host returns the system that created the entry.
func (h *CentralDirectoryEntry) Host() uint8 {
	return uint8(h.CreatorVersion >> 8)
}

// LocalFileHeader is the fixed part of a local file header.
type LocalFileHeader struct {
	ReaderVersion    uint16
	Flags            uint16
	Method           uint16
	ModifiedTime     uint16
	ModifiedDate     uint16
	CRC32            uint32
	CompressedSize   uint64
	UncompressedSize uint64
	NameLength       uint16
	ExtraLength      uint16
}

// DOSDateTime returns the date in the high and the time in the low 16 bits.
func (h *LocalFileHeader) DOSDateTime() uint32 {
	return uint32(h.ModifiedDate)<<16 | uint32(h.ModifiedTime)
}
