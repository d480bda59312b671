package persistence

import "errors"

const (
	// MagicNumber identifies memory snapshot files (ASCII: "SDM1")
	MagicNumber = 0x53444D31
	// Version is the current file format version (v1.0.0)
	Version = 0x00010000

	// HeaderSize is the on-disk size of FileHeader.
	HeaderSize = 64
)

var (
	ErrInvalidMagic       = errors.New("invalid magic number")
	ErrInvalidVersion     = errors.New("unsupported version")
	ErrInvalidCompression = errors.New("invalid compression type")
)

// Compression identifies the algorithm applied to the snapshot body.
type Compression uint8

const (
	// CompressionNone stores the body uncompressed.
	CompressionNone Compression = 0
	// CompressionZstd compresses the body with zstd (better ratio).
	CompressionZstd Compression = 1
	// CompressionLZ4 compresses the body with LZ4 (faster).
	CompressionLZ4 Compression = 2
)

// String returns a string representation of the Compression.
func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

func (c Compression) valid() bool {
	return c == CompressionNone || c == CompressionZstd || c == CompressionLZ4
}

// FileHeader is the 64-byte header at the start of every snapshot file.
// Layout optimized for cache alignment; all multi-byte fields are
// little-endian.
//
// The header describes the body as stored: when a compressor cannot shrink
// the body, the encoder falls back to CompressionNone regardless of the
// requested algorithm.
type FileHeader struct {
	Magic        uint32      // 0x53444D31 ("SDM1")
	Version      uint32      // File format version
	Compression  Compression // Compression of the body as stored
	Padding1     [3]byte
	Dimensions   uint32 // Address and data vector width
	NumLocations uint64 // Number of hard locations
	FactorBits   uint64 // Critical distance factor (math.Float64bits)
	RawLength    uint64 // Body length before compression
	BodyLength   uint64 // Body length as stored
	Checksum     uint32 // CRC32 of the body as stored
	Padding2     [4]byte
	Reserved     [8]byte // Future use
}
