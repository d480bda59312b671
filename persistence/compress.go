package persistence

import (
	"errors"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// zstd encoder/decoder pools for efficiency
var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	// Level 3 balances compression ratio vs speed
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func putZstdEncoder(enc *zstd.Encoder) {
	zstdEncoderPool.Put(enc)
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

func putZstdDecoder(dec *zstd.Decoder) {
	zstdDecoderPool.Put(dec)
}

// compressBody compresses a snapshot body with the requested algorithm and
// returns the stored bytes together with the Compression actually used.
// Incompressible bodies are stored raw with CompressionNone.
func compressBody(raw []byte, compression Compression) ([]byte, Compression, error) {
	if compression == CompressionNone || len(raw) == 0 {
		return raw, CompressionNone, nil
	}

	var compressed []byte

	switch compression {
	case CompressionZstd:
		enc := getZstdEncoder()
		defer putZstdEncoder(enc)

		compressed = enc.EncodeAll(raw, nil)

	case CompressionLZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(raw)))

		n, err := lz4.CompressBlock(raw, buf, nil)
		if err != nil {
			return nil, CompressionNone, err
		}
		compressed = buf[:n] // n == 0 means incompressible

	default:
		return nil, CompressionNone, fmt.Errorf("%w: %d", ErrInvalidCompression, compression)
	}

	// If compression doesn't help, store uncompressed.
	if len(compressed) == 0 || len(compressed) >= len(raw) {
		return raw, CompressionNone, nil
	}

	return compressed, compression, nil
}

// decompressBody reverses compressBody. rawLength must be the body length
// before compression, as recorded in the file header.
func decompressBody(body []byte, compression Compression, rawLength uint64) ([]byte, error) {
	switch compression {
	case CompressionNone:
		if uint64(len(body)) != rawLength {
			return nil, fmt.Errorf("raw body length mismatch: expected %d, got %d", rawLength, len(body))
		}
		return body, nil

	case CompressionZstd:
		dec := getZstdDecoder()
		defer putZstdDecoder(dec)

		raw, err := dec.DecodeAll(body, make([]byte, 0, rawLength))
		if err != nil {
			return nil, err
		}
		if uint64(len(raw)) != rawLength {
			return nil, errors.New("decompressed size mismatch")
		}
		return raw, nil

	case CompressionLZ4:
		raw := make([]byte, rawLength)

		n, err := lz4.UncompressBlock(body, raw)
		if err != nil {
			return nil, err
		}
		if uint64(n) != rawLength {
			return nil, errors.New("decompressed size mismatch")
		}
		return raw, nil

	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidCompression, compression)
	}
}
