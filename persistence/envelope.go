package persistence

import (
	"bytes"
	"fmt"
	"io"
)

// maxBodyLength rejects headers that claim absurd body sizes before any
// allocation happens.
const maxBodyLength = 1 << 40

// Encode writes a framed snapshot to w: a FileHeader followed by the body
// produced by writeBody, compressed per header.Compression. The body is
// buffered so its length and checksum can be stamped into the header before
// anything reaches w. It returns the total number of bytes written.
//
// Callers fill the domain fields of header (Dimensions, NumLocations,
// FactorBits, Compression); Magic, Version, RawLength, BodyLength and
// Checksum are managed here.
func Encode(w io.Writer, header *FileHeader, writeBody func(io.Writer) error) (int64, error) {
	if !header.Compression.valid() {
		return 0, fmt.Errorf("%w: %d", ErrInvalidCompression, header.Compression)
	}

	var raw bytes.Buffer
	if err := writeBody(&raw); err != nil {
		return 0, err
	}

	body, compression, err := compressBody(raw.Bytes(), header.Compression)
	if err != nil {
		return 0, err
	}

	header.Compression = compression
	header.RawLength = uint64(raw.Len())
	header.BodyLength = uint64(len(body))
	header.Checksum = CalculateChecksum(body)

	bw := NewBinaryWriter(w)
	if err := bw.WriteHeader(header); err != nil {
		return 0, err
	}

	n, err := w.Write(body)
	return HeaderSize + int64(n), err
}

// Decode reads a framed snapshot from r: it validates the header, verifies
// the body checksum before any parsing happens, decompresses the body and
// hands it to readBody. It returns the validated header.
func Decode(r io.Reader, readBody func(io.Reader) error) (*FileHeader, error) {
	br := NewBinaryReader(r)

	header, err := br.ReadHeader()
	if err != nil {
		return nil, err
	}

	if header.BodyLength == 0 || header.BodyLength > maxBodyLength {
		return nil, fmt.Errorf("body length %d exceeds limit", header.BodyLength)
	}
	if header.RawLength == 0 || header.RawLength > maxBodyLength {
		return nil, fmt.Errorf("raw body length %d exceeds limit", header.RawLength)
	}

	body := make([]byte, header.BodyLength)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, fmt.Errorf("failed to read snapshot body: %w", err)
	}

	// Verify integrity before the body is parsed; a corrupted snapshot must
	// never reach the deserializer.
	if actual := CalculateChecksum(body); actual != header.Checksum {
		return nil, &ChecksumMismatchError{Expected: header.Checksum, Actual: actual}
	}

	raw, err := decompressBody(body, header.Compression, header.RawLength)
	if err != nil {
		return nil, err
	}

	if err := readBody(bytes.NewReader(raw)); err != nil {
		return nil, err
	}

	return header, nil
}
