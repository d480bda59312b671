package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"github.com/hupe1980/sdmgo/blobstore"
	"github.com/hupe1980/sdmgo/codec"
	"github.com/hupe1980/sdmgo/persistence"
	"github.com/hupe1980/sdmgo/resource"
	"github.com/hupe1980/sdmgo/store"
)

const manifestPrefix = "manifests/"

// ErrNoSnapshot is returned when the catalog holds no published snapshot.
var ErrNoSnapshot = errors.New("snapshot: no snapshot published")

// ErrConcurrentModification is returned when a publish loses the commit
// race to another writer. It aliases the blobstore sentinel so errors.Is
// matches wrapped errors from any pointer store.
var ErrConcurrentModification = blobstore.ErrConcurrentModification

// Source is a memory that can be framed into a snapshot. *store.Store
// satisfies it.
type Source interface {
	Dimensions() int
	NumLocations() int
	CriticalDistanceFactor() float64
	WriteTo(w io.Writer) (int64, error)
}

// Options contains configuration options for the catalog.
type Options struct {
	// Codec encodes manifest documents. Defaults to codec.Default.
	Codec codec.Codec

	// Pointer tracks the committed generation. Defaults to a CURRENT
	// object stored alongside the snapshots.
	Pointer PointerStore

	// Compression is applied to published snapshot bodies.
	Compression persistence.Compression

	// Controller gates publish and load jobs and throttles their IO.
	// A nil controller enforces nothing.
	Controller *resource.Controller
}

// DefaultOptions contains the default configuration options for the catalog.
var DefaultOptions = Options{
	Compression: persistence.CompressionZstd,
}

// Catalog is a versioned snapshot store over a BlobStore. Each publish
// writes a generation-numbered snapshot blob and manifest, then advances
// the commit pointer; readers follow the pointer, so they always observe a
// complete generation.
type Catalog struct {
	mu sync.Mutex // serializes publishes within this process

	bs          blobstore.BlobStore
	codec       codec.Codec
	pointer     PointerStore
	compression persistence.Compression
	rc          *resource.Controller
}

// NewCatalog creates a catalog over bs.
func NewCatalog(bs blobstore.BlobStore, optFns ...func(o *Options)) *Catalog {
	opts := DefaultOptions

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Codec == nil {
		opts.Codec = codec.Default
	}

	if opts.Pointer == nil {
		opts.Pointer = NewBlobPointerStore(bs)
	}

	return &Catalog{
		bs:          bs,
		codec:       opts.Codec,
		pointer:     opts.Pointer,
		compression: opts.Compression,
		rc:          opts.Controller,
	}
}

// Publish frames src into the next generation's snapshot blob, writes its
// manifest, and advances the commit pointer. Nothing is observable through
// Latest or List until the commit succeeds.
//
// Publishes within one process are serialized. A concurrent publish from
// another process can win the contested generation; the loser returns an
// error matching ErrConcurrentModification and should retry.
func (c *Catalog) Publish(ctx context.Context, src Source) (*Manifest, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.rc.AcquireBackground(ctx); err != nil {
		return nil, err
	}
	defer c.rc.ReleaseBackground()

	generation, err := c.nextGeneration(ctx)
	if err != nil {
		return nil, err
	}

	name := SnapshotName(generation)

	wb, err := c.bs.Create(ctx, name)
	if err != nil {
		return nil, err
	}

	header := &persistence.FileHeader{
		Compression:  c.compression,
		Dimensions:   uint32(src.Dimensions()),
		NumLocations: uint64(src.NumLocations()),
		FactorBits:   math.Float64bits(src.CriticalDistanceFactor()),
	}

	var w io.Writer = wb
	if c.rc != nil {
		w = resource.NewRateLimitedWriter(ctx, wb, c.rc)
	}

	size, err := persistence.Encode(w, header, func(body io.Writer) error {
		_, err := src.WriteTo(body)
		return err
	})
	if err != nil {
		blobstore.Discard(ctx, c.bs, wb, name)
		return nil, fmt.Errorf("write snapshot %s: %w", name, err)
	}

	if err := wb.Close(); err != nil {
		return nil, fmt.Errorf("commit snapshot %s: %w", name, err)
	}

	m := &Manifest{
		FormatVersion:          ManifestFormatVersion,
		Generation:             generation,
		Name:                   name,
		CreatedAt:              time.Now().UTC(),
		Dimensions:             src.Dimensions(),
		NumLocations:           src.NumLocations(),
		CriticalDistanceFactor: src.CriticalDistanceFactor(),
		Compression:            header.Compression.String(),
		Size:                   size,
		Checksum:               header.Checksum,
	}

	manifestName := ManifestName(generation)

	doc, err := c.codec.Marshal(m)
	if err != nil {
		_ = c.bs.Delete(ctx, name)
		return nil, fmt.Errorf("encode manifest: %w", err)
	}

	if err := c.bs.Put(ctx, manifestName, doc); err != nil {
		_ = c.bs.Delete(ctx, name)
		return nil, fmt.Errorf("write manifest %s: %w", manifestName, err)
	}

	if err := c.pointer.Commit(ctx, manifestName, generation); err != nil {
		// A lost race means another writer claimed this generation, and the
		// contested names may now hold the winner's bytes. Leave them.
		return nil, err
	}

	return m, nil
}

// Latest returns the manifest the commit pointer names, or ErrNoSnapshot
// when nothing has been published.
func (c *Catalog) Latest(ctx context.Context) (*Manifest, error) {
	manifestName, _, err := c.pointer.Current(ctx)
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			return nil, ErrNoSnapshot
		}
		return nil, err
	}

	return c.loadManifest(ctx, manifestName)
}

// Manifest returns the manifest of a specific generation, which may have
// been superseded by later publishes.
func (c *Catalog) Manifest(ctx context.Context, generation uint64) (*Manifest, error) {
	m, err := c.loadManifest(ctx, ManifestName(generation))
	if errors.Is(err, blobstore.ErrNotFound) {
		return nil, fmt.Errorf("generation %d: %w", generation, ErrNoSnapshot)
	}
	return m, err
}

// List returns the manifests of all committed generations in ascending
// order. Blobs beyond the commit pointer (publishes in flight or abandoned)
// are not listed.
func (c *Catalog) List(ctx context.Context) ([]*Manifest, error) {
	_, current, err := c.pointer.Current(ctx)
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	names, err := c.bs.List(ctx, manifestPrefix)
	if err != nil {
		return nil, err
	}

	manifests := make([]*Manifest, 0, len(names))
	for _, name := range names {
		m, err := c.loadManifest(ctx, name)
		if err != nil {
			return nil, err
		}
		if m.Generation > current {
			continue
		}
		manifests = append(manifests, m)
	}

	return manifests, nil
}

// Load reads and decodes the snapshot of a specific generation. Options may
// supply non-persisted store settings such as Parallelism.
func (c *Catalog) Load(ctx context.Context, generation uint64, optFns ...func(o *store.Options)) (*store.Store, *Manifest, error) {
	if err := c.rc.AcquireBackground(ctx); err != nil {
		return nil, nil, err
	}
	defer c.rc.ReleaseBackground()

	m, err := c.Manifest(ctx, generation)
	if err != nil {
		return nil, nil, err
	}

	blob, err := c.bs.Open(ctx, m.Name)
	if err != nil {
		return nil, nil, err
	}
	defer blob.Close()

	body, err := blob.ReadRange(ctx, 0, blob.Size())
	if err != nil {
		return nil, nil, err
	}
	defer body.Close()

	var r io.Reader = body
	if c.rc != nil {
		r = resource.NewRateLimitedReader(ctx, body, c.rc)
	}

	var s *store.Store
	header, err := persistence.Decode(r, func(raw io.Reader) error {
		var err error
		s, err = store.ReadFrom(raw, optFns...)
		return err
	})
	if err != nil {
		return nil, nil, fmt.Errorf("load snapshot %s: %w", m.Name, err)
	}

	// The envelope checksum already proved the body intact; this proves the
	// blob is the one the manifest was written for.
	if header.Checksum != m.Checksum {
		return nil, nil, fmt.Errorf("load snapshot %s: %w", m.Name,
			&persistence.ChecksumMismatchError{Expected: m.Checksum, Actual: header.Checksum})
	}

	return s, m, nil
}

// LoadLatest loads the snapshot the commit pointer names.
func (c *Catalog) LoadLatest(ctx context.Context, optFns ...func(o *store.Options)) (*store.Store, *Manifest, error) {
	m, err := c.Latest(ctx)
	if err != nil {
		return nil, nil, err
	}

	return c.Load(ctx, m.Generation, optFns...)
}

// Prune removes all committed generations except the newest keep ones.
// The current generation is never removed. It returns the generations that
// were pruned.
func (c *Catalog) Prune(ctx context.Context, keep int) ([]uint64, error) {
	if keep < 1 {
		keep = 1
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	manifests, err := c.List(ctx)
	if err != nil {
		return nil, err
	}

	if len(manifests) <= keep {
		return nil, nil
	}

	var pruned []uint64
	for _, m := range manifests[:len(manifests)-keep] {
		if err := c.bs.Delete(ctx, m.Name); err != nil {
			return pruned, err
		}
		if err := c.bs.Delete(ctx, ManifestName(m.Generation)); err != nil {
			return pruned, err
		}
		pruned = append(pruned, m.Generation)
	}

	return pruned, nil
}

func (c *Catalog) nextGeneration(ctx context.Context) (uint64, error) {
	_, current, err := c.pointer.Current(ctx)
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			return 1, nil
		}
		return 0, err
	}

	return current + 1, nil
}

func (c *Catalog) loadManifest(ctx context.Context, name string) (*Manifest, error) {
	blob, err := c.bs.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer blob.Close()

	data, err := blobstore.ReadAll(ctx, blob)
	if err != nil {
		return nil, err
	}

	var m Manifest
	if err := c.codec.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode manifest %s: %w", name, err)
	}

	if m.FormatVersion != ManifestFormatVersion {
		return nil, fmt.Errorf("unsupported manifest version %d (expected %d)", m.FormatVersion, ManifestFormatVersion)
	}

	return &m, nil
}
