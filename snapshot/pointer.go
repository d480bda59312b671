package snapshot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/hupe1980/sdmgo/blobstore"
)

// CurrentName is the blob name of the catalog's commit pointer.
const CurrentName = "CURRENT"

// PointerStore tracks which manifest is current. Implementations decide how
// strong the commit is: the blob-backed default serializes writers within
// one process, while s3.DDBPointerStore gives compare-and-set semantics
// across processes.
type PointerStore interface {
	// Current returns the manifest blob name and generation of the latest
	// commit. It returns blobstore.ErrNotFound when nothing has been
	// committed yet.
	Current(ctx context.Context) (manifest string, generation uint64, err error)

	// Commit publishes manifest as the given generation. It fails with an
	// error matching blobstore.ErrConcurrentModification when the
	// generation has already been claimed by another writer.
	Commit(ctx context.Context, manifest string, generation uint64) error
}

// BlobPointerStore keeps the commit pointer in a CURRENT object on the blob
// store. The stale-generation check runs under a process-local mutex, so it
// protects against concurrent writers in one process only; multi-process
// deployments should commit through a compare-and-set store instead.
type BlobPointerStore struct {
	mu sync.Mutex
	bs blobstore.BlobStore
}

// NewBlobPointerStore creates a pointer store backed by bs.
func NewBlobPointerStore(bs blobstore.BlobStore) *BlobPointerStore {
	return &BlobPointerStore{bs: bs}
}

// Current reads the CURRENT object.
func (p *BlobPointerStore) Current(ctx context.Context) (string, uint64, error) {
	blob, err := p.bs.Open(ctx, CurrentName)
	if err != nil {
		return "", 0, err
	}
	defer blob.Close()

	data, err := blobstore.ReadAll(ctx, blob)
	if err != nil {
		return "", 0, err
	}

	return parseCurrent(data)
}

// Commit rewrites the CURRENT object, rejecting generations at or below the
// committed one.
func (p *BlobPointerStore) Commit(ctx context.Context, manifest string, generation uint64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	_, current, err := p.Current(ctx)
	switch {
	case err == nil:
		if generation <= current {
			return fmt.Errorf("commit generation %d: current is %d: %w",
				generation, current, blobstore.ErrConcurrentModification)
		}
	case errors.Is(err, blobstore.ErrNotFound):
		// First commit.
	default:
		return err
	}

	return p.bs.Put(ctx, CurrentName, formatCurrent(manifest, generation))
}

// The CURRENT object holds a single line: the generation, a space, and the
// manifest blob name.
func formatCurrent(manifest string, generation uint64) []byte {
	return []byte(strconv.FormatUint(generation, 10) + " " + manifest)
}

func parseCurrent(data []byte) (string, uint64, error) {
	content := strings.TrimSpace(string(data))

	gen, name, ok := strings.Cut(content, " ")
	if !ok {
		return "", 0, fmt.Errorf("malformed commit pointer %q", content)
	}

	generation, err := strconv.ParseUint(gen, 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("malformed commit pointer generation %q: %w", gen, err)
	}

	return name, generation, nil
}
