package sdmgo

import (
	"context"
	"fmt"

	"github.com/hupe1980/sdmgo/bitvec"
	"github.com/hupe1980/sdmgo/codec"
	"github.com/hupe1980/sdmgo/store"
)

// ExportDocument is the text form of a memory produced by Export. Addresses
// are bit strings, one character per dimension, so the document survives
// tools that cannot handle binary snapshots. For large memories prefer the
// binary snapshot format.
type ExportDocument struct {
	Dimensions             int         `json:"dimensions"`
	NumLocations           int         `json:"num_locations"`
	CriticalDistanceFactor float64     `json:"critical_distance_factor"`
	Addresses              []string    `json:"addresses"`
	Data                   [][]float32 `json:"data"`
}

// Export encodes the full memory state with the configured codec. The
// result round-trips through Import.
func (s *SDM) Export(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	numLocations := s.store.NumLocations()

	doc := ExportDocument{
		Dimensions:             s.store.Dimensions(),
		NumLocations:           numLocations,
		CriticalDistanceFactor: s.store.CriticalDistanceFactor(),
		Addresses:              make([]string, 0, numLocations),
		Data:                   make([][]float32, 0, numLocations),
	}

	for i := 0; i < numLocations; i++ {
		addr, err := s.store.AddressAt(i)
		if err != nil {
			return nil, translateError(err)
		}

		row, err := s.store.DataAt(i)
		if err != nil {
			return nil, translateError(err)
		}

		doc.Addresses = append(doc.Addresses, addr.String())
		doc.Data = append(doc.Data, row)
	}

	return s.codec.Marshal(doc)
}

// Import reconstructs a memory from a document produced by Export. The
// document is authoritative for shape and critical distance factor; options
// supply non-persisted settings such as the codec used to decode and the
// scan parallelism.
func Import(data []byte, optFns ...Option) (*SDM, error) {
	opts := applyOptions(optFns)

	c := opts.codec
	if c == nil {
		c = codec.Default
	}

	var doc ExportDocument
	if err := c.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode export document: %w", err)
	}

	if len(doc.Addresses) != doc.NumLocations {
		return nil, fmt.Errorf("export document: %d addresses for %d locations", len(doc.Addresses), doc.NumLocations)
	}

	addresses := make([]bitvec.Vector, len(doc.Addresses))
	for i, s := range doc.Addresses {
		addr, err := bitvec.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("export document: address %d: %w", i, err)
		}
		if addr.Len() != doc.Dimensions {
			return nil, translateError(&store.ErrDimensionMismatch{Expected: doc.Dimensions, Actual: addr.Len()})
		}
		addresses[i] = addr
	}

	mem, err := store.FromLocations(addresses, doc.Data, func(o *store.Options) {
		o.CriticalDistanceFactor = doc.CriticalDistanceFactor
		o.Parallelism = opts.parallelism
	})
	if err != nil {
		return nil, translateError(err)
	}

	return wrap(mem, opts), nil
}
