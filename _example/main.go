package main

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"time"

	"github.com/hupe1980/sdmgo"
	"github.com/hupe1980/sdmgo/blobstore"
	"github.com/hupe1980/sdmgo/snapshot"
	"github.com/hupe1980/sdmgo/testutil"
)

func main() {
	ctx := context.Background()

	seed := int64(4711)
	dimensions := 256
	numLocations := 2000

	mem := sdmgo.Memory(dimensions, numLocations).
		Factor(0.45).
		Seed(seed).
		Parallelism(4).
		MustBuild()

	rng := testutil.NewRNG(seed)

	fmt.Println("--- Write ---")
	fmt.Println("Dimensions:", dimensions)
	fmt.Println("Locations:", numLocations)
	fmt.Printf("Critical distance: %.1f bits\n", mem.CriticalDistance())

	// Store a binary pattern scaled to 10.0 at a hard location address so
	// the write is guaranteed to land.
	addr, err := mem.Store().AddressAt(0)
	if err != nil {
		log.Fatal(err)
	}

	pattern := rng.Address(dimensions)
	data := make([]float32, dimensions)
	for i := range data {
		if pattern.Bit(i) {
			data[i] = 10.0
		}
	}

	start := time.Now()

	activated, err := mem.Write(ctx, addr, data)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Activated %d locations in %v\n\n", activated, time.Since(start))

	fmt.Println("--- Noisy Recall ---")

	for _, flips := range []int{0, 10, 25, 50} {
		probe := rng.FlipBits(addr, flips)

		start = time.Now()

		result, err := mem.Read(ctx, probe)
		if err != nil {
			log.Fatal(err)
		}

		// Recover the pattern by thresholding the reconstruction.
		correct := 0
		for i, v := range result.Data {
			if (v > 5.0) == pattern.Bit(i) {
				correct++
			}
		}

		fmt.Printf("flips=%2d activations=%4d recovered=%3d/%d bits in %v\n",
			flips, result.Activations, correct, dimensions, time.Since(start))
	}

	fmt.Println()
	fmt.Println("--- Snapshot ---")

	var buf bytes.Buffer

	start = time.Now()

	n, err := mem.SaveToWriter(&buf)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Saved %d bytes (zstd) in %v\n", n, time.Since(start))

	loaded, err := sdmgo.LoadFromReader(&buf)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Loaded %dx%d memory\n\n", loaded.Dimensions(), loaded.NumLocations())

	fmt.Println("--- Catalog ---")

	cat := snapshot.NewCatalog(blobstore.NewMemoryStore())

	for i := 0; i < 3; i++ {
		manifest, err := cat.Publish(ctx, mem.Store())
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("Published generation %d (%d bytes)\n", manifest.Generation, manifest.Size)
	}

	latest, err := cat.Latest(ctx)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Latest generation: %d (%s)\n", latest.Generation, latest.Name)
}
