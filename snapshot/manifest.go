package snapshot

import (
	"fmt"
	"time"
)

// ManifestFormatVersion is the current manifest document version.
const ManifestFormatVersion = 1

// Manifest describes one published snapshot generation. It is stored as a
// codec-encoded document next to the snapshot blob it names.
type Manifest struct {
	FormatVersion          int       `json:"format_version"`
	Generation             uint64    `json:"generation"`
	Name                   string    `json:"name"`
	CreatedAt              time.Time `json:"created_at"`
	Dimensions             int       `json:"dimensions"`
	NumLocations           int       `json:"num_locations"`
	CriticalDistanceFactor float64   `json:"critical_distance_factor"`
	Compression            string    `json:"compression"`
	Size                   int64     `json:"size"`
	Checksum               uint32    `json:"checksum"`
}

// SnapshotName returns the blob name of generation g's snapshot.
// Generations are zero-padded so lexicographic blob order is generation
// order.
func SnapshotName(g uint64) string {
	return fmt.Sprintf("snapshots/%016d.sdm", g)
}

// ManifestName returns the blob name of generation g's manifest.
func ManifestName(g uint64) string {
	return fmt.Sprintf("manifests/%016d.json", g)
}
