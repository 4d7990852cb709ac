package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/arcglobe/sampler"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot holds the sampled links and clock of a run so the same arcs can
// be replayed without resampling.
type Snapshot struct {
	Version int   `json:"version"`
	Seed    int64 `json:"seed"`

	Frame int     `json:"frame"`
	Time  float64 `json:"time"`

	// Density provider that produced the links
	DensityMode string `json:"density_mode"`

	Links []LinkState `json:"links"`
}

// LinkState is one sampled link.
type LinkState struct {
	From [3]float64 `json:"from"`
	To   [3]float64 `json:"to"`
}

// NewSnapshot captures pairs and the current clock.
func NewSnapshot(seed int64, frame int, t float64, densityMode string, pairs []sampler.LinkPair) *Snapshot {
	s := &Snapshot{
		Version:     SnapshotVersion,
		Seed:        seed,
		Frame:       frame,
		Time:        t,
		DensityMode: densityMode,
		Links:       make([]LinkState, len(pairs)),
	}
	for i, p := range pairs {
		s.Links[i] = LinkState{
			From: [3]float64{p.From.X, p.From.Y, p.From.Z},
			To:   [3]float64{p.To.X, p.To.Y, p.To.Z},
		}
	}
	return s
}

// Pairs converts the stored links back to sampler pairs.
func (s *Snapshot) Pairs() []sampler.LinkPair {
	pairs := make([]sampler.LinkPair, len(s.Links))
	for i, l := range s.Links {
		pairs[i] = sampler.LinkPair{
			From: r3.Vec{X: l.From[0], Y: l.From[1], Z: l.From[2]},
			To:   r3.Vec{X: l.To[0], Y: l.To[1], Z: l.To[2]},
		}
	}
	return pairs
}

// SaveSnapshot writes a snapshot to disk.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("snapshot_%d.json", snapshot.Frame))

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if snapshot.Version != SnapshotVersion {
		return nil, fmt.Errorf("snapshot version %d, want %d", snapshot.Version, SnapshotVersion)
	}

	return &snapshot, nil
}
