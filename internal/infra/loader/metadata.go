package loader

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
)

// MetadataFile is the optional provenance file of a CSV dataset directory
const MetadataFile = "metadata.json"

// DatasetMetadata tracks the provenance and expected size of a CSV dataset
type DatasetMetadata struct {
	Version     string     `json:"version"`
	Region      string     `json:"region"`
	Source      string     `json:"source,omitempty"`
	GeneratedAt time.Time  `json:"generated_at"`
	Output      OutputInfo `json:"output"`
}

// OutputInfo contains the record counts of the dataset files
type OutputInfo struct {
	StopsCount     int `json:"stops_count"`
	DistancesCount int `json:"distances_count"`
	BusesCount     int `json:"buses_count"`
}

// LoadMetadata loads and parses the metadata.json file from the given
// directory. A missing file yields an error matching os.ErrNotExist.
func LoadMetadata(dataDir string) (*DatasetMetadata, error) {
	metadataPath := filepath.Join(dataDir, MetadataFile)

	data, err := os.ReadFile(metadataPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(err, "metadata.json not found in dataset directory")
		}

		return nil, errors.Wrap(err, "failed to read metadata.json")
	}

	var metadata DatasetMetadata
	if err := json.Unmarshal(data, &metadata); err != nil {
		return nil, errors.Wrap(err, "failed to parse metadata.json")
	}

	return &metadata, nil
}

// Validate checks if the metadata is valid and complete
func (m *DatasetMetadata) Validate() error {
	if m.Version == "" {
		return errors.New("metadata version is required")
	}

	if m.Region == "" {
		return errors.New("metadata region is required")
	}

	if m.GeneratedAt.IsZero() {
		return errors.New("metadata generated_at timestamp is required")
	}

	if m.Output.StopsCount < 0 || m.Output.DistancesCount < 0 || m.Output.BusesCount < 0 {
		return errors.New("metadata output counts must not be negative")
	}

	return nil
}

// Matches reports whether the loaded dataset has the record counts the metadata declares
func (m *DatasetMetadata) Matches(dataset *Dataset) error {
	if len(dataset.Stops) != m.Output.StopsCount {
		return errors.Errorf("stops count mismatch: metadata declares %d, loaded %d", m.Output.StopsCount, len(dataset.Stops))
	}

	if len(dataset.Distances) != m.Output.DistancesCount {
		return errors.Errorf("distances count mismatch: metadata declares %d, loaded %d", m.Output.DistancesCount, len(dataset.Distances))
	}

	if len(dataset.Buses) != m.Output.BusesCount {
		return errors.Errorf("buses count mismatch: metadata declares %d, loaded %d", m.Output.BusesCount, len(dataset.Buses))
	}

	return nil
}

// GetAge returns the age of the dataset since generation
func (m *DatasetMetadata) GetAge() time.Duration {
	return time.Since(m.GeneratedAt)
}

// Summary returns a brief summary of the metadata for logging
func (m *DatasetMetadata) Summary() map[string]any {
	return map[string]any{
		"version":         m.Version,
		"region":          m.Region,
		"generated_at":    m.GeneratedAt,
		"stops_count":     m.Output.StopsCount,
		"distances_count": m.Output.DistancesCount,
		"buses_count":     m.Output.BusesCount,
	}
}
