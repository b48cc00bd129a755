// Package loader reads transit datasets from request documents and CSV
// directories and ingests them into a catalogue.
package loader

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"transit/internal/catalogue"
	"transit/internal/geo"
	"transit/internal/routing"

	"github.com/pkg/errors"
)

// StopRecord is a stop definition
type StopRecord struct {
	Name        string
	Coordinates geo.Coordinates
}

// DistanceRecord is a directed road distance in meters
type DistanceRecord struct {
	From   string
	To     string
	Meters int
}

// BusRecord is a bus definition with its stops in route order
type BusRecord struct {
	Name        string
	Stops       []string
	IsRoundtrip bool
}

// Dataset holds everything needed to populate a catalogue
type Dataset struct {
	Stops     []StopRecord
	Distances []DistanceRecord
	Buses     []BusRecord
}

// PopulateOptions controls how strictly references are checked during ingestion
type PopulateOptions struct {
	// ImplicitStops registers placeholder stops for names that a distance or a
	// bus route references but no stop record defines. When false such a
	// reference fails the ingestion.
	ImplicitStops bool

	Logger *slog.Logger
}

// Populate ingests the dataset in the order the catalogue requires: stops,
// then road distances, then buses.
func Populate(cat *catalogue.Catalogue, dataset *Dataset, opts PopulateOptions) error {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	for _, stop := range dataset.Stops {
		cat.AddStop(stop.Name, stop.Coordinates)
	}

	for _, distance := range dataset.Distances {
		if opts.ImplicitStops {
			reserveStop(cat, distance.From, logger)
			reserveStop(cat, distance.To, logger)
		}

		if err := cat.SetRoadDistance(distance.From, distance.To, distance.Meters); err != nil {
			return errors.Wrap(err, "failed to set road distance")
		}
	}

	for _, bus := range dataset.Buses {
		if opts.ImplicitStops {
			for _, stop := range bus.Stops {
				reserveStop(cat, stop, logger)
			}
		}

		if _, err := cat.AddBus(bus.Name, bus.Stops, bus.IsRoundtrip); err != nil {
			return errors.Wrap(err, "failed to add bus")
		}
	}

	logger.Debug("Catalogue populated",
		"stops", cat.StopCount(),
		"buses", cat.BusCount(),
		"distances", len(dataset.Distances),
	)

	return nil
}

func reserveStop(cat *catalogue.Catalogue, name string, logger *slog.Logger) {
	if _, ok := cat.FindStop(name); ok {
		return
	}

	cat.ReserveStop(name)
	logger.Warn("Stop referenced before definition, using placeholder coordinates", "stop", name)
}

// LoadDataset loads a dataset from a CSV directory or a JSON request
// document. A document's routing_settings replace fallback; CSV directories
// and documents without settings use fallback as is.
func LoadDataset(path string, fallback routing.Settings) (*Dataset, routing.Settings, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fallback, errors.Wrapf(err, "failed to stat dataset %s", path)
	}

	if info.IsDir() {
		dataset, err := NewCSVLoader(path).Load()
		if err != nil {
			return nil, fallback, errors.Wrapf(err, "failed to load CSV dataset from %s", path)
		}

		return dataset, fallback, nil
	}

	if !strings.EqualFold(filepath.Ext(path), ".json") {
		return nil, fallback, errors.Errorf("unsupported dataset file %s: expected a directory or a .json document", path)
	}

	doc, err := LoadDocumentFile(path)
	if err != nil {
		return nil, fallback, err
	}

	if doc.RoutingSettings == nil {
		return doc.Dataset(), fallback, nil
	}

	return doc.Dataset(), *doc.RoutingSettings, nil
}

// LoadDocumentFile reads and validates a JSON request document from disk
func LoadDocumentFile(path string) (*Document, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer file.Close()

	doc, err := DecodeDocument(file)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode document %s", path)
	}

	return doc, nil
}
