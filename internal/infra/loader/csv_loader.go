package loader

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"transit/internal/geo"

	"github.com/pkg/errors"
)

// CSV file names inside a dataset directory
const (
	StopsFile     = "stops.csv"
	DistancesFile = "distances.csv"
	BusesFile     = "buses.csv"
)

// CSVLoader handles loading of transit datasets from a directory of CSV files
type CSVLoader struct {
	dataDir string
}

// NewCSVLoader creates a new CSV loader for the given data directory
func NewCSVLoader(dataDir string) *CSVLoader {
	return &CSVLoader{dataDir: dataDir}
}

// Load loads all dataset files. distances.csv is optional. When a
// metadata.json is present it must be valid and its counts must match the
// loaded records.
func (l *CSVLoader) Load() (*Dataset, error) {
	stops, err := l.LoadStops()
	if err != nil {
		return nil, errors.WithStack(err)
	}

	distances, err := l.LoadDistances()
	if err != nil {
		return nil, errors.WithStack(err)
	}

	buses, err := l.LoadBuses()
	if err != nil {
		return nil, errors.WithStack(err)
	}

	dataset := &Dataset{
		Stops:     stops,
		Distances: distances,
		Buses:     buses,
	}

	metadata, err := LoadMetadata(l.dataDir)
	if errors.Is(err, os.ErrNotExist) {
		return dataset, nil
	}
	if err != nil {
		return nil, err
	}

	if err := metadata.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid metadata.json")
	}

	if err := metadata.Matches(dataset); err != nil {
		return nil, err
	}

	return dataset, nil
}

// LoadStops loads stops from stops.csv
// Expected CSV format: name,lat,lng
func (l *CSVLoader) LoadStops() ([]StopRecord, error) {
	var stops []StopRecord

	err := l.readRecords(StopsFile, 3, func(record []string, lineNum int) error {
		stop, err := parseStop(record, lineNum)
		if err != nil {
			return err
		}

		stops = append(stops, stop)

		return nil
	})

	return stops, err
}

// LoadDistances loads road distances from distances.csv
// Expected CSV format: from,to,meters
func (l *CSVLoader) LoadDistances() ([]DistanceRecord, error) {
	var distances []DistanceRecord

	err := l.readRecords(DistancesFile, 3, func(record []string, lineNum int) error {
		distance, err := parseDistance(record, lineNum)
		if err != nil {
			return err
		}

		distances = append(distances, distance)

		return nil
	})
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}

	return distances, err
}

// LoadBuses loads buses from buses.csv
// Expected CSV format: name,is_roundtrip,stop1,stop2,... with one row per bus
func (l *CSVLoader) LoadBuses() ([]BusRecord, error) {
	var buses []BusRecord

	err := l.readRecords(BusesFile, 2, func(record []string, lineNum int) error {
		bus, err := parseBus(record, lineNum)
		if err != nil {
			return err
		}

		buses = append(buses, bus)

		return nil
	})

	return buses, err
}

// readRecords skips the header row and calls fn for every following record
// that has at least minColumns columns
func (l *CSVLoader) readRecords(name string, minColumns int, fn func(record []string, lineNum int) error) error {
	path := filepath.Join(l.dataDir, name)
	file, err := os.Open(path)
	if err != nil {
		return errors.WithStack(err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	// Skip header row
	if _, err := reader.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}

		return errors.WithStack(err)
	}

	lineNum := 1

	for {
		record, readErr := reader.Read()
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			return errors.WithStack(readErr)
		}
		lineNum++

		if len(record) < minColumns {
			return errors.Errorf("invalid %s format at line %d: expected at least %d columns, got %d", name, lineNum, minColumns, len(record))
		}

		if err := fn(record, lineNum); err != nil {
			return err
		}
	}

	return nil
}

func parseStop(record []string, lineNum int) (StopRecord, error) {
	name := strings.TrimSpace(record[0])
	if name == "" {
		return StopRecord{}, errors.Errorf("empty stop name at line %d", lineNum)
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
	if err != nil {
		return StopRecord{}, errors.Wrapf(err, "invalid latitude at line %d", lineNum)
	}

	lng, err := strconv.ParseFloat(strings.TrimSpace(record[2]), 64)
	if err != nil {
		return StopRecord{}, errors.Wrapf(err, "invalid longitude at line %d", lineNum)
	}

	coordinates := geo.Coordinates{Lat: lat, Lng: lng}
	if !coordinates.Valid() {
		return StopRecord{}, errors.Errorf("coordinates out of range at line %d: %v,%v", lineNum, lat, lng)
	}

	return StopRecord{Name: name, Coordinates: coordinates}, nil
}

func parseDistance(record []string, lineNum int) (DistanceRecord, error) {
	from := strings.TrimSpace(record[0])
	to := strings.TrimSpace(record[1])
	if from == "" || to == "" {
		return DistanceRecord{}, errors.Errorf("empty stop name at line %d", lineNum)
	}

	meters, err := strconv.Atoi(strings.TrimSpace(record[2]))
	if err != nil {
		return DistanceRecord{}, errors.Wrapf(err, "invalid meters at line %d", lineNum)
	}

	if meters < 0 {
		return DistanceRecord{}, errors.Errorf("negative distance at line %d: %d", lineNum, meters)
	}

	return DistanceRecord{From: from, To: to, Meters: meters}, nil
}

func parseBus(record []string, lineNum int) (BusRecord, error) {
	name := strings.TrimSpace(record[0])
	if name == "" {
		return BusRecord{}, errors.Errorf("empty bus name at line %d", lineNum)
	}

	isRoundtrip, err := strconv.ParseBool(strings.TrimSpace(record[1]))
	if err != nil {
		return BusRecord{}, errors.Wrapf(err, "invalid is_roundtrip at line %d", lineNum)
	}

	stops := make([]string, 0, len(record)-2)
	for _, field := range record[2:] {
		stop := strings.TrimSpace(field)
		if stop == "" {
			continue
		}

		stops = append(stops, stop)
	}

	return BusRecord{Name: name, Stops: stops, IsRoundtrip: isRoundtrip}, nil
}
