// Package catalogue stores transit stops, buses and road distances and
// computes route and stop statistics over them.
//
// Stops and buses live in append-only slices and are referenced by their
// index (entity.StopID, entity.BusID), so references handed out by the
// catalogue stay valid for its whole lifetime. A Catalogue is not safe for
// concurrent mutation; callers that need it must guard it externally.
package catalogue

import (
	"sort"

	"transit/internal/domain/entity"
	"transit/internal/geo"

	"github.com/pkg/errors"
)

// ErrUnknownStop is returned when an operation references a stop that was never registered
var ErrUnknownStop = errors.New("unknown stop")

// ErrUnknownBus is returned when an operation references a bus that was never registered
var ErrUnknownBus = errors.New("unknown bus")

type stopPair struct {
	from entity.StopID
	to   entity.StopID
}

// Catalogue owns all stops and buses of a transit network
type Catalogue struct {
	stops []entity.Stop
	buses []entity.Bus

	stopsByName map[string]entity.StopID
	busesByName map[string]entity.BusID

	// stopBuses[stopID] is the set of buses passing through that stop
	stopBuses []map[entity.BusID]struct{}

	distances map[stopPair]int
}

// New creates an empty catalogue
func New() *Catalogue {
	return &Catalogue{
		stopsByName: make(map[string]entity.StopID),
		busesByName: make(map[string]entity.BusID),
		distances:   make(map[stopPair]int),
	}
}

// AddStop registers a stop or overwrites the coordinates of an existing one
func (c *Catalogue) AddStop(name string, coordinates geo.Coordinates) entity.StopID {
	if id, ok := c.stopsByName[name]; ok {
		c.stops[id].Coordinates = coordinates

		return id
	}

	return c.appendStop(name, coordinates)
}

// ReserveStop returns the id of the named stop, registering it with
// placeholder (0,0) coordinates when it does not exist yet. A later AddStop
// with the same name supplies the real coordinates.
func (c *Catalogue) ReserveStop(name string) entity.StopID {
	if id, ok := c.stopsByName[name]; ok {
		return id
	}

	return c.appendStop(name, geo.Coordinates{})
}

func (c *Catalogue) appendStop(name string, coordinates geo.Coordinates) entity.StopID {
	id := entity.StopID(len(c.stops))
	c.stops = append(c.stops, entity.Stop{
		ID:          id,
		Name:        name,
		Coordinates: coordinates,
	})
	c.stopsByName[name] = id
	c.stopBuses = append(c.stopBuses, make(map[entity.BusID]struct{}))

	return id
}

// AddBus registers a bus over already registered stops. Adding a bus whose
// name exists replaces its route.
func (c *Catalogue) AddBus(name string, route []string, isRoundtrip bool) (entity.BusID, error) {
	stops := make([]entity.StopID, 0, len(route))
	for _, stopName := range route {
		id, ok := c.stopsByName[stopName]
		if !ok {
			return entity.NoBus, errors.Wrapf(ErrUnknownStop, "bus %q references stop %q", name, stopName)
		}
		stops = append(stops, id)
	}

	busID, exists := c.busesByName[name]
	if exists {
		c.unlinkBus(busID)
		c.buses[busID].Stops = stops
		c.buses[busID].IsRoundtrip = isRoundtrip
	} else {
		busID = entity.BusID(len(c.buses))
		c.buses = append(c.buses, entity.Bus{
			ID:          busID,
			Name:        name,
			Stops:       stops,
			IsRoundtrip: isRoundtrip,
		})
		c.busesByName[name] = busID
	}

	for _, stopID := range stops {
		c.stopBuses[stopID][busID] = struct{}{}
	}

	return busID, nil
}

func (c *Catalogue) unlinkBus(busID entity.BusID) {
	for _, stopID := range c.buses[busID].Stops {
		delete(c.stopBuses[stopID], busID)
	}
}

// SetRoadDistance records the road distance in meters for the given direction only.
// A pair that already has a distance keeps it.
func (c *Catalogue) SetRoadDistance(from, to string, meters int) error {
	fromID, ok := c.stopsByName[from]
	if !ok {
		return errors.Wrapf(ErrUnknownStop, "road distance from %q", from)
	}

	toID, ok := c.stopsByName[to]
	if !ok {
		return errors.Wrapf(ErrUnknownStop, "road distance to %q", to)
	}

	if meters < 0 {
		return errors.Errorf("road distance from %q to %q must not be negative, got %d", from, to, meters)
	}

	key := stopPair{from: fromID, to: toID}
	if _, exists := c.distances[key]; !exists {
		c.distances[key] = meters
	}

	return nil
}

// FindStop looks a stop up by its exact name
func (c *Catalogue) FindStop(name string) (entity.StopID, bool) {
	id, ok := c.stopsByName[name]

	return id, ok
}

// FindBus looks a bus up by its exact name
func (c *Catalogue) FindBus(name string) (entity.BusID, bool) {
	id, ok := c.busesByName[name]

	return id, ok
}

// Stop returns the stop with the given id. The id must come from this catalogue.
func (c *Catalogue) Stop(id entity.StopID) entity.Stop {
	return c.stops[id]
}

// Bus returns the bus with the given id. The id must come from this catalogue.
func (c *Catalogue) Bus(id entity.BusID) entity.Bus {
	return c.buses[id]
}

// StopCount returns the number of registered stops
func (c *Catalogue) StopCount() int {
	return len(c.stops)
}

// BusCount returns the number of registered buses
func (c *Catalogue) BusCount() int {
	return len(c.buses)
}

// Stops returns all stops in registration order
func (c *Catalogue) Stops() []entity.Stop {
	return append([]entity.Stop(nil), c.stops...)
}

// Buses returns all buses in registration order
func (c *Catalogue) Buses() []entity.Bus {
	return append([]entity.Bus(nil), c.buses...)
}

// StopsByName returns all stops sorted by name
func (c *Catalogue) StopsByName() []entity.Stop {
	stops := c.Stops()
	sort.Slice(stops, func(i, j int) bool { return stops[i].Name < stops[j].Name })

	return stops
}

// BusesByName returns all buses sorted by name
func (c *Catalogue) BusesByName() []entity.Bus {
	buses := c.Buses()
	sort.Slice(buses, func(i, j int) bool { return buses[i].Name < buses[j].Name })

	return buses
}

// GetRoadDistance returns the recorded road distance between two named stops,
// trying the exact direction first and the reverse direction second.
func (c *Catalogue) GetRoadDistance(from, to string) (int, bool) {
	fromID, ok := c.stopsByName[from]
	if !ok {
		return 0, false
	}

	toID, ok := c.stopsByName[to]
	if !ok {
		return 0, false
	}

	return c.RoadDistanceBetween(fromID, toID)
}

// RoadDistanceBetween is GetRoadDistance for stop ids
func (c *Catalogue) RoadDistanceBetween(from, to entity.StopID) (int, bool) {
	if meters, ok := c.distances[stopPair{from: from, to: to}]; ok {
		return meters, true
	}

	meters, ok := c.distances[stopPair{from: to, to: from}]

	return meters, ok
}

// GeoDistanceBetween returns the great-circle distance between two stops in meters
func (c *Catalogue) GeoDistanceBetween(from, to entity.StopID) float64 {
	return geo.Distance(c.stops[from].Coordinates, c.stops[to].Coordinates)
}

// DistanceBetween returns the road distance between two stops, falling back
// to the truncated geographic distance when no road distance was recorded.
func (c *Catalogue) DistanceBetween(from, to entity.StopID) int {
	if meters, ok := c.RoadDistanceBetween(from, to); ok {
		return meters
	}

	return geo.TruncatedDistance(c.stops[from].Coordinates, c.stops[to].Coordinates)
}

// GetBusInfo computes route statistics for the named bus
func (c *Catalogue) GetBusInfo(name string) (entity.BusStat, bool) {
	busID, ok := c.busesByName[name]
	if !ok {
		return entity.BusStat{}, false
	}

	bus := c.buses[busID]
	if len(bus.Stops) == 0 {
		return entity.BusStat{}, true
	}

	traversal := bus.Traversal()
	uniqueStops := make(map[entity.StopID]struct{}, len(bus.Stops))
	uniqueStops[traversal[0]] = struct{}{}

	var stat entity.BusStat
	for i := 1; i < len(traversal); i++ {
		prev, curr := traversal[i-1], traversal[i]
		stat.GeoDistance += c.GeoDistanceBetween(prev, curr)
		stat.RoadDistance += c.DistanceBetween(prev, curr)
		uniqueStops[curr] = struct{}{}
	}

	stat.StopCount = len(traversal)
	stat.UniqueStops = len(uniqueStops)

	return stat, true
}

// GetStopStat returns the names of the buses serving the named stop, sorted
// by name. The slice is empty, not nil, for a registered stop without buses.
func (c *Catalogue) GetStopStat(name string) ([]string, bool) {
	stopID, ok := c.stopsByName[name]
	if !ok {
		return nil, false
	}

	buses := make([]string, 0, len(c.stopBuses[stopID]))
	for busID := range c.stopBuses[stopID] {
		buses = append(buses, c.buses[busID].Name)
	}
	sort.Strings(buses)

	return buses, true
}

// HasBuses reports whether at least one bus passes through the stop
func (c *Catalogue) HasBuses(id entity.StopID) bool {
	return len(c.stopBuses[id]) > 0
}
