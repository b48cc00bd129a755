// Package routing builds a routing graph from a transit catalogue and
// answers fastest-route queries between stops.
package routing

import (
	"log/slog"
	"time"

	"transit/internal/catalogue"
	"transit/internal/domain/entity"
	"transit/internal/routing/graph"

	"github.com/pkg/errors"
)

// ErrUnknownStop is returned when a route query names a stop the router has no vertex for
var ErrUnknownStop = errors.New("stop is not part of the routing graph")

// ErrInvalidSettings is returned when routing settings cannot produce travel times
var ErrInvalidSettings = errors.New("invalid routing settings")

// Settings holds the fixed cost model of the router
type Settings struct {
	BusWaitTime int     `json:"bus_wait_time" validate:"gte=0,lte=1000"` // Minutes waited per boarding
	BusVelocity float64 `json:"bus_velocity" validate:"gt=0,lte=1000"`   // Bus speed in km/h
}

// DefaultSettings returns a typical urban cost model
func DefaultSettings() Settings {
	return Settings{
		BusWaitTime: 6,
		BusVelocity: 40,
	}
}

// Validate checks that the settings can be used to build a router
func (s Settings) Validate() error {
	if s.BusVelocity <= 0 {
		return errors.Wrapf(ErrInvalidSettings, "bus velocity must be positive, got %v", s.BusVelocity)
	}

	if s.BusWaitTime < 0 {
		return errors.Wrapf(ErrInvalidSettings, "bus wait time must not be negative, got %d", s.BusWaitTime)
	}

	return nil
}

// ItemType tells a wait item from a ride item in an itinerary
type ItemType string

const (
	// ItemWait is waiting for a bus at a stop
	ItemWait ItemType = "Wait"
	// ItemBus is riding a bus for a number of spans
	ItemBus ItemType = "Bus"
)

// Item is one step of an itinerary
type Item struct {
	Type      ItemType `json:"type"`
	StopName  string   `json:"stop_name,omitempty"`  // Wait items only
	Bus       string   `json:"bus,omitempty"`        // Bus items only
	SpanCount int      `json:"span_count,omitempty"` // Bus items only
	Time      float64  `json:"time"`                 // Minutes
}

// Itinerary is the answer to a route query
type Itinerary struct {
	Items       []Item  `json:"items"`
	TotalTime   float64 `json:"total_time"` // Minutes
	IsReachable bool    `json:"is_reachable"`
}

// Stats summarises the size of the built routing graph
type Stats struct {
	Vertices  int
	Edges     int
	BuildTime time.Duration
}

// Router answers fastest-route queries over an immutable graph built from a
// catalogue. The catalogue must not be modified while the router is in use;
// rebuild the router after any change. Queries are safe for concurrent use.
type Router struct {
	catalogue *catalogue.Catalogue
	settings  Settings
	graph     *graph.Graph[RideWeight]
	search    *graph.Router[RideWeight]
	stats     Stats
	logger    *slog.Logger
}

// New builds a router over every stop and bus currently in the catalogue
func New(cat *catalogue.Catalogue, settings Settings, logger *slog.Logger) (*Router, error) {
	if cat == nil {
		return nil, errors.New("catalogue is required")
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}

	if logger == nil {
		logger = slog.Default()
	}

	started := time.Now()

	r := &Router{
		catalogue: cat,
		settings:  settings,
		logger:    logger,
	}
	r.graph = r.buildGraph()
	r.search = graph.NewRouter(r.graph)
	r.stats = Stats{
		Vertices:  r.graph.VertexCount(),
		Edges:     r.graph.EdgeCount(),
		BuildTime: time.Since(started),
	}

	r.logger.Info("Transport router built",
		"vertices", r.stats.Vertices,
		"edges", r.stats.Edges,
		"buses", cat.BusCount(),
		"build_time", r.stats.BuildTime,
	)

	return r, nil
}

// Settings returns the cost model the router was built with
func (r *Router) Settings() Settings {
	return r.settings
}

// Stats returns the size of the routing graph
func (r *Router) Stats() Stats {
	return r.stats
}

// Vertex ids equal catalogue stop ids: both are dense and follow the
// catalogue's stop registration order.
func (r *Router) buildGraph() *graph.Graph[RideWeight] {
	g := graph.New[RideWeight](r.catalogue.StopCount())

	for _, bus := range r.catalogue.Buses() {
		r.addRideEdges(g, bus.ID, bus.Stops)

		if !bus.IsRoundtrip {
			r.addRideEdges(g, bus.ID, bus.Reversed())
		}
	}

	return g
}

// addRideEdges adds an edge for every ride along stops that starts at stop i
// and ends at a later stop j without changing buses.
func (r *Router) addRideEdges(g *graph.Graph[RideWeight], bus entity.BusID, stops []entity.StopID) {
	travelTimes := r.prefixTravelTimes(stops)

	for i := 0; i < len(stops); i++ {
		for j := i + 1; j < len(stops); j++ {
			g.AddEdge(graph.Edge[RideWeight]{
				From: graph.VertexID(stops[i]),
				To:   graph.VertexID(stops[j]),
				Weight: RideWeight{
					SpansTime:    travelTimes[j] - travelTimes[i],
					WaitTime:     r.settings.BusWaitTime,
					SpanCount:    j - i,
					BoardingStop: stops[i],
					Bus:          bus,
				},
			})
		}
	}
}

// prefixTravelTimes returns, per stop, the riding minutes from the first stop
func (r *Router) prefixTravelTimes(stops []entity.StopID) []float64 {
	travelTimes := make([]float64, len(stops))

	for i := 1; i < len(stops); i++ {
		meters := r.catalogue.DistanceBetween(stops[i-1], stops[i])
		travelTimes[i] = travelTimes[i-1] + r.travelMinutes(float64(meters))
	}

	return travelTimes
}

// travelMinutes converts meters to riding minutes. The speed is converted
// to meters per minute as velocity*1000/60 in that order so that whole km/h
// values divisible by 60 stay exact.
func (r *Router) travelMinutes(meters float64) float64 {
	return meters / (r.settings.BusVelocity * 1000 / 60)
}

// vertexOf resolves a stop name to the vertex it was assigned at build time
func (r *Router) vertexOf(name string) (graph.VertexID, error) {
	stopID, ok := r.catalogue.FindStop(name)
	if !ok || !r.graph.HasVertex(graph.VertexID(stopID)) {
		return 0, errors.Wrapf(ErrUnknownStop, "stop %q", name)
	}

	return graph.VertexID(stopID), nil
}

// GetRoute finds the fastest itinerary between two named stops. Both stops
// must have existed when the router was built. An itinerary with
// IsReachable false means no bus connects the stops.
func (r *Router) GetRoute(from, to string) (*Itinerary, error) {
	fromVertex, err := r.vertexOf(from)
	if err != nil {
		return nil, err
	}

	toVertex, err := r.vertexOf(to)
	if err != nil {
		return nil, err
	}

	route, ok := r.search.BuildRoute(fromVertex, toVertex)
	if !ok {
		return &Itinerary{Items: []Item{}, IsReachable: false}, nil
	}

	return r.buildItinerary(route), nil
}

func (r *Router) buildItinerary(route graph.RouteInfo[RideWeight]) *Itinerary {
	items := make([]Item, 0, len(route.Edges)*2)

	for _, edgeID := range route.Edges {
		ride := r.graph.Edge(edgeID).Weight

		items = append(items,
			Item{
				Type:     ItemWait,
				StopName: r.catalogue.Stop(ride.BoardingStop).Name,
				Time:     float64(ride.WaitTime),
			},
			Item{
				Type:      ItemBus,
				Bus:       r.catalogue.Bus(ride.Bus).Name,
				SpanCount: ride.SpanCount,
				Time:      ride.SpansTime,
			},
		)
	}

	return &Itinerary{
		Items:       items,
		TotalTime:   route.Weight.Total(),
		IsReachable: true,
	}
}
