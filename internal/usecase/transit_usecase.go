package usecase

import (
	"context"
	"time"

	"transit/internal/infra/loader"
	"transit/internal/routing"

	"github.com/paulmach/orb/geojson"
)

// BusStat represents route statistics of a bus
type BusStat struct {
	Name            string  `json:"name"`
	RouteLength     int     `json:"route_length"`      // Road meters over the full traversal
	StopCount       int     `json:"stop_count"`        // Stops visited, repeats included
	UniqueStopCount int     `json:"unique_stop_count"` // Distinct stops
	Curvature       float64 `json:"curvature"`         // Road length divided by geographic length
	GeoDistance     float64 `json:"geo_distance"`      // Geographic meters over the full traversal
}

// StopStat represents the buses serving a stop
type StopStat struct {
	Name  string   `json:"name"`
	Buses []string `json:"buses"` // Sorted by name
}

// RouteResult represents the fastest itinerary between two stops
type RouteResult struct {
	From        string         `json:"from"`
	To          string         `json:"to"`
	Items       []routing.Item `json:"items"`
	TotalTime   float64        `json:"total_time"` // Minutes
	IsReachable bool           `json:"is_reachable"`
}

// CatalogueInfo describes the currently loaded catalogue
type CatalogueInfo struct {
	Stops       int              `json:"stops"`
	Buses       int              `json:"buses"`
	Vertices    int              `json:"vertices"`
	Edges       int              `json:"edges"`
	Settings    routing.Settings `json:"routing_settings"`
	LoadedAt    time.Time        `json:"loaded_at"`
	BuildTimeMs int64            `json:"build_time_ms"`
}

// TransitUsecase defines the interface for transit catalogue queries
type TransitUsecase interface {
	// Load builds a catalogue and router from the dataset and replaces the current ones
	Load(ctx context.Context, dataset *loader.Dataset, settings routing.Settings) (*CatalogueInfo, error)

	// GetBusStat returns route statistics of the named bus
	GetBusStat(ctx context.Context, name string) (*BusStat, error)

	// GetStopStat returns the buses serving the named stop
	GetStopStat(ctx context.Context, name string) (*StopStat, error)

	// FindRoute returns the fastest itinerary between two named stops.
	// Unconnected stops yield a result with IsReachable false.
	FindRoute(ctx context.Context, from, to string) (*RouteResult, error)

	// GetMap exports served stops and buses as GeoJSON
	GetMap(ctx context.Context) (*geojson.FeatureCollection, error)

	// Info describes the loaded catalogue
	Info(ctx context.Context) (*CatalogueInfo, error)

	// IsReady returns whether a catalogue is loaded and ready for queries
	IsReady() bool
}
