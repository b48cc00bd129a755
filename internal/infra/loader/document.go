package loader

import (
	"encoding/json"
	"io"
	"sort"

	"transit/internal/geo"
	"transit/internal/routing"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// Base request types
const (
	BaseRequestStop = "Stop"
	BaseRequestBus  = "Bus"
)

// Stat request types
const (
	StatRequestBus   = "Bus"
	StatRequestStop  = "Stop"
	StatRequestRoute = "Route"
	StatRequestMap   = "Map"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Document is a transit request document: the network definition followed by
// the queries to answer against it
type Document struct {
	BaseRequests    []BaseRequest     `json:"base_requests" validate:"dive"`
	RoutingSettings *routing.Settings `json:"routing_settings,omitempty" validate:"omitempty"`
	RenderSettings  json.RawMessage   `json:"render_settings,omitempty"`
	StatRequests    []StatRequest     `json:"stat_requests" validate:"dive"`
}

// BaseRequest defines a stop or a bus
type BaseRequest struct {
	Type string `json:"type" validate:"required,oneof=Stop Bus"`
	Name string `json:"name" validate:"required"`

	// Stop fields
	Latitude      float64        `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude     float64        `json:"longitude" validate:"gte=-180,lte=180"`
	RoadDistances map[string]int `json:"road_distances,omitempty" validate:"dive,keys,required,endkeys,gte=0"`

	// Bus fields
	Stops       []string `json:"stops,omitempty" validate:"dive,required"`
	IsRoundtrip bool     `json:"is_roundtrip,omitempty"`
}

// StatRequest is a single query against the loaded network
type StatRequest struct {
	ID   int    `json:"id"`
	Type string `json:"type" validate:"required,oneof=Bus Stop Route Map"`
	Name string `json:"name,omitempty" validate:"required_if=Type Bus,required_if=Type Stop"`
	From string `json:"from,omitempty" validate:"required_if=Type Route"`
	To   string `json:"to,omitempty" validate:"required_if=Type Route"`
}

// DecodeDocument parses and validates a request document
func DecodeDocument(r io.Reader) (*Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(err, "failed to parse request document")
	}

	if err := doc.Validate(); err != nil {
		return nil, err
	}

	return &doc, nil
}

// Validate checks field constraints of the document
func (d *Document) Validate() error {
	if err := validate.Struct(d); err != nil {
		return errors.Wrap(err, "invalid request document")
	}

	if d.RoutingSettings != nil {
		if err := d.RoutingSettings.Validate(); err != nil {
			return err
		}
	}

	return nil
}

// Settings returns the document's routing settings, or the defaults when it has none
func (d *Document) Settings() routing.Settings {
	if d.RoutingSettings == nil {
		return routing.DefaultSettings()
	}

	return *d.RoutingSettings
}

// Dataset extracts the network definition from the base requests. Road
// distances of one stop are emitted in destination name order so that
// ingestion does not depend on map iteration order.
func (d *Document) Dataset() *Dataset {
	dataset := &Dataset{}

	for _, req := range d.BaseRequests {
		switch req.Type {
		case BaseRequestStop:
			dataset.Stops = append(dataset.Stops, StopRecord{
				Name:        req.Name,
				Coordinates: geo.Coordinates{Lat: req.Latitude, Lng: req.Longitude},
			})

			neighbours := make([]string, 0, len(req.RoadDistances))
			for name := range req.RoadDistances {
				neighbours = append(neighbours, name)
			}
			sort.Strings(neighbours)

			for _, name := range neighbours {
				dataset.Distances = append(dataset.Distances, DistanceRecord{
					From:   req.Name,
					To:     name,
					Meters: req.RoadDistances[name],
				})
			}
		case BaseRequestBus:
			dataset.Buses = append(dataset.Buses, BusRecord{
				Name:        req.Name,
				Stops:       append([]string(nil), req.Stops...),
				IsRoundtrip: req.IsRoundtrip,
			})
		}
	}

	return dataset
}
