package batch

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"transit/config"
	"transit/internal/usecase/impl"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDocument = `{
  "base_requests": [
    {"type": "Bus", "name": "1", "stops": ["A", "B", "C"], "is_roundtrip": false},
    {"type": "Stop", "name": "A", "latitude": 55.0, "longitude": 37.0, "road_distances": {"B": 1000}},
    {"type": "Stop", "name": "B", "latitude": 55.0, "longitude": 37.01, "road_distances": {"C": 2000}},
    {"type": "Stop", "name": "C", "latitude": 55.0, "longitude": 37.02},
    {"type": "Stop", "name": "D", "latitude": 56.0, "longitude": 38.0}
  ],
  "routing_settings": {"bus_wait_time": 2, "bus_velocity": 60},
  "stat_requests": [
    {"id": 1, "type": "Bus", "name": "1"},
    {"id": 2, "type": "Bus", "name": "999"},
    {"id": 3, "type": "Stop", "name": "B"},
    {"id": 4, "type": "Stop", "name": "D"},
    {"id": 5, "type": "Stop", "name": "Z"},
    {"id": 6, "type": "Route", "from": "A", "to": "C"},
    {"id": 7, "type": "Route", "from": "A", "to": "D"},
    {"id": 8, "type": "Route", "from": "A", "to": "A"},
    {"id": 9, "type": "Route", "from": "A", "to": "Z"},
    {"id": 10, "type": "Map"}
  ]
}`

func newTestProcessor() *Processor {
	service := impl.NewTransitService(impl.TransitServiceParams{Config: config.Default()})

	return NewProcessor(service, nil, Options{})
}

func processDocument(t *testing.T, document string) []json.RawMessage {
	t.Helper()

	var out bytes.Buffer
	err := newTestProcessor().Process(context.Background(), strings.NewReader(document), &out)
	require.NoError(t, err)

	var responses []json.RawMessage
	require.NoError(t, json.Unmarshal(out.Bytes(), &responses))

	return responses
}

func TestProcessor_Process(t *testing.T) {
	responses := processDocument(t, testDocument)
	require.Len(t, responses, 10)

	var bus map[string]any
	require.NoError(t, json.Unmarshal(responses[0], &bus))
	assert.EqualValues(t, 1, bus["request_id"])
	// A B C B A
	assert.EqualValues(t, 5, bus["stop_count"])
	assert.EqualValues(t, 3, bus["unique_stop_count"])
	assert.EqualValues(t, 6000, bus["route_length"])
	assert.Greater(t, bus["curvature"], 1.0)

	assert.JSONEq(t, `{"request_id": 2, "error_message": "not found"}`, string(responses[1]))
	assert.JSONEq(t, `{"request_id": 3, "buses": ["1"]}`, string(responses[2]))
	assert.JSONEq(t, `{"request_id": 4, "buses": []}`, string(responses[3]))
	assert.JSONEq(t, `{"request_id": 5, "error_message": "not found"}`, string(responses[4]))

	assert.JSONEq(t, `{
		"request_id": 6,
		"total_time": 5,
		"items": [
			{"type": "Wait", "stop_name": "A", "time": 2},
			{"type": "Bus", "bus": "1", "span_count": 2, "time": 3}
		]
	}`, string(responses[5]))

	assert.JSONEq(t, `{"request_id": 7, "error_message": "not found"}`, string(responses[6]))
	assert.JSONEq(t, `{"request_id": 8, "total_time": 0, "items": []}`, string(responses[7]))
	assert.JSONEq(t, `{"request_id": 9, "error_message": "not found"}`, string(responses[8]))

	var mapResponse struct {
		RequestID int `json:"request_id"`
		Map       struct {
			Type     string            `json:"type"`
			Features []json.RawMessage `json:"features"`
		} `json:"map"`
	}
	require.NoError(t, json.Unmarshal(responses[9], &mapResponse))
	assert.Equal(t, 10, mapResponse.RequestID)
	assert.Equal(t, "FeatureCollection", mapResponse.Map.Type)
	// One bus and three served stops
	assert.Len(t, mapResponse.Map.Features, 4)
}

func TestProcessor_Process_Indent(t *testing.T) {
	service := impl.NewTransitService(impl.TransitServiceParams{Config: config.Default()})
	processor := NewProcessor(service, nil, Options{Indent: "  "})

	var out bytes.Buffer
	err := processor.Process(context.Background(), strings.NewReader(`{
		"base_requests": [{"type": "Stop", "name": "A"}],
		"stat_requests": [{"id": 1, "type": "Stop", "name": "A"}]
	}`), &out)
	require.NoError(t, err)

	assert.Contains(t, out.String(), "\n  {")
}

func TestProcessor_Process_EmptyDocument(t *testing.T) {
	responses := processDocument(t, `{"base_requests": [], "stat_requests": []}`)

	assert.Empty(t, responses)
}

func TestProcessor_Process_InvalidDocument(t *testing.T) {
	var out bytes.Buffer

	err := newTestProcessor().Process(context.Background(), strings.NewReader(`{"stat_requests": [{"id": 1, "type": "Tram"}]}`), &out)
	assert.Error(t, err)
	assert.Zero(t, out.Len())
}

func TestProcessor_Process_UnknownStopInBus(t *testing.T) {
	var out bytes.Buffer

	err := newTestProcessor().Process(context.Background(), strings.NewReader(`{
		"base_requests": [{"type": "Bus", "name": "1", "stops": ["Ghost"]}],
		"stat_requests": []
	}`), &out)
	assert.Error(t, err)
}

func TestProcessor_Process_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	err := newTestProcessor().Process(ctx, strings.NewReader(testDocument), &out)
	assert.Error(t, err)
}
