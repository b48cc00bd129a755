// Package batch answers a whole request document in one pass: it loads the
// base requests, then writes one response per stat request in request order.
package batch

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"

	domainerrors "transit/internal/domain/errors"
	"transit/internal/infra/loader"
	"transit/internal/routing"
	"transit/internal/usecase"

	"github.com/paulmach/orb/geojson"
	"github.com/pkg/errors"
)

// NotFoundMessage is the error_message of a response to an unanswerable query
const NotFoundMessage = "not found"

// ErrorResponse answers a query naming an unknown bus or stop, or an unreachable route
type ErrorResponse struct {
	RequestID    int    `json:"request_id"`
	ErrorMessage string `json:"error_message"`
}

// BusResponse answers a Bus query
type BusResponse struct {
	RequestID       int     `json:"request_id"`
	Curvature       float64 `json:"curvature"`
	RouteLength     int     `json:"route_length"`
	StopCount       int     `json:"stop_count"`
	UniqueStopCount int     `json:"unique_stop_count"`
}

// StopResponse answers a Stop query
type StopResponse struct {
	RequestID int      `json:"request_id"`
	Buses     []string `json:"buses"`
}

// RouteResponse answers a Route query
type RouteResponse struct {
	RequestID int            `json:"request_id"`
	Items     []routing.Item `json:"items"`
	TotalTime float64        `json:"total_time"`
}

// MapResponse answers a Map query
type MapResponse struct {
	RequestID int                        `json:"request_id"`
	Map       *geojson.FeatureCollection `json:"map"`
}

// Options controls output formatting
type Options struct {
	// Indent pretty-prints the response array with the given indent
	Indent string
}

// Processor answers request documents against a transit service
type Processor struct {
	transit usecase.TransitUsecase
	logger  *slog.Logger
	opts    Options
}

// NewProcessor creates a batch processor
func NewProcessor(transit usecase.TransitUsecase, logger *slog.Logger, opts Options) *Processor {
	if logger == nil {
		logger = slog.Default()
	}

	return &Processor{
		transit: transit,
		logger:  logger,
		opts:    opts,
	}
}

// Process decodes a request document from r and writes the JSON array of
// responses to w
func (p *Processor) Process(ctx context.Context, r io.Reader, w io.Writer) error {
	doc, err := loader.DecodeDocument(r)
	if err != nil {
		return err
	}

	responses, err := p.ProcessDocument(ctx, doc)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	if p.opts.Indent != "" {
		encoder.SetIndent("", p.opts.Indent)
	}

	if err := encoder.Encode(responses); err != nil {
		return errors.Wrap(err, "failed to write responses")
	}

	return nil
}

// ProcessDocument loads the document's network and answers its stat requests
func (p *Processor) ProcessDocument(ctx context.Context, doc *loader.Document) ([]any, error) {
	info, err := p.transit.Load(ctx, doc.Dataset(), doc.Settings())
	if err != nil {
		return nil, errors.Wrap(err, "failed to load base requests")
	}

	p.logger.Debug("Processing stat requests",
		"requests", len(doc.StatRequests),
		"stops", info.Stops,
		"buses", info.Buses,
	)

	responses := make([]any, 0, len(doc.StatRequests))
	for _, req := range doc.StatRequests {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, "batch processing canceled")
		}

		response, err := p.answer(ctx, req)
		if err != nil {
			return nil, errors.Wrapf(err, "request %d", req.ID)
		}

		responses = append(responses, response)
	}

	return responses, nil
}

func (p *Processor) answer(ctx context.Context, req loader.StatRequest) (any, error) {
	switch req.Type {
	case loader.StatRequestBus:
		stat, err := p.transit.GetBusStat(ctx, req.Name)
		if err != nil {
			return notFoundOr(req.ID, err)
		}

		return BusResponse{
			RequestID:       req.ID,
			Curvature:       stat.Curvature,
			RouteLength:     stat.RouteLength,
			StopCount:       stat.StopCount,
			UniqueStopCount: stat.UniqueStopCount,
		}, nil
	case loader.StatRequestStop:
		stat, err := p.transit.GetStopStat(ctx, req.Name)
		if err != nil {
			return notFoundOr(req.ID, err)
		}

		return StopResponse{RequestID: req.ID, Buses: stat.Buses}, nil
	case loader.StatRequestRoute:
		route, err := p.transit.FindRoute(ctx, req.From, req.To)
		if err != nil {
			return notFoundOr(req.ID, err)
		}

		if !route.IsReachable {
			return ErrorResponse{RequestID: req.ID, ErrorMessage: NotFoundMessage}, nil
		}

		return RouteResponse{RequestID: req.ID, Items: route.Items, TotalTime: route.TotalTime}, nil
	case loader.StatRequestMap:
		fc, err := p.transit.GetMap(ctx)
		if err != nil {
			return nil, err
		}

		return MapResponse{RequestID: req.ID, Map: fc}, nil
	default:
		return nil, errors.Errorf("unsupported request type %q", req.Type)
	}
}

// notFoundOr turns lookup misses into a not found response and passes every
// other error through
func notFoundOr(requestID int, err error) (any, error) {
	if errors.Is(err, domainerrors.ErrBusNotFound) || errors.Is(err, domainerrors.ErrStopNotFound) {
		return ErrorResponse{RequestID: requestID, ErrorMessage: NotFoundMessage}, nil
	}

	return nil, err
}
