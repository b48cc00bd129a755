package impl

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"transit/config"
	"transit/internal/catalogue"
	domainerrors "transit/internal/domain/errors"
	"transit/internal/infra/loader"
	"transit/internal/routing"
	"transit/internal/usecase"

	"github.com/paulmach/orb/geojson"
	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// TransitServiceParams defines the dependencies of the transit service
type TransitServiceParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger `optional:"true"`
}

// network is one immutable catalogue with the router built over it
type network struct {
	catalogue *catalogue.Catalogue
	router    *routing.Router
	info      usecase.CatalogueInfo
}

type transitService struct {
	implicitStops bool

	mu      sync.RWMutex
	current *network

	// routes caches *usecase.RouteResult by stop pair; nil disables caching
	routes *cache.Cache

	logger *slog.Logger
}

// NewTransitService creates a transit service with no catalogue loaded
func NewTransitService(params TransitServiceParams) usecase.TransitUsecase {
	logger := params.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &transitService{
		implicitStops: params.Config.Catalogue.ImplicitStops,
		logger:        logger,
	}

	if params.Config.Cache.RouteTTL > 0 {
		s.routes = cache.New(params.Config.Cache.RouteTTL, params.Config.Cache.CleanupInterval)
	}

	return s
}

// Load builds a fresh network off-lock, then swaps it in so that queries
// never observe a half-built catalogue
func (s *transitService) Load(ctx context.Context, dataset *loader.Dataset, settings routing.Settings) (*usecase.CatalogueInfo, error) {
	if dataset == nil {
		return nil, errors.WithStack(domainerrors.ErrValidationFailed.WithDetails("dataset is required"))
	}

	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "catalogue load canceled")
	}

	started := time.Now()

	cat := catalogue.New()
	if err := loader.Populate(cat, dataset, loader.PopulateOptions{
		ImplicitStops: s.implicitStops,
		Logger:        s.logger,
	}); err != nil {
		return nil, errors.WithStack(domainerrors.ErrCatalogueLoadFailed.WithDetails(err.Error()))
	}

	router, err := routing.New(cat, settings, s.logger)
	if err != nil {
		return nil, errors.WithStack(domainerrors.ErrCatalogueLoadFailed.WithDetails(err.Error()))
	}

	stats := router.Stats()
	next := &network{
		catalogue: cat,
		router:    router,
		info: usecase.CatalogueInfo{
			Stops:       cat.StopCount(),
			Buses:       cat.BusCount(),
			Vertices:    stats.Vertices,
			Edges:       stats.Edges,
			Settings:    settings,
			LoadedAt:    time.Now(),
			BuildTimeMs: time.Since(started).Milliseconds(),
		},
	}

	s.mu.Lock()
	s.current = next
	if s.routes != nil {
		s.routes.Flush()
	}
	s.mu.Unlock()

	s.logger.Info("Catalogue loaded",
		"stops", next.info.Stops,
		"buses", next.info.Buses,
		"edges", next.info.Edges,
		"build_time_ms", next.info.BuildTimeMs,
	)

	info := next.info

	return &info, nil
}

func (s *transitService) snapshot() (*network, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return nil, errors.WithStack(domainerrors.ErrCatalogueNotReady)
	}

	return s.current, nil
}

// GetBusStat returns route statistics of the named bus
func (s *transitService) GetBusStat(_ context.Context, name string) (*usecase.BusStat, error) {
	net, err := s.snapshot()
	if err != nil {
		return nil, err
	}

	stat, ok := net.catalogue.GetBusInfo(name)
	if !ok {
		return nil, errors.WithStack(domainerrors.ErrBusNotFound.WithDetails("bus " + name))
	}

	return &usecase.BusStat{
		Name:            name,
		RouteLength:     stat.RoadDistance,
		StopCount:       stat.StopCount,
		UniqueStopCount: stat.UniqueStops,
		Curvature:       stat.Curvature(),
		GeoDistance:     stat.GeoDistance,
	}, nil
}

// GetStopStat returns the buses serving the named stop
func (s *transitService) GetStopStat(_ context.Context, name string) (*usecase.StopStat, error) {
	net, err := s.snapshot()
	if err != nil {
		return nil, err
	}

	buses, ok := net.catalogue.GetStopStat(name)
	if !ok {
		return nil, errors.WithStack(domainerrors.ErrStopNotFound.WithDetails("stop " + name))
	}

	return &usecase.StopStat{Name: name, Buses: buses}, nil
}

// FindRoute returns the fastest itinerary between two named stops. Cached
// results are shared between callers and must not be modified.
func (s *transitService) FindRoute(_ context.Context, from, to string) (*usecase.RouteResult, error) {
	net, err := s.snapshot()
	if err != nil {
		return nil, err
	}

	key := routeKey(from, to)
	if s.routes != nil {
		if cached, found := s.routes.Get(key); found {
			return cached.(*usecase.RouteResult), nil
		}
	}

	itinerary, err := net.router.GetRoute(from, to)
	if errors.Is(err, routing.ErrUnknownStop) {
		return nil, errors.WithStack(domainerrors.ErrStopNotFound.WithDetails(err.Error()))
	}
	if err != nil {
		return nil, errors.WithStack(domainerrors.ErrInternalError.WithDetails(err.Error()))
	}

	result := &usecase.RouteResult{
		From:        from,
		To:          to,
		Items:       itinerary.Items,
		TotalTime:   itinerary.TotalTime,
		IsReachable: itinerary.IsReachable,
	}

	// A Load between snapshot and here flushed the cache; do not refill it
	// with a route computed on the previous network
	if s.routes != nil {
		s.mu.RLock()
		if s.current == net {
			s.routes.SetDefault(key, result)
		}
		s.mu.RUnlock()
	}

	return result, nil
}

func routeKey(from, to string) string {
	return from + "\x00" + to
}

// GetMap exports served stops and buses as GeoJSON
func (s *transitService) GetMap(_ context.Context) (*geojson.FeatureCollection, error) {
	net, err := s.snapshot()
	if err != nil {
		return nil, err
	}

	return net.catalogue.GeoJSON(), nil
}

// Info describes the loaded catalogue
func (s *transitService) Info(_ context.Context) (*usecase.CatalogueInfo, error) {
	net, err := s.snapshot()
	if err != nil {
		return nil, err
	}

	info := net.info

	return &info, nil
}

// IsReady returns whether a catalogue is loaded
func (s *transitService) IsReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.current != nil
}
