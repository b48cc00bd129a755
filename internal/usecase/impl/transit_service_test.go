package impl

import (
	"context"
	"sync"
	"testing"
	"time"

	"transit/config"
	domainerrors "transit/internal/domain/errors"
	"transit/internal/geo"
	"transit/internal/infra/loader"
	"transit/internal/routing"
	"transit/internal/usecase"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSettings = routing.Settings{BusWaitTime: 6, BusVelocity: 60}

func testDataset() *loader.Dataset {
	return &loader.Dataset{
		Stops: []loader.StopRecord{
			{Name: "Biryulyovo Zapadnoye", Coordinates: geo.Coordinates{Lat: 55.574371, Lng: 37.6517}},
			{Name: "Biryusinka", Coordinates: geo.Coordinates{Lat: 55.581065, Lng: 37.64839}},
			{Name: "Universam", Coordinates: geo.Coordinates{Lat: 55.587655, Lng: 37.645687}},
			{Name: "Prazhskaya", Coordinates: geo.Coordinates{Lat: 55.611678, Lng: 37.603831}},
		},
		Distances: []loader.DistanceRecord{
			{From: "Biryulyovo Zapadnoye", To: "Biryusinka", Meters: 1000},
			{From: "Biryusinka", To: "Universam", Meters: 2000},
			{From: "Universam", To: "Biryulyovo Zapadnoye", Meters: 3000},
		},
		Buses: []loader.BusRecord{
			{Name: "256", Stops: []string{"Biryulyovo Zapadnoye", "Biryusinka", "Universam", "Biryulyovo Zapadnoye"}, IsRoundtrip: true},
		},
	}
}

func newTestService(t *testing.T, mutate func(cfg *config.Config)) usecase.TransitUsecase {
	t.Helper()

	cfg := config.Default()
	if mutate != nil {
		mutate(cfg)
	}

	return NewTransitService(TransitServiceParams{Config: cfg})
}

func newLoadedService(t *testing.T) usecase.TransitUsecase {
	t.Helper()

	service := newTestService(t, nil)
	_, err := service.Load(context.Background(), testDataset(), testSettings)
	require.NoError(t, err)

	return service
}

func TestTransitService_NotReady(t *testing.T) {
	service := newTestService(t, nil)
	ctx := context.Background()

	assert.False(t, service.IsReady())

	_, err := service.GetBusStat(ctx, "256")
	assert.True(t, errors.Is(err, domainerrors.ErrCatalogueNotReady))

	_, err = service.GetStopStat(ctx, "Universam")
	assert.True(t, errors.Is(err, domainerrors.ErrCatalogueNotReady))

	_, err = service.FindRoute(ctx, "Universam", "Biryusinka")
	assert.True(t, errors.Is(err, domainerrors.ErrCatalogueNotReady))

	_, err = service.GetMap(ctx)
	assert.True(t, errors.Is(err, domainerrors.ErrCatalogueNotReady))

	_, err = service.Info(ctx)
	assert.True(t, errors.Is(err, domainerrors.ErrCatalogueNotReady))
}

func TestTransitService_Load(t *testing.T) {
	service := newTestService(t, nil)

	info, err := service.Load(context.Background(), testDataset(), testSettings)
	require.NoError(t, err)

	assert.True(t, service.IsReady())
	assert.Equal(t, 4, info.Stops)
	assert.Equal(t, 1, info.Buses)
	assert.Equal(t, 4, info.Vertices)
	// Four stops on one roundtrip bus: 4*3/2 forward spans
	assert.Equal(t, 6, info.Edges)
	assert.Equal(t, testSettings, info.Settings)
	assert.False(t, info.LoadedAt.IsZero())
}

func TestTransitService_Load_Errors(t *testing.T) {
	ctx := context.Background()

	service := newTestService(t, nil)

	_, err := service.Load(ctx, nil, testSettings)
	assert.True(t, errors.Is(err, domainerrors.ErrValidationFailed))

	broken := testDataset()
	broken.Buses = append(broken.Buses, loader.BusRecord{Name: "x", Stops: []string{"Ghost"}})
	_, err = service.Load(ctx, broken, testSettings)
	assert.True(t, errors.Is(err, domainerrors.ErrCatalogueLoadFailed))

	_, err = service.Load(ctx, testDataset(), routing.Settings{BusVelocity: -1})
	assert.True(t, errors.Is(err, domainerrors.ErrCatalogueLoadFailed))

	// Failed loads leave the service without a catalogue
	assert.False(t, service.IsReady())

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = service.Load(canceled, testDataset(), testSettings)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestTransitService_Load_ImplicitStops(t *testing.T) {
	service := newTestService(t, func(cfg *config.Config) { cfg.Catalogue.ImplicitStops = true })

	dataset := testDataset()
	dataset.Buses = append(dataset.Buses, loader.BusRecord{Name: "x", Stops: []string{"Universam", "Ghost"}, IsRoundtrip: true})

	info, err := service.Load(context.Background(), dataset, testSettings)
	require.NoError(t, err)
	assert.Equal(t, 5, info.Stops)
}

func TestTransitService_GetBusStat(t *testing.T) {
	service := newLoadedService(t)

	stat, err := service.GetBusStat(context.Background(), "256")
	require.NoError(t, err)

	assert.Equal(t, "256", stat.Name)
	assert.Equal(t, 4, stat.StopCount)
	assert.Equal(t, 3, stat.UniqueStopCount)
	assert.Equal(t, 6000, stat.RouteLength)
	assert.InDelta(t, float64(stat.RouteLength)/stat.GeoDistance, stat.Curvature, 1e-9)

	_, err = service.GetBusStat(context.Background(), "751")
	assert.True(t, errors.Is(err, domainerrors.ErrBusNotFound))
}

func TestTransitService_GetStopStat(t *testing.T) {
	service := newLoadedService(t)
	ctx := context.Background()

	stat, err := service.GetStopStat(ctx, "Universam")
	require.NoError(t, err)
	assert.Equal(t, []string{"256"}, stat.Buses)

	stat, err = service.GetStopStat(ctx, "Prazhskaya")
	require.NoError(t, err)
	assert.NotNil(t, stat.Buses)
	assert.Empty(t, stat.Buses)

	_, err = service.GetStopStat(ctx, "Samara")
	assert.True(t, errors.Is(err, domainerrors.ErrStopNotFound))
}

func TestTransitService_FindRoute(t *testing.T) {
	service := newLoadedService(t)
	ctx := context.Background()

	result, err := service.FindRoute(ctx, "Biryusinka", "Biryulyovo Zapadnoye")
	require.NoError(t, err)
	require.True(t, result.IsReachable)

	// Biryusinka -> Universam -> Biryulyovo Zapadnoye is 5000 m at 1000 m/min
	require.Len(t, result.Items, 2)
	assert.Equal(t, routing.ItemWait, result.Items[0].Type)
	assert.Equal(t, "Biryusinka", result.Items[0].StopName)
	assert.Equal(t, 2, result.Items[1].SpanCount)
	assert.InDelta(t, 11.0, result.TotalTime, 1e-9)

	unreachable, err := service.FindRoute(ctx, "Universam", "Prazhskaya")
	require.NoError(t, err)
	assert.False(t, unreachable.IsReachable)

	_, err = service.FindRoute(ctx, "Universam", "Samara")
	assert.True(t, errors.Is(err, domainerrors.ErrStopNotFound))
}

func TestTransitService_FindRoute_Cache(t *testing.T) {
	service := newLoadedService(t)
	ctx := context.Background()

	first, err := service.FindRoute(ctx, "Biryusinka", "Universam")
	require.NoError(t, err)

	second, err := service.FindRoute(ctx, "Biryusinka", "Universam")
	require.NoError(t, err)
	assert.Same(t, first, second)

	// Reloading flushes cached routes
	_, err = service.Load(ctx, testDataset(), routing.Settings{BusWaitTime: 1, BusVelocity: 60})
	require.NoError(t, err)

	third, err := service.FindRoute(ctx, "Biryusinka", "Universam")
	require.NoError(t, err)
	assert.NotSame(t, first, third)
	assert.InDelta(t, 3.0, third.TotalTime, 1e-9)
}

func TestTransitService_FindRoute_CacheDisabled(t *testing.T) {
	service := newTestService(t, func(cfg *config.Config) { cfg.Cache.RouteTTL = -time.Second })
	ctx := context.Background()

	_, err := service.Load(ctx, testDataset(), testSettings)
	require.NoError(t, err)

	first, err := service.FindRoute(ctx, "Biryusinka", "Universam")
	require.NoError(t, err)
	second, err := service.FindRoute(ctx, "Biryusinka", "Universam")
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.Equal(t, first, second)
}

func TestTransitService_GetMap(t *testing.T) {
	service := newLoadedService(t)

	fc, err := service.GetMap(context.Background())
	require.NoError(t, err)

	// One bus and three served stops; Prazhskaya has no bus
	assert.Len(t, fc.Features, 4)
	assert.NotNil(t, fc.BBox)
}

func TestTransitService_ConcurrentQueriesAndLoads(t *testing.T) {
	service := newLoadedService(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 20 {
				_, err := service.FindRoute(ctx, "Biryusinka", "Universam")
				assert.NoError(t, err)
				_, err = service.GetBusStat(ctx, "256")
				assert.NoError(t, err)
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for range 5 {
			_, err := service.Load(ctx, testDataset(), testSettings)
			assert.NoError(t, err)
		}
	}()

	wg.Wait()
}
