package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"

	deliverycontext "transit/internal/delivery/context"
	"transit/internal/delivery/http/response"
	domainerrors "transit/internal/domain/errors"
	"transit/internal/infra/loader"
	"transit/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// MIMEApplicationGeoJSON is the media type of map responses
const MIMEApplicationGeoJSON = "application/geo+json"

// TransitHandlerParams holds dependencies for TransitHandler, injected by Fx.
type TransitHandlerParams struct {
	fx.In

	TransitUC usecase.TransitUsecase
	Logger    *slog.Logger
}

// TransitHandler serves catalogue queries over HTTP
type TransitHandler struct {
	transitUC usecase.TransitUsecase
	logger    *slog.Logger
}

// NewTransitHandler is the constructor for TransitHandler
func NewTransitHandler(params TransitHandlerParams) *TransitHandler {
	return &TransitHandler{
		transitUC: params.TransitUC,
		logger:    params.Logger,
	}
}

// RouteQuery represents the query parameters of a route request
type RouteQuery struct {
	From string `query:"from" validate:"required"`
	To   string `query:"to" validate:"required"`
}

// HealthCheck reports liveness and whether a catalogue is loaded
func (h *TransitHandler) HealthCheck(c echo.Context) error {
	return response.Success(c, http.StatusOK, map[string]any{
		"status": "ok",
		"ready":  h.transitUC.IsReady(),
	}, "Service is healthy")
}

// GetBus handles bus statistics lookups
func (h *TransitHandler) GetBus(c echo.Context) error {
	stat, err := h.transitUC.GetBusStat(c.Request().Context(), pathName(c))
	if err != nil {
		return h.handleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, stat, "Bus retrieved successfully")
}

// GetStop handles stop lookups
func (h *TransitHandler) GetStop(c echo.Context) error {
	stat, err := h.transitUC.GetStopStat(c.Request().Context(), pathName(c))
	if err != nil {
		return h.handleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, stat, "Stop retrieved successfully")
}

// GetRoute handles fastest route queries
func (h *TransitHandler) GetRoute(c echo.Context) error {
	var query RouteQuery
	if err := c.Bind(&query); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid route query")
	}

	if err := c.Validate(&query); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", "from and to are required")
	}

	route, err := h.transitUC.FindRoute(c.Request().Context(), query.From, query.To)
	if err != nil {
		return h.handleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, route, "Route calculated successfully")
}

// GetMap returns served stops and buses as a GeoJSON FeatureCollection
func (h *TransitHandler) GetMap(c echo.Context) error {
	fc, err := h.transitUC.GetMap(c.Request().Context())
	if err != nil {
		return h.handleAppError(c, err)
	}

	data, err := json.Marshal(fc)
	if err != nil {
		return errors.Wrap(err, "failed to encode map")
	}

	return c.Blob(http.StatusOK, MIMEApplicationGeoJSON, data)
}

// GetCatalogue describes the loaded catalogue
func (h *TransitHandler) GetCatalogue(c echo.Context) error {
	info, err := h.transitUC.Info(c.Request().Context())
	if err != nil {
		return h.handleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, info, "Catalogue retrieved successfully")
}

// LoadCatalogue replaces the catalogue with the base requests and routing
// settings of a posted request document. Stat requests are ignored.
func (h *TransitHandler) LoadCatalogue(c echo.Context) error {
	doc, err := loader.DecodeDocument(c.Request().Body)
	if err != nil {
		return response.BadRequest(c, "INVALID_DOCUMENT", err.Error())
	}

	ctx := c.Request().Context()

	info, err := h.transitUC.Load(ctx, doc.Dataset(), doc.Settings())
	if err != nil {
		return h.handleAppError(c, err)
	}

	deliverycontext.GetLoggerOrDefault(ctx, h.logger).Info("Catalogue replaced over HTTP",
		"stops", info.Stops,
		"buses", info.Buses,
	)

	return response.Success(c, http.StatusCreated, info, "Catalogue loaded successfully")
}

// pathName returns the decoded :name path parameter. Echo routes on the
// escaped path only when the request carries a RawPath, and the parameter is
// still escaped in that case.
func pathName(c echo.Context) string {
	raw := c.Param("name")
	if c.Request().URL.RawPath == "" {
		return raw
	}

	name, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}

	return name
}

// handleAppError handles application errors
func (h *TransitHandler) handleAppError(c echo.Context, err error) error {
	if appErr, ok := domainerrors.AsAppError(err); ok {
		return response.Error(c, appErr.HTTPCode(), appErr.ErrorCode(), appErr.Message(), appErr.Details())
	}

	return errors.WithStack(err)
}
