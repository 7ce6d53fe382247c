package dashboard

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"PriceFeed/internal/calculator"
	"PriceFeed/internal/metrics"
	"PriceFeed/internal/model"
	"PriceFeed/internal/recorder"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Options tunes the dashboard views.
type Options struct {
	DefaultWindowDays int
	MAWindow          int
}

// Handler serves the dashboard page, its JSON API and the CSV export.
type Handler struct {
	reader  *SeriesReader
	store   recorder.Recorder
	metrics *metrics.Recorder
	log     zerolog.Logger
	opts    Options
	tmpl    *template.Template
}

// NewHandler parses the embedded templates and returns a ready handler.
func NewHandler(store recorder.Recorder, m *metrics.Recorder, log zerolog.Logger, opts Options) (*Handler, error) {
	if opts.DefaultWindowDays <= 0 {
		opts.DefaultWindowDays = 30
	}
	if opts.MAWindow <= 0 {
		opts.MAWindow = calculator.DefaultMAWindow
	}
	tmpl, err := template.New("index.html").Funcs(template.FuncMap{
		"usd":          FormatUSD,
		"pct":          FormatPercent,
		"ts":           FormatTimestamp,
		"deltaCaption": DeltaCaption,
		"trend":        TrendSentence,
		"band":         FormatBand,
		"num":          FormatNumber,
	}).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Handler{
		reader:  &SeriesReader{Store: store},
		store:   store,
		metrics: m,
		log:     log.With().Str("component", "dashboard").Logger(),
		opts:    opts,
		tmpl:    tmpl,
	}, nil
}

// RegisterRoutes mounts the dashboard routes on e.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.instrument("index", h.Index))
	e.GET("/healthz", h.instrument("healthz", h.Health))

	g := e.Group("/api")
	g.GET("/series", h.instrument("series", h.Series))
	g.GET("/export.csv", h.instrument("export", h.Export))
}

func (h *Handler) instrument(route string, next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		err := next(c)
		status := c.Response().Status
		var he *echo.HTTPError
		if errors.As(err, &he) {
			status = he.Code
		}
		h.metrics.RecordRequest(route, strconv.Itoa(status))
		return err
	}
}

// load reads the full series and builds the view for q.
func (h *Handler) load(ctx context.Context, q Query) (View, error) {
	series, err := h.reader.LoadSeries(ctx, model.TimeRange{})
	if err != nil {
		return View{}, err
	}
	window, err := q.Window(series[len(series)-1].ObservedAt, h.opts.DefaultWindowDays)
	if err != nil {
		return View{}, err
	}
	return BuildView(series, q, window, h.opts.MAWindow), nil
}

// Index renders the HTML dashboard.
func (h *Handler) Index(c echo.Context) error {
	q, err := bindQuery(c)
	if err != nil {
		return h.render(c, http.StatusBadRequest, h.emptyView(q, err.Error()))
	}

	view, err := h.load(c.Request().Context(), q)
	switch {
	case err == nil:
		return h.render(c, http.StatusOK, view)
	case errors.Is(err, ErrEmptySeries):
		return h.render(c, http.StatusOK, h.emptyView(q, ""))
	case errors.Is(err, ErrInvalidQuery):
		return h.render(c, http.StatusBadRequest, h.emptyView(q, err.Error()))
	default:
		h.log.Error().Err(err).Msg("load series")
		return h.render(c, http.StatusOK, h.emptyView(q, "Could not read price readings from the store. Try refreshing in a moment."))
	}
}

func (h *Handler) emptyView(q Query, warning string) View {
	return View{Query: q, MAWindow: h.opts.MAWindow, Empty: true, Warning: warning}
}

func (h *Handler) render(c echo.Context, status int, view View) error {
	var buf bytes.Buffer
	if err := h.tmpl.ExecuteTemplate(&buf, "index.html", view); err != nil {
		h.log.Error().Err(err).Msg("render dashboard")
		return echo.NewHTTPError(http.StatusInternalServerError, "render failed")
	}
	return c.HTMLBlob(status, buf.Bytes())
}

type seriesResponse struct {
	Empty   bool                     `json:"empty"`
	From    *string                  `json:"from,omitempty"`
	To      *string                  `json:"to,omitempty"`
	Points  []Point                  `json:"points"`
	Metrics *Stats                   `json:"metrics"`
	Daily   []calculator.DailyChange `json:"daily"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Series returns the view as JSON.
func (h *Handler) Series(c echo.Context) error {
	q, err := bindQuery(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	view, err := h.load(c.Request().Context(), q)
	switch {
	case err == nil:
	case errors.Is(err, ErrEmptySeries):
		return c.JSON(http.StatusOK, seriesResponse{Empty: true, Points: []Point{}, Daily: []calculator.DailyChange{}})
	case errors.Is(err, ErrInvalidQuery):
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		h.log.Error().Err(err).Msg("load series")
		return c.JSON(http.StatusServiceUnavailable, errorResponse{Error: "store unavailable"})
	}

	from := view.Window.From.Format(dateLayout)
	to := view.Window.To.Format(dateLayout)
	return c.JSON(http.StatusOK, seriesResponse{
		From:    &from,
		To:      &to,
		Points:  view.Points,
		Metrics: view.Stats,
		Daily:   view.Daily,
	})
}

// Export streams the readings as a CSV download.
func (h *Handler) Export(c echo.Context) error {
	q, err := bindQuery(c)
	if err != nil {
		return c.String(http.StatusBadRequest, err.Error())
	}
	rng, err := q.ExportRange()
	if err != nil {
		return c.String(http.StatusBadRequest, err.Error())
	}

	series, err := h.reader.LoadSeries(c.Request().Context(), rng)
	if err != nil && !errors.Is(err, ErrEmptySeries) {
		h.log.Error().Err(err).Msg("load export")
		return c.String(http.StatusServiceUnavailable, "store unavailable")
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, series); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", ExportFilename))
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// Health reports whether the store is reachable.
func (h *Handler) Health(c echo.Context) error {
	if err := h.store.Ping(c.Request().Context()); err != nil {
		h.log.Warn().Err(err).Msg("health check failed")
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
