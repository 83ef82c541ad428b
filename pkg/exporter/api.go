package exporter

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"html"
	"html/template"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/cors"

	"github.com/rxtx-hosting/steamviz/pkg/chart"
	"github.com/rxtx-hosting/steamviz/pkg/choropleth"
	"github.com/rxtx-hosting/steamviz/pkg/dataset"
	"github.com/rxtx-hosting/steamviz/pkg/locale"
)

//go:embed templates/*.html
var templates embed.FS

var errNotReady = errors.New("datasets not loaded")

type APIServer struct {
	apiKey      string
	locale      locale.Locale
	labels      locale.Labels
	metric      choropleth.Metric
	corsOrigins []string

	// swapMu orders reloads against metric toggles.
	swapMu sync.Mutex
	mu     sync.RWMutex
	view   *view
}

type metricRequest struct {
	Metric string `json:"metric" binding:"required"`
}

type peakResponse struct {
	Time     string `json:"time"`
	Players  int64  `json:"players"`
	Label    string `json:"label"`
	Samples  int    `json:"samples"`
	LoadedAt string `json:"loaded_at"`
}

func NewAPIServer(apiKey string, loc locale.Locale, metric choropleth.Metric, corsOrigins []string) *APIServer {
	return &APIServer{
		apiKey:      apiKey,
		locale:      loc,
		labels:      loc.Labels(),
		metric:      metric,
		corsOrigins: corsOrigins,
	}
}

// UpdateDatasets swaps in a new generation. The active metric carries over.
func (a *APIServer) UpdateDatasets(b *dataset.Bundle) error {
	a.swapMu.Lock()
	defer a.swapMu.Unlock()

	metric := a.metric
	a.mu.RLock()
	if a.view != nil {
		metric = a.view.world.Active()
	}
	a.mu.RUnlock()

	v, err := newView(b, a.locale, metric)
	if err != nil {
		return err
	}

	a.mu.Lock()
	a.view = v
	a.mu.Unlock()
	return nil
}

func (a *APIServer) current() (*view, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.view == nil {
		return nil, errNotReady
	}
	return a.view, nil
}

func (a *APIServer) Handler() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger())

	tmpl := template.Must(template.New("").ParseFS(templates, "templates/*.html"))
	r.SetHTMLTemplate(tmpl)

	r.GET("/", a.handlePage)
	r.GET("/healthz", a.handleHealth)
	r.GET("/map.svg", a.handleMapSVG)
	r.GET("/chart.svg", a.handleChartSVG)
	r.GET("/chart.png", a.handleChartPNG)
	r.GET("/toggle/:metric", a.handleToggleLink)

	api := r.Group("/api")
	if a.apiKey != "" {
		api.Use(a.authMiddleware())
	}
	api.GET("/metric", a.handleGetMetric)
	api.PUT("/metric", a.handlePutMetric)
	api.GET("/countries/:code", a.handleGetCountry)
	api.GET("/countries/:code/tooltip", a.handleGetTooltip)
	api.GET("/players/peak", a.handleGetPeak)

	if len(a.corsOrigins) == 0 {
		return r
	}
	return cors.New(cors.Options{
		AllowedOrigins: a.corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPut, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}).Handler(r)
}

// StartServer serves the page and API until ctx is cancelled.
func (a *APIServer) StartServer(ctx context.Context, addr string) error {
	return serve(ctx, addr, a.Handler())
}

func (a *APIServer) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth != "Bearer "+a.apiKey {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}
		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Header("X-Request-ID", requestID)
		c.Set("request_id", requestID)

		c.Next()

		slog.Debug("Request completed",
			"request_id", requestID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}

func (a *APIServer) handleHealth(c *gin.Context) {
	if _, err := a.current(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "loading"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (a *APIServer) handleMapSVG(c *gin.Context) {
	v, err := a.current()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}

	z := parseZoom(c)
	var buf bytes.Buffer
	if err := v.world.WriteSVG(&buf, z, pageLink(z)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/svg+xml", buf.Bytes())
}

func (a *APIServer) handleChartSVG(c *gin.Context) {
	v, err := a.current()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	if v.plot == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": v.plotErr.Error()})
		return
	}

	var buf bytes.Buffer
	if err := v.plot.WriteSVG(&buf, a.labels); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/svg+xml", buf.Bytes())
}

func (a *APIServer) handleChartPNG(c *gin.Context) {
	v, err := a.current()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	if v.plot == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": v.plotErr.Error()})
		return
	}

	var buf bytes.Buffer
	if err := chart.RenderPNG(&buf, v.bundle.Players, chart.DefaultLayout, a.labels); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

func (a *APIServer) toggle(name string) (choropleth.Metric, int, error) {
	a.swapMu.Lock()
	defer a.swapMu.Unlock()

	v, err := a.current()
	if err != nil {
		return "", http.StatusServiceUnavailable, err
	}
	metric, err := choropleth.ParseMetric(name)
	if err != nil {
		return "", http.StatusBadRequest, err
	}
	if err := v.world.Toggle(metric); err != nil {
		return "", http.StatusInternalServerError, err
	}
	slog.Info("Metric toggled", "metric", metric)
	return metric, http.StatusOK, nil
}

func (a *APIServer) handleToggleLink(c *gin.Context) {
	if _, status, err := a.toggle(c.Param("metric")); err != nil {
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	target := "/"
	if q := c.Request.URL.RawQuery; q != "" {
		target += "?" + q
	}
	c.Redirect(http.StatusSeeOther, target)
}

func (a *APIServer) handleGetMetric(c *gin.Context) {
	v, err := a.current()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"metric": v.world.Active()})
}

func (a *APIServer) handlePutMetric(c *gin.Context) {
	var req metricRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	metric, status, err := a.toggle(req.Metric)
	if err != nil {
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"metric": metric})
}

func (a *APIServer) handleGetCountry(c *gin.Context) {
	v, err := a.current()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, v.world.Detail(strings.ToUpper(c.Param("code"))))
}

func (a *APIServer) handleGetTooltip(c *gin.Context) {
	v, err := a.current()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, v.world.Tooltip(strings.ToUpper(c.Param("code"))))
}

func (a *APIServer) handleGetPeak(c *gin.Context) {
	v, err := a.current()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	if v.plot == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": v.plotErr.Error()})
		return
	}

	c.JSON(http.StatusOK, peakResponse{
		Time:     v.plot.Peak.Time.Format(time.RFC3339),
		Players:  v.plot.Peak.Players,
		Label:    chart.PeakLabel(a.labels, v.plot.Peak.Players),
		Samples:  len(v.plot.Sticks),
		LoadedAt: v.bundle.LoadedAt.Format(time.RFC3339),
	})
}

// parseZoom reads k, x, y. Missing or malformed values fall back to the
// whole map centred on the canvas.
func parseZoom(c *gin.Context) choropleth.Zoom {
	style := choropleth.DefaultStyle
	z := choropleth.Zoom{K: 1, CX: float64(style.Width) / 2, CY: float64(style.Height) / 2}
	if k, ok := queryFloat(c, "k"); ok {
		z.K = k
	}
	if x, ok := queryFloat(c, "x"); ok {
		z.CX = x
	}
	if y, ok := queryFloat(c, "y"); ok {
		z.CY = y
	}
	return z.ScaleBy(1)
}

func queryFloat(c *gin.Context, key string) (float64, bool) {
	s := c.Query(key)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func zoomQuery(z choropleth.Zoom) url.Values {
	q := url.Values{}
	q.Set("k", strconv.FormatFloat(z.K, 'f', 4, 64))
	q.Set("x", strconv.FormatFloat(z.CX, 'f', 1, 64))
	q.Set("y", strconv.FormatFloat(z.CY, 'f', 1, 64))
	return q
}

// pageLink builds the click target of a country, escaped for an attribute.
func pageLink(z choropleth.Zoom) choropleth.LinkFunc {
	return func(code string) string {
		q := zoomQuery(z)
		q.Set("country", code)
		return html.EscapeString("/?" + q.Encode())
	}
}
