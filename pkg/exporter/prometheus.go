package exporter

import (
	"context"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rxtx-hosting/steamviz/pkg/dataset"
)

type PrometheusExporter struct {
	gatherer     prometheus.Gatherer
	totalBytes   *prometheus.GaugeVec
	avgMbps      *prometheus.GaugeVec
	peakPlayers  prometheus.Gauge
	latestPlayer prometheus.Gauge
	countries    map[string]struct{}
	mu           sync.Mutex
}

// NewPrometheusExporter registers the dataset gauges on reg. A nil reg uses
// the default registry.
func NewPrometheusExporter(reg *prometheus.Registry) *PrometheusExporter {
	var registerer prometheus.Registerer = prometheus.DefaultRegisterer
	var gatherer prometheus.Gatherer = prometheus.DefaultGatherer
	if reg != nil {
		registerer, gatherer = reg, reg
	}

	totalBytes := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "steamviz_country_total_bytes",
			Help: "Steam download bytes attributed to a country",
		},
		[]string{"country"},
	)

	avgMbps := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "steamviz_country_avg_mbps",
			Help: "Average Steam download speed in a country",
		},
		[]string{"country"},
	)

	peakPlayers := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "steamviz_players_peak",
		Help: "Highest concurrent player count in the loaded series",
	})

	latestPlayers := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "steamviz_players_latest",
		Help: "Concurrent player count of the last sample in the loaded series",
	})

	registerer.MustRegister(totalBytes, avgMbps, peakPlayers, latestPlayers)

	return &PrometheusExporter{
		gatherer:     gatherer,
		totalBytes:   totalBytes,
		avgMbps:      avgMbps,
		peakPlayers:  peakPlayers,
		latestPlayer: latestPlayers,
		countries:    make(map[string]struct{}),
	}
}

func (p *PrometheusExporter) UpdateStats(b *dataset.Bundle) {
	p.mu.Lock()
	defer p.mu.Unlock()

	seen := make(map[string]struct{}, len(b.Traffic))

	for code, rec := range b.Traffic {
		seen[code] = struct{}{}
		p.totalBytes.WithLabelValues(code).Set(rec.TotalBytes)
		p.avgMbps.WithLabelValues(code).Set(rec.AvgMbps)
	}

	for code := range p.countries {
		if _, exists := seen[code]; !exists {
			p.totalBytes.DeleteLabelValues(code)
			p.avgMbps.DeleteLabelValues(code)
		}
	}

	p.countries = seen

	if peak, ok := dataset.Peak(b.Players); ok {
		p.peakPlayers.Set(float64(peak.Players))
		p.latestPlayer.Set(float64(b.Players[len(b.Players)-1].Players))
	} else {
		p.peakPlayers.Set(0)
		p.latestPlayer.Set(0)
	}
}

func (p *PrometheusExporter) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(p.gatherer, promhttp.HandlerOpts{}))
	return mux
}

// StartServer serves /metrics until ctx is cancelled.
func (p *PrometheusExporter) StartServer(ctx context.Context, addr string) error {
	return serve(ctx, addr, p.Handler())
}
