package exporter

import (
	"fmt"
	"log/slog"

	"github.com/rxtx-hosting/steamviz/pkg/chart"
	"github.com/rxtx-hosting/steamviz/pkg/choropleth"
	"github.com/rxtx-hosting/steamviz/pkg/dataset"
	"github.com/rxtx-hosting/steamviz/pkg/locale"
)

// view is one rendered generation of the datasets.
type view struct {
	bundle  *dataset.Bundle
	world   *choropleth.Map
	plot    *chart.Plot
	plotErr error
}

func newView(b *dataset.Bundle, loc locale.Locale, metric choropleth.Metric) (*view, error) {
	m, err := choropleth.New(b, loc, metric, choropleth.DefaultStyle)
	if err != nil {
		return nil, fmt.Errorf("failed to build map: %w", err)
	}

	v := &view{bundle: b, world: m}
	if b.PlayersErr != nil {
		v.plotErr = b.PlayersErr
	} else {
		v.plot, v.plotErr = chart.Build(b.Players, chart.DefaultLayout)
	}
	if v.plotErr != nil {
		slog.Error("Player chart aborted", "error", v.plotErr)
	}
	return v, nil
}
