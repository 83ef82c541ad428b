package choropleth

import (
	"errors"
	"fmt"

	"github.com/rxtx-hosting/steamviz/pkg/dataset"
	"github.com/rxtx-hosting/steamviz/pkg/locale"
	"github.com/rxtx-hosting/steamviz/pkg/units"
)

var ErrUnknownMetric = errors.New("unknown metric")

// Metric selects which traffic figure drives the country fills.
type Metric string

const (
	TotalBytes Metric = "total_bytes"
	AvgMbps    Metric = "avg_mbps"
)

var Metrics = []Metric{TotalBytes, AvgMbps}

func ParseMetric(s string) (Metric, error) {
	switch m := Metric(s); m {
	case TotalBytes, AvgMbps:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMetric, s)
	}
}

func (m Metric) Value(rec dataset.CountryTrafficRecord) float64 {
	if m == AvgMbps {
		return rec.AvgMbps
	}
	return rec.TotalBytes
}

func (m Metric) Format(v float64) string {
	if m == AvgMbps {
		return units.FormatBitrate(v)
	}
	return units.FormatBytes(v)
}

func (m Metric) Label(l locale.Labels) string {
	if m == AvgMbps {
		return l.AvgMbps
	}
	return l.TotalBytes
}
