package chart

import (
	"io"
	"time"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/rxtx-hosting/steamviz/pkg/dataset"
	"github.com/rxtx-hosting/steamviz/pkg/locale"
	"github.com/rxtx-hosting/steamviz/pkg/scale"
)

// RenderPNG writes a raster version of the player chart: the series, the
// dashed peak line and its label.
func RenderPNG(w io.Writer, samples []dataset.PlayerSample, layout Layout, l locale.Labels) error {
	p, err := Build(samples, layout)
	if err != nil {
		return err
	}

	times := make([]time.Time, len(samples))
	players := make([]float64, len(samples))
	for i, s := range samples {
		times[i] = s.Time
		players[i] = float64(s.Players)
	}
	first, last := times[0], times[len(times)-1]
	if !last.After(first) {
		// a single sample still needs a non-empty x range
		first, last = first.Add(-time.Minute), last.Add(time.Minute)
	}
	peak := float64(p.Peak.Players)

	yTicks := make([]gochart.Tick, 0, len(p.YTicks))
	for _, v := range p.YTicks {
		yTicks = append(yTicks, gochart.Tick{Value: v, Label: scale.FormatSI(v, 2)})
	}
	yMax := peak
	if n := len(p.YTicks); n > 0 && p.YTicks[n-1] > yMax {
		yMax = p.YTicks[n-1]
	}
	if yMax <= 0 {
		yMax = 1
	}

	ch := gochart.Chart{
		Width:  layout.Width,
		Height: layout.Height,
		Background: gochart.Style{Padding: gochart.Box{
			Top:    layout.Margin.Top,
			Right:  layout.Margin.Right,
			Bottom: layout.Margin.Bottom,
			Left:   layout.Margin.Left,
		}},
		XAxis: gochart.XAxis{
			Range: &gochart.ContinuousRange{Min: gochart.TimeToFloat64(first), Max: gochart.TimeToFloat64(last)},
			Ticks: []gochart.Tick{{Value: gochart.TimeToFloat64(first), Label: ""}, {Value: gochart.TimeToFloat64(last), Label: ""}},
		},
		YAxis: gochart.YAxis{
			Range: &gochart.ContinuousRange{Min: 0, Max: yMax},
			Ticks: yTicks,
		},
		Series: []gochart.Series{
			gochart.TimeSeries{
				Name:    l.Players,
				XValues: times,
				YValues: players,
				Style: gochart.Style{
					StrokeColor: drawing.ColorFromHex(layout.StickColor[1:]),
					StrokeWidth: 2,
				},
			},
			gochart.TimeSeries{
				Name:    l.Peak,
				XValues: []time.Time{first, last},
				YValues: []float64{peak, peak},
				Style: gochart.Style{
					StrokeColor:     drawing.ColorFromHex(layout.PeakColor[1:]),
					StrokeWidth:     2,
					StrokeDashArray: []float64{5, 5},
				},
			},
			gochart.AnnotationSeries{
				Annotations: []gochart.Value2{{
					XValue: gochart.TimeToFloat64(last),
					YValue: peak,
					Label:  PeakLabel(l, p.Peak.Players),
				}},
			},
		},
	}
	return ch.Render(gochart.PNG, w)
}
