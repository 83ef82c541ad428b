package choropleth

import (
	"fmt"
	"html"
	"io"
	"strconv"
	"sync"

	svg "github.com/ajstarks/svgo"

	"github.com/rxtx-hosting/steamviz/pkg/dataset"
	"github.com/rxtx-hosting/steamviz/pkg/locale"
	"github.com/rxtx-hosting/steamviz/pkg/scale"
)

type Style struct {
	Width       int
	Height      int
	Scale       float64
	Background  string
	Stroke      string
	StrokeWidth float64
	NoDataFill  string
	HoverFill   string
}

var DefaultStyle = Style{
	Width:       900,
	Height:      450,
	Scale:       144,
	Background:  "#f0f8ff",
	Stroke:      "#333",
	StrokeWidth: 0.5,
	NoDataFill:  "#ccc",
	HoverFill:   "#89adba",
}

type country struct {
	code string
	name string
	path string
}

// Map is the choropleth renderer. Scales and projected outlines are fixed at
// construction; only the active metric and its fill table change.
type Map struct {
	style    Style
	locale   locale.Locale
	labels   locale.Labels
	traffic  dataset.Traffic
	asns     dataset.ASNs
	sumBytes float64
	scales   map[Metric]*scale.Quantize

	countries []country
	names     map[string]string

	mu     sync.RWMutex
	active Metric
	fills  map[string]string
}

func New(b *dataset.Bundle, loc locale.Locale, initial Metric, style Style) (*Map, error) {
	if _, err := ParseMetric(string(initial)); err != nil {
		return nil, err
	}

	proj := Equirectangular{
		Scale: style.Scale,
		TX:    float64(style.Width) / 2,
		TY:    float64(style.Height) / 2,
	}

	m := &Map{
		style:    style,
		locale:   loc,
		labels:   loc.Labels(),
		traffic:  b.Traffic,
		asns:     b.ASNs,
		sumBytes: b.Traffic.SumTotalBytes(),
		scales:   make(map[Metric]*scale.Quantize, len(Metrics)),
		names:    make(map[string]string, len(b.World)),
	}

	minBytes, maxBytes := dataset.Extent(b.Traffic.TotalBytes())
	m.scales[TotalBytes] = scale.NewSqrtQuantize(minBytes, maxBytes, scale.Blues)
	minMbps, maxMbps := dataset.Extent(b.Traffic.AvgMbps())
	m.scales[AvgMbps] = scale.NewSqrtQuantize(minMbps, maxMbps, scale.Blues)

	m.countries = make([]country, 0, len(b.World))
	for _, f := range b.World {
		m.countries = append(m.countries, country{code: f.ID, name: f.Name, path: proj.Path(f.Geometry)})
		if f.Name != "" {
			m.names[f.ID] = f.Name
		}
	}

	if err := m.Toggle(initial); err != nil {
		return nil, err
	}
	return m, nil
}

// Toggle makes metric active and rebuilds every fill from its scale.
func (m *Map) Toggle(metric Metric) error {
	if _, err := ParseMetric(string(metric)); err != nil {
		return err
	}

	fills := make(map[string]string, len(m.countries)+len(m.traffic))
	for _, c := range m.countries {
		fills[c.code] = m.fillFor(metric, c.code)
	}
	for code := range m.traffic {
		fills[code] = m.fillFor(metric, code)
	}

	m.mu.Lock()
	m.active = metric
	m.fills = fills
	m.mu.Unlock()
	return nil
}

func (m *Map) fillFor(metric Metric, code string) string {
	rec, ok := m.traffic[code]
	if !ok {
		return m.style.NoDataFill
	}
	if c := m.scales[metric].Color(metric.Value(rec)); c != "" {
		return c
	}
	return m.style.NoDataFill
}

func (m *Map) Active() Metric {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.active
}

// Fill returns the current fill of a country, gray when it has no data.
func (m *Map) Fill(code string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if c, ok := m.fills[code]; ok {
		return c
	}
	return m.style.NoDataFill
}

func (m *Map) Fills() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string, len(m.fills))
	for k, v := range m.fills {
		out[k] = v
	}
	return out
}

func (m *Map) Scale(metric Metric) *scale.Quantize {
	return m.scales[metric]
}

func (m *Map) Style() Style {
	return m.style
}

// LinkFunc builds the click target of a country.
type LinkFunc func(code string) string

// WriteSVG draws every country with the active metric's fills. A nil link
// leaves countries unlinked.
func (m *Map) WriteSVG(w io.Writer, z Zoom, link LinkFunc) error {
	m.mu.RLock()
	metric := m.active
	fills := m.fills
	m.mu.RUnlock()

	width, height := float64(m.style.Width), float64(m.style.Height)
	stroke := fmt.Sprintf(`stroke="%s" stroke-width="%s"`, m.style.Stroke, strconv.FormatFloat(m.style.StrokeWidth, 'f', -1, 64))

	ew := &errWriter{w: w}
	canvas := svg.New(ew)
	canvas.Start(m.style.Width, m.style.Height,
		`class="choropleth"`,
		fmt.Sprintf(`data-metric="%s"`, metric),
		fmt.Sprintf(`style="background-color:%s"`, m.style.Background))
	canvas.Style("text/css", fmt.Sprintf(".country:hover path{fill:%s}", m.style.HoverFill))
	canvas.Group(`id="countries"`, fmt.Sprintf(`transform="%s"`, z.Transform(width, height)))
	for _, c := range m.countries {
		if c.path == "" {
			continue
		}
		if link != nil {
			canvas.Link(link(c.code), "")
		}
		canvas.Group(`class="country"`, fmt.Sprintf(`data-code="%s"`, html.EscapeString(c.code)))
		tip := m.tooltip(metric, c.code)
		canvas.Title(tip.Name + " " + tip.Metric + " " + tip.Value)
		fill, ok := fills[c.code]
		if !ok {
			fill = m.style.NoDataFill
		}
		canvas.Path(c.path, fmt.Sprintf(`fill="%s"`, fill), stroke)
		canvas.Gend()
		if link != nil {
			canvas.LinkEnd()
		}
	}
	canvas.Gend()
	canvas.End()
	return ew.err
}

// errWriter keeps the first write error since svgo drops them.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	e.err = err
	return n, err
}
