package chart

import (
	"errors"
	"fmt"
	"io"
	"math"

	svg "github.com/ajstarks/svgo"

	"github.com/rxtx-hosting/steamviz/pkg/dataset"
	"github.com/rxtx-hosting/steamviz/pkg/locale"
	"github.com/rxtx-hosting/steamviz/pkg/scale"
)

var ErrNoData = errors.New("no samples to draw")

type Margin struct {
	Top, Right, Bottom, Left int
}

type Layout struct {
	Width, Height int
	Margin        Margin
	YTicks        int
	StickColor    string
	HoverColor    string
	PeakColor     string
}

var DefaultLayout = Layout{
	Width:      1000,
	Height:     500,
	Margin:     Margin{Top: 40, Right: 30, Bottom: 30, Left: 70},
	YTicks:     5,
	StickColor: "#00aaff",
	HoverColor: "#ff0",
	PeakColor:  "#ff0000",
}

func (l Layout) inner() (int, int) {
	return l.Width - l.Margin.Left - l.Margin.Right, l.Height - l.Margin.Top - l.Margin.Bottom
}

// Stick is one drawn sample in plot coordinates.
type Stick struct {
	Sample dataset.PlayerSample
	X      float64
	Y      float64
}

// Plot is the laid out chart before it is written out.
type Plot struct {
	Layout Layout
	Sticks []Stick
	Peak   dataset.PlayerSample
	PeakY  float64
	YTicks []float64
	yScale scale.Linear
}

// Build scales the samples into plot coordinates.
func Build(samples []dataset.PlayerSample, layout Layout) (*Plot, error) {
	peak, ok := dataset.Peak(samples)
	if !ok {
		return nil, ErrNoData
	}
	w, h := layout.inner()

	first, last := samples[0].Time, samples[len(samples)-1].Time
	x := scale.NewTime(first, last, 0, float64(w))
	y := scale.NewLinear(0, float64(peak.Players), float64(h), 0)

	p := &Plot{
		Layout: layout,
		Sticks: make([]Stick, 0, len(samples)),
		Peak:   peak,
		PeakY:  y.Map(float64(peak.Players)),
		YTicks: y.Ticks(layout.YTicks),
		yScale: y,
	}
	for _, s := range samples {
		p.Sticks = append(p.Sticks, Stick{Sample: s, X: x.Map(s.Time), Y: y.Map(float64(s.Players))})
	}
	return p, nil
}

// Millions formats a player count as "24.18M".
func Millions(players int64) string {
	return fmt.Sprintf("%.2fM", float64(players)/1e6)
}

func PeakLabel(l locale.Labels, peak int64) string {
	return fmt.Sprintf("%s: %s", l.Peak, Millions(peak))
}

// WriteSVG draws the stick chart. Each stick carries a hover title with its
// time and player count.
func (p *Plot) WriteSVG(w io.Writer, l locale.Labels) error {
	ew := &errWriter{w: w}
	iw, ih := p.Layout.inner()
	canvas := svg.New(ew)

	canvas.Start(p.Layout.Width, p.Layout.Height, `class="players"`)
	canvas.Style("text/css", fmt.Sprintf(
		".stick line{transition:stroke .2s,stroke-width .2s}.stick:hover line{stroke:%s;stroke-width:4}", p.Layout.HoverColor))
	canvas.Gtransform(fmt.Sprintf("translate(%d,%d)", p.Layout.Margin.Left, p.Layout.Margin.Top))

	// x axis: domain line only, ticks carry no labels
	canvas.Group(`class="axis axis-x"`, fmt.Sprintf(`transform="translate(0,%d)"`, ih))
	canvas.Line(0, 0, iw, 0, `stroke="currentColor"`)
	canvas.Gend()

	canvas.Group(`class="axis axis-y"`, `font-size="10"`, `text-anchor="end"`)
	canvas.Line(0, 0, 0, ih, `stroke="currentColor"`)
	for _, v := range p.YTicks {
		ty := px(p.yScale.Map(v))
		canvas.Line(-6, ty, 0, ty, `stroke="currentColor"`)
		canvas.Text(-9, ty+3, scale.FormatSI(v, 2), `fill="currentColor"`)
	}
	canvas.Gend()

	stroke := fmt.Sprintf(`stroke="%s"`, p.Layout.StickColor)
	for _, s := range p.Sticks {
		canvas.Group(`class="stick"`)
		canvas.Title(fmt.Sprintf("%s: %s\n%s: %s",
			l.Time, s.Sample.Time.Format("2006-01-02 15:04"),
			l.Players, Millions(s.Sample.Players)))
		sx := px(s.X)
		canvas.Line(sx, ih, sx, px(s.Y), stroke, `stroke-width="2"`)
		canvas.Gend()
	}

	py := px(p.PeakY)
	canvas.Line(0, py, iw, py,
		`class="peak-line"`,
		fmt.Sprintf(`stroke="%s"`, p.Layout.PeakColor),
		`stroke-width="2"`,
		`stroke-dasharray="5,5"`)
	canvas.Text(iw-100, py-10, PeakLabel(l, p.Peak.Players),
		`class="peak-label"`,
		fmt.Sprintf(`fill="%s"`, p.Layout.PeakColor))

	canvas.Gend()
	canvas.End()
	return ew.err
}

// px snaps a plot coordinate to a whole pixel for svgo. Stick and Plot keep
// the exact positions; only the written SVG is rounded.
func px(v float64) int {
	return int(math.Round(v))
}

type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(b []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(b)
	e.err = err
	return n, err
}
