package choropleth

import (
	"math"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

// Equirectangular projects longitude/latitude degrees onto a plane, scale
// pixels per radian, with the origin moved to (TX, TY).
type Equirectangular struct {
	Scale  float64
	TX, TY float64
}

func (p Equirectangular) Project(pt orb.Point) (float64, float64) {
	lambda := pt.Lon() * math.Pi / 180
	phi := pt.Lat() * math.Pi / 180
	return p.TX + p.Scale*lambda, p.TY - p.Scale*phi
}

// Path renders g as SVG path data. Points are skipped.
func (p Equirectangular) Path(g orb.Geometry) string {
	var sb strings.Builder
	p.appendGeometry(&sb, g)
	return sb.String()
}

func (p Equirectangular) appendGeometry(sb *strings.Builder, g orb.Geometry) {
	switch geom := g.(type) {
	case orb.Polygon:
		for _, ring := range geom {
			p.appendLine(sb, ring, true)
		}
	case orb.MultiPolygon:
		for _, poly := range geom {
			p.appendGeometry(sb, poly)
		}
	case orb.Ring:
		p.appendLine(sb, geom, true)
	case orb.LineString:
		p.appendLine(sb, geom, false)
	case orb.MultiLineString:
		for _, ls := range geom {
			p.appendLine(sb, ls, false)
		}
	case orb.Collection:
		for _, child := range geom {
			p.appendGeometry(sb, child)
		}
	}
}

func (p Equirectangular) appendLine(sb *strings.Builder, pts []orb.Point, closed bool) {
	if len(pts) < 2 {
		return
	}
	for i, pt := range pts {
		x, y := p.Project(pt)
		if i == 0 {
			sb.WriteByte('M')
		} else {
			sb.WriteByte('L')
		}
		sb.WriteString(coord(x))
		sb.WriteByte(',')
		sb.WriteString(coord(y))
	}
	if closed {
		sb.WriteByte('Z')
	}
}

func coord(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	s = strings.TrimSuffix(strings.TrimRight(s, "0"), ".")
	if s == "-0" {
		return "0"
	}
	return s
}
