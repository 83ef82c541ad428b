package choropleth

import "fmt"

const (
	MinZoom = 1
	MaxZoom = 8

	ZoomInFactor  = 1.1
	ZoomOutFactor = 0.9
)

// Zoom is a view on the map: scale factor K centred on map point (CX, CY).
// The zero value shows the whole map.
type Zoom struct {
	K      float64
	CX, CY float64
}

// ScaleBy multiplies the factor, keeping the centre.
func (z Zoom) ScaleBy(f float64) Zoom {
	if z.K == 0 {
		z.K = 1
	}
	z.K = clamp(z.K*f, MinZoom, MaxZoom)
	return z
}

// Translate returns the clamped translation and scale for a width x height
// viewport. The scaled map always covers the whole viewport.
func (z Zoom) Translate(width, height float64) (tx, ty, k float64) {
	k = clamp(z.K, MinZoom, MaxZoom)
	tx = clamp(width/2-k*z.CX, width-k*width, 0)
	ty = clamp(height/2-k*z.CY, height-k*height, 0)
	return tx, ty, k
}

func (z Zoom) Transform(width, height float64) string {
	tx, ty, k := z.Translate(width, height)
	return fmt.Sprintf("translate(%s,%s) scale(%s)", coord(tx), coord(ty), coord(k))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
