package scale

import (
	"math"
	"sort"
)

// Blues is the nine step palette shared by both map metrics, light to dark.
var Blues = []string{
	"#e0f4ff", "#a8c9e7", "#8ab8d6", "#6a9bbd", "#4c7f9d",
	"#3a6491", "#274c7f", "#1b3666", "#0f244d",
}

// Quantize maps a continuous domain onto a discrete palette using evenly
// spaced thresholds. An optional transform is applied to both the domain
// endpoints and every input.
type Quantize struct {
	x0, x1     float64
	thresholds []float64
	palette    []string
	transform  func(float64) float64
}

func NewQuantize(min, max float64, palette []string) *Quantize {
	return newQuantize(min, max, palette, nil)
}

// NewSqrtQuantize bins values by their square root.
func NewSqrtQuantize(min, max float64, palette []string) *Quantize {
	return newQuantize(min, max, palette, math.Sqrt)
}

func newQuantize(min, max float64, palette []string, transform func(float64) float64) *Quantize {
	q := &Quantize{
		palette:   append([]string(nil), palette...),
		transform: transform,
	}
	q.x0, q.x1 = q.apply(min), q.apply(max)
	if q.x0 > q.x1 {
		q.x0, q.x1 = q.x1, q.x0
	}

	n := len(q.palette)
	if n > 1 {
		q.thresholds = make([]float64, n-1)
		for i := range q.thresholds {
			q.thresholds[i] = ((float64(i)+1)*q.x1 - (float64(i)-float64(n)+1)*q.x0) / float64(n)
		}
	}
	return q
}

func (q *Quantize) apply(v float64) float64 {
	if q.transform == nil {
		return v
	}
	return q.transform(v)
}

// Domain returns the transformed domain.
func (q *Quantize) Domain() (float64, float64) {
	return q.x0, q.x1
}

func (q *Quantize) Thresholds() []float64 {
	return append([]float64(nil), q.thresholds...)
}

// Index returns the palette bucket for v, or -1 when v has no position on
// the domain (NaN, or a negative value under a square root).
func (q *Quantize) Index(v float64) int {
	if len(q.palette) == 0 {
		return -1
	}
	x := q.apply(v)
	if math.IsNaN(x) {
		return -1
	}
	return sort.Search(len(q.thresholds), func(i int) bool { return q.thresholds[i] > x })
}

// Color returns the palette entry for v, or "" when Index is -1.
func (q *Quantize) Color(v float64) string {
	i := q.Index(v)
	if i < 0 {
		return ""
	}
	return q.palette[i]
}
