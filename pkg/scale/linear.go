package scale

import "time"

// Linear maps [d0,d1] onto [r0,r1]. A collapsed domain maps every input to
// the middle of the range.
type Linear struct {
	d0, d1 float64
	r0, r1 float64
}

func NewLinear(d0, d1, r0, r1 float64) Linear {
	return Linear{d0: d0, d1: d1, r0: r0, r1: r1}
}

func (l Linear) Map(v float64) float64 {
	if l.d1 == l.d0 {
		return (l.r0 + l.r1) / 2
	}
	t := (v - l.d0) / (l.d1 - l.d0)
	return l.r0 + t*(l.r1-l.r0)
}

func (l Linear) Domain() (float64, float64) {
	return l.d0, l.d1
}

// Ticks returns nice tick values covering the domain.
func (l Linear) Ticks(count int) []float64 {
	return Ticks(l.d0, l.d1, count)
}

// Time maps instants onto a numeric range.
type Time struct {
	origin time.Time
	lin    Linear
}

func NewTime(t0, t1 time.Time, r0, r1 float64) Time {
	return Time{
		origin: t0,
		lin:    NewLinear(0, float64(t1.Sub(t0)), r0, r1),
	}
}

func (s Time) Map(t time.Time) float64 {
	return s.lin.Map(float64(t.Sub(s.origin)))
}
