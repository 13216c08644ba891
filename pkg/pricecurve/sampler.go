package pricecurve

import (
	"time"

	"github.com/shopspring/decimal"
)

// Point is a single sample of a curve.
type Point struct {
	Elapsed time.Duration
	Price   decimal.Decimal
}

// Series groups the samples of one shape.
type Series struct {
	Shape  Shape
	Points []Point
}

// Sampler lazily walks a curve over a fixed number of evenly spaced points
// across [0, duration]. It can be restarted with Reset.
type Sampler struct {
	curve  *Curve
	points int
	next   int
}

// Sampler returns a sampler producing the given number of points.
func (c *Curve) Sampler(points int) (*Sampler, error) {
	if points < 2 {
		return nil, ErrTooFewPoints
	}
	return &Sampler{curve: c, points: points}, nil
}

// Next returns the next sample and false once all points were produced.
func (s *Sampler) Next() (Point, bool) {
	if s.next >= s.points {
		return Point{}, false
	}

	i := s.next
	s.next++

	duration := s.curve.params.Duration
	elapsed := duration
	if i < s.points-1 {
		elapsed = time.Duration(float64(duration) * float64(i) / float64(s.points-1))
	}

	return Point{
		Elapsed: elapsed,
		Price:   s.curve.PriceAt(elapsed),
	}, true
}

// Reset rewinds the sampler to the first point.
func (s *Sampler) Reset() {
	s.next = 0
}

// Len returns the total number of points the sampler produces.
func (s *Sampler) Len() int {
	return s.points
}

// Sample collects all points of the curve at once.
func (c *Curve) Sample(points int) ([]Point, error) {
	sampler, err := c.Sampler(points)
	if err != nil {
		return nil, err
	}

	samples := make([]Point, 0, points)
	for p, ok := sampler.Next(); ok; p, ok = sampler.Next() {
		samples = append(samples, p)
	}
	return samples, nil
}

// CompareShapes samples the same start/reserve/duration/decay parameters
// under every shape, for side by side previews. The Shape field of params is
// ignored.
func CompareShapes(params Params, points int) ([]Series, error) {
	series := make([]Series, 0, len(AllShapes()))
	for _, shape := range AllShapes() {
		p := params
		p.Shape = shape

		curve, err := NewCurve(p)
		if err != nil {
			return nil, err
		}
		samples, err := curve.Sample(points)
		if err != nil {
			return nil, err
		}
		series = append(series, Series{Shape: shape, Points: samples})
	}
	return series, nil
}
