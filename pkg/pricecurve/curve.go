// Package pricecurve defines the descending-price functions used by Dutch
// auctions. Every curve starts at the start price and never quotes less than
// the reserved price.
package pricecurve

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// Shape selects the decay function of a curve.
type Shape int

const (
	Linear Shape = iota
	Exponential
	Logarithmic
)

var (
	// ErrConfiguration is matched by every error returned for invalid curve
	// parameters.
	ErrConfiguration = errors.New("invalid configuration")
	// ErrInvalidDuration ...
	ErrInvalidDuration = errors.New("curve duration must be greater than zero")
	// ErrReserveAboveStart ...
	ErrReserveAboveStart = errors.New("reserved price must not exceed start price")
	// ErrNegativePrice ...
	ErrNegativePrice = errors.New("prices must not be negative")
	// ErrInvalidDecayFactor ...
	ErrInvalidDecayFactor = errors.New("decay factor must be a finite number greater than zero")
	// ErrUnknownShape ...
	ErrUnknownShape = errors.New("unknown curve shape")
	// ErrTooFewPoints ...
	ErrTooFewPoints = errors.New("sampling requires at least 2 points")
)

// ParamsError is returned by Validate and NewCurve for invalid parameters.
// It matches both ErrConfiguration and the sentinel carried in Reason.
type ParamsError struct {
	Reason error
}

func (e *ParamsError) Error() string {
	return fmt.Sprintf("%s: %s", ErrConfiguration, e.Reason)
}

func (e *ParamsError) Unwrap() error {
	return e.Reason
}

func (e *ParamsError) Is(target error) bool {
	return target == ErrConfiguration
}

// AllShapes returns every supported shape in declaration order.
func AllShapes() []Shape {
	return []Shape{Linear, Exponential, Logarithmic}
}

func (s Shape) String() string {
	switch s {
	case Linear:
		return "linear"
	case Exponential:
		return "exponential"
	case Logarithmic:
		return "logarithmic"
	default:
		return "unknown"
	}
}

// Params are the static parameters of a curve. DecayFactor is expressed per
// second of elapsed time and is ignored by the linear shape.
type Params struct {
	StartPrice    decimal.Decimal
	ReservedPrice decimal.Decimal
	Duration      time.Duration
	DecayFactor   float64
	Shape         Shape
}

// Validate checks the preconditions of the curve functions.
func (p Params) Validate() error {
	if err := p.validate(); err != nil {
		return &ParamsError{err}
	}
	return nil
}

func (p Params) validate() error {
	if p.Duration <= 0 {
		return ErrInvalidDuration
	}
	if p.ReservedPrice.IsNegative() || p.StartPrice.IsNegative() {
		return ErrNegativePrice
	}
	if p.ReservedPrice.GreaterThan(p.StartPrice) {
		return ErrReserveAboveStart
	}

	switch p.Shape {
	case Linear:
		return nil
	case Exponential, Logarithmic:
		if !(p.DecayFactor > 0) || math.IsInf(p.DecayFactor, 0) {
			return ErrInvalidDecayFactor
		}
		return nil
	default:
		return ErrUnknownShape
	}
}

// Curve is a validated, immutable price function.
type Curve struct {
	params Params
	spread decimal.Decimal
	weight func(t float64) float64
}

// NewCurve validates params and returns the corresponding curve.
func NewCurve(params Params) (*Curve, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	d := params.Duration.Seconds()
	k := params.DecayFactor

	var weight func(t float64) float64
	switch params.Shape {
	case Linear:
		weight = func(t float64) float64 {
			return 1 - t/d
		}
	case Exponential:
		weight = func(t float64) float64 {
			return math.Exp2(-k * t)
		}
	case Logarithmic:
		norm := math.Log2(1 + k*d)
		weight = func(t float64) float64 {
			return 1 - math.Log2(1+k*t)/norm
		}
	}

	return &Curve{
		params: params,
		spread: params.StartPrice.Sub(params.ReservedPrice),
		weight: weight,
	}, nil
}

// Params returns the parameters the curve was built from.
func (c *Curve) Params() Params {
	return c.params
}

// Shape returns the decay shape of the curve.
func (c *Curve) Shape() Shape {
	return c.params.Shape
}

// PriceAt returns the instantaneous price after the given elapsed time.
// Negative elapsed times quote the start price, elapsed times at or past the
// duration quote the reserved price.
//
// The exponential shape only approaches the reserved price asymptotically,
// so its quote is still above the reserve right before the duration and
// drops to it at the duration. With a start price of 10, a reserve of 2 and
// a factor of 0.01 over 100s the price goes from about 6 at 99.999s to 2 at
// 100s.
func (c *Curve) PriceAt(elapsed time.Duration) decimal.Decimal {
	if elapsed <= 0 {
		return c.params.StartPrice
	}
	if elapsed >= c.params.Duration {
		return c.params.ReservedPrice
	}

	w := c.weight(elapsed.Seconds())
	switch {
	case w >= 1:
		return c.params.StartPrice
	case w <= 0 || math.IsNaN(w):
		return c.params.ReservedPrice
	}

	price := c.params.ReservedPrice.Add(c.spread.Mul(decimal.NewFromFloat(w)))
	if price.GreaterThan(c.params.StartPrice) {
		return c.params.StartPrice
	}
	if price.LessThan(c.params.ReservedPrice) {
		return c.params.ReservedPrice
	}
	return price
}

// PriceAtTime is a convenience wrapper of PriceAt for curves anchored at
// startAt.
func (c *Curve) PriceAtTime(startAt, now time.Time) decimal.Decimal {
	return c.PriceAt(now.Sub(startAt))
}
