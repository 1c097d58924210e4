// Package dist implements immutable discrete probability distributions used
// both for sampling transitions and for scoring beam candidates.
package dist

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/hashicorp/go-multierror"
	"gonum.org/v1/gonum/floats"
)

// Tolerance is the allowed deviation of a distribution's total mass from 1.
const Tolerance = 1e-9

var ErrInvalidDistribution = errors.New("invalid distribution")

// Rand is the source of uniform draws in [0,1) used by Sample.
type Rand interface {
	Float64() float64
}

type Pair[T comparable] struct {
	Value T
	Prob  float64
}

// Distribution is a discrete probability mass function over an ordered
// support. The zero value is not usable; construct with New.
type Distribution[T comparable] struct {
	pairs []Pair[T]
	cum   []float64
}

// New filters out entries with non-positive probability and verifies the
// rest sum to 1 within Tolerance. Every problem found is reported.
func New[T comparable](pairs []Pair[T]) (*Distribution[T], error) {
	var (
		result error
		kept   = make([]Pair[T], 0, len(pairs))
	)
	for i, p := range pairs {
		if math.IsNaN(p.Prob) || math.IsInf(p.Prob, 0) {
			result = multierror.Append(result, fmt.Errorf("%w: entry %d (%v) has probability %v", ErrInvalidDistribution, i, p.Value, p.Prob))
			continue
		}
		if p.Prob > 0 {
			kept = append(kept, p)
		}
	}
	probs := make([]float64, len(kept))
	for i, p := range kept {
		probs[i] = p.Prob
	}
	if len(kept) == 0 {
		result = multierror.Append(result, fmt.Errorf("%w: empty support", ErrInvalidDistribution))
	} else if sum := floats.Sum(probs); math.Abs(sum-1) > Tolerance {
		result = multierror.Append(result, fmt.Errorf("%w: probabilities sum to %v", ErrInvalidDistribution, sum))
	}
	if result != nil {
		return nil, result
	}
	return &Distribution[T]{
		pairs: kept,
		cum:   floats.CumSum(make([]float64, len(probs)), probs),
	}, nil
}

func MustNew[T comparable](pairs []Pair[T]) *Distribution[T] {
	d, err := New(pairs)
	if err != nil {
		panic(err)
	}
	return d
}

// Prob returns the probability of the first entry equal to t, or 0 if t is
// outside the support. Supports are expected to be unique.
func (d *Distribution[T]) Prob(t T) float64 {
	for _, p := range d.pairs {
		if p.Value == t {
			return p.Prob
		}
	}
	return 0
}

// Sample returns the value at the first index whose cumulative sum exceeds
// a uniform draw from r.
func (d *Distribution[T]) Sample(r Rand) T {
	u := r.Float64()
	for i, c := range d.cum {
		if c > u {
			return d.pairs[i].Value
		}
	}
	// rounding left the total just under u
	return d.pairs[len(d.pairs)-1].Value
}

func (d *Distribution[T]) Len() int {
	return len(d.pairs)
}

func (d *Distribution[T]) Pairs() []Pair[T] {
	retval := make([]Pair[T], len(d.pairs))
	copy(retval, d.pairs)
	return retval
}

func (d *Distribution[T]) Support() []T {
	retval := make([]T, len(d.pairs))
	for i, p := range d.pairs {
		retval[i] = p.Value
	}
	return retval
}

func (d *Distribution[T]) CumSum() []float64 {
	retval := make([]float64, len(d.cum))
	copy(retval, d.cum)
	return retval
}

func (d *Distribution[T]) String() string {
	retval := make([]string, len(d.pairs))
	for i, p := range d.pairs {
		retval[i] = fmt.Sprintf("%v:%v", p.Value, p.Prob)
	}
	return "{" + strings.Join(retval, ",") + "}"
}
