// Package search implements a generic beam search over parent-linked paths.
//
// A Beam holds the live heads of at most Width paths. Each Advance evaluates
// every head with the Model, expands them into scored candidates, and keeps
// the global top-Width candidates across the whole beam.
package search

import (
	"errors"
)

const (
	MAX_PATH_LENGTH = 1000
)

var (
	ErrInvalidConfiguration = errors.New("invalid beam configuration")
	ErrInvalidScore         = errors.New("invalid candidate score")
	ErrStaleHandle          = errors.New("stale node handle")
)

// Model supplies the two capabilities the engine needs from a concrete
// search problem.
type Model[S any, R any] interface {
	// Evaluate runs the model against a state. The engine caches the result
	// on the node and calls Evaluate at most once per node.
	Evaluate(state S) (R, error)
	// Expand produces the scored successors of a node whose Result is set.
	// Scores are cumulative: they already include node.Score.
	Expand(node Node[S, R]) ([]Candidate[S], error)
}

type Candidate[S any] struct {
	State S
	Score float64
}

// ModelFuncs adapts a pair of functions to Model.
type ModelFuncs[S any, R any] struct {
	EvaluateFunc func(S) (R, error)
	ExpandFunc   func(Node[S, R]) ([]Candidate[S], error)
}

var _ Model[int, int] = ModelFuncs[int, int]{}

func (m ModelFuncs[S, R]) Evaluate(state S) (R, error) {
	return m.EvaluateFunc(state)
}

func (m ModelFuncs[S, R]) Expand(node Node[S, R]) ([]Candidate[S], error) {
	return m.ExpandFunc(node)
}
