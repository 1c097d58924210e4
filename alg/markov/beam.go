package markov

import (
	"mcbeam/alg/dist"
	"mcbeam/alg/search"
)

// Model evaluates a state to its outgoing distribution and scores each
// successor by the path probability so far.
type Model[S comparable] struct {
	Chain *Chain[S]
}

var _ search.Model[string, *dist.Distribution[string]] = Model[string]{}

func (m Model[S]) Evaluate(state S) (*dist.Distribution[S], error) {
	return m.Chain.Distribution(state)
}

func (m Model[S]) Expand(node search.Node[S, *dist.Distribution[S]]) ([]search.Candidate[S], error) {
	pairs := node.Result.Pairs()
	retval := make([]search.Candidate[S], len(pairs))
	for i, p := range pairs {
		retval[i] = search.Candidate[S]{State: p.Value, Score: node.Score * p.Prob}
	}
	return retval, nil
}

// NewBeam roots a beam at the chain's current state.
func NewBeam[S comparable](c *Chain[S], width int) (*search.Beam[S, *dist.Distribution[S]], error) {
	return search.New[S, *dist.Distribution[S]](Model[S]{c}, c.Current(), width)
}
