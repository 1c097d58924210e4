// Package markov implements a first-order Markov chain over comparable
// states and binds it to the beam search engine.
package markov

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/hashicorp/go-multierror"

	"mcbeam/alg/dist"
)

var ErrMissingTransition = errors.New("missing transition")

// Chain maps each state to the distribution over its successors and keeps a
// current-state cursor. The table is read-only after construction; the
// cursor is not safe for concurrent Forward calls.
type Chain[S comparable] struct {
	table   map[S]*dist.Distribution[S]
	current S
	rand    dist.Rand
}

// New does not check that every reachable state has a row: a missing row
// fails the lookup that needs it. See Validate.
func New[S comparable](initial S, table map[S]*dist.Distribution[S], r dist.Rand) *Chain[S] {
	if r == nil {
		r = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Chain[S]{
		table:   table,
		current: initial,
		rand:    r,
	}
}

func (c *Chain[S]) Distribution(s S) (*dist.Distribution[S], error) {
	d, exists := c.table[s]
	if !exists || d == nil {
		return nil, fmt.Errorf("%w: no row for state %v", ErrMissingTransition, s)
	}
	return d, nil
}

func (c *Chain[S]) TransitionProb(from, to S) (float64, error) {
	d, err := c.Distribution(from)
	if err != nil {
		return 0, err
	}
	return d.Prob(to), nil
}

// Forward samples the successor of the current state and moves to it.
func (c *Chain[S]) Forward() (S, error) {
	d, err := c.Distribution(c.current)
	if err != nil {
		return c.current, err
	}
	c.current = d.Sample(c.rand)
	return c.current, nil
}

func (c *Chain[S]) Current() S {
	return c.current
}

func (c *Chain[S]) Reset(s S) {
	c.current = s
}

// Len is the number of states with a row.
func (c *Chain[S]) Len() int {
	return len(c.table)
}

// Validate reports every state that can be reached through some row but has
// no row of its own, including the current state.
func (c *Chain[S]) Validate() error {
	var (
		result  error
		checked = make(map[S]bool, len(c.table))
	)
	check := func(s S, from string) {
		if checked[s] {
			return
		}
		checked[s] = true
		if _, err := c.Distribution(s); err != nil {
			result = multierror.Append(result, fmt.Errorf("%w (%s)", err, from))
		}
	}
	check(c.current, "current state")
	for from, d := range c.table {
		if d == nil {
			continue
		}
		for _, to := range d.Support() {
			check(to, fmt.Sprintf("reached from %v", from))
		}
	}
	return result
}
