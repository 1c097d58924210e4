// Package conf reads Markov chain descriptions from YAML.
//
//	initial: a
//	states:
//	  - state: a
//	    next:
//	      - {to: b, p: 0.6}
//	      - {to: c, p: 0.4}
package conf

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"

	"mcbeam/alg/dist"
	"mcbeam/alg/markov"
	"mcbeam/util"
)

var ErrInvalidChain = errors.New("invalid chain")

type Transition struct {
	To string  `yaml:"to"`
	P  float64 `yaml:"p"`
}

type State struct {
	State string       `yaml:"state"`
	Next  []Transition `yaml:"next"`
}

type Chain struct {
	// Initial defaults to the first declared state.
	Initial string  `yaml:"initial"`
	States  []State `yaml:"states"`
}

func Load(data []byte) (*Chain, error) {
	return Read(bytes.NewReader(data))
}

func Read(reader io.Reader) (*Chain, error) {
	decoder := yaml.NewDecoder(reader)
	decoder.KnownFields(true)
	c := new(Chain)
	if err := decoder.Decode(c); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidChain)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidChain, err)
	}
	return c, nil
}

func ReadFile(filename string) (*Chain, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	c, err := Read(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return c, nil
}

// Build turns the description into a chain, reporting every bad row and
// duplicate state together. Dangling targets are reported only once every
// row is valid. The returned states are in declaration order.
func (c *Chain) Build(r dist.Rand) (*markov.Chain[string], []string, error) {
	var result error
	if len(c.States) == 0 {
		return nil, nil, fmt.Errorf("%w: no states", ErrInvalidChain)
	}
	states := util.NewEnumSet[string](len(c.States))
	table := make(map[string]*dist.Distribution[string], len(c.States))
	for i, s := range c.States {
		if s.State == "" {
			result = multierror.Append(result, fmt.Errorf("%w: state %d has no name", ErrInvalidChain, i))
			continue
		}
		if first, exists := states.IndexOf(s.State); exists {
			result = multierror.Append(result, fmt.Errorf("%w: state %q declared twice (first at %d)", ErrInvalidChain, s.State, first))
			continue
		}
		states.Add(s.State)
		pairs := make([]dist.Pair[string], len(s.Next))
		for j, t := range s.Next {
			pairs[j] = dist.Pair[string]{Value: t.To, Prob: t.P}
		}
		d, err := dist.New(pairs)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("state %q: %w", s.State, err))
			continue
		}
		table[s.State] = d
	}
	if result != nil {
		return nil, nil, result
	}

	initial := c.Initial
	if initial == "" {
		initial = states.ValueOf(0)
	}
	chain := markov.New(initial, table, r)
	if err := chain.Validate(); err != nil {
		return nil, nil, err
	}
	return chain, states.Values(), nil
}

// Demo is a six state chain on which a greedy walk of length three misses
// the most likely path.
func Demo() *Chain {
	return &Chain{
		Initial: "a",
		States: []State{
			{"a", []Transition{{"b", 0.6}, {"c", 0.4}}},
			{"b", []Transition{{"d", 0.4}, {"e", 0.6}}},
			{"c", []Transition{{"e", 1}}},
			{"d", []Transition{{"f", 1}}},
			{"e", []Transition{{"f", 1}}},
			{"f", []Transition{{"f", 1}}},
		},
	}
}
