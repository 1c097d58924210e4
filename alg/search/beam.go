package search

import (
	"container/heap"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"mcbeam/alg/rlheap"
)

type Beam[S any, R any] struct {
	Model Model[S, R]

	// MaxPathLength caps the number of nodes Path returns; 0 means
	// MAX_PATH_LENGTH.
	MaxPathLength int

	Log    bool
	Logger *slog.Logger

	width      int
	generation int
	heads      []Handle
	arena      arena[S, R]
}

// New creates a beam of the given width rooted at initial, with score 1.
func New[S any, R any](model Model[S, R], initial S, width int) (*Beam[S, R], error) {
	if width < 1 {
		return nil, fmt.Errorf("%w: width must be positive, got %d", ErrInvalidConfiguration, width)
	}
	if model == nil {
		return nil, fmt.Errorf("%w: nil model", ErrInvalidConfiguration)
	}
	b := &Beam[S, R]{
		Model: model,
		width: width,
		heads: make([]Handle, 0, width),
	}
	root := b.arena.alloc(initial, 1.0, Handle{})
	b.arena.retain(root)
	b.heads = append(b.heads, root)
	return b, nil
}

func (b *Beam[S, R]) logger() *slog.Logger {
	if b.Logger != nil {
		return b.Logger
	}
	return slog.Default()
}

// Advance extends every live path by one transition and keeps the
// Width best candidates across the whole beam. Candidates with equal scores
// are ordered by head position, then by their position in the head's
// expansion. On error the beam is left as it was.
func (b *Beam[S, R]) Advance() error {
	for i, h := range b.heads {
		e := &b.arena.entries[h.slot]
		if e.evaluated {
			continue
		}
		result, err := b.Model.Evaluate(e.state)
		if err != nil {
			return fmt.Errorf("evaluating head %d (%v): %w", i, e.state, err)
		}
		e.result, e.evaluated = result, true
	}

	agenda := newAgenda[S](b.width)
	total := 0
	for i, h := range b.heads {
		candidates, err := b.Model.Expand(b.arena.node(h))
		if err != nil {
			return fmt.Errorf("expanding head %d (%v): %w", i, b.arena.entries[h.slot].state, err)
		}
		for j, c := range candidates {
			if math.IsNaN(c.Score) {
				return fmt.Errorf("%w: NaN for candidate %d of head %d (%v)", ErrInvalidScore, j, i, c.State)
			}
			agenda.add(scored[S]{c, i, j})
		}
		total += len(candidates)
	}
	agenda.sort()

	heads := make([]Handle, len(agenda.confs))
	for i, c := range agenda.confs {
		h := b.arena.alloc(c.State, c.Score, b.heads[c.head])
		b.arena.retain(h)
		heads[i] = h
	}
	for _, h := range b.heads {
		b.arena.release(h)
	}
	b.heads = heads
	b.generation++

	if b.Log {
		b.logger().Debug("beam advanced",
			"generation", b.generation,
			"candidates", total,
			"kept", len(heads),
			"live", b.arena.live(),
			"agenda", agenda.String())
	}
	return nil
}

func (b *Beam[S, R]) Width() int {
	return b.width
}

// Len is the number of live heads.
func (b *Beam[S, R]) Len() int {
	return len(b.heads)
}

// Generation counts successful calls to Advance.
func (b *Beam[S, R]) Generation() int {
	return b.generation
}

// Live is the number of nodes still reachable from the beam.
func (b *Beam[S, R]) Live() int {
	return b.arena.live()
}

// Heads returns the current beam in selection order.
func (b *Beam[S, R]) Heads() []Node[S, R] {
	retval := make([]Node[S, R], len(b.heads))
	for i, h := range b.heads {
		retval[i] = b.arena.node(h)
	}
	return retval
}

func (b *Beam[S, R]) Node(h Handle) (Node[S, R], error) {
	if _, err := b.arena.get(h); err != nil {
		return Node[S, R]{}, err
	}
	return b.arena.node(h), nil
}

// Best returns the highest scoring head; the earliest head wins ties.
func (b *Beam[S, R]) Best() (Node[S, R], bool) {
	var (
		best  Node[S, R]
		found bool
	)
	for _, h := range b.heads {
		n := b.arena.node(h)
		if !found || n.Score > best.Score {
			best, found = n, true
		}
	}
	return best, found
}

// Path reconstructs the path from the root to h.
func (b *Beam[S, R]) Path(h Handle) (Path[S, R], error) {
	limit := b.MaxPathLength
	if limit <= 0 {
		limit = MAX_PATH_LENGTH
	}
	p, err := b.arena.path(h, limit)
	if err != nil {
		return p, err
	}
	if p.Truncated && b.Log {
		b.logger().Warn("path truncated", "leaf", h, "kept", len(p.Nodes))
	}
	return p, nil
}

// Paths returns the path of every head, in beam order.
func (b *Beam[S, R]) Paths() ([]Path[S, R], error) {
	retval := make([]Path[S, R], len(b.heads))
	for i, h := range b.heads {
		p, err := b.Path(h)
		if err != nil {
			return nil, err
		}
		retval[i] = p
	}
	return retval, nil
}

type scored[S any] struct {
	Candidate[S]
	head int
	num  int
}

// worse orders candidates by score, then prefers earlier heads and earlier
// expansions. It is a strict total order over distinct (head, num) pairs.
func worse[S any](x, y scored[S]) bool {
	if x.Score != y.Score {
		return x.Score < y.Score
	}
	if x.head != y.head {
		return x.head > y.head
	}
	return x.num > y.num
}

// agenda is a bounded heap holding the best candidates seen so far, with the
// worst of them at the root.
type agenda[S any] struct {
	size  int
	confs []scored[S]
}

func newAgenda[S any](size int) *agenda[S] {
	return &agenda[S]{size: size, confs: make([]scored[S], 0, size)}
}

func (a *agenda[S]) add(c scored[S]) {
	if len(a.confs) < a.size {
		heap.Push(a, c)
		return
	}
	if !worse(a.confs[0], c) {
		return
	}
	a.confs[0] = c
	heap.Fix(a, 0)
}

// sort orders the agenda best first.
func (a *agenda[S]) sort() {
	rlheap.Sort(a)
}

func (a *agenda[S]) Len() int {
	return len(a.confs)
}

func (a *agenda[S]) Less(i, j int) bool {
	return worse(a.confs[i], a.confs[j])
}

func (a *agenda[S]) Swap(i, j int) {
	a.confs[i], a.confs[j] = a.confs[j], a.confs[i]
}

func (a *agenda[S]) Push(x interface{}) {
	a.confs = append(a.confs, x.(scored[S]))
}

func (a *agenda[S]) Pop() interface{} {
	n := len(a.confs)
	c := a.confs[n-1]
	a.confs = a.confs[0 : n-1]
	return c
}

func (a *agenda[S]) String() string {
	retval := make([]string, len(a.confs))
	for i, c := range a.confs {
		retval[i] = fmt.Sprintf("%v:%v:%v", c.head, c.State, c.Score)
	}
	return strings.Join(retval, ",")
}
