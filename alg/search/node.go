package search

import (
	"fmt"
	"strings"
)

// Handle identifies a node in a beam's arena. Slots are reused after their
// node is reclaimed; the generation tells a reused slot apart from the node
// the handle was issued for. The zero Handle refers to no node.
type Handle struct {
	slot int32
	gen  uint32
}

func (h Handle) Valid() bool {
	return h.gen != 0
}

func (h Handle) String() string {
	if !h.Valid() {
		return "<nil>"
	}
	return fmt.Sprintf("%d.%d", h.slot, h.gen)
}

// Node is a read-only snapshot of a node in the path tree.
type Node[S any, R any] struct {
	Handle    Handle
	State     S
	Score     float64
	Result    R
	Evaluated bool
	Parent    Handle
}

func (n Node[S, R]) IsRoot() bool {
	return !n.Parent.Valid()
}

func (n Node[S, R]) String() string {
	return fmt.Sprintf("(%v, %v)", n.State, n.Score)
}

// Path is the sequence of nodes from the root to a leaf. When the ancestry
// is longer than the beam's MaxPathLength, only the most recent nodes are
// kept and Truncated is set.
type Path[S any, R any] struct {
	Nodes     []Node[S, R]
	Truncated bool
}

func (p Path[S, R]) Len() int {
	return len(p.Nodes)
}

func (p Path[S, R]) Leaf() Node[S, R] {
	return p.Nodes[len(p.Nodes)-1]
}

func (p Path[S, R]) States() []S {
	retval := make([]S, len(p.Nodes))
	for i, n := range p.Nodes {
		retval[i] = n.State
	}
	return retval
}

func (p Path[S, R]) String() string {
	retval := make([]string, len(p.Nodes))
	for i, n := range p.Nodes {
		retval[i] = n.String()
	}
	prefix := "["
	if p.Truncated {
		prefix = "[... "
	}
	return prefix + strings.Join(retval, " ") + "]"
}

type entry[S any, R any] struct {
	state     S
	score     float64
	result    R
	evaluated bool
	parent    Handle
	refs      int
	gen       uint32
	live      bool
}

// arena stores the path tree. Every live node is referenced by the beam (if
// it is a head) and by each of its children; a node whose count drops to
// zero is freed and releases its parent in turn.
type arena[S any, R any] struct {
	entries []entry[S, R]
	free    []int32
}

func (a *arena[S, R]) alloc(state S, score float64, parent Handle) Handle {
	var slot int32
	if n := len(a.free); n > 0 {
		slot = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		slot = int32(len(a.entries))
		a.entries = append(a.entries, entry[S, R]{})
	}
	e := &a.entries[slot]
	gen := e.gen + 1
	if gen == 0 {
		gen = 1
	}
	*e = entry[S, R]{state: state, score: score, parent: parent, gen: gen, live: true}
	if parent.Valid() {
		a.entries[parent.slot].refs++
	}
	return Handle{slot, gen}
}

func (a *arena[S, R]) get(h Handle) (*entry[S, R], error) {
	if !h.Valid() || int(h.slot) >= len(a.entries) || h.slot < 0 {
		return nil, fmt.Errorf("%w: %v", ErrStaleHandle, h)
	}
	e := &a.entries[h.slot]
	if !e.live || e.gen != h.gen {
		return nil, fmt.Errorf("%w: %v", ErrStaleHandle, h)
	}
	return e, nil
}

func (a *arena[S, R]) retain(h Handle) {
	a.entries[h.slot].refs++
}

// release drops one reference to h and frees every ancestor left without
// references.
func (a *arena[S, R]) release(h Handle) {
	for h.Valid() {
		e := &a.entries[h.slot]
		e.refs--
		if e.refs > 0 {
			return
		}
		parent := e.parent
		*e = entry[S, R]{gen: e.gen}
		a.free = append(a.free, h.slot)
		h = parent
	}
}

func (a *arena[S, R]) node(h Handle) Node[S, R] {
	e := &a.entries[h.slot]
	return Node[S, R]{
		Handle:    h,
		State:     e.state,
		Score:     e.score,
		Result:    e.result,
		Evaluated: e.evaluated,
		Parent:    e.parent,
	}
}

func (a *arena[S, R]) live() int {
	return len(a.entries) - len(a.free)
}

// path walks parent links from h, keeping at most limit nodes.
func (a *arena[S, R]) path(h Handle, limit int) (Path[S, R], error) {
	if _, err := a.get(h); err != nil {
		return Path[S, R]{}, err
	}
	reversed := make([]Node[S, R], 0, 8)
	cur := h
	for cur.Valid() && len(reversed) < limit {
		n := a.node(cur)
		reversed = append(reversed, n)
		cur = n.Parent
	}
	p := Path[S, R]{
		Nodes:     make([]Node[S, R], len(reversed)),
		Truncated: cur.Valid(),
	}
	for i, n := range reversed {
		p.Nodes[len(reversed)-1-i] = n
	}
	return p, nil
}
