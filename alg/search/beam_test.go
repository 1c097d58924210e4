package search

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// binaryModel expands state n into 2n and 2n+1 with equal probability, so
// every tie in the beam is settled by head and expansion order.
type binaryModel struct {
	evaluated map[int]int
}

func (m *binaryModel) Evaluate(state int) ([]int, error) {
	if m.evaluated != nil {
		m.evaluated[state]++
	}
	return []int{2 * state, 2*state + 1}, nil
}

func (m *binaryModel) Expand(node Node[int, []int]) ([]Candidate[int], error) {
	retval := make([]Candidate[int], len(node.Result))
	for i, s := range node.Result {
		retval[i] = Candidate[int]{s, node.Score * 0.5}
	}
	return retval, nil
}

func headStates[S any, R any](b *Beam[S, R]) []S {
	heads := b.Heads()
	retval := make([]S, len(heads))
	for i, h := range heads {
		retval[i] = h.State
	}
	return retval
}

func TestNewRejectsWidth(t *testing.T) {
	for _, width := range []int{0, -3} {
		_, err := New[int, []int](&binaryModel{}, 1, width)
		assert.ErrorIs(t, err, ErrInvalidConfiguration)
	}
	_, err := New[int, []int](nil, 1, 1)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestInitialBeam(t *testing.T) {
	b, err := New[int, []int](&binaryModel{}, 1, 4)
	require.NoError(t, err)
	heads := b.Heads()
	require.Len(t, heads, 1)
	assert.Equal(t, 1, heads[0].State)
	assert.Equal(t, 1.0, heads[0].Score)
	assert.True(t, heads[0].IsRoot())
	assert.False(t, heads[0].Evaluated)
	assert.Equal(t, 0, b.Generation())
	assert.Equal(t, 4, b.Width())
}

func TestTieOrder(t *testing.T) {
	b, err := New[int, []int](&binaryModel{}, 1, 3)
	require.NoError(t, err)

	require.NoError(t, b.Advance())
	assert.Equal(t, []int{2, 3}, headStates(b))

	require.NoError(t, b.Advance())
	assert.Equal(t, []int{4, 5, 6}, headStates(b))

	require.NoError(t, b.Advance())
	assert.Equal(t, []int{8, 9, 10}, headStates(b))
	for _, h := range b.Heads() {
		assert.Equal(t, 0.125, h.Score)
	}
}

func TestBeamLengthIsMinOfWidthAndCandidates(t *testing.T) {
	for width := 1; width <= 6; width++ {
		b, err := New[int, []int](&binaryModel{}, 1, width)
		require.NoError(t, err)
		for g := 0; g < 4; g++ {
			produced := 2 * b.Len()
			require.NoError(t, b.Advance())
			expected := width
			if produced < expected {
				expected = produced
			}
			assert.Equal(t, expected, b.Len(), "width %d generation %d", width, g+1)
		}
	}
}

func TestGlobalSelection(t *testing.T) {
	// head "x" produces two strong successors, head "y" only weak ones
	model := ModelFuncs[string, map[string]float64]{
		EvaluateFunc: func(s string) (map[string]float64, error) {
			return nil, nil
		},
		ExpandFunc: func(n Node[string, map[string]float64]) ([]Candidate[string], error) {
			switch n.State {
			case "root":
				return []Candidate[string]{{"x", 0.5}, {"y", 0.5}}, nil
			case "x":
				return []Candidate[string]{{"x1", n.Score * 0.5}, {"x2", n.Score * 0.5}}, nil
			case "y":
				return []Candidate[string]{{"y1", n.Score * 0.1}, {"y2", n.Score * 0.1}}, nil
			}
			return nil, nil
		},
	}
	b, err := New[string, map[string]float64](model, "root", 2)
	require.NoError(t, err)
	require.NoError(t, b.Advance())
	require.NoError(t, b.Advance())
	assert.Equal(t, []string{"x1", "x2"}, headStates(b))

	// terminal states produce nothing and the beam empties
	require.NoError(t, b.Advance())
	assert.Equal(t, 0, b.Len())
	_, found := b.Best()
	assert.False(t, found)
	require.NoError(t, b.Advance())
	assert.Equal(t, 4, b.Generation())
	assert.Equal(t, 0, b.Live())
}

func TestEvaluateOncePerNode(t *testing.T) {
	m := &binaryModel{evaluated: make(map[int]int)}
	failing := true
	model := ModelFuncs[int, []int]{
		EvaluateFunc: m.Evaluate,
		ExpandFunc: func(n Node[int, []int]) ([]Candidate[int], error) {
			if failing && n.State == 3 {
				return nil, errors.New("boom")
			}
			return m.Expand(n)
		},
	}
	b, err := New[int, []int](model, 1, 2)
	require.NoError(t, err)
	require.NoError(t, b.Advance())

	err = b.Advance()
	require.Error(t, err)
	assert.Equal(t, 1, b.Generation())
	assert.Equal(t, []int{2, 3}, headStates(b))
	for _, h := range b.Heads() {
		assert.True(t, h.Evaluated)
	}

	failing = false
	require.NoError(t, b.Advance())
	for state, n := range m.evaluated {
		assert.Equal(t, 1, n, "state %d evaluated %d times", state, n)
	}
}

func TestNaNScore(t *testing.T) {
	model := ModelFuncs[int, int]{
		EvaluateFunc: func(s int) (int, error) { return s, nil },
		ExpandFunc: func(n Node[int, int]) ([]Candidate[int], error) {
			return []Candidate[int]{{n.State + 1, math.NaN()}}, nil
		},
	}
	b, err := New[int, int](model, 0, 1)
	require.NoError(t, err)
	assert.ErrorIs(t, b.Advance(), ErrInvalidScore)
	assert.Equal(t, 0, b.Generation())
	assert.Equal(t, 1, b.Len())
}

func TestReclaimPrunedBranches(t *testing.T) {
	b, err := New[int, []int](&binaryModel{}, 1, 2)
	require.NoError(t, err)
	require.NoError(t, b.Advance())
	heads := b.Heads()
	require.Equal(t, []int{2, 3}, headStates(b))
	pruned := heads[1].Handle

	require.NoError(t, b.Advance())
	assert.Equal(t, []int{4, 5}, headStates(b))
	assert.Equal(t, 4, b.Live())
	_, err = b.Node(pruned)
	assert.ErrorIs(t, err, ErrStaleHandle)
	_, err = b.Path(pruned)
	assert.ErrorIs(t, err, ErrStaleHandle)

	require.NoError(t, b.Advance())
	assert.Equal(t, []int{8, 9}, headStates(b))
	assert.Equal(t, 5, b.Live())
	_, err = b.Node(pruned)
	assert.ErrorIs(t, err, ErrStaleHandle, "reused slot must not resurrect the old handle")

	_, err = b.Node(Handle{})
	assert.ErrorIs(t, err, ErrStaleHandle)
}

func TestPaths(t *testing.T) {
	b, err := New[int, []int](&binaryModel{}, 1, 2)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		require.NoError(t, b.Advance())
	}
	paths, err := b.Paths()
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.Equal(t, []int{1, 2, 4, 8}, paths[0].States())
	assert.Equal(t, []int{1, 2, 4, 9}, paths[1].States())
	for _, p := range paths {
		assert.False(t, p.Truncated)
		assert.True(t, p.Nodes[0].IsRoot())
		for i := 1; i < p.Len(); i++ {
			assert.Equal(t, p.Nodes[i-1].Handle, p.Nodes[i].Parent)
			assert.Equal(t, p.Nodes[i-1].Score*0.5, p.Nodes[i].Score)
		}
	}
	assert.Equal(t, "[(1, 1) (2, 0.5) (4, 0.25) (8, 0.125)]", paths[0].String())
}

func TestPathTruncation(t *testing.T) {
	model := ModelFuncs[int, int]{
		EvaluateFunc: func(s int) (int, error) { return s, nil },
		ExpandFunc: func(n Node[int, int]) ([]Candidate[int], error) {
			return []Candidate[int]{{n.State + 1, n.Score}}, nil
		},
	}
	b, err := New[int, int](model, 0, 1)
	require.NoError(t, err)
	b.MaxPathLength = 5
	for i := 0; i < 10; i++ {
		require.NoError(t, b.Advance())
	}
	heads := b.Heads()
	p, err := b.Path(heads[0].Handle)
	require.NoError(t, err)
	assert.True(t, p.Truncated)
	assert.Equal(t, []int{6, 7, 8, 9, 10}, p.States())
	assert.Equal(t, heads[0], p.Leaf())
	assert.Equal(t, "[... (6, 1) (7, 1) (8, 1) (9, 1) (10, 1)]", p.String())

	b.MaxPathLength = 0
	p, err = b.Path(heads[0].Handle)
	require.NoError(t, err)
	assert.False(t, p.Truncated)
	assert.Equal(t, 11, p.Len())
}

func TestDefaultPathGuard(t *testing.T) {
	model := ModelFuncs[int, int]{
		EvaluateFunc: func(s int) (int, error) { return s, nil },
		ExpandFunc: func(n Node[int, int]) ([]Candidate[int], error) {
			return []Candidate[int]{{n.State + 1, n.Score}}, nil
		},
	}
	b, err := New[int, int](model, 0, 1)
	require.NoError(t, err)
	for i := 0; i < MAX_PATH_LENGTH+5; i++ {
		require.NoError(t, b.Advance())
	}
	paths, err := b.Paths()
	require.NoError(t, err)
	assert.True(t, paths[0].Truncated)
	assert.Equal(t, MAX_PATH_LENGTH, paths[0].Len())
	assert.Equal(t, MAX_PATH_LENGTH+5, paths[0].Leaf().State)
	assert.Equal(t, MAX_PATH_LENGTH+6, b.Live())
}
