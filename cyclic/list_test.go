package cyclic_test

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gregoryjjb/ringtool/cyclic"
)

func requireCurrent[T any](t *testing.T, l *cyclic.List[T], want T) {
	t.Helper()
	got, ok := l.Current()
	require.True(t, ok, "list should not be empty")
	require.Equal(t, want, got)
}

func requireNeighbours[T any](t *testing.T, l *cyclic.List[T], left, current, right T) {
	t.Helper()
	requireCurrent(t, l, current)
	got, ok := l.Left()
	require.True(t, ok)
	require.Equal(t, left, got, "left")
	got, ok = l.Right()
	require.True(t, ok)
	require.Equal(t, right, got, "right")
}

func TestEmptyList(t *testing.T) {
	l := cyclic.New[int]()

	assert.True(t, l.IsEmpty())
	assert.Equal(t, 0, l.Len())

	_, ok := l.Current()
	assert.False(t, ok)
	_, ok = l.Left()
	assert.False(t, ok)
	_, ok = l.Right()
	assert.False(t, ok)
	assert.Nil(t, l.CurrentPtr())
	assert.Nil(t, l.LeftPtr())
	assert.Nil(t, l.RightPtr())

	assert.NotPanics(t, func() {
		l.MoveRight()
		l.MoveLeft()
		l.MoveRightN(5)
		l.MoveLeftN(5)
		l.IntoRight().IntoLeft().IntoRightN(3).IntoLeftN(3)
		l.Clear()
	})

	for name, pop := range map[string]func() (int, bool){
		"PopRight":     l.PopRight,
		"PopLeft":      l.PopLeft,
		"PopMoveRight": l.PopMoveRight,
		"PopMoveLeft":  l.PopMoveLeft,
	} {
		v, ok := pop()
		assert.False(t, ok, name)
		assert.Zero(t, v, name)
	}

	assert.True(t, l.IsEmpty())
	assert.Empty(t, l.Values())
	assert.Equal(t, "[]", l.String())
	require.NoError(t, l.Check())
}

func TestZeroValueList(t *testing.T) {
	var l cyclic.List[string]
	l.PushRight("a")
	requireNeighbours(t, &l, "a", "a", "a")
	require.NoError(t, l.Check())
}

func TestFromSlice(t *testing.T) {
	l := cyclic.FromSlice([]int{0, 1, 2, 3, 4, 5})

	assert.Equal(t, 6, l.Len())
	requireNeighbours(t, l, 5, 0, 1)

	l.MoveRightN(2)
	requireNeighbours(t, l, 1, 2, 3)

	l.MoveRight()
	requireNeighbours(t, l, 2, 3, 4)
	require.NoError(t, l.Check())
}

func TestFromSliceSingle(t *testing.T) {
	l := cyclic.FromSlice([]string{"only"})
	requireNeighbours(t, l, "only", "only", "only")
	require.NoError(t, l.Check())
}

func TestFromSliceEmpty(t *testing.T) {
	l := cyclic.FromSlice[int](nil)
	assert.True(t, l.IsEmpty())
	require.NoError(t, l.Check())
}

func TestRingClosure(t *testing.T) {
	for n := 1; n <= 8; n++ {
		vs := make([]int, n)
		for i := range vs {
			vs[i] = i
		}
		l := cyclic.FromSlice(vs)

		for i := 0; i < n; i++ {
			l.MoveRight()
		}
		requireCurrent(t, l, 0)

		for i := 0; i < n; i++ {
			l.MoveLeft()
		}
		requireCurrent(t, l, 0)

		// length accuracy: distinct values seen before the cursor comes back
		seen := 1
		for l.MoveRight(); ; l.MoveRight() {
			if v, _ := l.Current(); v == 0 {
				break
			}
			seen++
		}
		assert.Equal(t, l.Len(), seen)
	}
}

func TestMoveN(t *testing.T) {
	tests := []struct {
		name string
		move func(l *cyclic.List[int])
		want int
	}{
		{name: "right two", move: func(l *cyclic.List[int]) { l.MoveRightN(2) }, want: 2},
		{name: "left two", move: func(l *cyclic.List[int]) { l.MoveLeftN(2) }, want: 3},
		{name: "right past the end", move: func(l *cyclic.List[int]) { l.MoveRightN(12) }, want: 2},
		{name: "left past the end", move: func(l *cyclic.List[int]) { l.MoveLeftN(11) }, want: 4},
		{name: "right zero", move: func(l *cyclic.List[int]) { l.MoveRightN(0) }, want: 0},
		{name: "negative does nothing", move: func(l *cyclic.List[int]) { l.MoveRightN(-3) }, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := cyclic.FromSlice([]int{0, 1, 2, 3, 4})
			tt.move(l)
			requireCurrent(t, l, tt.want)
		})
	}
}

func TestPushRight(t *testing.T) {
	l := cyclic.New[int]()

	l.PushRight(42)
	requireNeighbours(t, l, 42, 42, 42)

	l.PushRight(43)
	requireNeighbours(t, l, 43, 42, 43)

	l.PushRight(44)
	requireNeighbours(t, l, 43, 42, 44)
	assert.Equal(t, []int{42, 44, 43}, l.Values())
	require.NoError(t, l.Check())
}

func TestPushLeft(t *testing.T) {
	l := cyclic.New[int]()

	l.PushLeft(42)
	requireNeighbours(t, l, 42, 42, 42)

	l.PushLeft(43)
	requireNeighbours(t, l, 43, 42, 43)

	l.PushLeft(44)
	requireNeighbours(t, l, 44, 42, 43)
	assert.Equal(t, []int{42, 43, 44}, l.Values())
	require.NoError(t, l.Check())
}

func TestPushMoveRight(t *testing.T) {
	l := cyclic.New[int]()

	l.PushMoveRight(42)
	requireCurrent(t, l, 42)

	l.PushMoveRight(43)
	requireNeighbours(t, l, 42, 43, 42)
	assert.Equal(t, 2, l.Len())
	require.NoError(t, l.Check())
}

func TestPushMoveLeft(t *testing.T) {
	l := cyclic.New[int]()

	l.PushMoveLeft(42)
	l.PushMoveLeft(43)
	requireNeighbours(t, l, 42, 43, 42)

	l.PushMoveLeft(44)
	requireNeighbours(t, l, 42, 44, 43)
	require.NoError(t, l.Check())
}

func TestPushPopInverse(t *testing.T) {
	for _, start := range [][]int{{}, {1}, {1, 2}, {1, 2, 3}, {5, 6, 7, 8, 9}} {
		l := cyclic.FromSlice(start)
		before := l.Values()

		l.PushRight(99)
		v, ok := l.PopRight()
		require.True(t, ok)
		assert.Equal(t, 99, v)
		assert.Equal(t, before, l.Values())
		assert.Equal(t, len(start), l.Len())
		require.NoError(t, l.Check())

		l.PushLeft(98)
		v, ok = l.PopLeft()
		require.True(t, ok)
		assert.Equal(t, 98, v)
		assert.Equal(t, before, l.Values())
		require.NoError(t, l.Check())
	}
}

func TestPopRight(t *testing.T) {
	l := cyclic.New[int]()
	l.PushLeft(42)
	l.PushRight(43)

	v, ok := l.PopRight()
	require.True(t, ok)
	assert.Equal(t, 43, v)

	v, ok = l.PopRight()
	require.True(t, ok)
	assert.Equal(t, 42, v)

	_, ok = l.PopRight()
	assert.False(t, ok)
	assert.True(t, l.IsEmpty())
	_, ok = l.Current()
	assert.False(t, ok)
	assert.Equal(t, 0, l.LiveNodes())
}

func TestPopLeft(t *testing.T) {
	l := cyclic.FromSlice([]int{0, 1, 2, 3, 4})

	for _, want := range []int{4, 3, 2, 1, 0} {
		v, ok := l.PopLeft()
		require.True(t, ok)
		assert.Equal(t, want, v)
		require.NoError(t, l.Check())
	}
	_, ok := l.PopLeft()
	assert.False(t, ok)
}

func TestPopMoveRightDrainsInOrder(t *testing.T) {
	l := cyclic.FromSlice([]int{0, 1, 2, 3, 4, 5})

	for want := 0; want < 6; want++ {
		v, ok := l.PopMoveRight()
		require.True(t, ok)
		assert.Equal(t, want, v)
		require.NoError(t, l.Check())
	}

	_, ok := l.PopMoveRight()
	assert.False(t, ok)
	assert.True(t, l.IsEmpty())
	assert.Equal(t, 0, l.LiveNodes())
}

func TestPopMoveLeft(t *testing.T) {
	l := cyclic.FromSlice([]int{0, 1, 2, 3, 4})

	for _, want := range []int{0, 4, 3, 2, 1} {
		v, ok := l.PopMoveLeft()
		require.True(t, ok)
		assert.Equal(t, want, v)
	}
	_, ok := l.PopMoveLeft()
	assert.False(t, ok)
}

func TestPointers(t *testing.T) {
	l := cyclic.FromSlice([]int{10, 20, 30})

	*l.CurrentPtr() += 1
	*l.RightPtr() += 2
	*l.LeftPtr() += 3

	assert.Equal(t, []int{11, 22, 33}, l.Values())
}

func TestPointersSingleElementAlias(t *testing.T) {
	l := cyclic.FromSlice([]int{1})
	assert.Same(t, l.CurrentPtr(), l.RightPtr())
	assert.Same(t, l.CurrentPtr(), l.LeftPtr())
}

func TestChainingMatchesMutation(t *testing.T) {
	chained := cyclic.New[int]().PushIntoRight(42).PushIntoRight(43)
	requireNeighbours(t, chained, 42, 43, 42)

	mutated := cyclic.New[int]()
	mutated.PushMoveRight(42)
	mutated.PushMoveRight(43)
	assert.Equal(t, mutated.Values(), chained.Values())

	left := cyclic.New[int]().PushIntoLeft(42).PushIntoLeft(43)
	requireCurrent(t, left, 43)
	v, _ := left.Left()
	assert.Equal(t, 42, v)

	l := cyclic.FromSlice([]int{0, 1, 2, 3, 4})
	requireCurrent(t, l.IntoRightN(2), 2)
	requireCurrent(t, l.IntoLeftN(4), 3)
	requireCurrent(t, l.IntoRight(), 4)
	requireCurrent(t, l.IntoLeft().IntoLeft(), 2)
}

func TestClone(t *testing.T) {
	l := cyclic.FromSlice([]string{"a", "b", "c", "d"})
	l.MoveRight()

	c := l.Clone()
	requireNeighbours(t, c, "a", "b", "c")
	require.NoError(t, c.Check())

	c.PopRight()
	c.PushLeft("z")
	*c.CurrentPtr() = "B"

	assert.Equal(t, []string{"b", "c", "d", "a"}, l.Values())
	assert.Equal(t, []string{"B", "d", "a", "z"}, c.Values())
	require.NoError(t, l.Check())
	require.NoError(t, c.Check())
}

func TestClear(t *testing.T) {
	l := cyclic.FromSlice([]int{1, 2, 3})
	l.Clear()

	assert.True(t, l.IsEmpty())
	assert.Equal(t, 0, l.LiveNodes())
	require.NoError(t, l.Check())

	l.PushRight(4)
	requireNeighbours(t, l, 4, 4, 4)
}

func TestString(t *testing.T) {
	l := cyclic.FromSlice([]int{0, 1, 2})
	l.MoveLeft()
	assert.Equal(t, "[2 0 1]", l.String())
}

// TestAgainstSliceModel runs random operations against both a List and a
// plain slice with a cursor index, checking the ring after every step.
func TestAgainstSliceModel(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	l := cyclic.New[int]()
	var model []int
	cur := 0

	rotated := func() []int {
		out := make([]int, 0, len(model))
		for i := range model {
			out = append(out, model[(cur+i)%len(model)])
		}
		return out
	}
	remove := func(idx int) int {
		v := model[idx]
		model = append(model[:idx], model[idx+1:]...)
		if idx < cur {
			cur--
		}
		if len(model) == 0 {
			cur = 0
		}
		return v
	}

	for step, next := 0, 0; step < 5000; step++ {
		n := len(model)
		switch op := r.IntN(8); op {
		case 0:
			l.PushRight(next)
			if n == 0 {
				model = []int{next}
			} else {
				model = append(model[:cur+1], append([]int{next}, model[cur+1:]...)...)
			}
			next++
		case 1:
			l.PushLeft(next)
			if n == 0 {
				model = []int{next}
			} else {
				model = append(model[:cur], append([]int{next}, model[cur:]...)...)
				cur++
			}
			next++
		case 2:
			l.MoveRight()
			if n > 0 {
				cur = (cur + 1) % n
			}
		case 3:
			l.MoveLeft()
			if n > 0 {
				cur = (cur - 1 + n) % n
			}
		case 4, 5:
			v, ok := l.PopRight()
			require.Equal(t, n > 0, ok, "step %d", step)
			if n > 0 {
				require.Equal(t, remove((cur+1)%n), v, "step %d", step)
			}
		case 6:
			v, ok := l.PopLeft()
			require.Equal(t, n > 0, ok, "step %d", step)
			if n > 0 {
				require.Equal(t, remove((cur-1+n)%n), v, "step %d", step)
			}
		case 7:
			k := r.IntN(10)
			l.MoveRightN(k)
			if n > 0 {
				cur = (cur + k) % n
			}
		}

		require.NoError(t, l.Check(), "step %d", step)
		require.Equal(t, len(model), l.Len(), "step %d", step)
		require.Equal(t, rotated(), l.Values(), "step %d", step)
	}
}
