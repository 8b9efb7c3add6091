package cyclic

import "iter"

// Iter walks a list once around without moving its cursor. It starts with
// the value clockwise of the cursor and ends with the current value.
type Iter[T any] struct {
	list      *List[T]
	pos       handle
	remaining int
}

// Iter returns a fresh walk over l. A finished Iter stays finished; call
// Iter again to walk the list a second time.
func (l *List[T]) Iter() *Iter[T] {
	return &Iter[T]{
		list:      l,
		pos:       l.cur,
		remaining: l.len,
	}
}

// Next returns the next value. It reports false once the walk is over, or
// as soon as the node it last visited has been removed from the list.
func (it *Iter[T]) Next() (T, bool) {
	var zero T
	if it.remaining == 0 {
		return zero, false
	}

	n := it.list.arena.node(it.pos)
	if n == nil {
		it.remaining = 0
		return zero, false
	}
	it.pos = n.right
	it.remaining--
	return it.list.arena.node(it.pos).value, true
}

// Len reports how many values Next will still return.
func (it *Iter[T]) Len() int {
	return it.remaining
}

// All is the Iter walk as a range-over-func sequence.
func (l *List[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		it := l.Iter()
		for v, ok := it.Next(); ok; v, ok = it.Next() {
			if !yield(v) {
				return
			}
		}
	}
}

// IntoIter drains a list with PopMoveRight. The first value is the one that
// was current; the list is empty once Next reports false.
type IntoIter[T any] struct {
	list *List[T]
}

// IntoIter takes over l. Callers should not use l directly afterwards.
func (l *List[T]) IntoIter() *IntoIter[T] {
	return &IntoIter[T]{list: l}
}

func (it *IntoIter[T]) Next() (T, bool) {
	return it.list.PopMoveRight()
}

func (it *IntoIter[T]) Len() int {
	return it.list.Len()
}

// Drain is IntoIter as a range-over-func sequence. Stopping early leaves the
// remaining values in l.
func (l *List[T]) Drain() iter.Seq[T] {
	return func(yield func(T) bool) {
		it := l.IntoIter()
		for v, ok := it.Next(); ok; v, ok = it.Next() {
			if !yield(v) {
				return
			}
		}
	}
}
