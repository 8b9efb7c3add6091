// Package cyclic implements a ring of values with a movable cursor.
//
// The cursor ("current") can step left or right in O(1), and values can be
// inserted or removed next to it in O(1). Nodes live in an arena and refer
// to their neighbours through generation-checked handles, so a removed
// node can never be reached again through a stale link.
//
// A List is not safe for concurrent use.
package cyclic

import (
	"fmt"
	"iter"
	"strings"
)

// List is a ring with a cursor. The zero value is an empty list ready to use.
type List[T any] struct {
	arena arena[T]
	cur   handle
	len   int
}

// New returns an empty list.
func New[T any]() *List[T] {
	return &List[T]{}
}

// FromSlice builds a ring holding vs in order. The cursor rests on vs[0] and
// Left yields the last element.
func FromSlice[T any](vs []T) *List[T] {
	l := New[T]()
	for _, v := range vs {
		l = l.PushIntoRight(v)
	}
	return l.IntoRight()
}

// Collect is FromSlice for an iterator.
func Collect[T any](seq iter.Seq[T]) *List[T] {
	l := New[T]()
	for v := range seq {
		l = l.PushIntoRight(v)
	}
	return l.IntoRight()
}

func (l *List[T]) IsEmpty() bool {
	return l.len == 0
}

func (l *List[T]) Len() int {
	return l.len
}

//////////////
// Queries

// Current returns the value under the cursor.
func (l *List[T]) Current() (T, bool) {
	return deref(l.CurrentPtr())
}

// CurrentPtr returns a pointer to the value under the cursor, or nil if the
// list is empty. The pointer is only valid until the next mutating call.
func (l *List[T]) CurrentPtr() *T {
	if n := l.current(); n != nil {
		return &n.value
	}
	return nil
}

// Right returns the value clockwise of the cursor. With a single element
// this is the current value.
func (l *List[T]) Right() (T, bool) {
	return deref(l.RightPtr())
}

func (l *List[T]) RightPtr() *T {
	if n := l.current(); n != nil {
		return &l.arena.node(n.right).value
	}
	return nil
}

// Left returns the value counter-clockwise of the cursor. With a single
// element this is the current value.
func (l *List[T]) Left() (T, bool) {
	return deref(l.LeftPtr())
}

func (l *List[T]) LeftPtr() *T {
	if n := l.current(); n != nil {
		return &l.arena.node(n.left).value
	}
	return nil
}

//////////////
// Insertion

// PushRight inserts v clockwise of the cursor without moving it. On an empty
// list v becomes the current value.
func (l *List[T]) PushRight(v T) {
	h := l.arena.alloc(v)
	l.len++
	if l.len == 1 {
		l.cur = h
		return
	}

	// alloc may have grown the arena, so resolve after it
	cur := l.arena.node(l.cur)
	n := l.arena.node(h)
	n.left = l.cur
	n.right = cur.right
	l.arena.node(cur.right).left = h
	cur.right = h
}

// PushLeft inserts v counter-clockwise of the cursor without moving it.
func (l *List[T]) PushLeft(v T) {
	h := l.arena.alloc(v)
	l.len++
	if l.len == 1 {
		l.cur = h
		return
	}

	cur := l.arena.node(l.cur)
	n := l.arena.node(h)
	n.right = l.cur
	n.left = cur.left
	l.arena.node(cur.left).right = h
	cur.left = h
}

// PushMoveRight inserts v clockwise of the cursor and moves onto it.
func (l *List[T]) PushMoveRight(v T) {
	l.PushRight(v)
	l.MoveRight()
}

// PushMoveLeft inserts v counter-clockwise of the cursor and moves onto it.
func (l *List[T]) PushMoveLeft(v T) {
	l.PushLeft(v)
	l.MoveLeft()
}

//////////////
// Movement

// MoveRight steps the cursor clockwise. It does nothing on an empty list.
func (l *List[T]) MoveRight() {
	if n := l.current(); n != nil {
		l.cur = n.right
	}
}

// MoveLeft steps the cursor counter-clockwise. It does nothing on an empty
// list.
func (l *List[T]) MoveLeft() {
	if n := l.current(); n != nil {
		l.cur = n.left
	}
}

// MoveRightN steps the cursor clockwise n times. Non-positive n does nothing.
func (l *List[T]) MoveRightN(n int) {
	if l.len == 0 {
		return
	}
	for n %= l.len; n > 0; n-- {
		l.MoveRight()
	}
}

// MoveLeftN steps the cursor counter-clockwise n times. Non-positive n does
// nothing.
func (l *List[T]) MoveLeftN(n int) {
	if l.len == 0 {
		return
	}
	for n %= l.len; n > 0; n-- {
		l.MoveLeft()
	}
}

//////////////
// Removal

// PopRight removes and returns the value clockwise of the cursor. When only
// one value is left, that value is the current one and the list becomes
// empty.
func (l *List[T]) PopRight() (T, bool) {
	n := l.current()
	if n == nil {
		var zero T
		return zero, false
	}
	return l.unlink(n.right), true
}

// PopLeft removes and returns the value counter-clockwise of the cursor.
func (l *List[T]) PopLeft() (T, bool) {
	n := l.current()
	if n == nil {
		var zero T
		return zero, false
	}
	return l.unlink(n.left), true
}

// PopMoveRight removes and returns the current value, leaving the cursor on
// its clockwise neighbour. Repeated calls drain the ring in order.
func (l *List[T]) PopMoveRight() (T, bool) {
	l.MoveRight()
	return l.PopLeft()
}

// PopMoveLeft removes and returns the current value, leaving the cursor on
// its counter-clockwise neighbour.
func (l *List[T]) PopMoveLeft() (T, bool) {
	l.MoveLeft()
	return l.PopRight()
}

// unlink joins the neighbours of h to each other and frees h in one step.
func (l *List[T]) unlink(h handle) T {
	n := l.arena.node(h)
	left, right := n.left, n.right
	l.arena.node(left).right = right
	l.arena.node(right).left = left

	v := l.arena.release(h)
	l.len--
	if l.len == 0 {
		l.cur = handle{}
	}
	return v
}

// Clear removes every value, releasing each node exactly once.
func (l *List[T]) Clear() {
	for l.len > 0 {
		l.PopRight()
	}
}

//////////////
// Chaining

func (l *List[T]) IntoRight() *List[T] {
	l.MoveRight()
	return l
}

func (l *List[T]) IntoRightN(n int) *List[T] {
	l.MoveRightN(n)
	return l
}

func (l *List[T]) IntoLeft() *List[T] {
	l.MoveLeft()
	return l
}

func (l *List[T]) IntoLeftN(n int) *List[T] {
	l.MoveLeftN(n)
	return l
}

func (l *List[T]) PushIntoRight(v T) *List[T] {
	l.PushMoveRight(v)
	return l
}

func (l *List[T]) PushIntoLeft(v T) *List[T] {
	l.PushMoveLeft(v)
	return l
}

//////////////
// Copies

// Clone returns an independent ring with the same values in the same order
// and the cursor on the same position. Values are copied by assignment.
func (l *List[T]) Clone() *List[T] {
	return &List[T]{
		arena: l.arena.clone(),
		cur:   l.cur,
		len:   l.len,
	}
}

// Values returns the ring as a slice, starting at the current value and
// going clockwise.
func (l *List[T]) Values() []T {
	vs := make([]T, 0, l.len)
	for h, i := l.cur, 0; i < l.len; i++ {
		n := l.arena.node(h)
		vs = append(vs, n.value)
		h = n.right
	}
	return vs
}

func (l *List[T]) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, v := range l.Values() {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprint(&sb, v)
	}
	sb.WriteByte(']')
	return sb.String()
}

func (l *List[T]) current() *node[T] {
	if l.len == 0 {
		return nil
	}
	return l.arena.node(l.cur)
}

// check walks the ring both ways and reports the first broken invariant.
func (l *List[T]) check() error {
	if l.arena.live != l.len {
		return fmt.Errorf("arena holds %d live nodes, list length is %d", l.arena.live, l.len)
	}
	if l.len == 0 {
		if l.cur != (handle{}) {
			return fmt.Errorf("empty list has cursor %v", l.cur)
		}
		return nil
	}

	h := l.cur
	for i := 0; i < l.len; i++ {
		n := l.arena.node(h)
		if n == nil {
			return fmt.Errorf("step %d: stale handle %v", i, h)
		}
		if r := l.arena.node(n.right); r == nil || r.left != h {
			return fmt.Errorf("step %d: right neighbour of %v does not point back", i, h)
		}
		if lt := l.arena.node(n.left); lt == nil || lt.right != h {
			return fmt.Errorf("step %d: left neighbour of %v does not point back", i, h)
		}
		h = n.right
		if h == l.cur && i < l.len-1 {
			return fmt.Errorf("ring closed after %d steps, want %d", i+1, l.len)
		}
	}
	if h != l.cur {
		return fmt.Errorf("ring did not close after %d steps", l.len)
	}

	h = l.cur
	for i := 0; i < l.len; i++ {
		h = l.arena.node(h).left
	}
	if h != l.cur {
		return fmt.Errorf("reverse ring did not close after %d steps", l.len)
	}
	return nil
}

func deref[T any](p *T) (T, bool) {
	if p == nil {
		var zero T
		return zero, false
	}
	return *p, true
}
