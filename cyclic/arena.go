package cyclic

// handle addresses a slot in an arena. A handle is only valid while the
// generation it carries matches the slot's; releasing a slot bumps the
// generation so old handles stop resolving.
type handle struct {
	index uint32
	gen   uint32
}

type node[T any] struct {
	gen   uint32
	live  bool
	left  handle
	right handle
	value T
}

// arena owns every node of one list. Released slots are kept on a free
// list and handed out again by alloc.
type arena[T any] struct {
	nodes []node[T]
	free  []uint32
	live  int
}

// alloc stores v in a fresh slot linked to itself on both sides.
func (a *arena[T]) alloc(v T) handle {
	var i uint32
	if n := len(a.free); n > 0 {
		i = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		i = uint32(len(a.nodes))
		// generation 0 is never handed out so the zero handle stays invalid
		a.nodes = append(a.nodes, node[T]{gen: 1})
	}

	n := &a.nodes[i]
	h := handle{index: i, gen: n.gen}
	n.live = true
	n.left = h
	n.right = h
	n.value = v
	a.live++
	return h
}

// release frees the slot behind h and returns the value it held. The caller
// must already have unlinked it from its neighbours.
func (a *arena[T]) release(h handle) T {
	n := a.node(h)
	if n == nil {
		panic("cyclic: release of stale handle")
	}

	var zero T
	v := n.value
	n.value = zero
	n.live = false
	n.left = handle{}
	n.right = handle{}
	n.gen++
	if n.gen == 0 {
		n.gen = 1
	}
	a.free = append(a.free, h.index)
	a.live--
	return v
}

// node resolves h, returning nil for stale or out of range handles.
func (a *arena[T]) node(h handle) *node[T] {
	if int(h.index) >= len(a.nodes) {
		return nil
	}
	n := &a.nodes[h.index]
	if !n.live || n.gen != h.gen {
		return nil
	}
	return n
}

func (a *arena[T]) clone() arena[T] {
	nodes := make([]node[T], len(a.nodes))
	copy(nodes, a.nodes)
	free := make([]uint32, len(a.free))
	copy(free, a.free)
	return arena[T]{nodes: nodes, free: free, live: a.live}
}
