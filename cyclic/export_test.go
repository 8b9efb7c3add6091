package cyclic

// Check exposes the ring invariant walk to the external tests.
func (l *List[T]) Check() error {
	return l.check()
}

// LiveNodes reports how many arena slots are in use.
func (l *List[T]) LiveNodes() int {
	return l.arena.live
}
