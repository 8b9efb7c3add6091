package puzzles

import (
	"iter"
	"slices"

	"gregoryjjb/ringtool/cyclic"
)

// seats yields 1..n.
func seats(n int) iter.Seq[int] {
	return func(yield func(int) bool) {
		for i := 1; i <= n; i++ {
			if !yield(i) {
				return
			}
		}
	}
}

var marbles = &Puzzle{
	Name:        "marbles",
	Description: "Players take turns placing marbles in a circle; every 23rd marble scores. Answer is the winning score.",
	Defaults:    Params{"players": 9, "last": 25},
	min:         Params{"players": 1, "last": 0},
	max:         Params{"players": MaxSize, "last": MaxSize},
	solve: func(s *stepper, p Params) int {
		players, last := p["players"], p["last"]
		scores := make([]int, players)

		ring := cyclic.New[int]()
		ring.PushRight(0)

		s.start(last)
		for m := 1; m <= last && s.next(); m++ {
			if m%23 == 0 {
				// the marble 7 counter-clockwise goes, its clockwise neighbour becomes current
				ring.MoveLeftN(6)
				removed, _ := ring.PopLeft()
				scores[(m-1)%players] += m + removed
				continue
			}
			ring.MoveRight()
			ring.PushMoveRight(m)
		}
		return slices.Max(scores)
	},
}

var spinlock = &Puzzle{
	Name:        "spinlock",
	Description: "Step forward, insert the next value after the cursor, repeat. Answer is the value after the last insert.",
	Defaults:    Params{"step": 3, "last": 2017},
	min:         Params{"step": 0, "last": 1},
	max:         Params{"step": MaxSize, "last": MaxSize},
	solve: func(s *stepper, p Params) int {
		step, last := p["step"], p["last"]
		ring := cyclic.FromSlice([]int{0})

		s.start(last)
		for i := 1; i <= last && s.next(); i++ {
			ring.MoveRightN(step)
			ring.PushMoveRight(i)
		}
		v, _ := ring.Right()
		return v
	},
}

var josephus = &Puzzle{
	Name:        "josephus",
	Description: "People stand in a circle and every skip-th one leaves. Answer is the last one standing.",
	Defaults:    Params{"count": 41, "skip": 3},
	min:         Params{"count": 1, "skip": 1},
	max:         Params{"count": MaxSize, "skip": MaxSize},
	solve: func(s *stepper, p Params) int {
		count, skip := p["count"], p["skip"]
		ring := cyclic.Collect(seats(count))

		s.start(count - 1)
		for ring.Len() > 1 && s.next() {
			ring.MoveRightN(skip - 1)
			ring.PopMoveRight()
		}
		v, _ := ring.Current()
		return v
	},
}

var elephant = &Puzzle{
	Name:        "elephant",
	Description: "Each player in turn steals from the player directly across the circle. Answer is the player left holding everything.",
	Defaults:    Params{"count": 5},
	min:         Params{"count": 1},
	max:         Params{"count": MaxSize},
	solve: func(s *stepper, p Params) int {
		count := p["count"]
		ring := cyclic.Collect(seats(count))

		// the cursor sits on the victim, not the thief
		ring.MoveRightN(count / 2)

		s.start(count - 1)
		for ring.Len() > 1 && s.next() {
			ring.PopMoveRight()
			if ring.Len()%2 == 0 {
				ring.MoveRight()
			}
		}
		v, _ := ring.Current()
		return v
	},
}
