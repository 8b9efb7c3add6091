// Package puzzles solves circle puzzles with a cyclic.List.
package puzzles

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"
)

// DefaultProgressEvery is used when Solve is given a non-positive interval.
const DefaultProgressEvery = 10000

// MaxSize caps every size-like parameter, bounding the ring a run may build.
const MaxSize = 10_000_000

var (
	ErrValidation    = errors.New("validation failed")
	ErrUnknownPuzzle = errors.New("unknown puzzle")
	ErrCancelled     = errors.New("cancelled")
)

// Params are the integer inputs of a puzzle, keyed by name.
type Params map[string]int

// Merge returns a copy of p with every key of o applied on top.
func (p Params) Merge(o Params) Params {
	out := make(Params, len(p)+len(o))
	for k, v := range p {
		out[k] = v
	}
	for k, v := range o {
		out[k] = v
	}
	return out
}

func (p Params) String() string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+strconv.Itoa(p[k]))
	}
	return strings.Join(parts, " ")
}

// ParseParams reads "key=value" pairs.
func ParseParams(args []string) (Params, error) {
	p := make(Params, len(args))
	for _, arg := range args {
		k, v, ok := strings.Cut(arg, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("%w: expected key=value, got %q", ErrValidation, arg)
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrValidation, k, err)
		}
		p[k] = n
	}
	return p, nil
}

// Progress is reported while a puzzle runs.
type Progress struct {
	Step  int `json:"step"`
	Total int `json:"total"`
}

// ProgressFunc receives progress updates. It may be nil.
type ProgressFunc func(Progress)

// Puzzle describes one solver.
type Puzzle struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Defaults    Params `json:"defaults"`

	// min and max bound each parameter; every key of min is accepted
	min   Params
	max   Params
	solve func(s *stepper, p Params) int
}

// Names of the parameters the puzzle accepts, sorted.
func (pz *Puzzle) Keys() []string {
	keys := make([]string, 0, len(pz.Defaults))
	for k := range pz.Defaults {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Validate checks that params only names known keys within range.
func (pz *Puzzle) Validate(params Params) error {
	for k, v := range params {
		lo, ok := pz.min[k]
		if !ok {
			return fmt.Errorf("%w: %s does not take %q (accepts %s)", ErrValidation, pz.Name, k, strings.Join(pz.Keys(), ", "))
		}
		if v < lo {
			return fmt.Errorf("%w: %s must be at least %d, got %d", ErrValidation, k, lo, v)
		}
		if hi, ok := pz.max[k]; ok && v > hi {
			return fmt.Errorf("%w: %s must be at most %d, got %d", ErrValidation, k, hi, v)
		}
	}
	return nil
}

// Solve runs the puzzle with params applied over its defaults. progress is
// called every `every` steps; the context is checked at the same points.
func (pz *Puzzle) Solve(ctx context.Context, params Params, every int, progress ProgressFunc) (int, error) {
	merged := pz.Defaults.Merge(params)
	if err := pz.Validate(merged); err != nil {
		return 0, err
	}

	if every <= 0 {
		every = DefaultProgressEvery
	}
	s := &stepper{ctx: ctx, every: every, progress: progress}
	answer := pz.solve(s, merged)
	if s.err != nil {
		return 0, s.err
	}
	s.report(s.total)
	return answer, nil
}

// stepper counts loop iterations for progress and cancellation.
type stepper struct {
	ctx      context.Context
	every    int
	progress ProgressFunc

	step  int
	total int
	err   error
}

func (s *stepper) start(total int) {
	s.total = total
	s.step = 0
}

// next reports whether the loop should keep going.
func (s *stepper) next() bool {
	if s.err != nil {
		return false
	}
	s.step++
	if s.step%s.every == 0 {
		if err := s.ctx.Err(); err != nil {
			s.err = fmt.Errorf("%w after %d of %d steps: %w", ErrCancelled, s.step, s.total, err)
			return false
		}
		s.report(s.step)
	}
	return true
}

func (s *stepper) report(step int) {
	if s.progress != nil {
		s.progress(Progress{Step: step, Total: s.total})
	}
}

var registry = []*Puzzle{
	marbles,
	spinlock,
	josephus,
	elephant,
}

// All returns every puzzle sorted by name.
func All() []*Puzzle {
	out := slices.Clone(registry)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Lookup finds a puzzle by name.
func Lookup(name string) (*Puzzle, error) {
	for _, pz := range registry {
		if pz.Name == name {
			return pz, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownPuzzle, name)
}
